package extraction

import (
	"testing"
	"time"

	"github.com/cuentasclaras/payables-backend/pkg/enums"
)

var testNow = time.Date(2026, time.February, 20, 12, 0, 0, 0, time.UTC)

func float(v float64) *float64 { return &v }

func TestNormalizeYearRepairZeroToSix(t *testing.T) {
	payload := &Payload{IssueDate: "2020-02-20"}
	n := Normalize(payload, testNow)

	if n.IssueDate == nil {
		t.Fatal("issue date should parse")
	}
	if n.IssueDate.Year() != 2026 {
		t.Fatalf("expected year repaired to 2026, got %d", n.IssueDate.Year())
	}
	if len(n.Warnings) == 0 {
		t.Fatal("repair should leave a warning")
	}
}

func TestNormalizeYearRepairNonUnitsDigit(t *testing.T) {
	payload := &Payload{IssueDate: "2626-02-20"}
	n := Normalize(payload, testNow)

	if n.IssueDate == nil {
		t.Fatal("issue date should parse")
	}
	if n.IssueDate.Year() != 2026 {
		t.Fatalf("expected hundreds digit repaired to 2026, got %d", n.IssueDate.Year())
	}
	if len(n.Warnings) == 0 {
		t.Fatal("repair should leave a warning")
	}
}

func TestNormalizeYearRepairSixToZero(t *testing.T) {
	now := time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC)
	payload := &Payload{IssueDate: "2026-06-01"}
	n := Normalize(payload, now)

	if n.IssueDate == nil || n.IssueDate.Year() != 2020 {
		t.Fatalf("expected year repaired to 2020, got %v", n.IssueDate)
	}
}

func TestNormalizeYearInWindowUntouched(t *testing.T) {
	payload := &Payload{IssueDate: "2025-12-30"}
	n := Normalize(payload, testNow)

	if n.IssueDate == nil || n.IssueDate.Year() != 2025 {
		t.Fatalf("in-window year must not be repaired, got %v", n.IssueDate)
	}
	if len(n.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", n.Warnings)
	}
}

func TestNormalizeUnrepairableYearKept(t *testing.T) {
	payload := &Payload{IssueDate: "2019-03-01"}
	n := Normalize(payload, testNow)

	if n.IssueDate == nil || n.IssueDate.Year() != 2019 {
		t.Fatalf("unrepairable year should be kept as read, got %v", n.IssueDate)
	}
}

func TestNormalizeClampsDueBeforeIssue(t *testing.T) {
	payload := &Payload{
		IssueDate:  "2026-02-10",
		DueDate:    "2026-01-05",
		Confidence: map[string]float64{"due_date": 0.95},
	}
	n := Normalize(payload, testNow)

	if n.DueDate == nil || !n.DueDate.Equal(*n.IssueDate) {
		t.Fatalf("due date should be clamped to issue date, got %v", n.DueDate)
	}
	if n.Confidence["due_date"] != clampedDueConfidence {
		t.Fatalf("clamped due date should drop confidence to %.1f, got %f", clampedDueConfidence, n.Confidence["due_date"])
	}
}

func TestNormalizeDefaultsCurrencyToUYU(t *testing.T) {
	for _, raw := range []string{"", "PESOS", "usd "} {
		n := Normalize(&Payload{Currency: raw}, testNow)
		want := enums.CurrencyUYU
		if raw == "usd " {
			want = enums.CurrencyUSD
		}
		if n.Currency != want {
			t.Errorf("currency %q normalized to %s, want %s", raw, n.Currency, want)
		}
	}
}

func TestNormalizeItemsSkipEmptyDescriptions(t *testing.T) {
	payload := &Payload{Items: []PayloadItem{
		{Description: "Harina 000", Quantity: float(25), Unit: "kg", UnitPrice: float(42.5), LineTotal: float(1062.5)},
		{Description: "   "},
	}}
	n := Normalize(payload, testNow)

	if len(n.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(n.Items))
	}
	if n.Items[0].LineTotal.Decimal.String() != "1062.5" {
		t.Fatalf("unexpected line total %s", n.Items[0].LineTotal.Decimal)
	}
}

func TestParseModelJSONStripsFences(t *testing.T) {
	text := "```json\n{\"supplier_name\": \"Molinos del Este\", \"total\": 1234.5}\n```"
	payload, err := ParseModelJSON(text)
	if err != nil {
		t.Fatalf("ParseModelJSON error: %v", err)
	}
	if payload.SupplierName != "Molinos del Este" {
		t.Fatalf("unexpected supplier %q", payload.SupplierName)
	}
	if payload.Total == nil || *payload.Total != 1234.5 {
		t.Fatalf("unexpected total %v", payload.Total)
	}
}

func TestParseModelJSONRejectsGarbage(t *testing.T) {
	if _, err := ParseModelJSON("no es json"); err == nil {
		t.Fatal("expected parse error")
	}
}
