package extraction

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cuentasclaras/payables-backend/pkg/enums"
)

func confidentNormalized() *Normalized {
	issue := time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)
	return &Normalized{
		SupplierName:  "Molinos del Este S.R.L.",
		InvoiceNumber: "A-0001234",
		IssueDate:     &issue,
		Currency:      enums.CurrencyUYU,
		Total:         decimal.NullDecimal{Decimal: decimal.NewFromFloat(15230.50), Valid: true},
		Confidence: map[string]float64{
			"supplier_name":  0.98,
			"invoice_number": 0.95,
			"issue_date":     0.92,
			"total":          0.99,
			"currency":       0.90,
		},
	}
}

func TestDecideExtractedWhenConfident(t *testing.T) {
	if got := Decide(confidentNormalized()); got != enums.InvoiceStatusExtracted {
		t.Fatalf("expected EXTRACTED, got %s", got)
	}
}

func TestDecideReviewWhenCriticalFieldBelowThreshold(t *testing.T) {
	n := confidentNormalized()
	n.Confidence["total"] = 0.74
	if got := Decide(n); got != enums.InvoiceStatusReviewRequired {
		t.Fatalf("expected REVIEW_REQUIRED, got %s", got)
	}

	// 0.75 exactly passes.
	n.Confidence["total"] = ConfidenceThreshold
	if got := Decide(n); got != enums.InvoiceStatusExtracted {
		t.Fatalf("threshold value should pass, got %s", got)
	}
}

func TestDecideReviewWhenCriticalValueMissing(t *testing.T) {
	cases := map[string]func(*Normalized){
		"supplier name":  func(n *Normalized) { n.SupplierName = "" },
		"invoice number": func(n *Normalized) { n.InvoiceNumber = "" },
		"issue date":     func(n *Normalized) { n.IssueDate = nil },
		"total":          func(n *Normalized) { n.Total = decimal.NullDecimal{} },
		"zero total":     func(n *Normalized) { n.Total = decimal.NullDecimal{Decimal: decimal.Zero, Valid: true} },
	}
	for name, mutate := range cases {
		n := confidentNormalized()
		mutate(n)
		if got := Decide(n); got != enums.InvoiceStatusReviewRequired {
			t.Errorf("%s missing: expected REVIEW_REQUIRED, got %s", name, got)
		}
	}
}

func TestDecideNonCriticalFieldDoesNotBlock(t *testing.T) {
	n := confidentNormalized()
	n.Confidence["tax_amount"] = 0.1
	if got := Decide(n); got != enums.InvoiceStatusExtracted {
		t.Fatalf("non-critical field must not force review, got %s", got)
	}
}

func TestDecideMissingDueDateDoesNotBlock(t *testing.T) {
	n := confidentNormalized()
	n.DueDate = nil
	n.Confidence["due_date"] = 0.1
	if got := Decide(n); got != enums.InvoiceStatusExtracted {
		t.Fatalf("absent due date must not force review, got %s", got)
	}
}

func TestDecideReviewWhenDueDateConfidenceLow(t *testing.T) {
	due := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	n := confidentNormalized()
	n.DueDate = &due
	n.Confidence["due_date"] = clampedDueConfidence
	if got := Decide(n); got != enums.InvoiceStatusReviewRequired {
		t.Fatalf("clamped due date confidence must force review, got %s", got)
	}

	n = confidentNormalized()
	n.DueDate = &due
	n.Confidence["due_date"] = ConfidenceThreshold
	if got := Decide(n); got != enums.InvoiceStatusExtracted {
		t.Fatalf("due date at threshold should pass, got %s", got)
	}
}
