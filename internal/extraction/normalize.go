package extraction

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cuentasclaras/payables-backend/pkg/enums"
)

const dateLayout = "2006-01-02"

// clampedDueConfidence marks a due date the normalizer had to repair.
const clampedDueConfidence = 0.5

// Normalized is the typed, cleaned result of one extraction run.
type Normalized struct {
	SupplierName  string
	SupplierTaxID string
	InvoiceNumber string
	InvoiceSeries string
	IssueDate     *time.Time
	DueDate       *time.Time
	Currency      enums.Currency
	Subtotal      decimal.NullDecimal
	TaxAmount     decimal.NullDecimal
	Total         decimal.NullDecimal
	PaymentTerms  string
	Notes         string
	Items         []NormalizedItem
	Confidence    map[string]float64
	Warnings      []string
}

// NormalizedItem is one cleaned invoice line.
type NormalizedItem struct {
	Description string
	Quantity    decimal.NullDecimal
	Unit        string
	UnitPrice   decimal.NullDecimal
	LineTotal   decimal.NullDecimal
}

// Normalize cleans the raw model payload: trims strings, parses dates with
// year repair, clamps impossible due dates and defaults the currency to UYU.
func Normalize(payload *Payload, now time.Time) *Normalized {
	n := &Normalized{
		SupplierName:  strings.TrimSpace(payload.SupplierName),
		SupplierTaxID: strings.TrimSpace(payload.SupplierTaxID),
		InvoiceNumber: strings.TrimSpace(payload.InvoiceNumber),
		InvoiceSeries: strings.TrimSpace(payload.InvoiceSeries),
		PaymentTerms:  strings.TrimSpace(payload.PaymentTerms),
		Notes:         strings.TrimSpace(payload.Notes),
		Confidence:    map[string]float64{},
	}
	for field, score := range payload.Confidence {
		n.Confidence[field] = score
	}

	if issue, warning := parseDateWithYearRepair(payload.IssueDate, now); issue != nil {
		n.IssueDate = issue
		if warning != "" {
			n.Warnings = append(n.Warnings, warning)
		}
	} else if strings.TrimSpace(payload.IssueDate) != "" {
		n.Warnings = append(n.Warnings, fmt.Sprintf("fecha de emision ilegible: %q", payload.IssueDate))
	}

	if due, warning := parseDateWithYearRepair(payload.DueDate, now); due != nil {
		n.DueDate = due
		if warning != "" {
			n.Warnings = append(n.Warnings, warning)
		}
	} else if strings.TrimSpace(payload.DueDate) != "" {
		n.Warnings = append(n.Warnings, fmt.Sprintf("fecha de vencimiento ilegible: %q", payload.DueDate))
	}

	// A due date before issue is an OCR artifact, not a real term. Clamp it
	// and drop its confidence so a human reviews it.
	if n.IssueDate != nil && n.DueDate != nil && n.DueDate.Before(*n.IssueDate) {
		clamped := *n.IssueDate
		n.DueDate = &clamped
		n.Confidence["due_date"] = clampedDueConfidence
		n.Warnings = append(n.Warnings, "vencimiento anterior a emision, ajustado a fecha de emision")
	}

	currency, err := enums.ParseCurrency(strings.ToUpper(strings.TrimSpace(payload.Currency)))
	if err != nil {
		currency = enums.CurrencyUYU
		if strings.TrimSpace(payload.Currency) != "" {
			n.Warnings = append(n.Warnings, fmt.Sprintf("moneda desconocida %q, se asume UYU", payload.Currency))
		}
	}
	n.Currency = currency

	n.Subtotal = decimalFromFloat(payload.Subtotal)
	n.TaxAmount = decimalFromFloat(payload.TaxAmount)
	n.Total = decimalFromFloat(payload.Total)

	for _, item := range payload.Items {
		description := strings.TrimSpace(item.Description)
		if description == "" {
			continue
		}
		n.Items = append(n.Items, NormalizedItem{
			Description: description,
			Quantity:    decimalFromFloat(item.Quantity),
			Unit:        strings.TrimSpace(item.Unit),
			UnitPrice:   decimalFromFloat(item.UnitPrice),
			LineTotal:   decimalFromFloat(item.LineTotal),
		})
	}

	return n
}

// parseDateWithYearRepair parses an ISO date. Handwritten dates often turn a
// 6 into a 0 (or the reverse) somewhere in the year; when the parsed year
// falls outside [current-1, current+1] one digit at a time is swapped 0<->6,
// and a repaired year is accepted only if it lands inside that window.
func parseDateWithYearRepair(value string, now time.Time) (*time.Time, string) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "null") {
		return nil, ""
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, ""
	}

	year := parsed.Year()
	current := now.Year()
	if year >= current-1 && year <= current+1 {
		return &parsed, ""
	}

	for _, repaired := range repairedYearCandidates(year) {
		if repaired >= current-1 && repaired <= current+1 {
			fixed := time.Date(repaired, parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
			return &fixed, fmt.Sprintf("anio %d corregido a %d", year, repaired)
		}
	}

	// Out of window and unrepairable; keep what the model read.
	return &parsed, ""
}

// repairedYearCandidates lists every year reachable by flipping a single
// digit of the OCR'd year between 0 and 6.
func repairedYearCandidates(year int) []int {
	if year < 0 {
		return nil
	}
	digits := []byte(strconv.Itoa(year))
	candidates := []int{}
	for i := range digits {
		var swapped byte
		switch digits[i] {
		case '0':
			swapped = '6'
		case '6':
			swapped = '0'
		default:
			continue
		}
		fixed := append([]byte(nil), digits...)
		fixed[i] = swapped
		repaired, err := strconv.Atoi(string(fixed))
		if err != nil {
			continue
		}
		candidates = append(candidates, repaired)
	}
	return candidates
}

func decimalFromFloat(value *float64) decimal.NullDecimal {
	if value == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(*value), Valid: true}
}
