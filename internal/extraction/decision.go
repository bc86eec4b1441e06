package extraction

import (
	"github.com/cuentasclaras/payables-backend/pkg/enums"
)

// ConfidenceThreshold is the minimum per-field score a critical field needs
// for the invoice to skip human review.
const ConfidenceThreshold = 0.75

// criticalFields must all be present and confidently read before an invoice
// is considered extracted.
var criticalFields = []string{"supplier_name", "invoice_number", "issue_date", "total", "currency"}

// Decide picks the post-extraction status: EXTRACTED when every critical
// field is present and meets the confidence threshold, REVIEW_REQUIRED
// otherwise. A due date is not required, but when the model returned one its
// confidence is held to the same threshold, so the normalizer's clamp on a
// repaired due date always routes to review.
func Decide(n *Normalized) enums.InvoiceStatus {
	if !criticalValuesPresent(n) {
		return enums.InvoiceStatusReviewRequired
	}
	for _, field := range criticalFields {
		if n.Confidence[field] < ConfidenceThreshold {
			return enums.InvoiceStatusReviewRequired
		}
	}
	if n.DueDate != nil && n.Confidence["due_date"] < ConfidenceThreshold {
		return enums.InvoiceStatusReviewRequired
	}
	return enums.InvoiceStatusExtracted
}

func criticalValuesPresent(n *Normalized) bool {
	if n.SupplierName == "" || n.InvoiceNumber == "" {
		return false
	}
	if n.IssueDate == nil {
		return false
	}
	if !n.Total.Valid || n.Total.Decimal.IsZero() {
		return false
	}
	return true
}
