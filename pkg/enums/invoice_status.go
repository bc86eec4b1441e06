package enums

import "fmt"

// InvoiceStatus maps to the invoice_status_enum enum in Postgres.
type InvoiceStatus string

const (
	InvoiceStatusNew            InvoiceStatus = "NEW"
	InvoiceStatusExtracting     InvoiceStatus = "EXTRACTING"
	InvoiceStatusExtracted      InvoiceStatus = "EXTRACTED"
	InvoiceStatusReviewRequired InvoiceStatus = "REVIEW_REQUIRED"
	InvoiceStatusApproved       InvoiceStatus = "APPROVED"
	InvoiceStatusScheduled      InvoiceStatus = "SCHEDULED"
	InvoiceStatusPaid           InvoiceStatus = "PAID"
	InvoiceStatusDispute        InvoiceStatus = "DISPUTE"
	InvoiceStatusRejected       InvoiceStatus = "REJECTED"
	InvoiceStatusDuplicate      InvoiceStatus = "DUPLICATE"
)

var validInvoiceStatuses = []InvoiceStatus{
	InvoiceStatusNew,
	InvoiceStatusExtracting,
	InvoiceStatusExtracted,
	InvoiceStatusReviewRequired,
	InvoiceStatusApproved,
	InvoiceStatusScheduled,
	InvoiceStatusPaid,
	InvoiceStatusDispute,
	InvoiceStatusRejected,
	InvoiceStatusDuplicate,
}

// invoiceTransitions is the authoritative transition table. Any status write
// not present here is rejected at the service boundary.
var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusNew:            {InvoiceStatusExtracting},
	InvoiceStatusExtracting:     {InvoiceStatusExtracted, InvoiceStatusReviewRequired},
	InvoiceStatusExtracted:      {InvoiceStatusApproved, InvoiceStatusDispute, InvoiceStatusRejected},
	InvoiceStatusReviewRequired: {InvoiceStatusApproved, InvoiceStatusDispute, InvoiceStatusRejected},
	InvoiceStatusApproved:       {InvoiceStatusScheduled, InvoiceStatusPaid},
	InvoiceStatusScheduled:      {InvoiceStatusPaid},
	InvoiceStatusDispute:        {InvoiceStatusApproved, InvoiceStatusRejected},
}

// String implements fmt.Stringer.
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsValid reports whether the value matches the canonical status enum.
func (s InvoiceStatus) IsValid() bool {
	for _, candidate := range validInvoiceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition leaves this status.
func (s InvoiceStatus) IsTerminal() bool {
	switch s {
	case InvoiceStatusPaid, InvoiceStatusRejected, InvoiceStatusDuplicate:
		return true
	}
	return false
}

// IsPayable reports whether an invoice in this status may enter a payment
// batch.
func (s InvoiceStatus) IsPayable() bool {
	return s == InvoiceStatusApproved || s == InvoiceStatusScheduled
}

// CanTransitionTo consults the transition table.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	for _, candidate := range invoiceTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseInvoiceStatus converts raw input into InvoiceStatus.
func ParseInvoiceStatus(value string) (InvoiceStatus, error) {
	for _, candidate := range validInvoiceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid invoice status %q", value)
}
