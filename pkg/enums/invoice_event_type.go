package enums

import "fmt"

// InvoiceEventType maps to the invoice_event_type_enum enum in Postgres.
type InvoiceEventType string

const (
	InvoiceEventTypeCreated          InvoiceEventType = "created"
	InvoiceEventTypeExtracted        InvoiceEventType = "extracted"
	InvoiceEventTypeExtractionFailed InvoiceEventType = "extraction_failed"
	InvoiceEventTypeStatusChange     InvoiceEventType = "status_change"
	InvoiceEventTypeBatched          InvoiceEventType = "batched"
)

var validInvoiceEventTypes = []InvoiceEventType{
	InvoiceEventTypeCreated,
	InvoiceEventTypeExtracted,
	InvoiceEventTypeExtractionFailed,
	InvoiceEventTypeStatusChange,
	InvoiceEventTypeBatched,
}

// IsValid reports whether the value matches the canonical event enum.
func (t InvoiceEventType) IsValid() bool {
	for _, candidate := range validInvoiceEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseInvoiceEventType converts raw input into InvoiceEventType.
func ParseInvoiceEventType(value string) (InvoiceEventType, error) {
	for _, candidate := range validInvoiceEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid invoice event type %q", value)
}
