package enums

import "fmt"

// InvoiceSource identifies the channel an invoice file arrived through.
type InvoiceSource string

const (
	InvoiceSourcePaper    InvoiceSource = "paper"
	InvoiceSourceEmail    InvoiceSource = "email"
	InvoiceSourceWhatsapp InvoiceSource = "whatsapp"
	InvoiceSourceUpload   InvoiceSource = "upload"
)

var validInvoiceSources = []InvoiceSource{
	InvoiceSourcePaper,
	InvoiceSourceEmail,
	InvoiceSourceWhatsapp,
	InvoiceSourceUpload,
}

// IsValid reports whether the source channel is recognized.
func (s InvoiceSource) IsValid() bool {
	for _, candidate := range validInvoiceSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseInvoiceSource converts raw input into InvoiceSource.
func ParseInvoiceSource(value string) (InvoiceSource, error) {
	for _, candidate := range validInvoiceSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid invoice source %q", value)
}
