package extraction

// Payload is the raw document data returned by the vision model before
// normalization. Every field is optional; missing values surface as empty
// strings or nil so the normalizer can decide what to do.
type Payload struct {
	SupplierName  string            `json:"supplier_name"`
	SupplierTaxID string            `json:"supplier_tax_id"`
	InvoiceNumber string            `json:"invoice_number"`
	InvoiceSeries string            `json:"invoice_series"`
	IssueDate     string            `json:"issue_date"`
	DueDate       string            `json:"due_date"`
	Currency      string            `json:"currency"`
	Subtotal      *float64          `json:"subtotal"`
	TaxAmount     *float64          `json:"tax_amount"`
	Total         *float64          `json:"total"`
	PaymentTerms  string            `json:"payment_terms"`
	Notes         string            `json:"notes"`
	Items         []PayloadItem     `json:"items"`
	Confidence    map[string]float64 `json:"confidence"`
}

// PayloadItem is one line as returned by the model.
type PayloadItem struct {
	Description string   `json:"description"`
	Quantity    *float64 `json:"quantity"`
	Unit        string   `json:"unit"`
	UnitPrice   *float64 `json:"unit_price"`
	LineTotal   *float64 `json:"line_total"`
}
