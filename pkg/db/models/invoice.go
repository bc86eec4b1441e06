package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/cuentasclaras/payables-backend/pkg/enums"
)

// Invoice is one payable document moving through the extraction and approval
// pipeline. The raw supplier name/tax id survive independently of the
// supplier link so deleting a supplier never blanks historical invoices.
type Invoice struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FileHash string    `gorm:"column:file_hash;not null;uniqueIndex"`
	FilePath string    `gorm:"column:file_path;not null"`
	FileName string    `gorm:"column:file_name;not null"`
	MimeType string    `gorm:"column:mime_type;not null"`
	SizeBytes int64    `gorm:"column:size_bytes;not null"`

	Source       enums.InvoiceSource `gorm:"column:source;type:invoice_source_enum;not null"`
	SupplierHint *string             `gorm:"column:supplier_hint"`

	Status enums.InvoiceStatus `gorm:"column:status;type:invoice_status_enum;not null;default:NEW"`

	SupplierID        *uuid.UUID `gorm:"column:supplier_id;type:uuid"`
	SupplierNameRaw   *string    `gorm:"column:supplier_name_raw"`
	SupplierTaxIDRaw  *string    `gorm:"column:supplier_tax_id_raw"`
	InvoiceNumber     *string    `gorm:"column:invoice_number"`
	InvoiceSeries     *string    `gorm:"column:invoice_series"`
	IssueDate         *time.Time `gorm:"column:issue_date;type:date"`
	DueDate           *time.Time `gorm:"column:due_date;type:date"`
	Currency          enums.Currency `gorm:"column:currency;type:currency_enum;not null;default:UYU"`
	Subtotal          decimal.NullDecimal `gorm:"column:subtotal;type:numeric(14,2)"`
	TaxAmount         decimal.NullDecimal `gorm:"column:tax_amount;type:numeric(14,2)"`
	Total             decimal.NullDecimal `gorm:"column:total;type:numeric(14,2)"`
	PaymentTerms      *string    `gorm:"column:payment_terms"`
	NotesExtracted    *string    `gorm:"column:notes_extracted"`
	RawExtractedText  *string    `gorm:"column:raw_extracted_text"`

	ConfidenceScores json.RawMessage `gorm:"column:confidence_scores;type:jsonb"`
	ExtractionErrors pq.StringArray  `gorm:"column:extraction_errors;type:text[]"`
	ExtractionModel  *string         `gorm:"column:extraction_model"`
	ExtractedAt      *time.Time      `gorm:"column:extracted_at"`

	Items  []InvoiceItem  `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Events []InvoiceEvent `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
