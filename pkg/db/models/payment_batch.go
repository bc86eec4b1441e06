package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	dbtypes "github.com/cuentasclaras/payables-backend/pkg/db/types"
)

// PaymentBatch records one generated bank file run. Skipped invoices are kept
// as human-readable reasons so a partial batch can be audited later.
type PaymentBatch struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FileName       string          `gorm:"column:file_name;not null"`
	FilePath       string          `gorm:"column:file_path;not null"`
	ValueDate      time.Time       `gorm:"column:value_date;type:date;not null"`
	ClassicCount   int             `gorm:"column:classic_count;not null"`
	InterBankCount int             `gorm:"column:inter_bank_count;not null"`
	SkippedCount   int             `gorm:"column:skipped_count;not null"`
	SkippedReasons pq.StringArray  `gorm:"column:skipped_reasons;type:text[]"`
	InvoiceIDs     dbtypes.UUIDArray `gorm:"column:invoice_ids;type:uuid[]"`
	TotalUYU       decimal.Decimal `gorm:"column:total_uyu;type:numeric(14,2);not null"`
	TotalUSD       decimal.Decimal `gorm:"column:total_usd;type:numeric(14,2);not null"`
	CreatedBy      string          `gorm:"column:created_by;not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
}
