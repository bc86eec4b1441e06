package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceItem is one extracted line of an invoice, ordered by SortOrder.
type InvoiceItem struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceID   uuid.UUID           `gorm:"column:invoice_id;type:uuid;not null;index"`
	Description string              `gorm:"column:description;not null"`
	Quantity    decimal.NullDecimal `gorm:"column:quantity;type:numeric(12,3)"`
	Unit        *string             `gorm:"column:unit"`
	UnitPrice   decimal.NullDecimal `gorm:"column:unit_price;type:numeric(14,2)"`
	LineTotal   decimal.NullDecimal `gorm:"column:line_total;type:numeric(14,2)"`
	SortOrder   int                 `gorm:"column:sort_order;not null;default:0"`
}
