package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cuentasclaras/payables-backend/pkg/enums"
)

// Supplier is one registry entry invoices are matched against. The normalized
// tax id (digits only) is the primary matching key; uniqueness when present
// is enforced by a partial index in the schema.
type Supplier struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string             `gorm:"column:name;not null"`
	Alias           string             `gorm:"column:alias;not null"`
	TaxID           *string            `gorm:"column:tax_id"`
	TaxIDNormalized *string            `gorm:"column:tax_id_normalized;index"`
	Category        string             `gorm:"column:category;not null;default:General"`
	BankName        *string            `gorm:"column:bank_name"`
	AccountType     *enums.AccountType `gorm:"column:account_type;type:account_type_enum"`
	AccountNumber   *string            `gorm:"column:account_number"`
	Currency        enums.Currency     `gorm:"column:currency;type:currency_enum;not null;default:UYU"`
	Phone           *string            `gorm:"column:phone"`
	Email           *string            `gorm:"column:email"`
	ContactName     *string            `gorm:"column:contact_name"`
	PaymentTerms    string             `gorm:"column:payment_terms;not null;default:Contado"`
	Notes           *string            `gorm:"column:notes"`
	AutoCreated     bool               `gorm:"column:auto_created;not null;default:false"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
