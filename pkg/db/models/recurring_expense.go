package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cuentasclaras/payables-backend/pkg/enums"
)

// RecurringExpense is a scheduled monthly obligation: a fixed cost, an owner
// withdrawal, or a card installment with total/current counters.
type RecurringExpense struct {
	ID                 uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type               enums.RecurringExpenseType `gorm:"column:type;type:recurring_expense_type_enum;not null"`
	Name               string                     `gorm:"column:name;not null"`
	Amount             decimal.Decimal            `gorm:"column:amount;type:numeric(14,2);not null"`
	Currency           enums.Currency             `gorm:"column:currency;type:currency_enum;not null;default:UYU"`
	DayOfMonth         int                        `gorm:"column:day_of_month;not null"`
	Category           string                     `gorm:"column:category;not null;default:General"`
	Active             bool                       `gorm:"column:active;not null;default:true"`
	Variable           bool                       `gorm:"column:variable;not null;default:false"`
	SupplierID         *uuid.UUID                 `gorm:"column:supplier_id;type:uuid"`
	TotalInstallments  *int                       `gorm:"column:total_installments"`
	CurrentInstallment *int                       `gorm:"column:current_installment"`
	CardLast4          *string                    `gorm:"column:card_last4"`
	CreatedAt          time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}
