package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/cuentasclaras/payables-backend/pkg/enums"
)

// InvoiceEvent records an immutable lifecycle event for one invoice. Events
// are append-only; nothing updates or deletes them.
type InvoiceEvent struct {
	ID         uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceID  uuid.UUID              `gorm:"column:invoice_id;type:uuid;not null;index"`
	Type       enums.InvoiceEventType `gorm:"column:type;type:invoice_event_type_enum;not null"`
	FromStatus *enums.InvoiceStatus   `gorm:"column:from_status;type:invoice_status_enum"`
	ToStatus   enums.InvoiceStatus    `gorm:"column:to_status;type:invoice_status_enum;not null"`
	Actor      string                 `gorm:"column:actor;not null"`
	Note       string                 `gorm:"column:note"`
	Metadata   json.RawMessage        `gorm:"column:metadata;type:jsonb"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime"`
}
