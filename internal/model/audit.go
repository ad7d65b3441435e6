package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateInvoice    = "CREATE_INVOICE"
	ActionUpdateInvoice    = "UPDATE_INVOICE"
	ActionDeleteInvoice    = "DELETE_INVOICE"
	ActionChangeStatus     = "CHANGE_INVOICE_STATUS"
	ActionDuplicateInvoice = "DUPLICATE_INVOICE"
	ActionEditLineItems    = "EDIT_LINE_ITEMS"
	ActionCreateCustomer   = "CREATE_CUSTOMER"
	ActionUpdateCustomer   = "UPDATE_CUSTOMER"
	ActionDeleteCustomer   = "DELETE_CUSTOMER"
	ActionUpsertCustomer   = "UPSERT_CUSTOMER"
	ActionCreateCompany    = "CREATE_COMPANY_PROFILE"
	ActionUpdateCompany    = "UPDATE_COMPANY_PROFILE"
	ActionDeleteCompany    = "DELETE_COMPANY_PROFILE"
	ActionUpsertCompany    = "UPSERT_COMPANY_PROFILE"

	// ActorSystem is recorded when no authenticated subject is known
	ActorSystem = "system"
)

// AuditLog tracks who changed which record and when
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Actor      string    `gorm:"type:varchar(255);not null;default:'system'" json:"actor"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // invoice number or party name
	Details    string    `gorm:"type:text" json:"details"`                       // JSON payload
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Actor == "" {
		a.Actor = ActorSystem
	}
	return nil
}
