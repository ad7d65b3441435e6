package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceStatus enum constants.
// Any status may be set to any other; there is no transition graph.
const (
	StatusDraft    = "draft"
	StatusOpen     = "open"
	StatusPaid     = "paid"
	StatusOverdue  = "overdue"
	StatusCanceled = "canceled"
)

// Invoice defaults applied on save when the caller leaves the field blank
const (
	DefaultInvoiceTitle  = "Invoice"
	DefaultFooterMessage = "Thank you for your business!"
	DefaultCurrency      = "USD"
	DefaultTemplate      = "default"
)

// Statuses lists every valid invoice status in display order
var Statuses = []string{StatusDraft, StatusOpen, StatusPaid, StatusOverdue, StatusCanceled}

// IsValidStatus reports whether s is one of the known invoice statuses
func IsValidStatus(s string) bool {
	for _, st := range Statuses {
		if st == s {
			return true
		}
	}
	return false
}

// Invoice is the persisted invoice record.
// Customer and Company are snapshots copied at save time, not references to
// saved profiles. Subtotal..Total are the calculator output at save time and
// are never recomputed on read.
type Invoice struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceNumber  string           `gorm:"type:varchar(50);not null;index" json:"invoice_number"`
	Status         string           `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	IssueDate      string           `gorm:"type:varchar(10);not null" json:"issue_date"` // YYYY-MM-DD
	DueDate        string           `gorm:"type:varchar(10)" json:"due_date"`            // YYYY-MM-DD or empty
	Currency       string           `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`
	Customer       PartySnapshot    `gorm:"serializer:json;type:jsonb;not null" json:"customer"`
	Company        PartySnapshot    `gorm:"serializer:json;type:jsonb;not null" json:"company"`
	LineItems      []LineItem       `gorm:"serializer:json;type:jsonb;not null" json:"line_items"`
	Fees           FeeConfiguration `gorm:"embedded;embeddedPrefix:fee_" json:"fees"`
	Subtotal       float64          `gorm:"not null;default:0" json:"subtotal"`
	Surcharge      float64          `gorm:"not null;default:0" json:"surcharge"`
	ConvenienceFee float64          `gorm:"not null;default:0" json:"convenience_fee"`
	Tax            float64          `gorm:"not null;default:0" json:"tax"`
	Total          float64          `gorm:"not null;default:0" json:"total"`
	Notes          string           `gorm:"type:text" json:"notes"`
	InvoiceTitle   string           `gorm:"type:varchar(255);not null;default:'Invoice'" json:"invoice_title"`
	FooterMessage  string           `gorm:"type:text" json:"footer_message"`
	Template       string           `gorm:"type:varchar(50);not null;default:'default'" json:"template"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// BeforeCreate assigns the system id when the caller has not set one
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
