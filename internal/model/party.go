package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Party kinds used by autosave and upsert
const (
	PartyCustomer = "customer"
	PartyCompany  = "company"
)

// PartySnapshot is the contact block embedded in an invoice.
// It is owned by the invoice; editing a saved profile later does not change it.
type PartySnapshot struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Logo       string `json:"logo,omitempty"` // company only, base64
}

// Customer is a reusable saved customer profile
type Customer struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(255);not null;index" json:"name"`
	Email      string    `gorm:"type:varchar(255)" json:"email"`
	Phone      string    `gorm:"type:varchar(50)" json:"phone"`
	Address    string    `gorm:"type:text" json:"address"`
	City       string    `gorm:"type:varchar(100)" json:"city"`
	State      string    `gorm:"type:varchar(100)" json:"state"`
	PostalCode string    `gorm:"type:varchar(20)" json:"postal_code"`
	Country    string    `gorm:"type:varchar(100)" json:"country"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Snapshot copies the profile into an invoice-owned value
func (c Customer) Snapshot() PartySnapshot {
	return PartySnapshot{
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		City:       c.City,
		State:      c.State,
		PostalCode: c.PostalCode,
		Country:    c.Country,
	}
}

// ApplySnapshot overwrites every contact field from s
func (c *Customer) ApplySnapshot(s PartySnapshot) {
	c.Name = s.Name
	c.Email = s.Email
	c.Phone = s.Phone
	c.Address = s.Address
	c.City = s.City
	c.State = s.State
	c.PostalCode = s.PostalCode
	c.Country = s.Country
}

// CompanyProfile is the issuing business. At most one profile is the default.
type CompanyProfile struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(255);not null;index" json:"name"`
	Email      string    `gorm:"type:varchar(255)" json:"email"`
	Phone      string    `gorm:"type:varchar(50)" json:"phone"`
	Address    string    `gorm:"type:text" json:"address"`
	City       string    `gorm:"type:varchar(100)" json:"city"`
	State      string    `gorm:"type:varchar(100)" json:"state"`
	PostalCode string    `gorm:"type:varchar(20)" json:"postal_code"`
	Country    string    `gorm:"type:varchar(100)" json:"country"`
	Logo       string    `gorm:"type:text" json:"logo"` // base64 encoded image
	IsDefault  bool      `gorm:"not null;default:false;index" json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (c *CompanyProfile) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Snapshot copies the profile into an invoice-owned value, logo included
func (c CompanyProfile) Snapshot() PartySnapshot {
	return PartySnapshot{
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		City:       c.City,
		State:      c.State,
		PostalCode: c.PostalCode,
		Country:    c.Country,
		Logo:       c.Logo,
	}
}

// ApplySnapshot overwrites every contact field from s. IsDefault is untouched.
func (c *CompanyProfile) ApplySnapshot(s PartySnapshot) {
	c.Name = s.Name
	c.Email = s.Email
	c.Phone = s.Phone
	c.Address = s.Address
	c.City = s.City
	c.State = s.State
	c.PostalCode = s.PostalCode
	c.Country = s.Country
	c.Logo = s.Logo
}
