package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contact is an inbound customer message.
type Contact struct {
	ContactID uint   `gorm:"primaryKey;column:contact_id" json:"contact_id"`
	Reference string `gorm:"uniqueIndex;size:36" json:"reference"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`

	IsDeleted bool      `gorm:"default:false" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a reference number handed back to the customer.
func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.Reference == "" {
		c.Reference = uuid.NewString()
	}
	return nil
}

// GetID returns the generated numeric identity.
func (c *Contact) GetID() uint { return c.ContactID }
