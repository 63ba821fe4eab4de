package models

import (
	"time"

	"gorm.io/datatypes"
)

// Payment records a settlement attempt against an order.
type Payment struct {
	PaymentID uint           `gorm:"primaryKey;column:payment_id" json:"payment_id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	OrderID   uint           `gorm:"not null" json:"order_id"`
	Provider  string         `json:"provider"`
	Amount    float64        `gorm:"not null" json:"amount"`
	Status    string         `gorm:"default:created" json:"status"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`

	IsDeleted bool      `gorm:"default:false" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetID returns the generated numeric identity.
func (p *Payment) GetID() uint { return p.PaymentID }
