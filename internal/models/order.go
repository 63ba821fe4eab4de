package models

import (
	"time"

	"gorm.io/datatypes"
)

// Order captures a placed purchase and its line items snapshot.
type Order struct {
	OrderID   uint           `gorm:"primaryKey;column:order_id" json:"order_id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	AddressID uint           `json:"address_id"`
	Amount    float64        `gorm:"not null" json:"amount"`
	Status    string         `gorm:"default:pending" json:"status"`
	Items     datatypes.JSON `json:"items,omitempty"`

	IsDeleted bool      `gorm:"default:false" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetID returns the generated numeric identity.
func (o *Order) GetID() uint { return o.OrderID }
