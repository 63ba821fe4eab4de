package models

import "time"

// Cart is a shopper's pending line item.
type Cart struct {
	CartID    uint    `gorm:"primaryKey;column:cart_id" json:"cart_id"`
	UserID    uint    `gorm:"not null;index" json:"user_id"`
	ProductID uint    `gorm:"not null" json:"product_id"`
	Quantity  int     `gorm:"default:1" json:"quantity"`
	Price     float64 `json:"price"`

	IsDeleted bool      `gorm:"default:false" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetID returns the generated numeric identity.
func (c *Cart) GetID() uint { return c.CartID }
