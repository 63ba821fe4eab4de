package models

import "time"

// Wishlist marks a product a shopper wants to revisit later.
type Wishlist struct {
	WishlistID uint `gorm:"primaryKey;column:wishlist_id" json:"wishlist_id"`
	UserID     uint `gorm:"not null;index" json:"user_id"`
	ProductID  uint `gorm:"not null" json:"product_id"`

	IsDeleted bool      `gorm:"default:false" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetID returns the generated numeric identity.
func (w *Wishlist) GetID() uint { return w.WishlistID }
