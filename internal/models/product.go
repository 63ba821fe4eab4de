package models

import (
	"time"

	"gorm.io/datatypes"
)

// Product is a catalogue item available for purchase.
type Product struct {
	ProductID      uint           `gorm:"primaryKey;column:product_id" json:"product_id"`
	Name           string         `gorm:"not null;index" json:"name"`
	Price          float64        `gorm:"not null" json:"price"`
	Description    string         `json:"description"`
	Specifications datatypes.JSON `json:"specifications,omitempty"`
	Image          string         `json:"image"`
	Stock          int            `gorm:"default:0" json:"stock"`
	IsFeatured     bool           `gorm:"default:false" json:"is_featured"`

	IsDeleted bool      `gorm:"default:false" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetID returns the generated numeric identity.
func (p *Product) GetID() uint { return p.ProductID }
