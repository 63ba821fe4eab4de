package models

import "time"

// Category groups catalogue items for browsing.
type Category struct {
	CategoryID  uint   `gorm:"primaryKey;column:category_id" json:"category_id"`
	Name        string `gorm:"not null;index" json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`

	IsDeleted bool      `gorm:"default:false" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetID returns the generated numeric identity.
func (c *Category) GetID() uint { return c.CategoryID }
