package models

import "time"

// Address is a shopper's delivery location.
type Address struct {
	AddressID    uint   `gorm:"primaryKey;column:address_id" json:"address_id"`
	UserID       uint   `gorm:"not null;index" json:"user_id"`
	AddressType  string `json:"address_type"`
	AddressLine1 string `gorm:"column:address_line_1" json:"address_line_1"`
	AddressLine2 string `gorm:"column:address_line_2" json:"address_line_2"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`
	Pincode      string `json:"pincode"`
	Mobile       string `json:"mobile"`

	IsDeleted bool      `gorm:"default:false" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetID returns the generated numeric identity.
func (a *Address) GetID() uint { return a.AddressID }
