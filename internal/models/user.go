package models

import "time"

// User describes a registered shopper account.
type User struct {
	UserID   uint   `gorm:"primaryKey;column:user_id" json:"user_id"`
	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Mobile   string `json:"mobile,omitempty"`

	IsDeleted bool      `gorm:"default:false" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetID returns the generated numeric identity.
func (u *User) GetID() uint { return u.UserID }
