package model

import (
	"encoding/json"
	"time"
)

// User represents an account that can sign in to the system.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:60;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"column:password;size:255;not null"` // Never expose in JSON
	Address      *string   `json:"address" gorm:"size:400"`
	Role         Role      `json:"role" gorm:"type:varchar(16);not null;index"`
	CreatedAt    time.Time `json:"-"`
}

// UserDetail is the admin single-user view. Owners carry the average rating
// of their store, which is null when the store has no ratings.
type UserDetail struct {
	User
	StoreRating *string
}

// MarshalJSON renders store_rating only for owners, keeping an explicit null.
func (d UserDetail) MarshalJSON() ([]byte, error) {
	type plain User
	if d.Role != RoleOwner {
		return json.Marshal(plain(d.User))
	}
	return json.Marshal(struct {
		plain
		StoreRating *string `json:"store_rating"`
	}{plain(d.User), d.StoreRating})
}
