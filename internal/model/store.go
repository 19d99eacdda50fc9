package model

import "time"

// Store is a ratable entity, optionally owned by a user with the owner role.
type Store struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:60;not null;index"`
	Email     string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Address   *string   `json:"address" gorm:"size:400"`
	OwnerID   *uint     `json:"owner_id" gorm:"index"`
	CreatedAt time.Time `json:"-"`

	// Relations
	Owner *User `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL"`
}

// AdminStoreRow is a row of the admin store listing.
type AdminStoreRow struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Address   *string `json:"address"`
	AvgRating float64 `json:"avg_rating"`
}

// UserStoreRow is a row of the store listing shown to regular users.
// UserRating is the caller's own rating, null when they have not rated the store.
type UserStoreRow struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	Address    *string `json:"address"`
	AvgRating  float64 `json:"avg_rating"`
	UserRating *int    `json:"user_rating"`
}

// StoreRef is the compact store reference used by the owner dashboard.
type StoreRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}
