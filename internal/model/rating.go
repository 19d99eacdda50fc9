package model

import "time"

const (
	// MinRating is the lowest accepted rating value.
	MinRating = 1
	// MaxRating is the highest accepted rating value.
	MaxRating = 5
)

// Rating is one user's 1-5 rating of one store. (UserID, StoreID) is unique.
type Rating struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_ratings_user_store"`
	StoreID   uint      `json:"store_id" gorm:"not null;uniqueIndex:idx_ratings_user_store;index"`
	Rating    int       `json:"rating" gorm:"not null;check:chk_ratings_range,rating >= 1 AND rating <= 5"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Relations
	User  User  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Store Store `json:"-" gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
}

// ValidRating reports whether v is inside the accepted range.
func ValidRating(v int) bool {
	return v >= MinRating && v <= MaxRating
}

// Rater is one entry of the owner dashboard: a rating joined with its author.
type Rater struct {
	UserID    uint      `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// OwnerDashboard is the owner's view of their store.
type OwnerDashboard struct {
	Store     StoreRef `json:"store"`
	AvgRating *string  `json:"avg_rating"`
	Raters    []Rater  `json:"raters"`
}

// AdminSummary holds the admin dashboard counts.
type AdminSummary struct {
	Users   int64 `json:"users"`
	Stores  int64 `json:"stores"`
	Ratings int64 `json:"ratings"`
}
