package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"storerating/internal/model"
)

// RatingRepository defines rating persistence operations.
type RatingRepository interface {
	Create(ctx context.Context, rating *model.Rating) error
	FindByID(ctx context.Context, id uint) (*model.Rating, error)
	FindByUserAndStore(ctx context.Context, userID, storeID uint) (*model.Rating, error)
	UpdateValue(ctx context.Context, id uint, value int) error
	StoreAverage(ctx context.Context, storeID uint) (*float64, error)
	ListRaters(ctx context.Context, storeID uint) ([]model.Rater, error)
	Count(ctx context.Context) (int64, error)
}

type ratingRepository struct {
	db *gorm.DB
}

// NewRatingRepository creates a new rating repository.
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// Create inserts a rating. The (user_id, store_id) unique index rejects a
// second rating for the same pair even under concurrent inserts.
func (r *ratingRepository) Create(ctx context.Context, rating *model.Rating) error {
	return r.db.WithContext(ctx).Create(rating).Error
}

func (r *ratingRepository) FindByID(ctx context.Context, id uint) (*model.Rating, error) {
	var rating model.Rating
	if err := r.db.WithContext(ctx).First(&rating, id).Error; err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepository) FindByUserAndStore(ctx context.Context, userID, storeID uint) (*model.Rating, error) {
	var rating model.Rating
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND store_id = ?", userID, storeID).
		First(&rating).Error; err != nil {
		return nil, err
	}
	return &rating, nil
}

// UpdateValue changes the rating value only; created_at is left untouched.
func (r *ratingRepository) UpdateValue(ctx context.Context, id uint, value int) error {
	res := r.db.WithContext(ctx).Model(&model.Rating{}).Where("id = ?", id).Update("rating", value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// StoreAverage returns nil when the store has no ratings.
func (r *ratingRepository) StoreAverage(ctx context.Context, storeID uint) (*float64, error) {
	var avg sql.NullFloat64
	err := r.db.WithContext(ctx).
		Model(&model.Rating{}).
		Select("AVG(rating)").
		Where("store_id = ?", storeID).
		Row().Scan(&avg)
	if err != nil {
		return nil, err
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

// ListRaters returns every rating on the store with its author, newest first.
func (r *ratingRepository) ListRaters(ctx context.Context, storeID uint) ([]model.Rater, error) {
	raters := []model.Rater{}
	err := r.db.WithContext(ctx).
		Table("ratings AS r").
		Select("u.id AS user_id, u.name, u.email, r.rating, r.created_at").
		Joins("JOIN users u ON u.id = r.user_id").
		Where("r.store_id = ?", storeID).
		Order("r.created_at DESC, r.id DESC").
		Scan(&raters).Error
	if err != nil {
		return nil, err
	}
	return raters, nil
}

func (r *ratingRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Rating{}).Count(&n).Error
	return n, err
}
