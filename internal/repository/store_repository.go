package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"storerating/internal/model"
	"storerating/internal/query"
)

// AdminStoreListSpec is the allow-list for the admin store listing.
var AdminStoreListSpec = query.MustSpec(query.Spec{
	Filters: []query.Field{
		{Param: "name", Column: "s.name"},
		{Param: "email", Column: "s.email"},
		{Param: "address", Column: "s.address"},
	},
	Sorts: []query.Field{
		{Param: "name", Column: "s.name"},
		{Param: "email", Column: "s.email"},
	},
})

// UserStoreListSpec is the allow-list for the store search of regular users.
var UserStoreListSpec = query.MustSpec(query.Spec{
	Filters: []query.Field{
		{Param: "name", Column: "s.name"},
		{Param: "address", Column: "s.address"},
	},
	Sorts: []query.Field{
		{Param: "name", Column: "s.name"},
		{Param: "address", Column: "s.address"},
	},
})

// StoreRepository defines store persistence and store-level aggregates.
type StoreRepository interface {
	Create(ctx context.Context, store *model.Store) error
	FindByID(ctx context.Context, id uint) (*model.Store, error)
	FindByEmail(ctx context.Context, email string) (*model.Store, error)
	FindByOwner(ctx context.Context, ownerID uint) (*model.Store, error)
	ListWithAverages(ctx context.Context, criteria query.Criteria) ([]model.AdminStoreRow, error)
	ListForUser(ctx context.Context, userID uint, criteria query.Criteria) ([]model.UserStoreRow, error)
	OwnerAverage(ctx context.Context, ownerID uint) (*float64, error)
	Count(ctx context.Context) (int64, error)
}

type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository creates a new store repository.
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

// Create creates a new store.
func (r *storeRepository) Create(ctx context.Context, store *model.Store) error {
	return r.db.WithContext(ctx).Create(store).Error
}

// FindByID finds a store by ID.
func (r *storeRepository) FindByID(ctx context.Context, id uint) (*model.Store, error) {
	var store model.Store
	if err := r.db.WithContext(ctx).First(&store, id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindByEmail finds a store by its contact email.
func (r *storeRepository) FindByEmail(ctx context.Context, email string) (*model.Store, error) {
	var store model.Store
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindByOwner returns the first store owned by the user.
func (r *storeRepository) FindByOwner(ctx context.Context, ownerID uint) (*model.Store, error) {
	var store model.Store
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id").First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// ListWithAverages lists stores with their average rating; unrated stores average 0.
func (r *storeRepository) ListWithAverages(ctx context.Context, criteria query.Criteria) ([]model.AdminStoreRow, error) {
	rows := []model.AdminStoreRow{}
	err := r.db.WithContext(ctx).
		Table("stores AS s").
		Select("s.id, s.name, s.email, s.address, COALESCE(AVG(r.rating), 0) AS avg_rating").
		Joins("LEFT JOIN ratings r ON r.store_id = s.id").
		Group("s.id").
		Scopes(criteria.Scope).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListForUser lists stores with their average rating (0 when unrated) and the
// given user's own rating, null when the user has not rated the store.
func (r *storeRepository) ListForUser(ctx context.Context, userID uint, criteria query.Criteria) ([]model.UserStoreRow, error) {
	rows := []model.UserStoreRow{}
	err := r.db.WithContext(ctx).
		Table("stores AS s").
		Select("s.id, s.name, s.address, COALESCE(AVG(r.rating), 0) AS avg_rating, MAX(ur.rating) AS user_rating").
		Joins("LEFT JOIN ratings r ON r.store_id = s.id").
		Joins("LEFT JOIN ratings ur ON ur.store_id = s.id AND ur.user_id = ?", userID).
		Group("s.id").
		Scopes(criteria.Scope).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// OwnerAverage averages every rating across the stores owned by the user.
// It returns nil when the owner has no store or no ratings.
func (r *storeRepository) OwnerAverage(ctx context.Context, ownerID uint) (*float64, error) {
	var avg sql.NullFloat64
	err := r.db.WithContext(ctx).
		Table("stores AS s").
		Select("AVG(r.rating)").
		Joins("LEFT JOIN ratings r ON r.store_id = s.id").
		Where("s.owner_id = ?", ownerID).
		Row().Scan(&avg)
	if err != nil {
		return nil, err
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

// Count returns the number of stores.
func (r *storeRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Store{}).Count(&n).Error
	return n, err
}
