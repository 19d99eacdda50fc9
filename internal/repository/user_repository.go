package repository

import (
	"context"

	"gorm.io/gorm"

	"storerating/internal/model"
	"storerating/internal/query"
)

// UserListSpec is the allow-list for the admin user listing.
var UserListSpec = query.MustSpec(query.Spec{
	Filters: []query.Field{
		{Param: "name", Column: "name"},
		{Param: "email", Column: "email"},
		{Param: "address", Column: "address"},
		{Param: "role", Column: "role"},
	},
	Sorts: []query.Field{
		{Param: "name", Column: "name"},
		{Param: "email", Column: "email"},
		{Param: "role", Column: "role"},
	},
})

// UserRepository is the credential store.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, criteria query.Criteria) ([]model.User, error)
	UpdatePassword(ctx context.Context, id uint, hash string) error
	Count(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context, role model.Role) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, criteria query.Criteria) ([]model.User, error) {
	users := []model.User{}
	if err := r.db.WithContext(ctx).Scopes(criteria.Scope).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdatePassword replaces the stored hash. It returns gorm.ErrRecordNotFound
// when no row matched.
func (r *userRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error
	return n, err
}

func (r *userRepository) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("role = ?", role).Count(&n).Error
	return n, err
}
