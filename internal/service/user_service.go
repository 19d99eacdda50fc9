package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"storerating/internal/auth"
	"storerating/internal/db"
	apperrors "storerating/internal/errors"
	"storerating/internal/model"
	"storerating/internal/query"
	"storerating/internal/repository"
)

// NewUser is the input for creating an account of any role.
type NewUser struct {
	Name     string
	Email    string
	Password string
	Address  *string
	Role     model.Role
}

// UserService exposes the admin user operations.
type UserService interface {
	CreateUser(ctx context.Context, in NewUser) (*model.User, error)
	GetUser(ctx context.Context, id uint) (*model.UserDetail, error)
	ListUsers(ctx context.Context, params query.Params) ([]model.User, error)
	EnsureAdmin(ctx context.Context, in NewUser) (bool, error)
}

type userService struct {
	users  repository.UserRepository
	stores repository.StoreRepository
	hasher auth.PasswordHasher
}

// NewUserService builds a UserService.
func NewUserService(users repository.UserRepository, stores repository.StoreRepository, hasher auth.PasswordHasher) UserService {
	return &userService{users: users, stores: stores, hasher: hasher}
}

func (s *userService) CreateUser(ctx context.Context, in NewUser) (*model.User, error) {
	return createUser(ctx, s.users, s.hasher, in)
}

// GetUser returns a user; owners also carry the average rating of their stores.
func (s *userService) GetUser(ctx context.Context, id uint) (*model.UserDetail, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	detail := &model.UserDetail{User: *user}
	if user.Role == model.RoleOwner {
		avg, err := s.stores.OwnerAverage(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("owner average: %w", err)
		}
		detail.StoreRating = formatAverage(avg)
	}
	return detail, nil
}

func (s *userService) ListUsers(ctx context.Context, params query.Params) ([]model.User, error) {
	users, err := s.users.List(ctx, repository.UserListSpec.Build(params))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// EnsureAdmin creates the admin account unless an admin already exists.
// It reports whether an account was created.
func (s *userService) EnsureAdmin(ctx context.Context, in NewUser) (bool, error) {
	n, err := s.users.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	in.Role = model.RoleAdmin
	if _, err := createUser(ctx, s.users, s.hasher, in); err != nil {
		return false, err
	}
	return true, nil
}

// createUser hashes the password and persists the account. The unique index
// on email backs up the pre-check when two requests race.
func createUser(ctx context.Context, users repository.UserRepository, hasher auth.PasswordHasher, in NewUser) (*model.User, error) {
	if !in.Role.Valid() {
		return nil, fmt.Errorf("create user: invalid role %d", in.Role)
	}

	existing, err := users.FindByEmail(ctx, in.Email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrDuplicateEmail
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hash, err := hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Address:      in.Address,
		Role:         in.Role,
	}
	if err := users.Create(ctx, user); err != nil {
		if db.IsDuplicateKey(err) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}
