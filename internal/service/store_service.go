package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"storerating/internal/db"
	apperrors "storerating/internal/errors"
	"storerating/internal/model"
	"storerating/internal/query"
	"storerating/internal/repository"
)

// NewStore is the input for creating a store.
type NewStore struct {
	Name    string
	Email   string
	Address *string
	OwnerID *uint
}

// StoreService manages stores and the store listings.
type StoreService interface {
	CreateStore(ctx context.Context, in NewStore) (*model.Store, error)
	ListStores(ctx context.Context, params query.Params) ([]model.AdminStoreRow, error)
	ListForUser(ctx context.Context, userID uint, params query.Params) ([]model.UserStoreRow, error)
}

type storeService struct {
	stores repository.StoreRepository
	users  repository.UserRepository
}

// NewStoreService builds a StoreService.
func NewStoreService(stores repository.StoreRepository, users repository.UserRepository) StoreService {
	return &storeService{stores: stores, users: users}
}

// CreateStore rejects a taken email, then validates the optional owner
// reference. An owner id of 0 means no owner.
func (s *storeService) CreateStore(ctx context.Context, in NewStore) (*model.Store, error) {
	existing, err := s.stores.FindByEmail(ctx, in.Email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrDuplicateEmail
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check store existence: %w", err)
	}

	if in.OwnerID != nil && *in.OwnerID == 0 {
		in.OwnerID = nil
	}
	if in.OwnerID != nil {
		owner, err := s.users.FindByID(ctx, *in.OwnerID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidOwner
		}
		if err != nil {
			return nil, fmt.Errorf("find owner: %w", err)
		}
		if owner.Role != model.RoleOwner {
			return nil, apperrors.ErrInvalidOwner
		}
	}

	store := &model.Store{
		Name:    in.Name,
		Email:   in.Email,
		Address: in.Address,
		OwnerID: in.OwnerID,
	}
	if err := s.stores.Create(ctx, store); err != nil {
		if db.IsDuplicateKey(err) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create store: %w", err)
	}
	return store, nil
}

func (s *storeService) ListStores(ctx context.Context, params query.Params) ([]model.AdminStoreRow, error) {
	rows, err := s.stores.ListWithAverages(ctx, repository.AdminStoreListSpec.Build(params))
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	return rows, nil
}

func (s *storeService) ListForUser(ctx context.Context, userID uint, params query.Params) ([]model.UserStoreRow, error) {
	rows, err := s.stores.ListForUser(ctx, userID, repository.UserStoreListSpec.Build(params))
	if err != nil {
		return nil, fmt.Errorf("list stores for user: %w", err)
	}
	return rows, nil
}
