package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"storerating/internal/db"
	apperrors "storerating/internal/errors"
	"storerating/internal/model"
	"storerating/internal/repository"
)

// RatingService enforces one rating per (user, store).
type RatingService interface {
	Submit(ctx context.Context, userID, storeID uint, value int) (*model.Rating, error)
	Update(ctx context.Context, userID, storeID uint, value int) (*model.Rating, error)
}

type ratingService struct {
	ratings repository.RatingRepository
	stores  repository.StoreRepository
}

// NewRatingService builds a RatingService.
func NewRatingService(ratings repository.RatingRepository, stores repository.StoreRepository) RatingService {
	return &ratingService{ratings: ratings, stores: stores}
}

// Submit creates the caller's rating for a store. A rating that already
// exists, including one inserted concurrently, fails with ErrDuplicateRating.
func (s *ratingService) Submit(ctx context.Context, userID, storeID uint, value int) (*model.Rating, error) {
	if !model.ValidRating(value) {
		return nil, apperrors.ErrInvalidRating
	}

	if _, err := s.stores.FindByID(ctx, storeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrStoreNotFound
		}
		return nil, fmt.Errorf("find store: %w", err)
	}

	existing, err := s.ratings.FindByUserAndStore(ctx, userID, storeID)
	if err == nil && existing != nil {
		return nil, apperrors.ErrDuplicateRating
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check rating existence: %w", err)
	}

	rating := &model.Rating{UserID: userID, StoreID: storeID, Rating: value}
	if err := s.ratings.Create(ctx, rating); err != nil {
		if db.IsDuplicateKey(err) {
			return nil, apperrors.ErrDuplicateRating
		}
		return nil, fmt.Errorf("create rating: %w", err)
	}
	return rating, nil
}

// Update changes the value of the caller's existing rating.
func (s *ratingService) Update(ctx context.Context, userID, storeID uint, value int) (*model.Rating, error) {
	if !model.ValidRating(value) {
		return nil, apperrors.ErrInvalidRating
	}

	rating, err := s.ratings.FindByUserAndStore(ctx, userID, storeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrRatingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find rating: %w", err)
	}

	if err := s.ratings.UpdateValue(ctx, rating.ID, value); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRatingNotFound
		}
		return nil, fmt.Errorf("update rating: %w", err)
	}
	rating.Rating = value
	return rating, nil
}
