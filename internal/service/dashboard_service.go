package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "storerating/internal/errors"
	"storerating/internal/model"
	"storerating/internal/repository"
)

// DashboardService builds the admin and owner dashboards.
type DashboardService interface {
	AdminSummary(ctx context.Context) (*model.AdminSummary, error)
	OwnerDashboard(ctx context.Context, ownerID uint) (*model.OwnerDashboard, error)
}

type dashboardService struct {
	users   repository.UserRepository
	stores  repository.StoreRepository
	ratings repository.RatingRepository
}

// NewDashboardService builds a DashboardService.
func NewDashboardService(users repository.UserRepository, stores repository.StoreRepository, ratings repository.RatingRepository) DashboardService {
	return &dashboardService{users: users, stores: stores, ratings: ratings}
}

func (s *dashboardService) AdminSummary(ctx context.Context) (*model.AdminSummary, error) {
	var (
		summary model.AdminSummary
		err     error
	)
	if summary.Users, err = s.users.Count(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if summary.Stores, err = s.stores.Count(ctx); err != nil {
		return nil, fmt.Errorf("count stores: %w", err)
	}
	if summary.Ratings, err = s.ratings.Count(ctx); err != nil {
		return nil, fmt.Errorf("count ratings: %w", err)
	}
	return &summary, nil
}

// OwnerDashboard resolves the owner's store and rolls up its ratings.
func (s *dashboardService) OwnerDashboard(ctx context.Context, ownerID uint) (*model.OwnerDashboard, error) {
	store, err := s.stores.FindByOwner(ctx, ownerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrOwnerStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find owner store: %w", err)
	}

	avg, err := s.ratings.StoreAverage(ctx, store.ID)
	if err != nil {
		return nil, fmt.Errorf("store average: %w", err)
	}
	raters, err := s.ratings.ListRaters(ctx, store.ID)
	if err != nil {
		return nil, fmt.Errorf("list raters: %w", err)
	}

	return &model.OwnerDashboard{
		Store:     model.StoreRef{ID: store.ID, Name: store.Name},
		AvgRating: formatAverage(avg),
		Raters:    raters,
	}, nil
}

// formatAverage renders an average with two decimals, nil when there is none.
func formatAverage(avg *float64) *string {
	if avg == nil {
		return nil
	}
	s := decimal.NewFromFloat(*avg).StringFixed(2)
	return &s
}
