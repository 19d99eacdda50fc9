package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"storerating/internal/auth"
	apperrors "storerating/internal/errors"
	"storerating/internal/model"
	"storerating/internal/repository"
)

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, name, email, password string, address *string) (*model.User, string, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, string, error)
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
	ChangePassword(ctx context.Context, userID uint, current, next string) error
	Logout(ctx context.Context, claims *auth.Claims) error
}

type authService struct {
	users      repository.UserRepository
	hasher     auth.PasswordHasher
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	log        *zap.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, hasher auth.PasswordHasher, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, log *zap.Logger) AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{
		users:      users,
		hasher:     hasher,
		jwtService: jwtService,
		tokenStore: tokenStore,
		log:        log,
	}
}

// Register creates a user-role account and signs a token for it.
func (s *authService) Register(ctx context.Context, name, email, password string, address *string) (*model.User, string, error) {
	user, err := createUser(ctx, s.users, s.hasher, NewUser{
		Name:     name,
		Email:    email,
		Password: password,
		Address:  address,
		Role:     model.RoleUser,
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	return user, token, nil
}

// Authenticate verifies credentials. Unknown email and wrong password fail identically.
func (s *authService) Authenticate(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("find user: %w", err)
		}
		s.log.Warn("login failed", zap.String("reason", "unknown email"))
		return nil, "", apperrors.ErrInvalidCredentials
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		s.log.Warn("login failed", zap.Uint("user_id", user.ID), zap.String("reason", "password mismatch"))
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	return user, token, nil
}

// ValidateToken checks the signature, expiry and revocation of a bearer token.
func (s *authService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	revoked, err := s.tokenStore.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// ChangePassword re-hashes the password after verifying the current one.
func (s *authService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Compare(user.PasswordHash, current) {
		s.log.Warn("password change rejected", zap.Uint("user_id", userID))
		return apperrors.ErrWrongCurrentPassword
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// Logout revokes the token until it would expire.
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	ttl := claims.Remaining(time.Now())
	if ttl == 0 {
		return nil
	}
	if err := s.tokenStore.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
