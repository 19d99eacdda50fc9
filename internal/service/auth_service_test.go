package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"storerating/internal/auth"
	apperrors "storerating/internal/errors"
	"storerating/internal/model"
)

var testHasher = auth.NewBcryptHasher(bcrypt.MinCost)

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := testHasher.Hash(password)
	require.NoError(t, err)
	return h
}

func newTestAuthService(users *MockUserRepository, tokens *MockTokenStore) (AuthService, *auth.JWTService) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	return NewAuthService(users, testHasher, jwtService, tokens, nil), jwtService
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:  "successful registration",
			email: "test@example.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:  "email already exists",
			email: "existing@example.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: apperrors.ErrDuplicateEmail,
		},
		{
			name:  "concurrent insert hits unique index",
			email: "race@example.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "race@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: apperrors.ErrDuplicateEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)
			service, jwtService := newTestAuthService(mockRepo, new(MockTokenStore))

			user, token, err := service.Register(context.Background(), "Test User With Long Name", tt.email, "Secret#123", nil)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				assert.Equal(t, model.RoleUser, user.Role)
				assert.Equal(t, tt.email, user.Email)
				assert.NotEqual(t, "Secret#123", user.PasswordHash)
				assert.True(t, testHasher.Compare(user.PasswordHash, "Secret#123"))

				claims, err := jwtService.ValidateToken(token)
				require.NoError(t, err)
				assert.Equal(t, user.ID, claims.UserID)
				assert.Equal(t, model.RoleUser, claims.Role)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	stored := &model.User{ID: 3, Name: "Test User With Long Name", Email: "test@example.com", Role: model.RoleUser, PasswordHash: hashOf(t, "Secret#123")}

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: "Secret#123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(stored, nil)
			},
		},
		{
			name:     "unknown email",
			email:    "notfound@example.com",
			password: "Secret#123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "Wrong#123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(stored, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)
			service, jwtService := newTestAuthService(mockRepo, new(MockTokenStore))

			user, token, err := service.Authenticate(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, user)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				assert.Equal(t, stored.ID, user.ID)
				claims, err := jwtService.ValidateToken(token)
				require.NoError(t, err)
				assert.Equal(t, stored.Email, claims.Email)
				assert.Equal(t, stored.Name, claims.Name)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Authenticate_DatabaseError(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, errors.New("connection refused"))
	service, _ := newTestAuthService(mockRepo, new(MockTokenStore))

	_, _, err := service.Authenticate(context.Background(), "test@example.com", "Secret#123")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_ValidateToken(t *testing.T) {
	user := &model.User{ID: 9, Name: "Test User With Long Name", Email: "t@example.com", Role: model.RoleAdmin}

	t.Run("valid token", func(t *testing.T) {
		tokens := new(MockTokenStore)
		service, jwtService := newTestAuthService(new(MockUserRepository), tokens)
		token, err := jwtService.GenerateToken(user)
		require.NoError(t, err)
		tokens.On("IsRevoked", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)

		claims, err := service.ValidateToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, claims.Role)
		tokens.AssertExpectations(t)
	})

	t.Run("revoked token", func(t *testing.T) {
		tokens := new(MockTokenStore)
		service, jwtService := newTestAuthService(new(MockUserRepository), tokens)
		token, err := jwtService.GenerateToken(user)
		require.NoError(t, err)
		tokens.On("IsRevoked", mock.Anything, mock.AnythingOfType("string")).Return(true, nil)

		_, err = service.ValidateToken(context.Background(), token)
		assert.Equal(t, apperrors.ErrInvalidToken, err)
	})

	t.Run("malformed token", func(t *testing.T) {
		tokens := new(MockTokenStore)
		service, _ := newTestAuthService(new(MockUserRepository), tokens)

		_, err := service.ValidateToken(context.Background(), "garbage")
		assert.Equal(t, apperrors.ErrInvalidToken, err)
		tokens.AssertNotCalled(t, "IsRevoked", mock.Anything, mock.Anything)
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	tests := []struct {
		name          string
		current       string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:    "successful change",
			current: "Secret#123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(3)).Return(&model.User{ID: 3, PasswordHash: hashOf(t, "Secret#123")}, nil)
				m.On("UpdatePassword", mock.Anything, uint(3), mock.MatchedBy(func(h string) bool {
					return testHasher.Compare(h, "Newpass#456")
				})).Return(nil)
			},
		},
		{
			name:    "wrong current password leaves hash alone",
			current: "Wrong#123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(3)).Return(&model.User{ID: 3, PasswordHash: hashOf(t, "Secret#123")}, nil)
			},
			expectedError: apperrors.ErrWrongCurrentPassword,
		},
		{
			name:    "user vanished",
			current: "Secret#123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(3)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)
			service, _ := newTestAuthService(mockRepo, new(MockTokenStore))

			err := service.ChangePassword(context.Background(), 3, tt.current, "Newpass#456")
			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				mockRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	tokens := new(MockTokenStore)
	service, jwtService := newTestAuthService(new(MockUserRepository), tokens)
	token, err := jwtService.GenerateToken(&model.User{ID: 1, Role: model.RoleUser})
	require.NoError(t, err)
	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)

	tokens.On("Revoke", mock.Anything, claims.ID, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 0 && ttl <= time.Hour
	})).Return(nil)

	require.NoError(t, service.Logout(context.Background(), claims))
	tokens.AssertExpectations(t)
}
