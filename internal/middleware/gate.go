package middleware

import (
	"context"
	"errors"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storerating/internal/auth"
	apperrors "storerating/internal/errors"
	"storerating/internal/model"
)

const identityKey = "identity"

// TokenValidator turns a raw bearer token into an identity.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
}

// Gate authenticates bearer tokens and checks roles.
type Gate struct {
	validator TokenValidator
	log       *zap.Logger
}

// NewGate builds a Gate.
func NewGate(validator TokenValidator, log *zap.Logger) *Gate {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{validator: validator, log: log}
}

// Authenticate requires a valid, unrevoked "Authorization: Bearer" token and
// stores its claims on the context. Missing or bad tokens fail with 401.
func (g *Gate) Authenticate() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  identityKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return g.validator.ValidateToken(c.Request().Context(), token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var tokenErr *echojwt.TokenError
			if errors.As(err, &tokenErr) && !errors.Is(tokenErr.Err, apperrors.ErrInvalidToken) {
				// the token could not be checked, e.g. the revocation lookup failed
				return tokenErr.Err
			}
			return apperrors.ErrInvalidToken
		},
	})
}

// RequireRole lets the request through only when the caller holds one of roles.
// It must run after Authenticate.
func (g *Gate) RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := IdentityFrom(c)
			if !ok {
				return apperrors.ErrInvalidToken
			}
			if _, ok := allowed[claims.Role]; !ok {
				g.log.Warn("role check failed",
					zap.Uint("user_id", claims.UserID),
					zap.Stringer("role", claims.Role),
					zap.String("path", c.Path()),
				)
				return apperrors.ErrForbidden
			}
			return next(c)
		}
	}
}

// IdentityFrom returns the claims stored by Authenticate.
func IdentityFrom(c echo.Context) (*auth.Claims, bool) {
	claims, ok := c.Get(identityKey).(*auth.Claims)
	return claims, ok && claims != nil
}
