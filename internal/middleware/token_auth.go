package middleware

import (
	"context"
	"strings"

	"userapi/internal/common"
	"userapi/internal/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const tokenKeyword = "token"

// Authenticator resolves a token key to its owner.
type Authenticator interface {
	Authenticate(ctx context.Context, key string) (*models.User, error)
}

type TokenAuthMiddleware struct {
	auth   Authenticator
	logger *zap.Logger
}

func NewTokenAuthMiddleware(auth Authenticator, logger *zap.Logger) *TokenAuthMiddleware {
	return &TokenAuthMiddleware{
		auth:   auth,
		logger: logger,
	}
}

// RequireCapability enforces the permission table entry for op before the handler runs.
func (m *TokenAuthMiddleware) RequireCapability(op Operation) echo.MiddlewareFunc {
	if RequiredCapability(op) == AllowAny {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key, err := tokenFromHeader(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}

			ctx := c.Request().Context()
			user, err := m.auth.Authenticate(ctx, key)
			if err != nil {
				m.logger.Debug("token rejected", zap.String("operation", string(op)), zap.Error(err))
				return err
			}

			c.SetRequest(c.Request().WithContext(common.WithUserID(ctx, user.ID)))
			return next(c)
		}
	}
}

// tokenFromHeader parses "Token <key>". A header using another scheme counts
// as no credentials at all.
func tokenFromHeader(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) == 0 || strings.ToLower(parts[0]) != tokenKeyword {
		return "", common.ErrNotAuthenticated
	}

	switch len(parts) {
	case 1:
		return "", common.ErrTokenHeaderNoCredentials
	case 2:
		return parts[1], nil
	default:
		return "", common.ErrTokenHeaderSpaces
	}
}
