// Package middleware provides shared request processing for handlers.
package middleware

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/readshelf/readshelf/internal/model"
	"github.com/readshelf/readshelf/internal/utils"
)

// UserFetcher loads a user by ID. The session middleware depends on this
// narrow interface rather than the full repository so tests can inject a
// stub.
type UserFetcher interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// userContextKey is where the resolved *model.User lives in the echo
// context for downstream handlers.
const userContextKey = "user"

// SessionAuth returns an Echo middleware that validates a Bearer session
// token and attaches the authenticated user to the request context. The
// token only carries {userId, isAdmin}; the user record is re-fetched on
// every request so a deleted account is rejected immediately, not at
// token expiry.
func SessionAuth(secret string, users UserFetcher) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseSessionToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			u, err := users.GetByID(c.Request().Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "user no longer exists"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
			}

			c.Set(userContextKey, &u)
			return next(c)
		}
	}
}

// CurrentUser returns the user attached by SessionAuth. The boolean is
// false on routes that skipped the middleware.
func CurrentUser(c echo.Context) (*model.User, bool) {
	u, ok := c.Get(userContextKey).(*model.User)
	return u, ok
}
