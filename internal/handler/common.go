// Package handler defines the HTTP handlers of the API. Handlers bind and
// validate input, resolve the caller from the request context, translate
// repository sentinels into status codes and shape JSON responses; all
// persistence lives in internal/repository.
package handler

import (
	"context"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/readshelf/readshelf/internal/middleware"
	"github.com/readshelf/readshelf/internal/model"
	"github.com/readshelf/readshelf/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	dbTimeout       = 5 * time.Second
)

// reqCtx bounds every database call made on behalf of a request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// currentUser returns the authenticated user attached by the session
// middleware. Routes registered without it would hit the nil path, which
// is a wiring bug rather than a client error.
func currentUser(c echo.Context) (*model.User, error) {
	u, ok := middleware.CurrentUser(c)
	if !ok || u == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return u, nil
}

// paramID parses a numeric path parameter. Identifiers are opaque to
// clients but always numeric in the store.
func paramID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// pageParams parses ?page= and ?limit= with defaults and an upper bound.
func pageParams(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// totalPages computes the page count for a paginated listing.
func totalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

// roundRating rounds a raw average to one decimal for display. The raw
// mean stays canonical everywhere below this boundary.
func roundRating(avg *float64) *float64 {
	if avg == nil {
		return nil
	}
	r := math.Round(*avg*10) / 10
	return &r
}

// shapeResource applies response-boundary formatting to an annotated
// resource.
func shapeResource(res *repository.AnnotatedResource) {
	res.AverageRating = roundRating(res.AverageRating)
}

// internalError logs the cause server-side and answers with a stable
// message. Diagnostic detail is attached only outside production.
func internalError(c echo.Context, dev bool, msg string, err error) error {
	log.Printf("%s %s: %s: %v", c.Request().Method, c.Path(), msg, err)
	if dev && err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg, "detail": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}

// userView is the user summary embedded in auth responses. Password hash
// and reset token columns never leave the repository layer.
type userView struct {
	ID        uint64 `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsAdmin   bool   `json:"is_admin"`
}

func viewUser(u *model.User) userView {
	return userView{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsAdmin:   u.IsAdmin,
	}
}
