package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ToggleRead flips the caller's read flag on a resource. The flip is a
// single atomic upsert in the store, so hammering the endpoint from two
// tabs still lands on a consistent value.
func (h *ResourceHandler) ToggleRead(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Res.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
		}
		return internalError(c, h.Cfg.IsDev(), "toggle read failed", err)
	}
	if ok, err := h.requireSubscription(c, ctx, res.TopicID, u.ID, "track this resource"); !ok {
		return err
	}

	isRead, err := h.Readings.Toggle(ctx, id, u.ID)
	if err != nil {
		return internalError(c, h.Cfg.IsDev(), "toggle read failed", err)
	}

	msg := "resource marked as unread"
	if isRead {
		msg = "resource marked as read"
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg, "is_read": isRead})
}

type rateRequest struct {
	Score int `json:"score"`
}

// Rate upserts the caller's 1..5 score and returns the fresh aggregate.
// Re-rating replaces the previous score; the rater count stays put.
func (h *ResourceHandler) Rate(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	var req rateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Score < 1 || req.Score > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "score must be between 1 and 5"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Res.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
		}
		return internalError(c, h.Cfg.IsDev(), "rate resource failed", err)
	}
	if ok, err := h.requireSubscription(c, ctx, res.TopicID, u.ID, "rate this resource"); !ok {
		return err
	}

	if err := h.Ratings.Upsert(ctx, id, u.ID, uint8(req.Score)); err != nil {
		return internalError(c, h.Cfg.IsDev(), "rate resource failed", err)
	}
	avg, total, err := h.Ratings.Stats(ctx, id)
	if err != nil {
		return internalError(c, h.Cfg.IsDev(), "rate resource failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":        "rating saved",
		"user_rating":    req.Score,
		"average_rating": roundRating(avg),
		"total_ratings":  total,
	})
}
