package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/readshelf/readshelf/internal/model"
	"github.com/readshelf/readshelf/internal/repository"
)

type subscribeRequest struct {
	Seriousness string `json:"seriousness"`
}

// Subscribe joins a PUBLIC topic. The duplicate case comes from the unique
// index, not a pre-check, so two concurrent calls by the same user resolve
// to exactly one subscription and one Conflict.
func (h *TopicHandler) Subscribe(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	var req subscribeRequest
	if err := c.Bind(&req); err != nil && c.Request().ContentLength > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Seriousness == "" {
		req.Seriousness = model.SeriousnessSerious
	}
	if !model.ValidSeriousness(req.Seriousness) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seriousness level"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Topics.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "topic not found"})
		}
		return internalError(c, h.Cfg.IsDev(), "subscribe failed", err)
	}
	if t.Visibility == model.VisibilityPrivate {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "private topics can only be joined through an invite"})
	}

	if _, err := h.Subs.Create(ctx, id, u.ID, req.Seriousness); err != nil {
		if errors.Is(err, repository.ErrAlreadySubscribed) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already subscribed to this topic"})
		}
		return internalError(c, h.Cfg.IsDev(), "subscribe failed", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":     "subscribed",
		"topic_id":    id,
		"seriousness": req.Seriousness,
	})
}

type seriousnessRequest struct {
	Seriousness string `json:"seriousness"`
}

// UpdateSeriousness changes the caller's label on an existing subscription.
func (h *TopicHandler) UpdateSeriousness(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	var req seriousnessRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !model.ValidSeriousness(req.Seriousness) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seriousness level"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Subs.UpdateSeriousness(ctx, id, u.ID, req.Seriousness); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "subscription not found"})
		}
		return internalError(c, h.Cfg.IsDev(), "update seriousness failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":     "seriousness updated",
		"topic_id":    id,
		"seriousness": req.Seriousness,
	})
}
