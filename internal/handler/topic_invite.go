package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/readshelf/readshelf/internal/model"
	"github.com/readshelf/readshelf/internal/repository"
)

type inviteRequest struct {
	InviteeID uint64 `json:"invitee_id"`
}

// Invite offers topic access to another user. Any subscriber may invite,
// not just the owner; this is how PRIVATE topics grow. The pending check
// is advisory for a friendlier message; the unique index has the final
// word under concurrency.
func (h *TopicHandler) Invite(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	var req inviteRequest
	if err := c.Bind(&req); err != nil || req.InviteeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invitee_id is required"})
	}
	if req.InviteeID == u.ID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "you cannot invite yourself"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Topics.GetByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "topic not found"})
		}
		return internalError(c, h.Cfg.IsDev(), "invite failed", err)
	}

	if _, err := h.Subs.Get(ctx, id, u.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "you must be subscribed to invite others"})
		}
		return internalError(c, h.Cfg.IsDev(), "invite failed", err)
	}

	invitee, err := h.Users.GetByID(ctx, req.InviteeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return internalError(c, h.Cfg.IsDev(), "invite failed", err)
	}

	if _, err := h.Subs.Get(ctx, id, invitee.ID); err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "user is already subscribed to this topic"})
	} else if !errors.Is(err, sql.ErrNoRows) {
		return internalError(c, h.Cfg.IsDev(), "invite failed", err)
	}

	pending, err := h.Invites.HasPending(ctx, id, invitee.ID)
	if err != nil {
		return internalError(c, h.Cfg.IsDev(), "invite failed", err)
	}
	if pending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "invite already sent to this user"})
	}

	inviteID, err := h.Invites.Create(ctx, id, u.ID, invitee.ID)
	if err != nil {
		if errors.Is(err, repository.ErrInviteExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "invite already sent to this user"})
		}
		return internalError(c, h.Cfg.IsDev(), "invite failed", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":   "invite sent",
		"invite_id": inviteID,
	})
}

// PendingInvites lists the PENDING invites addressed to the caller.
func (h *TopicHandler) PendingInvites(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Invites.ListPendingByInvitee(ctx, u.ID)
	if err != nil {
		return internalError(c, h.Cfg.IsDev(), "list invites failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"invites": rows})
}

type respondInviteRequest struct {
	Accept bool `json:"accept"`
}

// RespondInvite accepts or rejects a pending invite. Accept first creates
// the subscription (a duplicate there is benign, the membership already
// exists), then flips the status; the PENDING guard in the status update
// makes a concurrent double-respond lose cleanly.
func (h *TopicHandler) RespondInvite(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	var req respondInviteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	inv, err := h.Invites.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invite not found"})
		}
		return internalError(c, h.Cfg.IsDev(), "respond to invite failed", err)
	}
	if inv.InviteeID != u.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "this invite is not for you"})
	}
	if inv.Status != model.InvitePending {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invite already responded to"})
	}

	if !req.Accept {
		if err := h.Invites.MarkResponded(ctx, id, model.InviteRejected); err != nil {
			if errors.Is(err, repository.ErrInviteResponded) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invite already responded to"})
			}
			return internalError(c, h.Cfg.IsDev(), "respond to invite failed", err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "invite rejected"})
	}

	if _, err := h.Subs.Create(ctx, inv.TopicID, u.ID, model.SeriousnessSerious); err != nil &&
		!errors.Is(err, repository.ErrAlreadySubscribed) {
		return internalError(c, h.Cfg.IsDev(), "respond to invite failed", err)
	}
	if err := h.Invites.MarkResponded(ctx, id, model.InviteAccepted); err != nil {
		if errors.Is(err, repository.ErrInviteResponded) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invite already responded to"})
		}
		return internalError(c, h.Cfg.IsDev(), "respond to invite failed", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":     "invite accepted",
		"topic_id":    inv.TopicID,
		"seriousness": model.SeriousnessSerious,
	})
}
