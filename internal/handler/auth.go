package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/readshelf/readshelf/internal/config"
	"github.com/readshelf/readshelf/internal/queue"
	"github.com/readshelf/readshelf/internal/repository"
	"github.com/readshelf/readshelf/internal/saga"
	queue_publisher "github.com/readshelf/readshelf/internal/service"
	"github.com/readshelf/readshelf/internal/utils"
)

// AuthHandler serves registration, login and the account lifecycle
// endpoints (deactivate, reactivate, password reset).
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users}
}

type registerRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type tokenResponse struct {
	Token   string `json:"token"`
	Expires string `json:"expires"`
}

func (h *AuthHandler) sessionFor(userID uint64, isAdmin bool) (tokenResponse, error) {
	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, userID, isAdmin, h.Cfg.SessionTTLMin)
	if err != nil {
		return tokenResponse{}, err
	}
	return tokenResponse{Token: tok.Token, Expires: tok.Exp.Format(time.RFC3339)}, nil
}

// Register creates a user account and signs the first session token.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	if _, err := mail.ParseAddress(req.Email); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email address"})
	}
	if len(req.Username) < 3 || len(req.Username) > 30 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username must be between 3 and 30 characters"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}
	if req.FirstName == "" || req.LastName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "first and last name are required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Users.Create(ctx, req.Email, req.Username, req.FirstName, req.LastName, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		case errors.Is(err, repository.ErrUsernameExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already taken"})
		}
		return internalError(c, h.Cfg.IsDev(), "register failed", err)
	}

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return internalError(c, h.Cfg.IsDev(), "register failed", err)
	}
	tok, err := h.sessionFor(u.ID, u.IsAdmin)
	if err != nil {
		return internalError(c, h.Cfg.IsDev(), "issue token failed", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": viewUser(&u), "token": tok})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an active account. Unknown email, wrong password and
// deactivated accounts all map to the same Unauthorized answer.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return internalError(c, h.Cfg.IsDev(), "login failed", err)
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	tok, err := h.sessionFor(u.ID, u.IsAdmin)
	if err != nil {
		return internalError(c, h.Cfg.IsDev(), "issue token failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": viewUser(&u), "token": tok})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword stores a hashed reset token and hands the raw token to
// the mail pipeline. Two steps run as a saga: if the publish fails the
// stored token is cleared again, so no valid reset link can exist that
// was never delivered.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return internalError(c, h.Cfg.IsDev(), "forgot password failed", err)
	}
	if !u.IsActive {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	reset, err := utils.NewResetToken(time.Duration(h.Cfg.ResetTTLMin) * time.Minute)
	if err != nil {
		return internalError(c, h.Cfg.IsDev(), "forgot password failed", err)
	}

	event := queue.PasswordResetRequestedEvent{
		Email:       u.Email,
		FirstName:   u.FirstName,
		ResetURL:    h.Cfg.FrontendURL + "/reset-password/" + reset.Raw,
		ExpiresAt:   reset.Exp.Format(time.RFC3339),
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}

	flow := saga.New("forgot-password",
		saga.Step{
			Name: "store-token",
			Apply: func(ctx context.Context) error {
				return h.Users.SetResetToken(ctx, u.ID, utils.HashResetRaw(reset.Raw), reset.Exp)
			},
			Compensate: func(ctx context.Context) error {
				return h.Users.ClearResetToken(ctx, u.ID)
			},
		},
		saga.Step{
			Name: "publish-event",
			Apply: func(ctx context.Context) error {
				return queue_publisher.PublishPasswordReset(ctx, event)
			},
		},
	)
	if err := flow.Run(ctx); err != nil {
		return internalError(c, h.Cfg.IsDev(), "failed to send password reset email", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password reset email sent"})
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

// ResetPassword consumes a reset token from the emailed link and sets a
// new password. Unknown and expired tokens are indistinguishable to the
// caller.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	raw := c.Param("token")
	if raw == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
	}
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByResetToken(ctx, utils.HashResetRaw(raw), time.Now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired token"})
		}
		return internalError(c, h.Cfg.IsDev(), "reset password failed", err)
	}

	if err := h.Users.UpdatePassword(ctx, u.ID, req.Password, h.Cfg.BcryptCost); err != nil {
		return internalError(c, h.Cfg.IsDev(), "reset password failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password has been reset"})
}

// Deactivate flags the caller's own account inactive. Existing tokens keep
// verifying but login is refused until reactivation.
func (h *AuthHandler) Deactivate(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.SetActive(ctx, u.ID, false); err != nil {
		return internalError(c, h.Cfg.IsDev(), "deactivate failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "account deactivated"})
}

type reactivateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Reactivate flips an inactive account back to active after verifying its
// password, and signs a fresh session token so the caller does not need a
// second login round trip.
func (h *AuthHandler) Reactivate(c echo.Context) error {
	var req reactivateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return internalError(c, h.Cfg.IsDev(), "reactivate failed", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if u.IsActive {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "account is already active"})
	}

	if err := h.Users.SetActive(ctx, u.ID, true); err != nil {
		return internalError(c, h.Cfg.IsDev(), "reactivate failed", err)
	}
	u.IsActive = true

	tok, err := h.sessionFor(u.ID, u.IsAdmin)
	if err != nil {
		return internalError(c, h.Cfg.IsDev(), "issue token failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "account reactivated", "user": viewUser(&u), "token": tok})
}

// Me returns the authenticated caller's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user": viewUser(u)})
}
