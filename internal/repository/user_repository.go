package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/readshelf/readshelf/internal/model"
	"github.com/readshelf/readshelf/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var (
	ErrEmailExists    = errors.New("email already exists")
	ErrUsernameExists = errors.New("username already exists")
)

const userColumns = `id, email, username, password_hash, first_name, last_name,
	is_admin, is_active, reset_token_hash, reset_token_expires_at, created_at, updated_at`

// Create inserts a user with a freshly hashed password and returns its ID.
// A unique index violation is translated to ErrEmailExists or
// ErrUsernameExists depending on which index the server reports.
func (r *UserRepo) Create(ctx context.Context, email, username, firstName, lastName, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, username, password_hash, first_name, last_name) VALUES (?,?,?,?,?)",
		email, username, hash, firstName, lastName)
	if err != nil {
		if msg, dup := isDuplicate(err); dup {
			if strings.Contains(msg, "uq_users_username") {
				return 0, ErrUsernameExists
			}
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email regardless of active state.
// Callers decide whether an inactive account is acceptable.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
	return scanUser(row)
}

// GetByID fetches a user by primary key.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// GetByResetToken fetches the active user whose stored reset-token hash
// matches and whose expiry lies in the future. sql.ErrNoRows covers both
// an unknown and an expired token.
func (r *UserRepo) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+` FROM users
		 WHERE reset_token_hash=? AND reset_token_expires_at > ? AND is_active=1 LIMIT 1`,
		tokenHash, now.UTC())
	return scanUser(row)
}

// SetResetToken stores the one-way hash of a reset token and its expiry.
// The raw token is never persisted.
func (r *UserRepo) SetResetToken(ctx context.Context, id uint64, tokenHash string, expires time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_token_hash=?, reset_token_expires_at=? WHERE id=?",
		tokenHash, expires.UTC(), id)
	return err
}

// ClearResetToken removes any pending reset token. Used both after a
// successful reset and as compensation when delivery fails.
func (r *UserRepo) ClearResetToken(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_token_hash=NULL, reset_token_expires_at=NULL WHERE id=?", id)
	return err
}

// UpdatePassword re-hashes and stores a new password, clearing any pending
// reset token in the same statement.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		`UPDATE users SET password_hash=?, reset_token_hash=NULL, reset_token_expires_at=NULL WHERE id=?`,
		hash, id)
	return err
}

// SetActive toggles the is_active flag.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET is_active=? WHERE id=?", active, id)
	return err
}

// scanUser maps one row onto a model.User, converting the nullable reset
// token columns to pointers.
func scanUser(row *sql.Row) (model.User, error) {
	var (
		u       model.User
		tokHash sql.NullString
		tokExp  sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsAdmin, &u.IsActive, &tokHash, &tokExp, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if tokHash.Valid {
		u.ResetTokenHash = &tokHash.String
	}
	if tokExp.Valid {
		t := tokExp.Time
		u.ResetTokenExpiresAt = &t
	}
	return u, nil
}
