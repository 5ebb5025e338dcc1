package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func dupKey(index string) *mysql.MySQLError {
	return &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key '" + index + "'"}
}

func userRows(id uint64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "email", "username", "password_hash", "first_name", "last_name",
		"is_admin", "is_active", "reset_token_hash", "reset_token_expires_at",
		"created_at", "updated_at",
	}).AddRow(id, "ada@example.com", "ada", "$2a$04$hash", "Ada", "Lovelace",
		false, true, nil, nil, now, now)
}

func TestUserCreateTranslatesDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(dupKey("uq_users_email"))

	_, err := repo.Create(context.Background(), "Ada@Example.com", "ada", "Ada", "Lovelace", "password1", 4)
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateTranslatesDuplicateUsername(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(dupKey("uq_users_username"))

	_, err := repo.Create(context.Background(), "ada@example.com", "ada", "Ada", "Lovelace", "password1", 4)
	assert.ErrorIs(t, err, ErrUsernameExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateReturnsInsertID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnResult(sqlmock.NewResult(42, 1))

	id, err := repo.Create(context.Background(), "ada@example.com", "ada", "Ada", "Lovelace", "password1", 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEmailNormalizesAddress(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WithArgs("ada@example.com").
		WillReturnRows(userRows(9))

	u, err := repo.GetByEmail(context.Background(), "  Ada@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, uint64(9), u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByResetTokenUnknownToken(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery("FROM users").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByResetToken(context.Background(), "deadbeef", time.Now())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
