package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleIsSingleUpsertStatement(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReadingItemRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE is_read = NOT is_read")).
		WithArgs(uint64(5), uint64(7)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT is_read FROM reading_items")).
		WithArgs(uint64(5), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"is_read"}).AddRow(true))

	isRead, err := repo.Toggle(context.Background(), 5, 7)
	require.NoError(t, err)
	assert.True(t, isRead)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingUpsertReplacesScore(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRatingRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE score = VALUES(score)")).
		WithArgs(uint64(5), uint64(7), uint8(4)).
		WillReturnResult(sqlmock.NewResult(1, 2)) // 2 affected rows = updated path

	require.NoError(t, repo.Upsert(context.Background(), 5, 7, 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingStatsRawMean(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRatingRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT AVG(score), COUNT(*) FROM resource_ratings")).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"avg", "count"}).AddRow(4.3333, 3))

	avg, total, err := repo.Stats(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 4.3333, *avg, 1e-9) // raw mean, no rounding here
	assert.Equal(t, int64(3), total)
}

func TestRatingStatsNoRatings(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRatingRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT AVG(score), COUNT(*) FROM resource_ratings")).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"avg", "count"}).AddRow(nil, 0))

	avg, total, err := repo.Stats(context.Background(), 5)
	require.NoError(t, err)
	assert.Nil(t, avg)
	assert.Equal(t, int64(0), total)
}

func TestSubscriptionCreateTranslatesDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSubscriptionRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO subscriptions")).
		WithArgs(uint64(3), uint64(7), "SERIOUS").
		WillReturnError(dupKey("uq_subscriptions_topic_user"))

	_, err := repo.Create(context.Background(), 3, 7, "SERIOUS")
	assert.ErrorIs(t, err, ErrAlreadySubscribed)
}

func TestMarkRespondedLosesDoubleResponse(t *testing.T) {
	db, mock := newMock(t)
	repo := NewInviteRepo(db)

	// Zero affected rows: the PENDING guard did not match. The follow-up
	// read finds the invite already ACCEPTED.
	mock.ExpectExec(regexp.QuoteMeta("SET status=? WHERE id=? AND status='PENDING'")).
		WithArgs("REJECTED", uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("FROM topic_invites WHERE id=?")).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "topic_id", "inviter_id", "invitee_id", "status", "created_at",
		}).AddRow(11, 3, 1, 2, "ACCEPTED", time.Now()))

	err := repo.MarkResponded(context.Background(), 11, "REJECTED")
	assert.ErrorIs(t, err, ErrInviteResponded)
	assert.NoError(t, mock.ExpectationsWereMet())
}
