package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readshelf/readshelf/internal/config"
	"github.com/readshelf/readshelf/internal/model"
	"github.com/readshelf/readshelf/internal/repository"
)

func newMockedResourceHandler(t *testing.T) (*ResourceHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &ResourceHandler{
		Cfg:      config.Config{Env: "test"},
		Topics:   repository.NewTopicRepo(db),
		Subs:     repository.NewSubscriptionRepo(db),
		Res:      repository.NewResourceRepo(db),
		Readings: repository.NewReadingItemRepo(db),
		Ratings:  repository.NewRatingRepo(db),
	}, mock
}

func resourceRow(id, topicID uint64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "topic_id", "creator_id", "description", "type",
		"url", "file_path", "created_at", "updated_at",
	}).AddRow(id, topicID, 2, "an article", "LINK", "https://example.com", nil, now, now)
}

func getRequest(t *testing.T, path string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// expectNoSubscription arranges the membership lookup to come back empty.
func expectNoSubscription(mock sqlmock.Sqlmock, topicID, userID uint64) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM subscriptions WHERE topic_id=? AND user_id=?")).
		WithArgs(topicID, userID).
		WillReturnError(sql.ErrNoRows)
}

// An unsubscribed caller must get a 403 and nothing else: no read marker
// row may be written and no success payload may follow the error body.
func TestToggleReadRejectsUnsubscribedCallerWithoutWriting(t *testing.T) {
	h, mock := newMockedResourceHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM resources WHERE id=?")).
		WithArgs(uint64(5)).
		WillReturnRows(resourceRow(5, 3))
	expectNoSubscription(mock, 3, 7)

	c, rec := postJSON(t, "/v1/resources/5/read", "")
	c.Set("user", &model.User{ID: 7})
	c.SetParamNames("id")
	c.SetParamValues("5")

	require.NoError(t, h.ToggleRead(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "you must be subscribed to track this resource")
	assert.NotContains(t, rec.Body.String(), "is_read")
	// Only the two reads above may have hit the store; an INSERT would
	// surface as an unmet or unexpected expectation.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateRejectsUnsubscribedCallerWithoutWriting(t *testing.T) {
	h, mock := newMockedResourceHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM resources WHERE id=?")).
		WithArgs(uint64(5)).
		WillReturnRows(resourceRow(5, 3))
	expectNoSubscription(mock, 3, 7)

	c, rec := postJSON(t, "/v1/resources/5/rate", `{"score":4}`)
	c.Set("user", &model.User{ID: 7})
	c.SetParamNames("id")
	c.SetParamValues("5")

	require.NoError(t, h.Rate(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "you must be subscribed to rate this resource")
	assert.NotContains(t, rec.Body.String(), "average_rating")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRejectsUnsubscribedCaller(t *testing.T) {
	h, mock := newMockedResourceHandler(t)

	expectNoSubscription(mock, 3, 7)

	c, rec := getRequest(t, "/v1/topics/3/resources")
	c.Set("user", &model.User{ID: 7})
	c.SetParamNames("id")
	c.SetParamValues("3")

	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "you must be subscribed to view resources")
	assert.NotContains(t, rec.Body.String(), "resources\"")
	assert.NoError(t, mock.ExpectationsWereMet())
}
