package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readshelf/readshelf/internal/repository"
)

func ctxWithQuery(query string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestPageParamsDefaults(t *testing.T) {
	page, limit := pageParams(ctxWithQuery(""))
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPageSize, limit)
}

func TestPageParamsClampsNonsense(t *testing.T) {
	page, limit := pageParams(ctxWithQuery("page=-3&limit=0"))
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPageSize, limit)

	page, limit = pageParams(ctxWithQuery("page=4&limit=9999"))
	assert.Equal(t, 4, page)
	assert.Equal(t, maxPageSize, limit)
}

func TestPageParamsPassesValidValues(t *testing.T) {
	page, limit := pageParams(ctxWithQuery("page=2&limit=50"))
	assert.Equal(t, 2, page)
	assert.Equal(t, 50, limit)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, int64(0), totalPages(0, 20))
	assert.Equal(t, int64(1), totalPages(1, 20))
	assert.Equal(t, int64(1), totalPages(20, 20))
	assert.Equal(t, int64(2), totalPages(21, 20))
	assert.Equal(t, int64(0), totalPages(5, 0))
}

func TestRoundRating(t *testing.T) {
	assert.Nil(t, roundRating(nil))

	raw := 4.3333333
	rounded := roundRating(&raw)
	require.NotNil(t, rounded)
	assert.Equal(t, 4.3, *rounded)
	assert.Equal(t, 4.3333333, raw) // input untouched

	up := 4.25
	assert.Equal(t, 4.3, *roundRating(&up))

	whole := 5.0
	assert.Equal(t, 5.0, *roundRating(&whole))
}

func TestShapeResourceRoundsOnlyAtBoundary(t *testing.T) {
	raw := 3.666666
	res := repository.AnnotatedResource{AverageRating: &raw}

	shapeResource(&res)

	require.NotNil(t, res.AverageRating)
	assert.Equal(t, 3.7, *res.AverageRating)
}

func TestParamID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")

	c.SetParamValues("17")
	id, ok := paramID(c, "id")
	assert.True(t, ok)
	assert.Equal(t, uint64(17), id)

	for _, bad := range []string{"", "0", "-1", "abc", "12.5"} {
		c.SetParamValues(bad)
		_, ok := paramID(c, "id")
		assert.False(t, ok, "value %q should be rejected", bad)
	}
}

func TestValidAbsoluteURL(t *testing.T) {
	assert.True(t, validAbsoluteURL("https://example.com/article"))
	assert.True(t, validAbsoluteURL("http://example.com"))

	assert.False(t, validAbsoluteURL("example.com/article"))
	assert.False(t, validAbsoluteURL("/relative/path"))
	assert.False(t, validAbsoluteURL("ftp://example.com/file"))
	assert.False(t, validAbsoluteURL("https://"))
	assert.False(t, validAbsoluteURL("not a url"))
}
