package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readshelf/readshelf/internal/config"
	"github.com/readshelf/readshelf/internal/model"
)

func TestRateRejectsOutOfRangeScore(t *testing.T) {
	h := &ResourceHandler{Cfg: config.Config{Env: "test"}}

	for _, score := range []int{0, -1, 6, 100} {
		t.Run(fmt.Sprintf("score=%d", score), func(t *testing.T) {
			c, rec := postJSON(t, "/v1/resources/5/rate", fmt.Sprintf(`{"score":%d}`, score))
			c.Set("user", &model.User{ID: 1})
			c.SetParamNames("id")
			c.SetParamValues("5")

			require.NoError(t, h.Rate(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "score must be between 1 and 5")
		})
	}
}

func TestRateRejectsInvalidID(t *testing.T) {
	h := &ResourceHandler{Cfg: config.Config{Env: "test"}}

	c, rec := postJSON(t, "/v1/resources/abc/rate", `{"score":3}`)
	c.Set("user", &model.User{ID: 1})
	c.SetParamNames("id")
	c.SetParamValues("abc")

	require.NoError(t, h.Rate(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid id")
}
