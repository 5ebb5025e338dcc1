package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readshelf/readshelf/internal/config"
)

func postJSON(t *testing.T, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// Input validation runs before any store access, so these cases need no
// database behind the handler.
func TestRegisterValidation(t *testing.T) {
	h := NewAuthHandler(config.Config{Env: "test"}, nil)

	cases := []struct {
		name string
		body string
		want string
	}{
		{"bad email", `{"email":"not-an-email","username":"ada","password":"password1","first_name":"Ada","last_name":"L"}`, "invalid email"},
		{"short username", `{"email":"a@b.com","username":"ab","password":"password1","first_name":"Ada","last_name":"L"}`, "username"},
		{"short password", `{"email":"a@b.com","username":"ada","password":"short","first_name":"Ada","last_name":"L"}`, "password"},
		{"missing name", `{"email":"a@b.com","username":"ada","password":"password1","first_name":"","last_name":""}`, "name"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := postJSON(t, "/v1/auth/register", tc.body)
			require.NoError(t, h.Register(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.want)
		})
	}
}

func TestResetPasswordRequiresToken(t *testing.T) {
	h := NewAuthHandler(config.Config{Env: "test"}, nil)

	c, rec := postJSON(t, "/v1/auth/reset-password/", `{"password":"newpassword1"}`)
	c.SetParamNames("token")
	c.SetParamValues("")

	require.NoError(t, h.ResetPassword(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or expired token")
}

func TestResetPasswordRejectsShortPassword(t *testing.T) {
	h := NewAuthHandler(config.Config{Env: "test"}, nil)

	c, rec := postJSON(t, "/v1/auth/reset-password/tok", `{"password":"short"}`)
	c.SetParamNames("token")
	c.SetParamValues("sometoken")

	require.NoError(t, h.ResetPassword(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "password must be at least 8 characters")
}
