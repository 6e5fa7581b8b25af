package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/auth"
	"storefront/internal/domain/model"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedEcho(tokens *auth.TokenService) *echo.Echo {
	e := echo.New()
	e.Use(RequestID())

	who := func(c echo.Context) error {
		id, _ := UserID(c)
		role, _ := Role(c)
		return c.JSON(http.StatusOK, map[string]interface{}{"user_id": id, "role": role})
	}

	g := e.Group("", AuthJWT(tokens))
	g.GET("/me", who)
	g.GET("/admin", who, AdminRoleGuard())
	return e
}

func TestAuthJWT(t *testing.T) {
	tokens := auth.NewTokenService("secret", time.Hour)
	e := newProtectedEcho(tokens)

	userToken, _, err := tokens.Issue(7, model.RoleUser, time.Now())
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + userToken, http.StatusUnauthorized},
		{"empty token", "Bearer  ", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"ok", "Bearer " + userToken, http.StatusOK},
		{"lowercase scheme", "bearer " + userToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusUnauthorized {
				var body errorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, model.ErrCodeUnauthenticated, body.Error)
				assert.NotEmpty(t, body.RequestID)
			} else {
				assert.Contains(t, rec.Body.String(), `"user_id":7`)
			}
		})
	}
}

func TestAdminRoleGuard(t *testing.T) {
	tokens := auth.NewTokenService("secret", time.Hour)
	e := newProtectedEcho(tokens)

	userToken, _, err := tokens.Issue(1, model.RoleUser, time.Now())
	require.NoError(t, err)
	adminToken, _, err := tokens.Issue(2, model.RoleAdmin, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+userToken)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), model.ErrCodeForbidden)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoleGuard_WithoutAuth(t *testing.T) {
	e := echo.New()
	e.GET("/admin", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, AdminRoleGuard())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	e := echo.New()
	e.Use(RequestID(), RequestLogger(log))
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTeapot, "short and stout") })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-123")
	e.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(echo.HeaderXRequestID))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "req-123", line["request_id"])
	assert.Equal(t, float64(200), line["status"])
	assert.Equal(t, "/ok", line["route"])

	buf.Reset()
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, float64(http.StatusTeapot), line["status"])
	assert.NotEmpty(t, line["request_id"])
}
