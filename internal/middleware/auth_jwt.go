package middleware

import (
	"net/http"
	"strings"

	"storefront/internal/auth"
	"storefront/internal/domain/model"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey   = "user_id"   // int64
	CtxUserRoleKey = "user_role" // model.Role
)

// TokenParser verifies a raw bearer token.
type TokenParser interface {
	Parse(raw string) (auth.Claims, error)
}

type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func reject(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, errorResponse{
		Error:     code,
		Message:   msg,
		RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
	})
}

// AuthJWT requires "Authorization: Bearer <token>" and stores the caller's
// id and role on the context.
func AuthJWT(tokens TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authz := c.Request().Header.Get(echo.HeaderAuthorization)
			if authz == "" {
				return reject(c, http.StatusUnauthorized, model.ErrCodeUnauthenticated, "missing bearer token")
			}

			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return reject(c, http.StatusUnauthorized, model.ErrCodeUnauthenticated, "missing bearer token")
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return reject(c, http.StatusUnauthorized, model.ErrCodeUnauthenticated, "missing bearer token")
			}

			claims, err := tokens.Parse(rawToken)
			if err != nil {
				return reject(c, http.StatusUnauthorized, model.ErrCodeUnauthenticated, "invalid or expired token")
			}

			c.Set(CtxUserIDKey, claims.UserID)
			c.Set(CtxUserRoleKey, claims.Role)
			return next(c)
		}
	}
}

// UserID reads what AuthJWT stored.
func UserID(c echo.Context) (int64, bool) {
	id, ok := c.Get(CtxUserIDKey).(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

func Role(c echo.Context) (model.Role, bool) {
	role, ok := c.Get(CtxUserRoleKey).(model.Role)
	if !ok || role == "" {
		return "", false
	}
	return role, true
}
