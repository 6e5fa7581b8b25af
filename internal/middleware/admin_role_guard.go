package middleware

import (
	"net/http"

	"storefront/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// AdminRoleGuard must run after AuthJWT.
func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := Role(c)
			if !ok {
				return reject(c, http.StatusUnauthorized, model.ErrCodeUnauthenticated, "unauthenticated")
			}
			if role != model.RoleAdmin {
				return reject(c, http.StatusForbidden, model.ErrCodeForbidden, "admin only")
			}
			return next(c)
		}
	}
}
