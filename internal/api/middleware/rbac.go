package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/placementcell/recruit-portal/internal/core/access"
	"github.com/placementcell/recruit-portal/internal/core/domain"
)

// RBAC admits callers holding one of allowedRoles.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := access.AuthorizeAny(IdentityFrom(c), allowedRoles...)
			switch {
			case errors.Is(err, domain.ErrUnauthenticated):
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			case err != nil:
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
