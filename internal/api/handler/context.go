package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/placementcell/recruit-portal/internal/api/middleware"
	"github.com/placementcell/recruit-portal/internal/core/domain"
)

// callerIdentity returns the identity injected by the Auth middleware and
// fails fast when the route was mounted without it.
func callerIdentity(c echo.Context) (*domain.Identity, error) {
	id := middleware.IdentityFrom(c)
	if !id.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	return id, nil
}
