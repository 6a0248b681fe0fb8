package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/placementcell/recruit-portal/internal/core/domain"
)

// IdentityKey is the echo context key holding the caller's *domain.Identity.
const IdentityKey = "identity"

// Auth validates the bearer JWT and stores the decoded identity on the context.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			id, ok := identityFromClaims(claims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			c.Set(IdentityKey, id)

			return next(c)
		}
	}
}

func identityFromClaims(claims jwt.MapClaims) (*domain.Identity, bool) {
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	roleName, _ := claims["role"].(string)
	role, ok := domain.ParseRole(roleName)
	if sub == "" || !ok {
		return nil, false
	}
	return &domain.Identity{AccountID: sub, Email: email, Role: role}, true
}

// IdentityFrom returns the identity stored by Auth, or nil.
func IdentityFrom(c echo.Context) *domain.Identity {
	id, _ := c.Get(IdentityKey).(*domain.Identity)
	return id
}
