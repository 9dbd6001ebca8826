package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dentalcare/dentalcare/internal/platform/apperr"
)

// TokenValidator verifies a raw bearer token.
type TokenValidator interface {
	Validate(token string) (*Claims, error)
}

// Authenticate resolves the identity carried by an Authorization header
// value. It never touches the credential store, so a token for a deleted
// user stays usable until it expires.
func Authenticate(v TokenValidator, authHeader string) (Identity, error) {
	if authHeader == "" {
		return Identity{}, apperr.Unauthenticated("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return Identity{}, apperr.Unauthenticated("invalid authorization format")
	}

	claims, err := v.Validate(strings.TrimSpace(parts[1]))
	if err != nil {
		return Identity{}, err
	}
	return claims.Identity(), nil
}

// Gate rejects requests without a valid bearer token unless skipper
// exempts them. The resolved identity is placed on the request context for
// handlers to pass into service calls.
func Gate(v TokenValidator, skipper func(echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper != nil && skipper(c) {
				return next(c)
			}

			id, err := Authenticate(v, c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}

			c.SetRequest(c.Request().WithContext(WithIdentity(c.Request().Context(), id)))
			return next(c)
		}
	}
}
