// Package middleware adapts authentication and authorization to echo routes.
package middleware

import (
	"errors"
	"fmt"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"wellnesshub/internal/auth"
	apperr "wellnesshub/internal/errors"
)

const (
	principalKey = "principal"
	claimsKey    = "claims"
)

// Authenticate verifies the bearer token and stores the principal and claims on the context.
func Authenticate(verifier *auth.Verifier) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			principal, claims, err := verifier.Verify(c.Request().Context(), token)
			if err != nil {
				return nil, err
			}
			c.Set(principalKey, principal)
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var appErr *apperr.AppError
			if errors.As(err, &appErr) {
				return appErr
			}
			var extractErr *echojwt.TokenExtractionError
			if errors.Is(err, echojwt.ErrJWTMissing) || errors.As(err, &extractErr) {
				return apperr.Unauthenticated("no token provided")
			}
			return apperr.Unauthenticated("invalid token")
		},
	})
}

// PrincipalFrom returns the authenticated principal, or nil on public routes.
func PrincipalFrom(c echo.Context) *auth.Principal {
	p, _ := c.Get(principalKey).(*auth.Principal)
	return p
}

// ClaimsFrom returns the verified token claims.
func ClaimsFrom(c echo.Context) *auth.Claims {
	claims, _ := c.Get(claimsKey).(*auth.Claims)
	return claims
}

// Require rejects requests whose principal lacks capability.
func Require(capability auth.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := auth.Authorize(PrincipalFrom(c), capability).Err(); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// RequireRoles allows any of roles.
func RequireRoles(roles ...auth.Role) echo.MiddlewareFunc {
	return Require(auth.AnyRole(roles...))
}

// RequireEmployee allows admin, manager, staff and support.
func RequireEmployee() echo.MiddlewareFunc {
	return Require(auth.Employee())
}

// RequirePermission allows employees holding perm. Admins always pass.
func RequirePermission(perm auth.Permission) echo.MiddlewareFunc {
	return Require(auth.HasPermission(perm))
}

// RequireElevated is RequirePermission for elevated permissions. It panics at wiring time
// when perm is not elevated.
func RequireElevated(perm auth.Permission) echo.MiddlewareFunc {
	if !perm.Elevated() {
		panic(fmt.Sprintf("middleware: %q is not an elevated permission", perm))
	}
	return RequirePermission(perm)
}
