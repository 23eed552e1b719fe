package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

const headerCacheControl = "Cache-Control"

// PublicCache marks successful GET responses as cacheable for maxAge seconds.
func PublicCache(maxAge int) echo.MiddlewareFunc {
	value := fmt.Sprintf("public, max-age=%d", maxAge)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method == http.MethodGet {
				c.Response().Header().Set(headerCacheControl, value)
			} else {
				c.Response().Header().Set(headerCacheControl, "no-store")
			}
			return next(c)
		}
	}
}

// NoStore disables caching of authenticated and mutating responses.
func NoStore() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(headerCacheControl, "no-store")
			return next(c)
		}
	}
}
