package middleware

import (
	"github.com/labstack/echo/v4"
)

const HeaderAPIVersion = "X-API-Version"

// VersionHeader stamps every response with the running service version.
func VersionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(HeaderAPIVersion, version)
			return next(c)
		}
	}
}
