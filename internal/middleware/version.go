package middleware

import (
	"github.com/labstack/echo/v4"
)

// VersionMiddleware builds versioned route groups and stamps every
// response with the version it was served under.
type VersionMiddleware struct {
	current string
}

// NewVersionMiddleware creates a new version middleware instance
func NewVersionMiddleware() *VersionMiddleware {
	return &VersionMiddleware{current: "v1"}
}

// VersionHeader sets the X-API-Version response header
func (vm *VersionMiddleware) VersionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("X-API-Version", version)
			return next(c)
		}
	}
}

// VersionRoute creates a version-specific route group with the version
// header applied to every route registered under it.
func (vm *VersionMiddleware) VersionRoute(e *echo.Echo, version string) *echo.Group {
	group := e.Group("/" + version)
	group.Use(vm.VersionHeader(version))
	return group
}
