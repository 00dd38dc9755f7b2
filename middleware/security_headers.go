// middleware/security_headers.go
package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// SecurityConfig shapes the Content-Security-Policy of API responses.
type SecurityConfig struct {
	AllowedDomains []string
}

func SecurityHeaders(cfg SecurityConfig) echo.MiddlewareFunc {
	csp := buildCSP(cfg)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			h.Set("Content-Security-Policy", csp)
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Cache-Control", "no-store")
			h.Del("Server")
			h.Del("X-Powered-By")
			return next(c)
		}
	}
}

func buildCSP(cfg SecurityConfig) string {
	csp := []string{"default-src 'none'", "frame-ancestors 'none'"}
	if len(cfg.AllowedDomains) > 0 {
		csp = append(csp, "connect-src 'self' "+strings.Join(cfg.AllowedDomains, " "))
	}
	return strings.Join(csp, "; ")
}
