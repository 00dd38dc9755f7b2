// middleware/cors_middleware.go
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

var devOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

// CORS allows the configured origins, plus local dev servers outside
// production. Credentials are allowed so the auth cookies travel.
func CORS(origins []string, production bool) echo.MiddlewareFunc {
	allowed := append([]string{}, origins...)
	if !production {
		allowed = append(allowed, devOrigins...)
	}
	return echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins:     allowed,
		AllowMethods:     []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		ExposeHeaders:    []string{echo.HeaderContentLength},
		MaxAge:           86400,
	})
}
