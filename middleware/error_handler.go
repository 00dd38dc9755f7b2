// middleware/error_handler.go
package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/salus-app/salus_backend/apierror"
	"github.com/salus-app/salus_backend/models"
	"github.com/salus-app/salus_backend/security"
)

// ErrorHandler renders every error as the JSON failure envelope. The cause
// chain is included as "stack" outside production.
func ErrorHandler(production bool, logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		body := envelope(err)
		if !production {
			body.Stack = apierror.Chain(err)
		}

		fields := []zap.Field{
			zap.Int("status", body.StatusCode),
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		}
		if body.StatusCode >= http.StatusInternalServerError {
			fields = append(fields, zap.Any("headers", security.SanitizeHeaders(c.Request().Header)))
			logger.Error("request failed", fields...)
		} else {
			logger.Debug("request rejected", fields...)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(body.StatusCode)
		} else {
			werr = c.JSON(body.StatusCode, body)
		}
		if werr != nil {
			logger.Error("write error response", zap.Error(werr))
		}
	}
}

func envelope(err error) models.ErrorResponse {
	body := models.ErrorResponse{Errors: []string{}}

	var he *echo.HTTPError
	if apiErr, ok := apierror.As(err); ok {
		body.StatusCode = apiErr.StatusCode()
		body.Message = apiErr.Message
		if len(apiErr.Fields) > 0 {
			body.Errors = apiErr.Fields
		}
	} else if errors.As(err, &he) {
		body.StatusCode = he.Code
		body.Message = fmt.Sprint(he.Message)
	} else {
		body.StatusCode = http.StatusInternalServerError
		body.Message = "Something went wrong"
	}

	if body.StatusCode >= http.StatusInternalServerError && body.Message == "" {
		body.Message = http.StatusText(body.StatusCode)
	}
	return body
}
