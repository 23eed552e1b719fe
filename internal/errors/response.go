package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorResponse is the JSON envelope for every error response.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Code    string       `json:"code,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
	Stack   string       `json:"stack,omitempty"`
}

// ToErrorResponse renders the error envelope. Diagnostic detail is included only when debug is set.
func (e *AppError) ToErrorResponse(debug bool) ErrorResponse {
	resp := ErrorResponse{
		Success: false,
		Message: e.Message,
		Code:    string(e.Kind),
		Errors:  e.Details,
	}
	if debug && e.Err != nil {
		resp.Stack = fmt.Sprintf("%+v", e.Err)
	}
	return resp
}

// HTTPErrorHandler returns an echo.HTTPErrorHandler that writes the error envelope.
func HTTPErrorHandler(logger *zap.Logger, production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		appErr := fromEcho(err)
		status := appErr.StatusCode()
		if status >= http.StatusInternalServerError {
			log := logger
			if scoped, ok := c.Get("logger").(*zap.Logger); ok {
				log = scoped
			}
			log.Error("request failed",
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Error(err),
			)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, appErr.ToErrorResponse(!production))
		}
		if writeErr != nil {
			logger.Warn("write error response", zap.Error(writeErr))
		}
	}
}

func fromEcho(err error) *AppError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if inner, ok := he.Internal.(*AppError); ok {
			return inner
		}
		message := http.StatusText(he.Code)
		switch m := he.Message.(type) {
		case string:
			message = m
		case ErrorResponse:
			message = m.Message
		case error:
			message = m.Error()
		}
		return &AppError{Kind: kindForStatus(he.Code), Message: message, Err: he.Internal}
	}
	return Normalize(err)
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusUnauthorized:
		return KindUnauthenticated
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusRequestEntityTooLarge:
		return KindPayloadTooLarge
	case http.StatusServiceUnavailable:
		return KindUnavailable
	case http.StatusGatewayTimeout:
		return KindTimeout
	default:
		return KindInternal
	}
}
