package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// Kind classifies an error for transport mapping.
type Kind string

const (
	KindUnauthenticated  Kind = "UNAUTHENTICATED"
	KindForbidden        Kind = "FORBIDDEN"
	KindValidation       Kind = "VALIDATION_ERROR"
	KindNotFound         Kind = "NOT_FOUND"
	KindConflict         Kind = "CONFLICT"
	KindInvalidOperation Kind = "INVALID_OPERATION"
	KindPayloadTooLarge  Kind = "PAYLOAD_TOO_LARGE"
	KindUnavailable      Kind = "SERVICE_UNAVAILABLE"
	KindTimeout          Kind = "TIMEOUT"
	KindInternal         Kind = "INTERNAL_ERROR"
)

// mysqlDuplicateEntry is the MySQL server error number for unique key violations.
const mysqlDuplicateEntry = 1062

var (
	// ErrEmailTaken is returned when an account with the same email exists.
	ErrEmailTaken = Conflict("an account with this email already exists")
	// ErrLastAdmin is returned when deleting the only remaining admin.
	ErrLastAdmin = InvalidOperation("cannot delete the last admin")
	// ErrSelfDelete is returned when a caller tries to delete their own account.
	ErrSelfDelete = InvalidOperation("cannot delete your own account")
	// ErrInvalidMasterCode is returned when the supplied master code does not match.
	ErrInvalidMasterCode = Forbidden("invalid master code")
	// ErrInsufficientPermissions is returned when a principal lacks a permission.
	ErrInsufficientPermissions = Forbidden("insufficient permissions")
)

// FieldError describes a single failed field constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError is an error tagged with a Kind and a client-safe message.
type AppError struct {
	Kind    Kind
	Message string
	Details []FieldError
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another AppError with the same kind and message, so sentinels work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

// StatusCode returns the HTTP status for the error kind.
func (e *AppError) StatusCode() int {
	return HTTPStatus(e.Kind)
}

// New creates an AppError of the given kind.
func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Wrap attaches a cause to a new AppError.
func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func Unauthenticated(message string) *AppError  { return New(KindUnauthenticated, message) }
func Forbidden(message string) *AppError        { return New(KindForbidden, message) }
func Validation(message string) *AppError       { return New(KindValidation, message) }
func NotFound(message string) *AppError         { return New(KindNotFound, message) }
func Conflict(message string) *AppError         { return New(KindConflict, message) }
func InvalidOperation(message string) *AppError { return New(KindInvalidOperation, message) }
func PayloadTooLarge(message string) *AppError  { return New(KindPayloadTooLarge, message) }
func Unavailable(message string) *AppError      { return New(KindUnavailable, message) }

// HTTPStatus maps an error kind to an HTTP status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation, KindInvalidOperation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindUnavailable:
		return http.StatusServiceUnavailable
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// KindOf returns the kind of err after normalization, or "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return Normalize(err).Kind
}

// Normalize maps lower-level errors to the nearest AppError.
func Normalize(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return ValidationFromFields(validationErrs)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Wrap(KindNotFound, "resource not found", err)
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return Wrap(KindConflict, "duplicate value for a unique field", err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return Wrap(KindConflict, "duplicate value for a unique field", err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(KindTimeout, "request timed out", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, mysql.ErrInvalidConn) {
		return Wrap(KindUnavailable, "database unavailable", err)
	}

	return Wrap(KindInternal, "internal server error", err)
}

// ValidationFromFields converts validator errors into a Validation AppError with per-field details.
func ValidationFromFields(fieldErrs validator.ValidationErrors) *AppError {
	details := make([]FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, FieldError{
			Field:   fe.Field(),
			Message: describe(fe),
		})
	}
	return &AppError{
		Kind:    KindValidation,
		Message: "validation failed",
		Details: details,
		Err:     fieldErrs,
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "email":
		return fe.Field() + " must be a valid email"
	case "url":
		return fe.Field() + " must be a valid URL"
	case "role":
		return fe.Field() + " is not a valid role"
	case "permission":
		return fe.Field() + " contains an unknown permission"
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
