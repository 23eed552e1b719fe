package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestHTTPStatus(t *testing.T) {
	tests := map[Kind]int{
		KindUnauthenticated:  http.StatusUnauthorized,
		KindForbidden:        http.StatusForbidden,
		KindValidation:       http.StatusBadRequest,
		KindInvalidOperation: http.StatusBadRequest,
		KindNotFound:         http.StatusNotFound,
		KindConflict:         http.StatusConflict,
		KindPayloadTooLarge:  http.StatusRequestEntityTooLarge,
		KindUnavailable:      http.StatusServiceUnavailable,
		KindTimeout:          http.StatusGatewayTimeout,
		KindInternal:         http.StatusInternalServerError,
	}
	for kind, status := range tests {
		assert.Equal(t, status, HTTPStatus(kind), kind)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
	}{
		{name: "app error passes through", err: fmt.Errorf("wrap: %w", Forbidden("no")), kind: KindForbidden},
		{name: "record not found", err: fmt.Errorf("find: %w", gorm.ErrRecordNotFound), kind: KindNotFound},
		{name: "mysql duplicate", err: &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, kind: KindConflict},
		{name: "gorm duplicate", err: gorm.ErrDuplicatedKey, kind: KindConflict},
		{name: "deadline", err: context.DeadlineExceeded, kind: KindTimeout},
		{name: "bad connection", err: mysql.ErrInvalidConn, kind: KindUnavailable},
		{name: "anything else", err: errors.New("boom"), kind: KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
		})
	}

	assert.Nil(t, Normalize(nil))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestAppErrorIs(t *testing.T) {
	err := fmt.Errorf("delete: %w", ErrLastAdmin)
	assert.ErrorIs(t, err, ErrLastAdmin)
	assert.NotErrorIs(t, err, ErrSelfDelete)
}

func TestToErrorResponse(t *testing.T) {
	err := Wrap(KindInternal, "internal server error", errors.New("db exploded"))

	prod := err.ToErrorResponse(false)
	assert.False(t, prod.Success)
	assert.Equal(t, "INTERNAL_ERROR", prod.Code)
	assert.Empty(t, prod.Stack)

	dev := err.ToErrorResponse(true)
	assert.Contains(t, dev.Stack, "db exploded")
}
