package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"wellnesshub/internal/auth"
	apperr "wellnesshub/internal/errors"
)

// Audience selects listing defaults.
type Audience int

const (
	// AudiencePublic lists only what visitors may see.
	AudiencePublic Audience = iota
	// AudienceAdmin lists everything.
	AudienceAdmin
)

// ParseID parses a record id. A malformed id is reported as not found.
func ParseID(raw, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperr.NotFound(resource + " not found")
	}
	return id, nil
}

// actorID returns the principal id as a UUID pointer for ownership fields.
func actorID(p *auth.Principal) *uuid.UUID {
	if p == nil {
		return nil
	}
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return nil
	}
	return &id
}

// notFoundOr maps gorm.ErrRecordNotFound to a resource-specific NotFound error.
func notFoundOr(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(resource + " not found")
	}
	return err
}

// conflictOr maps a duplicate key violation to Conflict with message.
func conflictOr(err error, message string) error {
	if err == nil {
		return nil
	}
	if apperr.KindOf(err) == apperr.KindConflict {
		return apperr.Wrap(apperr.KindConflict, message, err)
	}
	return err
}

func nonNegative(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return apperr.Validation(fmt.Sprintf("%s must be greater than or equal to 0", field))
	}
	return nil
}

func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
