// Package storage persists uploaded images.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

// ErrNotFound is returned when a stored file does not exist.
var ErrNotFound = errors.New("file not found")

// ErrInvalidName is returned for names that could escape the storage root.
var ErrInvalidName = errors.New("invalid filename")

// Object describes a stored file.
type Object struct {
	Filename   string    `json:"filename"`
	Path       string    `json:"path"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mimetype,omitempty"`
	ModifiedAt time.Time `json:"modifiedAt,omitempty"`
}

// Store saves, inspects and removes files by name.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader, mimeType string) (*Object, error)
	Stat(ctx context.Context, name string) (*Object, error)
	Delete(ctx context.Context, name string) error
}

// ValidateName rejects empty names and any path traversal sequence.
func ValidateName(name string) error {
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	return nil
}
