package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

var _ Store = (*LocalStore)(nil)

// LocalStore keeps files in a directory served under PublicPrefix.
type LocalStore struct {
	dir          string
	publicPrefix string
}

// NewLocalStore creates the directory if needed.
func NewLocalStore(dir, publicPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, publicPrefix: publicPrefix}, nil
}

// Dir returns the storage root.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save writes r to name. Existing files are never overwritten.
func (s *LocalStore) Save(ctx context.Context, name string, r io.Reader, mimeType string) (*Object, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	full := filepath.Join(s.dir, name)
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	size, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(full)
		return nil, fmt.Errorf("write file: %w", err)
	}
	return &Object{
		Filename: name,
		Path:     path.Join(s.publicPrefix, name),
		URL:      path.Join(s.publicPrefix, name),
		Size:     size,
		MimeType: mimeType,
	}, nil
}

// Stat returns metadata for name.
func (s *LocalStore) Stat(ctx context.Context, name string) (*Object, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	full := filepath.Join(s.dir, name)
	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	obj := &Object{
		Filename:   name,
		Path:       path.Join(s.publicPrefix, name),
		URL:        path.Join(s.publicPrefix, name),
		Size:       info.Size(),
		ModifiedAt: info.ModTime(),
	}
	if mt, err := mimetype.DetectFile(full); err == nil {
		obj.MimeType = mt.String()
	}
	return obj, nil
}

// Delete removes name.
func (s *LocalStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}
