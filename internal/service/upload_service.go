package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperr "wellnesshub/internal/errors"
	"wellnesshub/internal/storage"
)

// AllowedImageTypes is the upload MIME allow-list.
var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// UploadInput is one received file.
type UploadInput struct {
	OriginalName string
	DeclaredType string
	Size         int64
	Body         io.Reader
}

// UploadResult describes a stored image.
type UploadResult struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimetype"`
	URL          string `json:"url"`
}

// UploadService validates and stores images.
type UploadService interface {
	Upload(ctx context.Context, in UploadInput) (*UploadResult, error)
	Delete(ctx context.Context, filename string) error
	Info(ctx context.Context, filename string) (*storage.Object, error)
	MaxFileSize() int64
}

type uploadService struct {
	store   storage.Store
	maxSize int64
	logger  *zap.Logger
}

// NewUploadService creates an upload service writing to store.
func NewUploadService(store storage.Store, maxSize int64, logger *zap.Logger) UploadService {
	return &uploadService{store: store, maxSize: maxSize, logger: logger}
}

func (s *uploadService) MaxFileSize() int64 {
	return s.maxSize
}

// Upload checks size, declared type and sniffed content before anything is written.
func (s *uploadService) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if in.Size > s.maxSize {
		return nil, s.tooLarge()
	}
	declared := normalizeMime(in.DeclaredType)
	if !AllowedImageTypes[declared] {
		return nil, apperr.Validation("only image files are allowed (jpeg, jpg, png, gif, webp)")
	}

	data, err := io.ReadAll(io.LimitReader(in.Body, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, s.tooLarge()
	}

	detected := mimetype.Detect(data)
	sniffed := normalizeMime(detected.String())
	if !AllowedImageTypes[sniffed] {
		return nil, apperr.Validation("file content is not an allowed image type")
	}

	name := uuid.NewString() + detected.Extension()
	obj, err := s.store.Save(ctx, name, bytes.NewReader(data), sniffed)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	s.logger.Info("image uploaded",
		zap.String("filename", obj.Filename),
		zap.Int64("size", obj.Size),
		zap.String("mimetype", sniffed),
	)
	return &UploadResult{
		Filename:     obj.Filename,
		OriginalName: in.OriginalName,
		Path:         obj.Path,
		Size:         obj.Size,
		MimeType:     sniffed,
		URL:          obj.URL,
	}, nil
}

// Delete removes a stored image. Names with path separators or ".." are rejected first.
func (s *uploadService) Delete(ctx context.Context, filename string) error {
	if err := storage.ValidateName(filename); err != nil {
		return apperr.Validation("invalid filename")
	}
	if err := s.store.Delete(ctx, filename); err != nil {
		return storageErr(err)
	}
	s.logger.Info("image deleted", zap.String("filename", filename))
	return nil
}

// Info returns metadata for a stored image.
func (s *uploadService) Info(ctx context.Context, filename string) (*storage.Object, error) {
	if err := storage.ValidateName(filename); err != nil {
		return nil, apperr.Validation("invalid filename")
	}
	obj, err := s.store.Stat(ctx, filename)
	if err != nil {
		return nil, storageErr(err)
	}
	return obj, nil
}

func (s *uploadService) tooLarge() error {
	return apperr.PayloadTooLarge(fmt.Sprintf("file too large, maximum size is %d bytes", s.maxSize))
}

func storageErr(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return apperr.NotFound("file not found")
	case errors.Is(err, storage.ErrInvalidName):
		return apperr.Validation("invalid filename")
	}
	return err
}

func normalizeMime(mt string) string {
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.ToLower(strings.TrimSpace(mt))
}
