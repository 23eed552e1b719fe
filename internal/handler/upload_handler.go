package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	apperr "wellnesshub/internal/errors"
	"wellnesshub/internal/service"
)

const (
	uploadField = "image"
	// multipart framing allowance on top of the file size cap
	multipartOverhead = 64 << 10
)

// UploadHandler handles image uploads.
type UploadHandler struct {
	uploadService service.UploadService
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(uploadService service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// UploadImage godoc
// @Summary Upload an image
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image file (jpeg, png, gif, webp)"
// @Success 201 {object} DataResponse{data=service.UploadResult}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 413 {object} errors.ErrorResponse
// @Router /upload/image [post]
func (h *UploadHandler) UploadImage(c echo.Context) error {
	req := c.Request()
	limit := h.uploadService.MaxFileSize()
	if req.ContentLength > limit+multipartOverhead {
		return apperr.PayloadTooLarge(fmt.Sprintf("file too large, maximum size is %d bytes", limit))
	}
	req.Body = http.MaxBytesReader(c.Response(), req.Body, limit+multipartOverhead)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.PayloadTooLarge(fmt.Sprintf("file too large, maximum size is %d bytes", limit))
		}
		return apperr.Validation("invalid multipart form")
	}
	defer func() { _ = form.RemoveAll() }()

	for field := range form.File {
		if field != uploadField {
			return apperr.Validation(fmt.Sprintf("unexpected field %q", field))
		}
	}
	files := form.File[uploadField]
	switch {
	case len(files) == 0:
		return apperr.Validation("no file uploaded")
	case len(files) > 1:
		return apperr.Validation("too many files, only one image is allowed")
	}

	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	result, err := h.uploadService.Upload(req.Context(), service.UploadInput{
		OriginalName: fh.Filename,
		DeclaredType: fh.Header.Get(echo.HeaderContentType),
		Size:         fh.Size,
		Body:         f,
	})
	if err != nil {
		return err
	}
	return created(c, "image uploaded successfully", result)
}

// Delete godoc
// @Summary Delete an uploaded image
// @Tags uploads
// @Produce json
// @Security BearerAuth
// @Param filename path string true "Stored file name"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /upload/{filename} [delete]
func (h *UploadHandler) Delete(c echo.Context) error {
	if err := h.uploadService.Delete(c.Request().Context(), filenameParam(c)); err != nil {
		return err
	}
	return message(c, "file deleted successfully")
}

// Info godoc
// @Summary Uploaded image metadata
// @Tags uploads
// @Produce json
// @Security BearerAuth
// @Param filename path string true "Stored file name"
// @Success 200 {object} DataResponse{data=storage.Object}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /upload/info/{filename} [get]
func (h *UploadHandler) Info(c echo.Context) error {
	obj, err := h.uploadService.Info(c.Request().Context(), filenameParam(c))
	if err != nil {
		return err
	}
	return ok(c, obj)
}

// filenameParam decodes escaped separators so they are checked like literal ones.
func filenameParam(c echo.Context) string {
	raw := c.Param("filename")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}
