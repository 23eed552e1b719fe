package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperr "wellnesshub/internal/errors"
	"wellnesshub/internal/service"
	"wellnesshub/internal/storage"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func healthy(context.Context) error { return nil }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name     string
		db       pingFunc
		cache    pingFunc
		status   int
		database string
		cacheMsg string
	}{
		{name: "all up", db: healthy, cache: healthy, status: http.StatusOK, database: "connected", cacheMsg: "connected"},
		{name: "cache down only", db: healthy, cache: func(context.Context) error { return errors.New("refused") }, status: http.StatusOK, database: "connected", cacheMsg: "disconnected"},
		{name: "database down", db: func(context.Context) error { return errors.New("refused") }, cache: healthy, status: http.StatusServiceUnavailable, database: "disconnected", cacheMsg: "connected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.db, tt.cache, zap.NewNop())
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/api/health", nil), rec)

			require.NoError(t, h.Health(c))
			assert.Equal(t, tt.status, rec.Code)

			var body HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.database, body.Database)
			assert.Equal(t, tt.cacheMsg, body.Cache)
			if tt.status == http.StatusOK {
				assert.Equal(t, "OK", body.Status)
			} else {
				assert.Equal(t, "ERROR", body.Status)
			}
		})
	}
}

var testPNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type part struct {
	field, filename, contentType string
	body                         []byte
}

func multipartRequest(t *testing.T, parts ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+p.field+`"; filename="`+p.filename+`"`)
		h.Set("Content-Type", p.contentType)
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(p.body)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/image", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func newTestUploadHandler(t *testing.T, maxSize int64) *UploadHandler {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)
	return NewUploadHandler(service.NewUploadService(store, maxSize, zap.NewNop()))
}

func TestUploadHandler_UploadImage(t *testing.T) {
	image := part{field: "image", filename: "a.png", contentType: "image/png", body: testPNG}

	tests := []struct {
		name  string
		parts []part
		kind  apperr.Kind
	}{
		{name: "single image", parts: []part{image}},
		{name: "no file", parts: nil, kind: apperr.KindValidation},
		{name: "two files", parts: []part{image, image}, kind: apperr.KindValidation},
		{name: "unexpected field", parts: []part{{field: "avatar", filename: "a.png", contentType: "image/png", body: testPNG}}, kind: apperr.KindValidation},
		{name: "not an image", parts: []part{{field: "image", filename: "a.pdf", contentType: "application/pdf", body: []byte("%PDF-1.4")}}, kind: apperr.KindValidation},
		{name: "too large", parts: []part{{field: "image", filename: "big.png", contentType: "image/png", body: append(append([]byte{}, testPNG...), make([]byte, 200<<10)...)}}, kind: apperr.KindPayloadTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestUploadHandler(t, 1024)
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(multipartRequest(t, tt.parts...), rec)

			err := h.UploadImage(c)
			if tt.kind != "" {
				assert.Equal(t, tt.kind, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, http.StatusCreated, rec.Code)

			var body struct {
				Success bool                 `json:"success"`
				Data    service.UploadResult `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.True(t, body.Success)
			assert.Equal(t, "a.png", body.Data.OriginalName)
			assert.Equal(t, "image/png", body.Data.MimeType)
		})
	}
}

func TestUploadHandler_DeleteRejectsEncodedTraversal(t *testing.T) {
	h := newTestUploadHandler(t, 1024)
	c := echo.New().NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), httptest.NewRecorder())
	c.SetParamNames("filename")
	c.SetParamValues("..%2Fsecret.png")

	err := h.Delete(c)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
