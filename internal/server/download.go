package server

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"cdn/internal/storage"
)

// handleDownload streams the stored contents of a file. Unknown ids, missing
// objects and a server without object storage all answer 404.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	if !s.app.StorageEnabled() {
		s.renderError(w, r, http.StatusNotFound, nil)
		return
	}

	f, err := s.app.GetFile(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}
	if f == nil {
		s.renderError(w, r, http.StatusNotFound, nil)
		return
	}

	obj, err := s.app.OpenFile(ctx, f)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			zerolog.Ctx(ctx).Warn().Str("file_id", f.ID).Msg("file record without stored object")
			s.renderError(w, r, http.StatusNotFound, nil)
			return
		}
		s.metrics.RecordDownloadError()
		s.renderError(w, r, http.StatusBadGateway, err)
		return
	}
	defer func() { _ = obj.Close() }()

	h := w.Header()
	if obj.ETag != "" {
		etag := strconv.Quote(obj.ETag)
		h.Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	contentType := f.ContentType
	if contentType == "" {
		contentType = obj.ContentType
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	if f.Name != "" {
		h.Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": f.Name}))
	}
	if !obj.LastModified.IsZero() {
		h.Set("Last-Modified", obj.LastModified.UTC().Format(http.TimeFormat))
	}
	h.Set("Cache-Control", "public, max-age=86400")

	w.WriteHeader(http.StatusOK)
	n, err := io.Copy(w, obj)
	if err != nil {
		s.metrics.RecordDownloadError()
		zerolog.Ctx(ctx).Error().Err(err).Str("file_id", f.ID).Int64("bytes", n).Msg("download interrupted")
		return
	}
	s.metrics.RecordDownload(n, time.Since(start))
}
