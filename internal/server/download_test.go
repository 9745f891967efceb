package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"cdn/internal/app"
	"cdn/internal/models"
)

func newDownloadEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t, func(o *app.Options) {
		o.Storage = &memStore{objects: map[string]string{"obj/f-1": "hello world"}}
	})
	env.files.byAccount[1] = []models.File{
		{ID: "f-1", AccountID: 1, Name: "hello.txt", ContentType: "text/plain", SizeBytes: 11, ObjectKey: "obj/f-1"},
		{ID: "f-2", AccountID: 1, Name: "lost.bin", ObjectKey: "obj/f-2"},
	}
	return env
}

func TestDownload_StorageDisabled(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/f/f-1", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDownload_Streams(t *testing.T) {
	env := newDownloadEnv(t)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/f/f-1", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "hello world", rr.Body.String())
	assert.Equal(t, "text/plain", rr.Header().Get("Content-Type"))
	assert.Equal(t, "11", rr.Header().Get("Content-Length"))
	assert.Equal(t, `inline; filename=hello.txt`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, `"etag-obj/f-1"`, rr.Header().Get("ETag"))
	assert.Equal(t, "Tue, 02 Jan 2024 03:04:05 GMT", rr.Header().Get("Last-Modified"))

	snap := env.metrics.Snapshot()
	assert.Equal(t, int64(1), snap.DownloadsTotal)
	assert.Equal(t, int64(11), snap.DownloadBytesTotal)
}

func TestDownload_NotModified(t *testing.T) {
	env := newDownloadEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/f/f-1", nil)
	req.Header.Set("If-None-Match", `"etag-obj/f-1"`)
	rr := env.do(req)

	assert.Equal(t, http.StatusNotModified, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestDownload_UnknownID(t *testing.T) {
	env := newDownloadEnv(t)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/f/missing", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDownload_MissingObject(t *testing.T) {
	env := newDownloadEnv(t)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/f/f-2", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
