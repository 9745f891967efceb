package views

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cdn/internal/models"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestIndex_Anonymous(t *testing.T) {
	html := render(t, Index(IndexView{
		Links: map[string]string{"Docs": "https://docs.example", "Status": "https://status.example"},
		Stats: map[string]any{"files": 12},
	}))

	assert.Contains(t, html, "<h1>cdn</h1>")
	assert.NotContains(t, html, "/logout")
	assert.Contains(t, html, `<a href="https://docs.example">Docs</a>`)
	assert.Less(t, bytes.Index([]byte(html), []byte("Docs")), bytes.Index([]byte(html), []byte("Status")))
	assert.Contains(t, html, "<dt>files</dt><dd>12</dd>")
	assert.NotContains(t, html, `class="related"`)
}

func TestIndex_UnsafeLinkScheme(t *testing.T) {
	html := render(t, Index(IndexView{
		Links: map[string]string{"Evil": "javascript:alert(1)", "Mail": "mailto:ops@cdn.example"},
	}))

	assert.NotContains(t, html, "javascript:")
	assert.Contains(t, html, "about:invalid")
	assert.Contains(t, html, `<a href="mailto:ops@cdn.example">Mail</a>`)
}

func TestIndex_SignedIn(t *testing.T) {
	user := &models.AccountView{ID: 1, Username: "alice"}
	html := render(t, Index(IndexView{User: user, Related: map[string]any{"guild": "x"}}))

	assert.Contains(t, html, "Welcome back, alice")
	assert.Contains(t, html, `href="/logout"`)
	assert.Contains(t, html, `<section class="related">`)
}

func TestIndex_EscapesUserContent(t *testing.T) {
	user := &models.AccountView{Username: `<script>alert(1)</script>`}
	html := render(t, Index(IndexView{User: user}))

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestFiles(t *testing.T) {
	created := time.Date(2024, 3, 4, 5, 6, 0, 0, time.UTC)
	html := render(t, Files(FilesView{
		User:  models.AccountView{Username: "alice"},
		Files: []models.File{{ID: "f-1", Name: "a.txt", ContentType: "text/plain", SizeBytes: 2048, CreatedAt: created}},
	}))

	assert.Contains(t, html, `<a href="/f/f-1">a.txt</a>`)
	assert.Contains(t, html, "2.0 KiB")
	assert.Contains(t, html, "2024-03-04 05:06")

	empty := render(t, Files(FilesView{User: models.AccountView{Username: "alice"}}))
	assert.Contains(t, empty, "No files yet.")
}

func TestError(t *testing.T) {
	html := render(t, Error(http.StatusInternalServerError, "rid-1"))
	assert.Contains(t, html, "500 Internal Server Error")
	assert.Contains(t, html, "rid-1")
	assert.NotContains(t, render(t, Error(http.StatusNotFound, "")), "Request ID")
}

func TestHumanBytes(t *testing.T) {
	tests := map[int64]string{
		0:               "0 B",
		1023:            "1023 B",
		1024:            "1.0 KiB",
		1536:            "1.5 KiB",
		5 * 1024 * 1024: "5.0 MiB",
		3 << 30:         "3.0 GiB",
	}
	for in, want := range tests {
		assert.Equal(t, want, HumanBytes(in), "HumanBytes(%d)", in)
	}
}
