// Package views renders the HTML pages as templ components.
package views

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"

	"github.com/a-h/templ"

	"cdn/internal/models"
)

// IndexView is the merged view-model of the index page.
type IndexView struct {
	Links   map[string]string
	User    *models.AccountView
	Related map[string]any
	Stats   map[string]any
}

// FilesView lists an account's files.
type FilesView struct {
	User  models.AccountView
	Files []models.File
}

// page writes HTML, remembering the first write error.
type page struct {
	w   io.Writer
	err error
}

func (p *page) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *page) text(s string) {
	p.raw(templ.EscapeString(s))
}

// href writes an attribute-safe URL, replacing unsafe schemes.
func (p *page) href(u string) {
	p.text(string(templ.URL(u)))
}

func (p *page) render(ctx context.Context, c templ.Component) {
	if p.err == nil && c != nil {
		p.err = c.Render(ctx, p.w)
	}
}

// Layout wraps body in the shared page chrome.
func Layout(title string, user *models.AccountView, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		p.text(title)
		p.raw(`</title></head><body><header><nav><a href="/">Home</a>`)
		if user != nil {
			p.raw(` <a href="/files">Files</a> <span class="user">`)
			p.text(user.Username)
			p.raw(`</span> <a href="/logout">Log out</a>`)
		}
		p.raw(`</nav></header><main>`)
		p.render(ctx, body)
		p.raw(`</main></body></html>`)
		return p.err
	})
}

// Index renders the landing page.
func Index(v IndexView) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		if v.User != nil {
			p.raw(`<h1>Welcome back, `)
			p.text(v.User.Username)
			p.raw(`</h1>`)
		} else {
			p.raw(`<h1>cdn</h1>`)
		}

		if len(v.Links) > 0 {
			p.raw(`<ul class="links">`)
			for _, name := range sortedKeys(v.Links) {
				p.raw(`<li><a href="`)
				p.href(v.Links[name])
				p.raw(`">`)
				p.text(name)
				p.raw(`</a></li>`)
			}
			p.raw(`</ul>`)
		}

		section(p, "related", "Related", v.Related)
		section(p, "stats", "Stats", v.Stats)
		return p.err
	})
	return Layout("cdn", v.User, body)
}

func section(p *page, class, title string, values map[string]any) {
	if len(values) == 0 {
		return
	}
	p.raw(`<section class="` + class + `"><h2>`)
	p.text(title)
	p.raw(`</h2><dl>`)
	for _, k := range sortedKeys(values) {
		p.raw(`<dt>`)
		p.text(k)
		p.raw(`</dt><dd>`)
		p.text(fmt.Sprint(values[k]))
		p.raw(`</dd>`)
	}
	p.raw(`</dl></section>`)
}

// Files renders the file listing of the signed-in account.
func Files(v FilesView) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		p.raw(`<h1>Your files</h1>`)
		if len(v.Files) == 0 {
			p.raw(`<p class="empty">No files yet.</p>`)
			return p.err
		}
		p.raw(`<table class="files"><thead><tr><th>Name</th><th>Type</th><th>Size</th><th>Uploaded</th></tr></thead><tbody>`)
		for i := range v.Files {
			f := &v.Files[i]
			p.raw(`<tr><td><a href="`)
			p.href(f.URL())
			p.raw(`">`)
			p.text(f.Name)
			p.raw(`</a></td><td>`)
			p.text(f.ContentType)
			p.raw(`</td><td>`)
			p.text(HumanBytes(f.SizeBytes))
			p.raw(`</td><td><time datetime="`)
			p.text(f.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"))
			p.raw(`">`)
			p.text(f.CreatedAt.UTC().Format("2006-01-02 15:04"))
			p.raw(`</time></td></tr>`)
		}
		p.raw(`</tbody></table>`)
		return p.err
	})
	user := v.User
	return Layout("Your files", &user, body)
}

// Error renders a generic error page. requestID may be empty.
func Error(status int, requestID string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		p.raw(`<h1>`)
		p.text(strconv.Itoa(status) + " " + http.StatusText(status))
		p.raw(`</h1><p>Something went wrong. Please try again later.</p>`)
		if requestID != "" {
			p.raw(`<p class="request-id">Request ID: <code>`)
			p.text(requestID)
			p.raw(`</code></p>`)
		}
		return p.err
	})
	return Layout(http.StatusText(status), nil, body)
}

// HumanBytes formats n with a binary unit suffix.
func HumanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
