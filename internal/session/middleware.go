package session

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// FromContext returns the session attached by Manager.Middleware, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// NewContext attaches s to ctx.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// CookieOptions controls the session cookie.
type CookieOptions struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// Manager loads the session for every request and persists it before the
// response headers go out.
type Manager struct {
	store  Store
	cookie CookieOptions
}

// NewManager wires a Store to the session cookie.
func NewManager(store Store, cookie CookieOptions) *Manager {
	if cookie.Name == "" {
		cookie.Name = "cdn_session"
	}
	return &Manager{store: store, cookie: cookie}
}

// Middleware loads the request's session into the context. A store failure
// while loading aborts the request with 500.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var id string
		if c, err := r.Cookie(m.cookie.Name); err == nil {
			id = strings.TrimSpace(c.Value)
		}

		sess, err := m.store.Load(ctx, id)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("session load failed")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		sw := &saveWriter{ResponseWriter: w, m: m, r: r, sess: sess}
		next.ServeHTTP(sw, r.WithContext(NewContext(ctx, sess)))
		sw.commit()
	})
}

// persist saves sess when it holds something worth keeping and refreshes
// the cookie.
func (m *Manager) persist(w http.ResponseWriter, r *http.Request, sess *Session) {
	if !sess.Changed() || (sess.IsNew() && sess.Len() == 0) {
		return
	}
	if err := m.store.Save(r.Context(), sess); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("session_id", sess.ID).Msg("session save failed")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie.Name,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(m.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// saveWriter persists the session the first time headers are written, while
// Set-Cookie can still be added.
type saveWriter struct {
	http.ResponseWriter
	m    *Manager
	r    *http.Request
	sess *Session
	done bool
}

func (w *saveWriter) commit() {
	if w.done {
		return
	}
	w.done = true
	w.m.persist(w.ResponseWriter, w.r, w.sess)
}

func (w *saveWriter) WriteHeader(code int) {
	w.commit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *saveWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

func (w *saveWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
