package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"cdn/internal/app"
	"cdn/internal/metrics"
	"cdn/internal/session"
)

type Config struct {
	Addr        string // e.g. ":8080"
	Version     string
	Links       map[string]string
	CORSOrigins []string
	// APIRateLimit caps /api requests per client IP per minute; 0 disables.
	APIRateLimit int
	// HSTS adds Strict-Transport-Security; enable behind TLS only.
	HSTS bool
}

type Server struct {
	cfg      Config
	app      *app.App
	sessions *session.Manager
	metrics  *metrics.Metrics
	log      zerolog.Logger

	httpServer *http.Server
}

func New(cfg Config, a *app.App, sessions *session.Manager, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		app:      a,
		sessions: sessions,
		metrics:  a.Metrics(),
		log:      logger,
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// requestID -> realIP -> tracing -> logging -> recoverer -> headers -> compress
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(otelhttp.NewMiddleware("cdn",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	))
	r.Use(requestLogger(s.log, s.metrics))
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders(s.cfg.HSTS))
	r.Use(middleware.Compress(5))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusNotFound, nil)
	})

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Get("/live", s.handleLive)
	r.Get("/metrics", metrics.Handler(s.metrics, s.cfg.Version))

	r.Get("/f/{id}", s.handleDownload)

	r.Group(func(r chi.Router) {
		r.Use(s.sessions.Middleware)
		r.Get("/", s.handleIndex)
		r.Get("/logout", s.handleLogout)
		r.Get("/files", s.handleFiles)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization"},
			MaxAge:         300,
		}))
		if s.cfg.APIRateLimit > 0 && s.app.Redis != nil {
			r.Use(newRateLimiter(s.app.Redis, s.cfg.APIRateLimit, time.Minute).middleware)
		}
		r.Get("/files", s.handleAPIFiles)
	})

	return r
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.log.Info().Str("addr", ln.Addr().String()).Msg("http server listening")
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
