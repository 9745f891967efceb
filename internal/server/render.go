package server

import (
	"encoding/json"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"cdn/internal/views"
)

func (s *Server) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	templ.Handler(c).ServeHTTP(w, r)
}

// renderError logs err, if any, and renders the error page with status.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Int("status", status).Msg("request failed")
	}
	page := views.Error(status, middleware.GetReqID(r.Context()))
	templ.Handler(page, templ.WithStatus(status)).ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError logs err, if any, and writes {"error": msg}.
func writeJSONError(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Int("status", status).Msg("api request failed")
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
