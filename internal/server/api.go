package server

import (
	"net/http"
	"strings"

	"cdn/internal/models"
)

type apiFile struct {
	models.File
	URL string `json:"url"`
}

// bearerToken extracts the token of an "Authorization: Bearer <token>"
// header.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// handleAPIFiles lists the files of the account owning the bearer token,
// most recent first. An account without files gets [].
func (s *Server) handleAPIFiles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := bearerToken(r)
	if !ok {
		s.metrics.RecordAPIRequest(false)
		writeJSONError(w, r, http.StatusUnauthorized, "missing bearer token", nil)
		return
	}

	acc, err := s.app.FetchAccountByToken(ctx, token)
	if err != nil {
		writeJSONError(w, r, http.StatusInternalServerError, "internal error", err)
		return
	}
	if acc == nil || acc.IsExpired() {
		s.metrics.RecordAPIRequest(false)
		writeJSONError(w, r, http.StatusUnauthorized, "invalid token", nil)
		return
	}
	s.metrics.RecordAPIRequest(true)

	files, err := s.app.FilesForAccount(ctx, acc.ID)
	if err != nil {
		writeJSONError(w, r, http.StatusInternalServerError, "internal error", err)
		return
	}

	out := make([]apiFile, 0, len(files))
	for _, f := range files {
		out = append(out, apiFile{File: f, URL: f.URL()})
	}
	writeJSON(w, http.StatusOK, out)
}
