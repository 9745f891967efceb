package server

import (
	"net/http"

	"cdn/internal/session"
	"cdn/internal/views"
)

// handleIndex renders the landing page: the current account, its related
// collections and the collaborator stats merged with the site links.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := session.FromContext(ctx)

	acc, err := s.app.GetAccount(ctx, sess)
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}
	related, err := s.app.Related(ctx, acc)
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}
	stats, err := s.app.Stats(ctx)
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}

	view := views.IndexView{
		Links:   s.cfg.Links,
		Related: related,
		Stats:   stats,
	}
	if acc != nil {
		v := acc.View()
		view.User = &v
	}

	s.metrics.RecordPageView("index")
	s.render(w, r, views.Index(view))
}

// handleLogout forgets the session's token. The rest of the session,
// including any cached account snapshot, is left alone.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if sess.Has(session.KeyToken) {
		sess.Delete(session.KeyToken)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleFiles lists the signed-in account's files. Anonymous visitors are
// sent home.
func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := session.FromContext(ctx)

	acc, err := s.app.GetAccount(ctx, sess)
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}
	if acc == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	files, err := s.app.FilesForAccount(ctx, acc.ID)
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}

	s.metrics.RecordPageView("files")
	s.render(w, r, views.Files(views.FilesView{User: acc.View(), Files: files}))
}
