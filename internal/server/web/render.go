package web

import (
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/dmitrijs2005/signin/internal/common"
	"github.com/dmitrijs2005/signin/internal/server/templates"
)

// render writes body inside the page layout with the given status.
func render(w http.ResponseWriter, r *http.Request, status int, title string, body templ.Component) {
	ctx := templ.WithChildren(r.Context(), body)
	layout := templates.Layout(title, ViewerFrom(r.Context()))
	templ.Handler(layout, templ.WithStatus(status)).ServeHTTP(w, r.WithContext(ctx))
}

func renderError(w http.ResponseWriter, r *http.Request, status int) {
	text := http.StatusText(status)
	render(w, r, status, text, templates.ErrorPage(status, text))
}

// fail maps err onto a response: missing records are 404, lost sessions
// go back to sign-in, anything else is logged and answered with 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		renderError(w, r, http.StatusNotFound)
	case errors.Is(err, common.ErrorUnauthenticated):
		redirectToLogin(w, r)
	case errors.Is(err, common.ErrorForbidden):
		renderError(w, r, http.StatusForbidden)
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		renderError(w, r, http.StatusInternalServerError)
	}
}
