package web

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/signin/internal/common"
	"github.com/dmitrijs2005/signin/internal/server/routes"
	"github.com/dmitrijs2005/signin/internal/server/templates"
)

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"), "")
	render(w, r, http.StatusOK, "Sign in", templates.Login("", next, false))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderError(w, r, http.StatusBadRequest)
		return
	}
	email := r.PostFormValue("email")
	next := safeNext(r.PostFormValue("next"), routes.MustReverse(routes.Redirect))

	token, account, err := s.sessions.Login(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			render(w, r, http.StatusOK, "Sign in", templates.Login(email, r.PostFormValue("next"), true))
			return
		}
		s.fail(w, r, err)
		return
	}

	writeSessionCookie(w, r, token, s.sessions.TTL())
	s.logger.Info(r.Context(), "signed in", "email", account.Email)
	http.Redirect(w, r, next, http.StatusFound)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, r)
	http.Redirect(w, r, routes.MustReverse(routes.Login), http.StatusFound)
}
