package web

import (
	"net/http"

	"github.com/dmitrijs2005/signin/internal/server/forms"
	"github.com/dmitrijs2005/signin/internal/server/models"
	"github.com/dmitrijs2005/signin/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/signin/internal/server/routes"
	"github.com/dmitrijs2005/signin/internal/server/templates"
)

func (s *Server) accountDetail(w http.ResponseWriter, r *http.Request) {
	account, err := s.accounts.GetByEmail(r.Context(), r.PathValue("email"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	own := ViewerFrom(r.Context()).Email == account.Email
	render(w, r, http.StatusOK, account.FullName(), templates.AccountDetail(account, own))
}

func (s *Server) selfRedirect(w http.ResponseWriter, r *http.Request) {
	viewer := ViewerFrom(r.Context())
	http.Redirect(w, r, routes.MustReverse(routes.Detail, viewer.Email), http.StatusFound)
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	list, err := s.accounts.List(r.Context(), accounts.ListQuery{})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render(w, r, http.StatusOK, "Accounts", templates.AccountList(list))
}

// loadSelf reloads the caller's own record. A signed-in caller without a
// backing record surfaces as not found.
func (s *Server) loadSelf(r *http.Request) (*models.Account, error) {
	return s.accounts.GetByEmail(r.Context(), ViewerFrom(r.Context()).Email)
}

func (s *Server) updateSelfPage(w http.ResponseWriter, r *http.Request) {
	account, err := s.loadSelf(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	f := forms.SelfUpdateForm{FirstName: account.FirstName, LastName: account.LastName}
	render(w, r, http.StatusOK, "My name", templates.UpdateSelf(f, nil))
}

func (s *Server) updateSelf(w http.ResponseWriter, r *http.Request) {
	account, err := s.loadSelf(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		renderError(w, r, http.StatusBadRequest)
		return
	}

	f := forms.SelfUpdateForm{
		FirstName: r.PostFormValue(models.FieldFirstName),
		LastName:  r.PostFormValue(models.FieldLastName),
		Name:      r.PostFormValue(forms.FieldName),
	}
	updated, err := f.Apply(r.Context(), s.accounts, account)
	if err != nil {
		if ve, ok := forms.AsValidationError(err); ok {
			render(w, r, http.StatusOK, "My name", templates.UpdateSelf(f, ve.Fields))
			return
		}
		s.fail(w, r, err)
		return
	}

	http.Redirect(w, r, routes.MustReverse(routes.Detail, updated.Email), http.StatusFound)
}
