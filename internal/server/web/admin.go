package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/signin/internal/server/admin"
	"github.com/dmitrijs2005/signin/internal/server/forms"
	"github.com/dmitrijs2005/signin/internal/server/models"
	"github.com/dmitrijs2005/signin/internal/server/routes"
	"github.com/dmitrijs2005/signin/internal/server/templates"
)

func changeListParams(r *http.Request) admin.ChangeListParams {
	q := r.URL.Query()
	p := admin.ChangeListParams{Query: q.Get("q")}
	if v, err := strconv.ParseBool(q.Get(admin.FieldIsStaff)); err == nil {
		p.IsStaff = &v
	}
	if page, err := strconv.Atoi(q.Get("p")); err == nil {
		p.Page = page
	}
	return p
}

func checked(r *http.Request, field string) bool {
	return r.PostFormValue(field) != ""
}

func (s *Server) adminList(w http.ResponseWriter, r *http.Request) {
	cl, err := s.console.ChangeList(r.Context(), changeListParams(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render(w, r, http.StatusOK, "Accounts", templates.AdminChangeList(cl, s.console.Options()))
}

func (s *Server) adminAddPage(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, "Add account", templates.AdminAdd(forms.CreationForm{}, nil, s.console.Options()))
}

func (s *Server) adminAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderError(w, r, http.StatusBadRequest)
		return
	}
	f := forms.CreationForm{
		Email:     r.PostFormValue(models.FieldEmail),
		FirstName: r.PostFormValue(models.FieldFirstName),
		LastName:  r.PostFormValue(models.FieldLastName),
		Password1: r.PostFormValue(forms.FieldPassword1),
		Password2: r.PostFormValue(forms.FieldPassword2),
	}

	account, err := s.console.Add(r.Context(), f)
	if err != nil {
		if ve, ok := forms.AsValidationError(err); ok {
			render(w, r, http.StatusOK, "Add account", templates.AdminAdd(f, ve.Fields, s.console.Options()))
			return
		}
		s.fail(w, r, err)
		return
	}

	http.Redirect(w, r, routes.MustReverse(routes.AdminChange, account.Email), http.StatusFound)
}

func (s *Server) adminChangePage(w http.ResponseWriter, r *http.Request) {
	account, err := s.console.Get(r.Context(), r.PathValue("email"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render(w, r, http.StatusOK, "Change account",
		templates.AdminChange(account, forms.ChangeFormFor(account), nil, s.console.Options()))
}

func (s *Server) adminChange(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	existing, err := s.console.Get(r.Context(), email)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		renderError(w, r, http.StatusBadRequest)
		return
	}

	f := forms.ChangeForm{
		Email:       r.PostFormValue(models.FieldEmail),
		FirstName:   r.PostFormValue(models.FieldFirstName),
		LastName:    r.PostFormValue(models.FieldLastName),
		Title:       r.PostFormValue(models.FieldTitle),
		Phone:       r.PostFormValue(models.FieldPhone),
		IsStaff:     checked(r, admin.FieldIsStaff),
		IsSuperuser: checked(r, admin.FieldIsSuperuser),
		IsActive:    checked(r, admin.FieldIsActive),
		Password:    r.PostFormValue(admin.FieldPassword),
	}

	if _, err := s.console.Change(r.Context(), email, f); err != nil {
		if ve, ok := forms.AsValidationError(err); ok {
			render(w, r, http.StatusOK, "Change account",
				templates.AdminChange(existing, f, ve.Fields, s.console.Options()))
			return
		}
		s.fail(w, r, err)
		return
	}

	http.Redirect(w, r, routes.MustReverse(routes.AdminList), http.StatusFound)
}

func (s *Server) adminDeactivate(w http.ResponseWriter, r *http.Request) {
	account, err := s.console.Deactivate(r.Context(), r.PathValue("email"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, routes.MustReverse(routes.AdminChange, account.Email), http.StatusFound)
}

func (s *Server) adminExport(w http.ResponseWriter, r *http.Request) {
	p := changeListParams(r)
	res, err := s.console.Export(r.Context(), p)
	if err != nil {
		if errors.Is(err, admin.ErrExportUnavailable) {
			renderError(w, r, http.StatusServiceUnavailable)
			return
		}
		s.fail(w, r, err)
		return
	}
	render(w, r, http.StatusOK, "Export", templates.AdminExported(res))
}
