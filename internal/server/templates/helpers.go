// Package templates renders the account pages and the admin console as
// templ components. Edit the .templ sources and run `templ generate`.
package templates

import (
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/signin/internal/server/admin"
	"github.com/dmitrijs2005/signin/internal/server/models"
	"github.com/dmitrijs2005/signin/internal/server/routes"
)

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate

// changeListQuery keeps the search and filter when paging or exporting.
func changeListQuery(p admin.ChangeListParams, page int) string {
	v := url.Values{}
	if p.Query != "" {
		v.Set("q", p.Query)
	}
	if p.IsStaff != nil {
		v.Set(admin.FieldIsStaff, strconv.FormatBool(*p.IsStaff))
	}
	if page > 1 {
		v.Set("p", strconv.Itoa(page))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func pageURL(p admin.ChangeListParams, page int) string {
	return routes.MustReverse(routes.AdminList) + changeListQuery(p, page)
}

type filterChoice struct {
	label string
	href  string
}

// staffChoices links each staff filter value, keeping the search.
func staffChoices(p admin.ChangeListParams) []filterChoice {
	choices := make([]filterChoice, 0, 3)
	for _, c := range []struct {
		label string
		value *bool
	}{{"All", nil}, {"Yes", boolPtr(true)}, {"No", boolPtr(false)}} {
		q := p
		q.IsStaff = c.value
		choices = append(choices, filterChoice{label: c.label, href: pageURL(q, 1)})
	}
	return choices
}

func boolPtr(b bool) *bool { return &b }

// changeFields lists the inputs of one change fieldset. Personal info also
// carries title and phone, permissions the active and superuser flags.
func changeFields(fs admin.Fieldset) []string {
	fields := append([]string(nil), fs.Fields...)
	switch fs.Name {
	case "Personal info":
		fields = append(fields, models.FieldTitle, models.FieldPhone)
	case "Permissions":
		fields = append(fields, admin.FieldIsActive, admin.FieldIsSuperuser)
	}
	return fields
}
