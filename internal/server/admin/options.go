// Package admin exposes accounts to console operators: declarative listing
// metadata plus the add, change and export operations built on the forms
// and the account manager.
package admin

import (
	"strconv"
	"time"

	"github.com/dmitrijs2005/signin/internal/server/forms"
	"github.com/dmitrijs2005/signin/internal/server/models"
)

// Fieldset groups fields on a console page. An empty Name renders no heading.
type Fieldset struct {
	Name    string
	Classes []string
	Fields  []string
}

// ModelAdmin describes how the console lists and edits a record type.
type ModelAdmin struct {
	ListDisplay  []string
	ListFilter   []string
	SearchFields []string
	Ordering     []string
	Fieldsets    []Fieldset
	AddFieldsets []Fieldset
	PerPage      int
}

// AccountOptions is the console configuration for accounts.
var AccountOptions = ModelAdmin{
	ListDisplay:  []string{models.FieldEmail, models.FieldFirstName, models.FieldLastName, FieldIsStaff},
	ListFilter:   []string{FieldIsStaff},
	SearchFields: []string{models.FieldEmail},
	Ordering:     []string{models.FieldEmail},
	Fieldsets: []Fieldset{
		{Fields: []string{models.FieldEmail, FieldPassword}},
		{Name: "Personal info", Fields: []string{models.FieldFirstName, models.FieldLastName}},
		{Name: "Permissions", Fields: []string{FieldIsStaff}},
	},
	AddFieldsets: []Fieldset{
		{
			Classes: []string{"wide"},
			Fields: []string{models.FieldEmail, models.FieldFirstName, models.FieldLastName,
				forms.FieldPassword1, forms.FieldPassword2},
		},
	},
	PerPage: 25,
}

const (
	FieldPassword    = "password"
	FieldIsStaff     = "is_staff"
	FieldIsSuperuser = "is_superuser"
	FieldIsActive    = "is_active"
	FieldLastLogin   = "last_login"
	FieldDateJoined  = "date_joined"
)

var labels = map[string]string{
	models.FieldEmail:     "Email address",
	models.FieldFirstName: "First name",
	models.FieldLastName:  "Last name",
	models.FieldTitle:     "Title",
	models.FieldPhone:     "Phone",
	FieldPassword:         "Password",
	forms.FieldPassword1:  "Password",
	forms.FieldPassword2:  "Password confirmation",
	FieldIsStaff:          "Staff status",
	FieldIsSuperuser:      "Superuser status",
	FieldIsActive:         "Active",
	FieldLastLogin:        "Last login",
	FieldDateJoined:       "Date joined",
}

// Label is the human-readable column or input label for field.
func Label(field string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	return field
}

// Value renders one field of a for a console cell.
func Value(a *models.Account, field string) string {
	switch field {
	case models.FieldEmail:
		return a.Email
	case models.FieldFirstName:
		return a.FirstName
	case models.FieldLastName:
		return a.LastName
	case models.FieldTitle:
		return a.Title
	case models.FieldPhone:
		return a.Phone
	case FieldPassword:
		return forms.PasswordDisplay(a.PasswordHash)
	case FieldIsStaff:
		return strconv.FormatBool(a.IsStaff)
	case FieldIsSuperuser:
		return strconv.FormatBool(a.IsSuperuser)
	case FieldIsActive:
		return strconv.FormatBool(a.IsActive)
	case FieldLastLogin:
		if a.LastLogin == nil {
			return ""
		}
		return a.LastLogin.UTC().Format(time.RFC3339)
	case FieldDateJoined:
		if a.DateJoined.IsZero() {
			return ""
		}
		return a.DateJoined.UTC().Format(time.RFC3339)
	}
	return ""
}
