package forms

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/signin/internal/server/models"
)

// FieldName is the single full-name field accepted by the self-service page.
const FieldName = "name"

// SelfUpdateForm is what an account holder may change about themselves.
// Name is split on its first space when FirstName and LastName are empty.
type SelfUpdateForm struct {
	FirstName string
	LastName  string
	Name      string
}

func (f *SelfUpdateForm) names() (string, string) {
	first, last := strings.TrimSpace(f.FirstName), strings.TrimSpace(f.LastName)
	if first == "" && last == "" {
		name := strings.TrimSpace(f.Name)
		first, last, _ = strings.Cut(name, " ")
		last = strings.TrimSpace(last)
	}
	return first, last
}

// Apply sets only the name fields on a copy of existing and saves it.
func (f *SelfUpdateForm) Apply(ctx context.Context, store AccountStore, existing *models.Account) (*models.Account, error) {
	first, last := f.names()

	ve := &ValidationError{}
	var fe models.FieldErrors
	models.RequireFields(&fe, map[string]string{
		models.FieldFirstName: first,
		models.FieldLastName:  last,
	})
	ve.merge(fe)
	if err := ve.orNil(); err != nil {
		return nil, err
	}

	updated := *existing
	updated.FirstName = first
	updated.LastName = last

	if err := store.Save(ctx, &updated); err != nil {
		return nil, fromModel(err)
	}
	return &updated, nil
}
