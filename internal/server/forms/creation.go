package forms

import (
	"context"

	"github.com/dmitrijs2005/signin/internal/common"
	"github.com/dmitrijs2005/signin/internal/server/models"
	"github.com/dmitrijs2005/signin/internal/server/services"
)

// Field names used only by the creation form.
const (
	FieldPassword1 = "password1"
	FieldPassword2 = "password2"
)

// CreationForm creates a regular account with a confirmed password.
type CreationForm struct {
	Email     string
	FirstName string
	LastName  string
	Password1 string
	Password2 string
}

// Clean checks required fields, the password confirmation and that no
// other account, active or deactivated, already holds the email.
func (f *CreationForm) Clean(ctx context.Context, store AccountStore) error {
	ve := &ValidationError{}

	var fe models.FieldErrors
	models.RequireFields(&fe, map[string]string{
		models.FieldEmail:     f.Email,
		models.FieldFirstName: f.FirstName,
		models.FieldLastName:  f.LastName,
		FieldPassword1:        f.Password1,
		FieldPassword2:        f.Password2,
	})
	ve.merge(fe)

	if f.Password1 != "" && f.Password2 != "" && f.Password1 != f.Password2 {
		ve.add(FieldPassword2, common.ErrPasswordMismatch, PasswordMismatchMessage)
	}

	if !ve.Has(models.FieldEmail) {
		taken, err := store.EmailTaken(ctx, f.Email, "")
		if err != nil {
			return err
		}
		if taken {
			ve.add(models.FieldEmail, common.ErrDuplicateEmail, models.DuplicateEmailMessage)
		}
	}

	return ve.orNil()
}

// Save cleans the form and, when it is valid, creates the account.
func (f *CreationForm) Save(ctx context.Context, store AccountStore) (*models.Account, error) {
	if err := f.Clean(ctx, store); err != nil {
		return nil, err
	}

	account, err := store.CreateUser(ctx, services.AccountInput{
		Email:     f.Email,
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Password:  f.Password1,
	})
	if err != nil {
		return nil, fromModel(err)
	}
	return account, nil
}
