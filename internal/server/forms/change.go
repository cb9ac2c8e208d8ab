package forms

import (
	"context"

	"github.com/dmitrijs2005/signin/internal/common"
	"github.com/dmitrijs2005/signin/internal/server/auth"
	"github.com/dmitrijs2005/signin/internal/server/models"
	"github.com/dmitrijs2005/signin/internal/server/services"
)

// ChangeForm edits every field of an existing account. Password is
// accepted so a submitted form decodes cleanly, but it is never applied.
type ChangeForm struct {
	Email       string
	FirstName   string
	LastName    string
	Title       string
	Phone       string
	IsStaff     bool
	IsSuperuser bool
	IsActive    bool
	Password    string
}

// ChangeFormFor fills a form with the current values of account.
func ChangeFormFor(account *models.Account) ChangeForm {
	return ChangeForm{
		Email:       account.Email,
		FirstName:   account.FirstName,
		LastName:    account.LastName,
		Title:       account.Title,
		Phone:       account.Phone,
		IsStaff:     account.IsStaff,
		IsSuperuser: account.IsSuperuser,
		IsActive:    account.IsActive,
	}
}

// PasswordDisplay renders the read-only summary shown instead of the hash.
func PasswordDisplay(hash string) string {
	return auth.DescribeHash(hash)
}

// Apply copies the form onto existing and saves it. The stored password
// hash is left exactly as it was.
func (f *ChangeForm) Apply(ctx context.Context, store AccountStore, existing *models.Account) (*models.Account, error) {
	updated := *existing
	updated.Email = services.NormalizeEmail(f.Email)
	updated.FirstName = f.FirstName
	updated.LastName = f.LastName
	updated.Title = f.Title
	updated.Phone = f.Phone
	updated.IsStaff = f.IsStaff
	updated.IsSuperuser = f.IsSuperuser
	updated.IsActive = f.IsActive
	updated.PasswordHash = existing.PasswordHash

	ve := &ValidationError{}
	if err := updated.Validate(); err != nil {
		fe, _ := models.AsFieldErrors(err)
		ve.merge(fe)
	}

	if !ve.Has(models.FieldEmail) {
		taken, err := store.EmailTaken(ctx, updated.Email, existing.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			ve.add(models.FieldEmail, common.ErrDuplicateEmail, models.DuplicateEmailMessage)
		}
	}

	if err := ve.orNil(); err != nil {
		return nil, err
	}

	if err := store.Save(ctx, &updated); err != nil {
		return nil, fromModel(err)
	}
	return &updated, nil
}
