package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/dmitrijs2005/signin/internal/server/forms"
	"github.com/dmitrijs2005/signin/internal/server/models"
	"github.com/dmitrijs2005/signin/internal/server/services"
)

// SuperuserStore creates privileged accounts after the creation form
// checks pass.
type SuperuserStore interface {
	forms.AccountStore
	CreateSuperuser(ctx context.Context, in services.AccountInput) (*models.Account, error)
}

var _ SuperuserStore = (*services.AccountManager)(nil)

// CreateSuperuser prompts for email, names and a confirmed password and
// creates a privileged account. Invalid input is reported and asked again
// until it passes or the input ends.
func CreateSuperuser(ctx context.Context, store SuperuserStore, reader *bufio.Reader, w io.Writer) (*models.Account, error) {
	for {
		f, err := promptCreation(reader, w)
		if err != nil {
			return nil, err
		}

		if err := f.Clean(ctx, store); err != nil {
			ve, ok := forms.AsValidationError(err)
			if !ok {
				return nil, err
			}
			printErrors(w, ve.Fields)
			continue
		}

		account, err := store.CreateSuperuser(ctx, services.AccountInput{
			Email:     f.Email,
			FirstName: f.FirstName,
			LastName:  f.LastName,
			Password:  f.Password1,
		})
		if err != nil {
			// Record checks such as the email format run only here.
			fe, ok := models.AsFieldErrors(err)
			if !ok {
				return nil, err
			}
			printErrors(w, fe.ByField())
			continue
		}

		fmt.Fprintf(w, "Superuser %s created successfully.\n", account.Email)
		return account, nil
	}
}

func promptCreation(reader *bufio.Reader, w io.Writer) (forms.CreationForm, error) {
	var f forms.CreationForm
	var err error

	if f.Email, err = GetSimpleText(reader, "Email address", w); err != nil {
		return f, err
	}
	if f.FirstName, err = GetSimpleText(reader, "First name", w); err != nil {
		return f, err
	}
	if f.LastName, err = GetSimpleText(reader, "Last name", w); err != nil {
		return f, err
	}
	if f.Password1, err = GetPassword("Password", w); err != nil {
		return f, err
	}
	if f.Password2, err = GetPassword("Password (again)", w); err != nil {
		return f, err
	}
	return f, nil
}

func printErrors(w io.Writer, byField map[string][]string) {
	fields := make([]string, 0, len(byField))
	for field := range byField {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		for _, msg := range byField[field] {
			fmt.Fprintf(w, "Error (%s): %s\n", field, msg)
		}
	}
}
