package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/signin/internal/server/models"
	"github.com/dmitrijs2005/signin/internal/server/services"
)

type fakeStore struct {
	taken     map[string]bool
	created   []services.AccountInput
	createErr error
}

func (f *fakeStore) CreateUser(ctx context.Context, in services.AccountInput) (*models.Account, error) {
	return nil, errors.New("unexpected CreateUser")
}

func (f *fakeStore) EmailTaken(ctx context.Context, email string, excludeID string) (bool, error) {
	return f.taken[services.NormalizeEmail(email)], nil
}

func (f *fakeStore) Save(ctx context.Context, a *models.Account) error {
	return errors.New("unexpected Save")
}

func (f *fakeStore) CreateSuperuser(ctx context.Context, in services.AccountInput) (*models.Account, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	a := models.NewAccount(services.NormalizeEmail(in.Email), in.FirstName, in.LastName)
	a.IsStaff, a.IsSuperuser = true, true
	if err := a.Validate(); err != nil {
		return nil, err
	}
	f.created = append(f.created, in)
	return a, nil
}

func TestCreateSuperuser(t *testing.T) {
	stubPasswords(t, "pw", "pw")
	store := &fakeStore{}
	var out bytes.Buffer

	a, err := CreateSuperuser(context.Background(), store, rdr("Root@Example.com\nRoot\nUser\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", a.Email)
	require.Len(t, store.created, 1)
	assert.Equal(t, services.AccountInput{Email: "Root@Example.com", FirstName: "Root", LastName: "User", Password: "pw"}, store.created[0])
	assert.Contains(t, out.String(), "Superuser root@example.com created successfully.")
}

func TestCreateSuperuser_RetriesOnMismatch(t *testing.T) {
	stubPasswords(t, "a", "b", "c", "c")
	store := &fakeStore{}
	var out bytes.Buffer

	input := "root@example.com\nRoot\nUser\nroot@example.com\nRoot\nUser\n"
	_, err := CreateSuperuser(context.Background(), store, rdr(input), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Error (password2): The two password fields didn't match.")
	require.Len(t, store.created, 1)
	assert.Equal(t, "c", store.created[0].Password)
}

func TestCreateSuperuser_DuplicateThenEOF(t *testing.T) {
	stubPasswords(t, "pw", "pw")
	store := &fakeStore{taken: map[string]bool{"root@example.com": true}}
	var out bytes.Buffer

	_, err := CreateSuperuser(context.Background(), store, rdr("root@example.com\nRoot\nUser\n"), &out)
	assert.ErrorIs(t, err, io.EOF)
	assert.Contains(t, out.String(), "Error (email): This email has already been taken.")
	assert.Empty(t, store.created)
}

func TestCreateSuperuser_StoreError(t *testing.T) {
	stubPasswords(t, "pw", "pw")
	store := &fakeStore{createErr: errors.New("db down")}
	var out bytes.Buffer

	_, err := CreateSuperuser(context.Background(), store, rdr("root@example.com\nRoot\nUser\n"), &out)
	assert.EqualError(t, err, "db down")
}

func TestCreateSuperuser_RetriesOnMalformedEmail(t *testing.T) {
	stubPasswords(t, "pw", "pw", "pw", "pw")
	store := &fakeStore{}
	var out bytes.Buffer

	input := "root\nRoot\nUser\nroot@example.com\nRoot\nUser\n"
	a, err := CreateSuperuser(context.Background(), store, rdr(input), &out)
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", a.Email)
	assert.Contains(t, out.String(), "Error (email): Enter a valid email address.")
	assert.Contains(t, out.String(), "Superuser root@example.com created successfully.")
	require.Len(t, store.created, 1)
	assert.Equal(t, "root@example.com", store.created[0].Email)
}
