package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/signin/internal/common"
	"github.com/dmitrijs2005/signin/internal/logging"
	"github.com/dmitrijs2005/signin/internal/server/models"
	"github.com/dmitrijs2005/signin/internal/server/repositories/accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@example.com", NormalizeEmail("  Ada@Example.COM\t"))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestCreateAccount_Regular(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := newFakeAccountsRepo()
	m := NewAccountManager(db, &fakeRepoManager{a: repo}, logging.Nop{})

	a, err := m.CreateAccount(context.Background(), AccountInput{
		Email: "  Ada@Example.COM ", FirstName: "Ada", LastName: "Lovelace", Password: "s3cret",
	}, false)
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "ada@example.com", a.Email)
	assert.False(t, a.IsStaff)
	assert.False(t, a.IsSuperuser)
	assert.True(t, a.IsActive)
	assert.NotEqual(t, "s3cret", a.PasswordHash)
	assert.True(t, a.CheckPassword("s3cret"))
	assert.Equal(t, a.PasswordHash, repo.byEmail("ada@example.com").PasswordHash)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSuperuser_SetsBothFlags(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	m := NewAccountManager(db, &fakeRepoManager{a: newFakeAccountsRepo()}, logging.Nop{})

	a, err := m.CreateSuperuser(context.Background(), AccountInput{
		Email: "root@example.com", FirstName: "Grace", LastName: "Hopper", Password: "pw",
	})
	require.NoError(t, err)
	assert.True(t, a.IsStaff)
	assert.True(t, a.IsSuperuser)
	assert.True(t, a.CanAccessConsole())
}

func TestCreateAccount_MissingFields(t *testing.T) {
	tests := []struct {
		name  string
		in    AccountInput
		field string
	}{
		{"email", AccountInput{Email: " ", FirstName: "Ada", LastName: "Lovelace"}, models.FieldEmail},
		{"first_name", AccountInput{Email: "ada@example.com", LastName: "Lovelace"}, models.FieldFirstName},
		{"last_name", AccountInput{Email: "ada@example.com", FirstName: "Ada"}, models.FieldLastName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newSQLMockDB(t)
			repo := newFakeAccountsRepo()
			m := NewAccountManager(db, &fakeRepoManager{a: repo}, logging.Nop{})

			_, err := m.CreateUser(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrMissingField), "got %v", err)

			fe, ok := models.AsFieldErrors(err)
			require.True(t, ok)
			assert.Contains(t, fe.Fields(), tt.field)
			assert.Empty(t, repo.items)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreateAccount_InvalidPhone(t *testing.T) {
	db, _ := newSQLMockDB(t)
	m := NewAccountManager(db, &fakeRepoManager{a: newFakeAccountsRepo()}, logging.Nop{})

	_, err := m.CreateUser(context.Background(), AccountInput{
		Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace", Phone: "5551234567",
	})
	assert.ErrorIs(t, err, common.ErrInvalidPhone)
}

func TestCreateAccount_DuplicateEmailCaseInsensitive(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	repo := newFakeAccountsRepo()
	m := NewAccountManager(db, &fakeRepoManager{a: repo}, logging.Nop{})
	in := AccountInput{Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace", Password: "x"}

	_, err := m.CreateUser(context.Background(), in)
	require.NoError(t, err)

	in.Email = "ADA@example.com"
	_, err = m.CreateUser(context.Background(), in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDuplicateEmail), "got %v", err)

	fe, ok := models.AsFieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, []string{models.DuplicateEmailMessage}, fe.ByField()[models.FieldEmail])
	assert.Len(t, repo.items, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAccount_DeactivatedHolderIsDuplicate(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	old := seededAccount(t, "old", "ada@example.com", "x")
	old.IsActive = false
	repo := newFakeAccountsRepo(old)
	m := NewAccountManager(db, &fakeRepoManager{a: repo}, logging.Nop{})

	_, err := m.CreateUser(context.Background(), AccountInput{
		Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)
	assert.NotErrorIs(t, err, common.ErrConstraintViolation)

	fe, ok := models.AsFieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, []string{models.DuplicateEmailMessage}, fe.ByField()[models.FieldEmail])
	assert.Len(t, repo.items, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAccount_ConcurrentInsertSurfacesConstraintViolation(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	repo := newFakeAccountsRepo(seededAccount(t, "other", "ada@example.com", "x"))
	repo.staleExists = true
	m := NewAccountManager(db, &fakeRepoManager{a: repo}, logging.Nop{})

	_, err := m.CreateUser(context.Background(), AccountInput{
		Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrConstraintViolation), "got %v", err)
	_, isForm := models.AsFieldErrors(err)
	assert.False(t, isForm)
}

func TestCreateAccount_ExistsCheckError(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	repo := newFakeAccountsRepo()
	repo.existsErr = errBoom{}
	m := NewAccountManager(db, &fakeRepoManager{a: repo}, logging.Nop{})

	_, err := m.CreateUser(context.Background(), AccountInput{
		Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace",
	})
	assert.ErrorContains(t, err, "error creating account: boom")
}

func TestCreateAccount_EmptyPasswordIsUnusable(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	m := NewAccountManager(db, &fakeRepoManager{a: newFakeAccountsRepo()}, logging.Nop{})

	a, err := m.CreateUser(context.Background(), AccountInput{
		Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace",
	})
	require.NoError(t, err)
	assert.False(t, a.HasUsablePassword())
	assert.False(t, a.CheckPassword(""))
}

func TestGetByEmail_NormalizesAndNotFound(t *testing.T) {
	db, _ := newSQLMockDB(t)
	repo := newFakeAccountsRepo(seededAccount(t, "a1", "ada@example.com", "x"))
	m := NewAccountManager(db, &fakeRepoManager{a: repo}, logging.Nop{})

	a, err := m.GetByEmail(context.Background(), " ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "a1", a.ID)

	_, err = m.GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSave_KeepsPasswordHash(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	seed := seededAccount(t, "a1", "ada@example.com", "original")
	repo := newFakeAccountsRepo(seed)
	m := NewAccountManager(db, &fakeRepoManager{a: repo}, logging.Nop{})

	a, err := m.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	a.LastName = "King"
	a.PasswordHash = "tampered"

	require.NoError(t, m.Save(context.Background(), a))

	stored := repo.items["a1"]
	assert.Equal(t, "King", stored.LastName)
	assert.Equal(t, seed.PasswordHash, stored.PasswordHash)
}

func TestSave_RejectsEmailOfAnotherAccount(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	repo := newFakeAccountsRepo(
		seededAccount(t, "a1", "ada@example.com", "x"),
		seededAccount(t, "a2", "bob@example.com", "x"),
	)
	m := NewAccountManager(db, &fakeRepoManager{a: repo}, logging.Nop{})

	a, err := m.GetByEmail(context.Background(), "bob@example.com")
	require.NoError(t, err)
	a.Email = "Ada@Example.com"

	err = m.Save(context.Background(), a)
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)
	assert.Equal(t, "bob@example.com", repo.items["a2"].Email)
}

func TestSave_DeactivatedAccountCannotTakeUsedEmail(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	gone := seededAccount(t, "a1", "ada@example.com", "x")
	gone.IsActive = false
	repo := newFakeAccountsRepo(gone, seededAccount(t, "a2", "bob@example.com", "x"))
	m := NewAccountManager(db, &fakeRepoManager{a: repo}, logging.Nop{})

	a, err := m.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	a.Email = "bob@example.com"

	assert.ErrorIs(t, m.Save(context.Background(), a), common.ErrDuplicateEmail)
	assert.Equal(t, "ada@example.com", repo.items["a1"].Email)
}

func TestSave_InvalidRecordNotWritten(t *testing.T) {
	db, mock := newSQLMockDB(t)

	repo := newFakeAccountsRepo(seededAccount(t, "a1", "ada@example.com", "x"))
	m := NewAccountManager(db, &fakeRepoManager{a: repo}, logging.Nop{})

	a := *repo.items["a1"]
	a.Phone = "555"
	assert.ErrorIs(t, m.Save(context.Background(), &a), common.ErrInvalidPhone)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetPassword(t *testing.T) {
	db, _ := newSQLMockDB(t)
	repo := newFakeAccountsRepo(seededAccount(t, "a1", "ada@example.com", "old"))
	m := NewAccountManager(db, &fakeRepoManager{a: repo}, logging.Nop{})

	require.NoError(t, m.SetPassword(context.Background(), "ada@example.com", "new"))

	stored := repo.items["a1"]
	assert.True(t, stored.CheckPassword("new"))
	assert.False(t, stored.CheckPassword("old"))

	assert.ErrorIs(t, m.SetPassword(context.Background(), "ghost@example.com", "x"), common.ErrorNotFound)
}

func TestDeactivate(t *testing.T) {
	db, _ := newSQLMockDB(t)
	repo := newFakeAccountsRepo(seededAccount(t, "a1", "ada@example.com", "x"))
	m := NewAccountManager(db, &fakeRepoManager{a: repo}, logging.Nop{})

	a, err := m.Deactivate(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.False(t, a.IsActive)
	assert.False(t, repo.items["a1"].IsActive)

	// The address stays reserved by the deactivated record.
	taken, err := m.EmailTaken(context.Background(), "ada@example.com", "")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestList_PassesQuery(t *testing.T) {
	db, _ := newSQLMockDB(t)
	repo := newFakeAccountsRepo(
		seededAccount(t, "a1", "ada@example.com", "x"),
		seededAccount(t, "a2", "bob@example.com", "x"),
	)
	m := NewAccountManager(db, &fakeRepoManager{a: repo}, logging.Nop{})

	staff := true
	list, err := m.List(context.Background(), accounts.ListQuery{Search: "bob", IsStaff: &staff})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bob@example.com", list[0].Email)
	require.NotNil(t, repo.listQuery.IsStaff)
	assert.True(t, *repo.listQuery.IsStaff)

	repo.listErr = errBoom{}
	_, err = m.List(context.Background(), accounts.ListQuery{})
	assert.ErrorContains(t, err, "error listing accounts: boom")
}
