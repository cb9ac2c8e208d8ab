package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/signin/internal/common"
	"github.com/dmitrijs2005/signin/internal/dbx"
	"github.com/dmitrijs2005/signin/internal/server/models"
	"github.com/dmitrijs2005/signin/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/signin/internal/server/repositories/repomanager"
)

// -------- test fakes --------

type fakeAccountsRepo struct {
	accounts.Repository

	items  map[string]*models.Account
	nextID int

	getErr    error
	existsErr error
	listErr   error
	touchErr  error
	listQuery accounts.ListQuery

	// staleExists makes ExistsByEmail miss rows, as when a concurrent
	// insert lands between the check and the write.
	staleExists bool
}

func newFakeAccountsRepo(seed ...*models.Account) *fakeAccountsRepo {
	f := &fakeAccountsRepo{items: map[string]*models.Account{}}
	for _, a := range seed {
		cp := *a
		f.items[cp.ID] = &cp
	}
	return f
}

func (f *fakeAccountsRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	for _, existing := range f.items {
		if existing.Email == a.Email {
			return nil, fmt.Errorf("%w: accounts_email_key", common.ErrConstraintViolation)
		}
	}
	f.nextID++
	a.ID = fmt.Sprintf("id-%d", f.nextID)
	a.DateJoined = time.Now()
	cp := *a
	f.items[a.ID] = &cp
	return a, nil
}

func (f *fakeAccountsRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, a := range f.items {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccountsRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccountsRepo) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	if f.staleExists {
		return false, nil
	}
	for _, a := range f.items {
		if a.Email == email && a.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAccountsRepo) Update(ctx context.Context, a *models.Account) error {
	stored, ok := f.items[a.ID]
	if !ok {
		return common.ErrorNotFound
	}
	hash := stored.PasswordHash
	cp := *a
	cp.PasswordHash = hash
	f.items[a.ID] = &cp
	return nil
}

func (f *fakeAccountsRepo) SetPasswordHash(ctx context.Context, id string, hash string) error {
	stored, ok := f.items[id]
	if !ok {
		return common.ErrorNotFound
	}
	stored.PasswordHash = hash
	return nil
}

func (f *fakeAccountsRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	stored, ok := f.items[id]
	if !ok {
		return common.ErrorNotFound
	}
	stored.LastLogin = &at
	return nil
}

func (f *fakeAccountsRepo) List(ctx context.Context, q accounts.ListQuery) ([]*models.Account, error) {
	f.listQuery = q
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.Account
	for _, a := range f.items {
		if q.Search != "" && !strings.Contains(a.Email, strings.ToLower(q.Search)) {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeAccountsRepo) byEmail(email string) *models.Account {
	for _, a := range f.items {
		if a.Email == email {
			return a
		}
	}
	return nil
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	a *fakeAccountsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(db dbx.DBTX) accounts.Repository     { return m.a }

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// -------- helpers --------

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func seededAccount(t *testing.T, id, email, password string) *models.Account {
	t.Helper()
	a := models.NewAccount(email, "Ada", "Lovelace")
	a.ID = id
	if err := a.SetPassword(password); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	return a
}
