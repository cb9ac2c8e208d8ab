package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/signin/internal/common"
	"github.com/dmitrijs2005/signin/internal/logging"
	"github.com/dmitrijs2005/signin/internal/server/admin"
	"github.com/dmitrijs2005/signin/internal/server/models"
	"github.com/dmitrijs2005/signin/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/signin/internal/server/services"
)

// fakeAccounts is an in-memory account manager.
type fakeAccounts struct {
	mu      sync.Mutex
	items   map[string]*models.Account // by id
	listErr error
}

func newFakeAccounts(list ...*models.Account) *fakeAccounts {
	f := &fakeAccounts{items: map[string]*models.Account{}}
	for _, a := range list {
		f.items[a.ID] = a
	}
	return f
}

func (f *fakeAccounts) find(email string) *models.Account {
	for _, a := range f.items {
		if a.Email == services.NormalizeEmail(email) {
			return a
		}
	}
	return nil
}

func (f *fakeAccounts) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.find(email)
	if a == nil {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) filter(q accounts.ListQuery) []*models.Account {
	var out []*models.Account
	for _, a := range f.items {
		if q.Search != "" && !strings.Contains(a.Email, q.Search) {
			continue
		}
		if q.IsStaff != nil && a.IsStaff != *q.IsStaff {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

func (f *fakeAccounts) List(ctx context.Context, q accounts.ListQuery) ([]*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.filter(q), nil
}

func (f *fakeAccounts) Count(ctx context.Context, q accounts.ListQuery) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.filter(q)), nil
}

func (f *fakeAccounts) CreateUser(ctx context.Context, in services.AccountInput) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := models.NewAccount(services.NormalizeEmail(in.Email), in.FirstName, in.LastName)
	a.ID = fmt.Sprintf("id-%d", len(f.items)+1)
	if err := a.SetPassword(in.Password); err != nil {
		return nil, err
	}
	f.items[a.ID] = a
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) EmailTaken(ctx context.Context, email string, excludeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.find(email)
	return a != nil && a.ID != excludeID, nil
}

func (f *fakeAccounts) Save(ctx context.Context, a *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.items[a.ID]
	if !ok {
		return common.ErrorNotFound
	}
	cp := *a
	cp.PasswordHash = stored.PasswordHash
	f.items[a.ID] = &cp
	return nil
}

func (f *fakeAccounts) Deactivate(ctx context.Context, email string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.find(email)
	if a == nil {
		return nil, common.ErrorNotFound
	}
	a.IsActive = false
	cp := *a
	return &cp, nil
}

// fakeSessions maps opaque tokens onto accounts.
type fakeSessions struct {
	accounts *fakeAccounts
	tokens   map[string]string // token -> email
}

func (f *fakeSessions) Login(ctx context.Context, email, password string) (string, *models.Account, error) {
	a, err := f.accounts.GetByEmail(ctx, email)
	if err != nil || !a.IsActive || !a.CheckPassword(password) {
		return "", nil, common.ErrorUnauthorized
	}
	token := "tok-" + a.Email
	f.tokens[token] = a.Email
	return token, a, nil
}

func (f *fakeSessions) Resolve(ctx context.Context, token string) (*models.Account, error) {
	email, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorUnauthenticated
	}
	a, err := f.accounts.GetByEmail(ctx, email)
	if err != nil || !a.IsActive {
		return nil, common.ErrorUnauthenticated
	}
	return a, nil
}

func (f *fakeSessions) TTL() time.Duration { return time.Hour }

type fakeExporter struct{}

func (fakeExporter) Export(ctx context.Context, q accounts.ListQuery) (*services.ExportResult, error) {
	return &services.ExportResult{Key: "exports/x.csv", URL: "http://s3/x.csv", Count: 2}, nil
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

// ---- fixture ----

type fixture struct {
	handler  http.Handler
	accounts *fakeAccounts
	sessions *fakeSessions
}

func newFixture(t *testing.T, exporter admin.Exporter) *fixture {
	t.Helper()

	staff := models.NewAccount("ada@example.com", "Ada", "Lovelace")
	staff.ID = "a1"
	staff.IsStaff = true
	if err := staff.SetPassword("pw"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}

	plain := models.NewAccount("bob@example.com", "Bob", "Smith")
	plain.ID = "b1"
	plain.SetUnusablePassword()

	accts := newFakeAccounts(staff, plain)
	sessions := &fakeSessions{accounts: accts, tokens: map[string]string{
		"tok-ada":   "ada@example.com",
		"tok-bob":   "bob@example.com",
		"tok-ghost": "ghost@example.com",
	}}

	srv := NewServer("127.0.0.1:0", logging.Nop{}, Deps{
		Accounts: accts,
		Sessions: sessions,
		Console:  admin.NewAccountAdmin(accts, exporter, logging.Nop{}),
	})
	return &fixture{handler: srv.Handler(), accounts: accts, sessions: sessions}
}

func (f *fixture) do(method, target, token string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: common.SessionCookieName, Value: token})
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}
