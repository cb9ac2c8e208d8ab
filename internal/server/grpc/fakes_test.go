package grpc

import (
	"context"

	"github.com/dmitrijs2005/signin/internal/common"
	"github.com/dmitrijs2005/signin/internal/logging"
	"github.com/dmitrijs2005/signin/internal/server/admin"
	"github.com/dmitrijs2005/signin/internal/server/forms"
	"github.com/dmitrijs2005/signin/internal/server/models"
	"github.com/dmitrijs2005/signin/internal/server/services"
)

// ---- fakes ----

type fakeConsole struct {
	list      *admin.ChangeList
	listErr   error
	gotParams admin.ChangeListParams

	account *models.Account
	getErr  error

	added  forms.CreationForm
	addErr error

	deactivateErr error

	export    *services.ExportResult
	exportErr error
}

func (f *fakeConsole) ChangeList(ctx context.Context, p admin.ChangeListParams) (*admin.ChangeList, error) {
	f.gotParams = p
	return f.list, f.listErr
}

func (f *fakeConsole) Get(ctx context.Context, email string) (*models.Account, error) {
	return f.account, f.getErr
}

func (f *fakeConsole) Add(ctx context.Context, form forms.CreationForm) (*models.Account, error) {
	f.added = form
	if f.addErr != nil {
		return nil, f.addErr
	}
	return f.account, nil
}

func (f *fakeConsole) Deactivate(ctx context.Context, email string) (*models.Account, error) {
	if f.deactivateErr != nil {
		return nil, f.deactivateErr
	}
	return f.account, nil
}

func (f *fakeConsole) Export(ctx context.Context, p admin.ChangeListParams) (*services.ExportResult, error) {
	f.gotParams = p
	return f.export, f.exportErr
}

type fakeSessions struct {
	tokens map[string]*models.Account
}

func (f *fakeSessions) Login(ctx context.Context, email, password string) (string, *models.Account, error) {
	for token, a := range f.tokens {
		if a.Email == email && password == "pw" {
			return token, a, nil
		}
	}
	return "", nil, common.ErrorUnauthorized
}

func (f *fakeSessions) Resolve(ctx context.Context, token string) (*models.Account, error) {
	if a, ok := f.tokens[token]; ok {
		return a, nil
	}
	return nil, common.ErrorUnauthenticated
}

// ---- helpers ----

func staffAccount() *models.Account {
	a := models.NewAccount("ada@example.com", "Ada", "Lovelace")
	a.ID = "a1"
	a.IsStaff = true
	return a
}

func plainAccount() *models.Account {
	a := models.NewAccount("bob@example.com", "Bob", "Smith")
	a.ID = "b1"
	return a
}

func newSessions() *fakeSessions {
	return &fakeSessions{tokens: map[string]*models.Account{
		"staff-token": staffAccount(),
		"plain-token": plainAccount(),
	}}
}

func newServer(c Console, s Sessions) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", logging.Nop{}, c, s)
}
