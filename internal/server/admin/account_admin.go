package admin

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/signin/internal/common"
	"github.com/dmitrijs2005/signin/internal/logging"
	"github.com/dmitrijs2005/signin/internal/server/forms"
	"github.com/dmitrijs2005/signin/internal/server/models"
	"github.com/dmitrijs2005/signin/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/signin/internal/server/services"
)

// ErrExportUnavailable is returned by Export when no exporter is configured.
var ErrExportUnavailable = errors.New("export unavailable")

// Manager is the account manager surface used by the console.
type Manager interface {
	forms.AccountStore
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	List(ctx context.Context, q accounts.ListQuery) ([]*models.Account, error)
	Count(ctx context.Context, q accounts.ListQuery) (int, error)
	Deactivate(ctx context.Context, email string) (*models.Account, error)
}

var _ Manager = (*services.AccountManager)(nil)

type Exporter interface {
	Export(ctx context.Context, q accounts.ListQuery) (*services.ExportResult, error)
}

// ChangeListParams are the operator's search, filter and page choices.
type ChangeListParams struct {
	Query   string
	IsStaff *bool
	Page    int
}

// ChangeList is one page of the account listing.
type ChangeList struct {
	Params   ChangeListParams
	Accounts []*models.Account
	Total    int
	Pages    int
}

func (c *ChangeList) HasPrev() bool { return c.Params.Page > 1 }
func (c *ChangeList) HasNext() bool { return c.Params.Page < c.Pages }

// AccountAdmin composes the forms and the account manager for operators.
type AccountAdmin struct {
	options  ModelAdmin
	manager  Manager
	exporter Exporter
	logger   logging.Logger
}

// NewAccountAdmin builds the console backend. exporter may be nil.
func NewAccountAdmin(m Manager, exporter Exporter, logger logging.Logger) *AccountAdmin {
	return &AccountAdmin{
		options:  AccountOptions,
		manager:  m,
		exporter: exporter,
		logger:   logger.With("module", "admin"),
	}
}

func (a *AccountAdmin) Options() ModelAdmin {
	return a.options
}

// Authorize rejects principals that may not use the console.
func Authorize(p models.Principal) error {
	if p == nil {
		return common.ErrorUnauthenticated
	}
	if !p.CanAccessConsole() {
		return common.ErrorForbidden
	}
	return nil
}

func (a *AccountAdmin) query(p ChangeListParams) accounts.ListQuery {
	return accounts.ListQuery{Search: p.Query, IsStaff: p.IsStaff}
}

// ChangeList returns the requested page ordered by email.
func (a *AccountAdmin) ChangeList(ctx context.Context, p ChangeListParams) (*ChangeList, error) {
	if p.Page < 1 {
		p.Page = 1
	}

	q := a.query(p)
	total, err := a.manager.Count(ctx, q)
	if err != nil {
		return nil, err
	}

	per := a.options.PerPage
	pages := (total + per - 1) / per
	if pages == 0 {
		pages = 1
	}
	if p.Page > pages {
		p.Page = pages
	}

	q.Limit = per
	q.Offset = (p.Page - 1) * per
	list, err := a.manager.List(ctx, q)
	if err != nil {
		return nil, err
	}

	return &ChangeList{Params: p, Accounts: list, Total: total, Pages: pages}, nil
}

func (a *AccountAdmin) Get(ctx context.Context, email string) (*models.Account, error) {
	return a.manager.GetByEmail(ctx, email)
}

// Add creates a regular account through the creation form.
func (a *AccountAdmin) Add(ctx context.Context, f forms.CreationForm) (*models.Account, error) {
	account, err := f.Save(ctx, a.manager)
	if err != nil {
		return nil, err
	}
	a.logger.Info(ctx, "account added", "email", account.Email)
	return account, nil
}

// Change applies the change form to the account stored under email.
func (a *AccountAdmin) Change(ctx context.Context, email string, f forms.ChangeForm) (*models.Account, error) {
	existing, err := a.manager.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	account, err := f.Apply(ctx, a.manager, existing)
	if err != nil {
		return nil, err
	}
	a.logger.Info(ctx, "account changed", "email", account.Email)
	return account, nil
}

func (a *AccountAdmin) Deactivate(ctx context.Context, email string) (*models.Account, error) {
	return a.manager.Deactivate(ctx, email)
}

// Export uploads every account matching the search and filter, ignoring
// the page.
func (a *AccountAdmin) Export(ctx context.Context, p ChangeListParams) (*services.ExportResult, error) {
	if a.exporter == nil {
		return nil, ErrExportUnavailable
	}
	return a.exporter.Export(ctx, a.query(p))
}
