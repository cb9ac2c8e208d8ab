package forms

import (
	"context"

	"github.com/dmitrijs2005/signin/internal/server/models"
	"github.com/dmitrijs2005/signin/internal/server/services"
)

// AccountStore is the subset of services.AccountManager the forms use.
type AccountStore interface {
	CreateUser(ctx context.Context, in services.AccountInput) (*models.Account, error)
	EmailTaken(ctx context.Context, email string, excludeID string) (bool, error)
	Save(ctx context.Context, account *models.Account) error
}

var _ AccountStore = (*services.AccountManager)(nil)
