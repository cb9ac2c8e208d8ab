package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/signin/internal/server/models"
)

// ListQuery narrows and pages an account listing. Results are always
// ordered by email.
type ListQuery struct {
	// Search matches a case-insensitive substring of the email.
	Search string
	// IsStaff filters on the staff flag when non-nil.
	IsStaff *bool
	// ActiveOnly hides deactivated accounts.
	ActiveOnly bool
	Limit      int
	Offset     int
}

type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	Update(ctx context.Context, account *models.Account) error
	SetPasswordHash(ctx context.Context, id string, hash string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, q ListQuery) ([]*models.Account, error)
	Count(ctx context.Context, q ListQuery) (int, error)
}
