// Package services contains server-side business logic. This file implements
// AccountManager, the single entry point for creating and mutating accounts.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/signin/internal/common"
	"github.com/dmitrijs2005/signin/internal/dbx"
	"github.com/dmitrijs2005/signin/internal/logging"
	"github.com/dmitrijs2005/signin/internal/server/models"
	"github.com/dmitrijs2005/signin/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/signin/internal/server/repositories/repomanager"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/dmitrijs2005/signin/internal/server/services")

// AccountInput is the raw data needed to create an account.
type AccountInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Title     string
	Phone     string
}

// AccountManager creates regular and privileged accounts and applies
// record-level changes. The storage handle is injected.
type AccountManager struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewAccountManager(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *AccountManager {
	return &AccountManager{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "accounts"),
	}
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser creates a regular account.
func (s *AccountManager) CreateUser(ctx context.Context, in AccountInput) (*models.Account, error) {
	return s.CreateAccount(ctx, in, false)
}

// CreateSuperuser creates a privileged account.
func (s *AccountManager) CreateSuperuser(ctx context.Context, in AccountInput) (*models.Account, error) {
	return s.CreateAccount(ctx, in, true)
}

// CreateAccount validates and inserts a new account. Missing or malformed
// fields and an email already held by another account come back as
// models.FieldErrors. A unique violation raised by storage is returned
// wrapping common.ErrConstraintViolation.
func (s *AccountManager) CreateAccount(ctx context.Context, in AccountInput, privileged bool) (*models.Account, error) {
	ctx, span := tracer.Start(ctx, "AccountManager.CreateAccount",
		trace.WithAttributes(attribute.Bool("signin.privileged", privileged)))
	defer span.End()

	account := models.NewAccount(NormalizeEmail(in.Email), strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName))
	account.Title = strings.TrimSpace(in.Title)
	account.Phone = strings.TrimSpace(in.Phone)
	account.IsStaff = privileged
	account.IsSuperuser = privileged

	if err := account.Validate(); err != nil {
		return nil, err
	}

	if err := account.SetPassword(in.Password); err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	var created *models.Account
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		if err := checkEmailFree(ctx, repo, account.Email, ""); err != nil {
			return err
		}

		var err error
		created, err = repo.Create(ctx, account)
		return err
	})
	if err != nil {
		if _, ok := models.AsFieldErrors(err); ok {
			return nil, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	s.logger.Info(ctx, "account created", "email", created.Email, "privileged", privileged)
	return created, nil
}

// GetByEmail returns common.ErrorNotFound when no account uses email.
func (s *AccountManager) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	account, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("error fetching account: %w", err)
	}
	return account, nil
}

// List returns accounts ordered by email.
func (s *AccountManager) List(ctx context.Context, q accounts.ListQuery) ([]*models.Account, error) {
	list, err := s.repomanager.Accounts(s.db).List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("error listing accounts: %w", err)
	}
	return list, nil
}

func (s *AccountManager) Count(ctx context.Context, q accounts.ListQuery) (int, error) {
	n, err := s.repomanager.Accounts(s.db).Count(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("error counting accounts: %w", err)
	}
	return n, nil
}

// EmailTaken reports whether an account other than excludeID already
// holds email. Deactivated accounts keep their address reserved.
func (s *AccountManager) EmailTaken(ctx context.Context, email string, excludeID string) (bool, error) {
	taken, err := s.repomanager.Accounts(s.db).ExistsByEmail(ctx, NormalizeEmail(email), excludeID)
	if err != nil {
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return taken, nil
}

// Save validates account and writes its editable fields. The stored
// password hash is never touched here.
func (s *AccountManager) Save(ctx context.Context, account *models.Account) error {
	ctx, span := tracer.Start(ctx, "AccountManager.Save")
	defer span.End()

	account.Email = NormalizeEmail(account.Email)
	if err := account.Validate(); err != nil {
		return err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)
		if err := checkEmailFree(ctx, repo, account.Email, account.ID); err != nil {
			return err
		}
		return repo.Update(ctx, account)
	})
	if err != nil {
		if _, ok := models.AsFieldErrors(err); ok {
			return err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return fmt.Errorf("error saving account: %w", err)
	}

	s.logger.Debug(ctx, "account saved", "email", account.Email)
	return nil
}

// SetPassword is the only operation that replaces a stored password hash.
func (s *AccountManager) SetPassword(ctx context.Context, email string, raw string) error {
	account, err := s.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := account.SetPassword(raw); err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.repomanager.Accounts(s.db).SetPasswordHash(ctx, account.ID, account.PasswordHash); err != nil {
		return fmt.Errorf("error storing password: %w", err)
	}
	s.logger.Info(ctx, "password changed", "email", account.Email)
	return nil
}

// Deactivate soft-deletes the account by clearing its active flag.
func (s *AccountManager) Deactivate(ctx context.Context, email string) (*models.Account, error) {
	account, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return account, nil
	}
	account.IsActive = false
	if err := s.repomanager.Accounts(s.db).Update(ctx, account); err != nil {
		return nil, fmt.Errorf("error deactivating account: %w", err)
	}
	s.logger.Info(ctx, "account deactivated", "email", account.Email)
	return account, nil
}

func checkEmailFree(ctx context.Context, repo accounts.Repository, email, excludeID string) error {
	taken, err := repo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		var fe models.FieldErrors
		fe.Add(models.FieldEmail, common.ErrDuplicateEmail, models.DuplicateEmailMessage)
		return fe
	}
	return nil
}
