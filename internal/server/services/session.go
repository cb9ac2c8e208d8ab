package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/signin/internal/common"
	"github.com/dmitrijs2005/signin/internal/logging"
	"github.com/dmitrijs2005/signin/internal/server/auth"
	"github.com/dmitrijs2005/signin/internal/server/config"
	"github.com/dmitrijs2005/signin/internal/server/models"
	"github.com/dmitrijs2005/signin/internal/server/repositories/repomanager"
)

// SessionService authenticates accounts by email and password and turns
// signed session tokens back into accounts.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	jwtSecret   []byte
	ttl         time.Duration
	now         func() time.Time
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *SessionService {
	return &SessionService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "sessions"),
		jwtSecret:   []byte(cfg.SecretKey),
		ttl:         cfg.SessionTTL,
		now:         time.Now,
	}
}

// TTL is the lifetime of tokens minted by Login.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Login verifies the credentials, records the login time and returns a
// signed session token. Unknown, inactive and wrong-password accounts all
// yield common.ErrorUnauthorized.
func (s *SessionService) Login(ctx context.Context, email, password string) (string, *models.Account, error) {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "login lookup failed", "error", err)
		return "", nil, common.ErrorInternal
	}

	if !account.IsActive || !account.CheckPassword(password) {
		s.logger.Warn(ctx, "login rejected", "email", account.Email)
		return "", nil, common.ErrorUnauthorized
	}

	now := s.now()
	if err := repo.TouchLastLogin(ctx, account.ID, now); err != nil {
		s.logger.Error(ctx, "recording last login failed", "error", err)
		return "", nil, common.ErrorInternal
	}
	account.LastLogin = &now

	token, err := auth.GenerateToken(account.ID, account.Email, s.jwtSecret, s.ttl)
	if err != nil {
		return "", nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "login", "email", account.Email)
	return token, account, nil
}

// Resolve returns the active account a token was issued for. Every failure
// other than a storage error wraps common.ErrorUnauthenticated.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.Account, error) {
	if token == "" {
		return nil, common.ErrorUnauthenticated
	}

	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUnauthenticated, err)
	}

	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthenticated
		}
		return nil, fmt.Errorf("error resolving session: %w", err)
	}

	if !account.IsActive {
		return nil, common.ErrorUnauthenticated
	}

	return account, nil
}
