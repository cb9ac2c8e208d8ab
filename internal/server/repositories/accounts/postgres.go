package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/signin/internal/common"
	"github.com/dmitrijs2005/signin/internal/dbx"
	"github.com/dmitrijs2005/signin/internal/server/models"
	"github.com/google/uuid"
)

const accountColumns = `id, email, first_name, last_name, title, phone, password_hash,
		        is_staff, is_superuser, is_active, last_login, date_joined, updated_at`

// newID is a seam for tests.
var newID = uuid.NewString

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (id, email, first_name, last_name, title, phone, password_hash,
		                       is_staff, is_superuser, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING date_joined, updated_at`

	if account.ID == "" {
		account.ID = newID()
	}

	err := r.db.QueryRowContext(ctx, query,
		account.ID, account.Email, account.FirstName, account.LastName, account.Title, account.Phone,
		account.PasswordHash, account.IsStaff, account.IsSuperuser, account.IsActive,
	).Scan(&account.DateJoined, &account.UpdatedAt)

	if err != nil {
		return nil, wrapDBError(err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.getOne(ctx, query, email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	account, err := scanAccount(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}

// ExistsByEmail reports whether an account other than excludeID, active
// or not, already holds email. Pass "" to consider every account.
func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	query :=
		`SELECT EXISTS (
		   SELECT 1 FROM accounts
		   WHERE email = $1 AND id::text <> $2
		 )`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// Update writes every editable column. The password hash is deliberately
// not part of the statement; use SetPasswordHash.
func (r *PostgresRepository) Update(ctx context.Context, account *models.Account) error {
	query :=
		`UPDATE accounts
		 SET email = $2, first_name = $3, last_name = $4, title = $5, phone = $6,
		     is_staff = $7, is_superuser = $8, is_active = $9, updated_at = NOW()
		 WHERE id = $1
		 RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		account.ID, account.Email, account.FirstName, account.LastName, account.Title, account.Phone,
		account.IsStaff, account.IsSuperuser, account.IsActive,
	).Scan(&account.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return wrapDBError(err)
	}
	return nil
}

func (r *PostgresRepository) SetPasswordHash(ctx context.Context, id string, hash string) error {
	query := `UPDATE accounts SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, query, id, hash)
}

func (r *PostgresRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE accounts SET last_login = $2 WHERE id = $1`
	return r.execOne(ctx, query, id, at)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, q ListQuery) ([]*models.Account, error) {
	where, args := buildWhere(q)
	query := `SELECT ` + accountColumns + ` FROM accounts` + where + ` ORDER BY email`

	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context, q ListQuery) (int, error) {
	where, args := buildWhere(q)
	query := `SELECT COUNT(*) FROM accounts` + where

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func buildWhere(q ListQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if s := strings.TrimSpace(q.Search); s != "" {
		args = append(args, "%"+s+"%")
		conds = append(conds, fmt.Sprintf("email ILIKE $%d", len(args)))
	}
	if q.IsStaff != nil {
		args = append(args, *q.IsStaff)
		conds = append(conds, fmt.Sprintf("is_staff = $%d", len(args)))
	}
	if q.ActiveOnly {
		conds = append(conds, "is_active")
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	a := &models.Account{}
	var lastLogin sql.NullTime
	err := row.Scan(&a.ID, &a.Email, &a.FirstName, &a.LastName, &a.Title, &a.Phone, &a.PasswordHash,
		&a.IsStaff, &a.IsSuperuser, &a.IsActive, &lastLogin, &a.DateJoined, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		a.LastLogin = &t
	}
	return a, nil
}

func wrapDBError(err error) error {
	if dbx.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", common.ErrConstraintViolation, err)
	}
	return fmt.Errorf("db error: %w", err)
}
