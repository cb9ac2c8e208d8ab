package accounts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/signin/internal/common"
	"github.com/dmitrijs2005/signin/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "email", "first_name", "last_name", "title", "phone", "password_hash",
	"is_staff", "is_superuser", "is_active", "last_login", "date_joined", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock, db
}

func accountRow(rows *sqlmock.Rows, id, email string, staff bool, lastLogin any) *sqlmock.Rows {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return rows.AddRow(id, email, "Ada", "Lovelace", "", "(555) 123-4567", "$2a$10$hash",
		staff, staff, true, lastLogin, ts, ts)
}

func TestCreate_Success(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	orig := newID
	newID = func() string { return "acc-1" }
	t.Cleanup(func() { newID = orig })

	now := time.Now().UTC()
	q := `(?s)^INSERT\s+INTO\s+accounts\s*\(id,\s*email,.*\)\s*VALUES\s*\(\$1,.*\$10\)\s*RETURNING\s+date_joined,\s*updated_at$`
	mock.ExpectQuery(q).
		WithArgs("acc-1", "ada@example.com", "Ada", "Lovelace", "", "", "hash", false, false, true).
		WillReturnRows(sqlmock.NewRows([]string{"date_joined", "updated_at"}).AddRow(now, now))

	a := models.NewAccount("ada@example.com", "Ada", "Lovelace")
	a.PasswordHash = "hash"

	got, err := repo.Create(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", got.ID)
	assert.Equal(t, now, got.DateJoined)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_KeepsProvidedID(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`INSERT\s+INTO\s+accounts`).
		WithArgs("preset", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"date_joined", "updated_at"}).AddRow(now, now))

	a := models.NewAccount("ada@example.com", "Ada", "Lovelace")
	a.ID = "preset"
	_, err := repo.Create(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, "preset", a.ID)
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+accounts`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"})

	_, err := repo.Create(context.Background(), models.NewAccount("ada@example.com", "Ada", "Lovelace"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrConstraintViolation), "got %v", err)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+accounts`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), models.NewAccount("ada@example.com", "Ada", "Lovelace"))
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	login := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	q := `(?s)^SELECT\s+id,\s*email,.*updated_at\s+FROM\s+accounts\s+WHERE\s+email\s*=\s*\$1$`
	mock.ExpectQuery(q).
		WithArgs("ada@example.com").
		WillReturnRows(accountRow(sqlmock.NewRows(columns), "acc-1", "ada@example.com", true, login))

	got, err := repo.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "acc-1", got.ID)
	assert.Equal(t, "Ada", got.FirstName)
	assert.Equal(t, "(555) 123-4567", got.Phone)
	assert.True(t, got.IsStaff)
	assert.True(t, got.IsActive)
	require.NotNil(t, got.LastLogin)
	assert.Equal(t, login, *got.LastLogin)
}

func TestGetByEmail_NullLastLogin(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+accounts\s+WHERE\s+email`).
		WithArgs("ada@example.com").
		WillReturnRows(accountRow(sqlmock.NewRows(columns), "acc-1", "ada@example.com", false, nil))

	got, err := repo.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Nil(t, got.LastLogin)
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+accounts\s+WHERE\s+email`).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+accounts\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("acc-1").
		WillReturnError(errors.New("db err"))

	_, err := repo.GetByID(context.Background(), "acc-1")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestExistsByEmail(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	q := `(?s)SELECT\s+EXISTS\s*\(.*WHERE\s+email\s*=\s*\$1\s+AND\s+id::text\s*<>\s*\$2\s*\)`
	mock.ExpectQuery(q).
		WithArgs("ada@example.com", "").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(q).
		WithArgs("ada@example.com", "acc-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.ExistsByEmail(context.Background(), "ada@example.com", "")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(context.Background(), "ada@example.com", "acc-1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpdate_DoesNotTouchPassword(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	now := time.Now().UTC()
	q := `(?s)^UPDATE\s+accounts\s+SET\s+email\s*=\s*\$2,.*is_active\s*=\s*\$9,\s*updated_at\s*=\s*NOW\(\)\s+WHERE\s+id\s*=\s*\$1\s+RETURNING\s+updated_at$`
	mock.ExpectQuery(q).
		WithArgs("acc-1", "ada@example.com", "Ada", "King", "Countess", "", true, false, true).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	a := models.NewAccount("ada@example.com", "Ada", "King")
	a.ID = "acc-1"
	a.Title = "Countess"
	a.IsStaff = true
	a.PasswordHash = "must-not-be-sent"

	require.NoError(t, repo.Update(context.Background(), a))
	assert.Equal(t, now, a.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`UPDATE\s+accounts`).WillReturnError(sql.ErrNoRows)

	a := models.NewAccount("ada@example.com", "Ada", "King")
	a.ID = "missing"
	assert.ErrorIs(t, repo.Update(context.Background(), a), common.ErrorNotFound)
}

func TestUpdate_UniqueViolation(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`UPDATE\s+accounts`).WillReturnError(&pgconn.PgError{Code: "23505"})

	a := models.NewAccount("taken@example.com", "Ada", "King")
	a.ID = "acc-1"
	assert.ErrorIs(t, repo.Update(context.Background(), a), common.ErrConstraintViolation)
}

func TestSetPasswordHash(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	q := `(?s)^UPDATE\s+accounts\s+SET\s+password_hash\s*=\s*\$2`
	mock.ExpectExec(q).WithArgs("acc-1", "new-hash").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("ghost", "new-hash").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.SetPasswordHash(context.Background(), "acc-1", "new-hash"))
	assert.ErrorIs(t, repo.SetPasswordHash(context.Background(), "ghost", "new-hash"), common.ErrorNotFound)
}

func TestTouchLastLogin(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	at := time.Now().UTC()
	mock.ExpectExec(`UPDATE\s+accounts\s+SET\s+last_login`).
		WithArgs("acc-1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.TouchLastLogin(context.Background(), "acc-1", at))
}

func TestList_NoFilters(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	q := `(?s)FROM\s+accounts\s+ORDER\s+BY\s+email$`
	rows := sqlmock.NewRows(columns)
	accountRow(rows, "a1", "ada@example.com", false, nil)
	accountRow(rows, "a2", "bob@example.com", true, nil)
	mock.ExpectQuery(q).WillReturnRows(rows)

	got, err := repo.List(context.Background(), ListQuery{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ada@example.com", got[0].Email)
	assert.Equal(t, "bob@example.com", got[1].Email)
}

func TestList_AllFilters(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	staff := true
	q := `(?s)FROM\s+accounts\s+WHERE\s+email\s+ILIKE\s+\$1\s+AND\s+is_staff\s*=\s*\$2\s+AND\s+is_active\s+ORDER\s+BY\s+email\s+LIMIT\s+\$3\s+OFFSET\s+\$4$`
	mock.ExpectQuery(q).
		WithArgs("%ada%", true, 10, 20).
		WillReturnRows(sqlmock.NewRows(columns))

	got, err := repo.List(context.Background(), ListQuery{
		Search: " ada ", IsStaff: &staff, ActiveOnly: true, Limit: 10, Offset: 20,
	})
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_DBError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+accounts`).WillReturnError(errors.New("db err"))

	_, err := repo.List(context.Background(), ListQuery{})
	assert.ErrorContains(t, err, "db error: db err")
}

func TestCount(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	staff := false
	mock.ExpectQuery(`(?s)^SELECT\s+COUNT\(\*\)\s+FROM\s+accounts\s+WHERE\s+is_staff\s*=\s*\$1$`).
		WithArgs(false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.Count(context.Background(), ListQuery{IsStaff: &staff})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
