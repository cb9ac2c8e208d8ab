package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/signin/internal/dbx"
	"github.com/dmitrijs2005/signin/internal/server/repositories/accounts"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
}
