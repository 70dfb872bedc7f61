package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophgate/internal/dbx"
	"github.com/dmitrijs2005/gophgate/internal/server/repositories/checkins"
	"github.com/dmitrijs2005/gophgate/internal/server/repositories/entries"
)

// RepositoryManager vends repositories bound to a connection or transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Entries(db dbx.DBTX) entries.Repository
	CheckIns(db dbx.DBTX) checkins.Repository
}
