package client

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophgate/internal/client/migrations"
	"github.com/dmitrijs2005/gophgate/internal/client/repositories/entries"
	"github.com/dmitrijs2005/gophgate/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophgate/internal/client/repositories/scans"
	"github.com/dmitrijs2005/gophgate/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Repositories bundles the local stores of one scanner database.
type Repositories struct {
	Entries  entries.Repository
	Scans    scans.Repository
	Metadata metadata.Repository
}

func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Entries:  entries.NewSQLiteRepository(db),
		Scans:    scans.NewSQLiteRepository(db),
		Metadata: metadata.NewSQLiteRepository(db),
	}
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the SQLite file at path in WAL mode with a busy timeout
// and full fsync, then applies migrations. A committed write survives a
// process crash.
func InitDatabase(ctx context.Context, path string) (*sql.DB, error) {
	if _, err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func sqliteDSN(path string) string {
	pragmas := "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)"
	if strings.Contains(path, "?") {
		return path + "&" + pragmas
	}
	return path + "?" + pragmas
}
