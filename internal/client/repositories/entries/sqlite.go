package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophgate/internal/client/models"
	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/dbx"
)

const selectColumns = `entry_id, name, organization, mobile, qr_signature,
	exhibition_day1, exhibition_day2, interactive_sessions, plenary`

// SQLiteRepository implements Repository on a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository returns a new SQLiteRepository bound to db.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Replace deletes every cached row and inserts entries in one transaction.
// Duplicate ids violate the unique key and roll the whole swap back.
func (r *SQLiteRepository) Replace(ctx context.Context, entries []models.Entry) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
			return fmt.Errorf("failed to clear entries: %w", err)
		}

		query := `INSERT INTO entries (` + selectColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
		for _, e := range entries {
			_, err := tx.ExecContext(ctx, query,
				e.EntryID, e.Name, e.Organization, e.Mobile, e.QRSignature,
				e.Passes.ExhibitionDay1, e.Passes.ExhibitionDay2,
				e.Passes.InteractiveSessions, e.Passes.Plenary)
			if err != nil {
				return fmt.Errorf("failed to insert entry %d: %w", e.EntryID, err)
			}
		}
		return nil
	})
}

// FindByID looks an entry up by primary key.
func (r *SQLiteRepository) FindByID(ctx context.Context, id int64) (*models.Entry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM entries WHERE entry_id = ?`, id)
	return scanEntry(row)
}

// FindBySignature returns the earliest inserted entry with the signature.
func (r *SQLiteRepository) FindBySignature(ctx context.Context, sig string) (*models.Entry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM entries WHERE qr_signature = ? ORDER BY rowid LIMIT 1`, sig)
	return scanEntry(row)
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

func scanEntry(row *sql.Row) (*models.Entry, error) {
	var e models.Entry
	err := row.Scan(&e.EntryID, &e.Name, &e.Organization, &e.Mobile, &e.QRSignature,
		&e.Passes.ExhibitionDay1, &e.Passes.ExhibitionDay2,
		&e.Passes.InteractiveSessions, &e.Passes.Plenary)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan entry: %w", err)
	}
	return &e, nil
}
