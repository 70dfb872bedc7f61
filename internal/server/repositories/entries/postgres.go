// Package entries provides the PostgreSQL-backed repository of registered
// pass holders.
package entries

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophgate/internal/dbx"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
)

// PostgresRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Entry, error) {
	query := `SELECT id, name, organization, mobile, qr_signature,
		exhibition_day1, exhibition_day2, interactive_sessions, plenary
		FROM entries ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	result := []models.Entry{}
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.Organization, &e.Mobile, &e.QRSignature,
			&e.Passes.ExhibitionDay1, &e.Passes.ExhibitionDay2, &e.Passes.InteractiveSessions, &e.Passes.Plenary,
		); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM entries WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, e *models.Entry) error {
	query := `
		INSERT INTO entries (id, name, organization, mobile, qr_signature,
			exhibition_day1, exhibition_day2, interactive_sessions, plenary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id)
		DO UPDATE SET
			name = EXCLUDED.name,
			organization = EXCLUDED.organization,
			mobile = EXCLUDED.mobile,
			qr_signature = EXCLUDED.qr_signature,
			exhibition_day1 = EXCLUDED.exhibition_day1,
			exhibition_day2 = EXCLUDED.exhibition_day2,
			interactive_sessions = EXCLUDED.interactive_sessions,
			plenary = EXCLUDED.plenary;
	`
	_, err := r.db.ExecContext(ctx, query, e.ID, e.Name, e.Organization, e.Mobile, e.QRSignature,
		e.Passes.ExhibitionDay1, e.Passes.ExhibitionDay2, e.Passes.InteractiveSessions, e.Passes.Plenary)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
