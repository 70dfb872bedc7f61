// Package checkins provides the PostgreSQL-backed repository of recorded
// gate admissions.
package checkins

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/dbx"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
)

// PostgresRepository implements check-in storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Exists(ctx context.Context, entryID int64, sessionType string, at time.Time) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM check_ins WHERE entry_id = $1 AND session_type = $2 AND check_in_time = $3)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, entryID, sessionType, at.UTC()).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.CheckIn) error {
	query := `
		INSERT INTO check_ins (entry_id, session_type, session_name, gate_number, gate_location,
			check_in_time, scanner_device_id, scanner_operator, verification_status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		c.EntryID, c.SessionType, c.SessionName, c.GateNumber, c.GateLocation,
		c.CheckInTime.UTC(), c.ScannerDeviceID, c.ScannerOperator, c.VerificationStatus, c.Notes,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}
