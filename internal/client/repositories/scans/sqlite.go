package scans

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/client/models"
	"github.com/dmitrijs2005/gophgate/internal/dbx"
	"github.com/dmitrijs2005/gophgate/internal/timex"
)

const selectColumns = `id, entry_id, session_type, session_name, gate_number, gate_location,
	check_in_time, scanner_device_id, scanner_operator, uploaded, created_at`

// SQLiteRepository implements Repository over dbx.DBTX.
type SQLiteRepository struct {
	db  dbx.DBTX
	now timex.Clock
}

// NewSQLiteRepository returns a new SQLiteRepository bound to db.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Enqueue(ctx context.Context, s *models.PendingScan, localDate string) (int64, error) {
	created := r.now.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO pending_scans (entry_id, session_type, session_name, gate_number, gate_location,
			check_in_time, check_in_date, scanner_device_id, scanner_operator, uploaded, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		s.EntryID, s.SessionType, s.SessionName, s.GateNumber, s.GateLocation,
		formatTime(s.CheckInTime), localDate, s.ScannerDeviceID, s.ScannerOperator,
		formatTime(created))
	if err != nil {
		return 0, fmt.Errorf("failed to enqueue scan: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get scan id: %w", err)
	}

	s.ID = id
	s.Uploaded = false
	s.CreatedAt = created
	return id, nil
}

func (r *SQLiteRepository) ListUnuploaded(ctx context.Context) ([]models.PendingScan, error) {
	return r.list(ctx, `SELECT `+selectColumns+` FROM pending_scans WHERE uploaded = 0 ORDER BY id`)
}

func (r *SQLiteRepository) MarkUploaded(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders, args := dbx.InList(ids)
	_, err := r.db.ExecContext(ctx,
		`UPDATE pending_scans SET uploaded = 1 WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("failed to mark scans uploaded: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CountUnuploaded(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_scans WHERE uploaded = 0`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending scans: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) HasScan(ctx context.Context, entryID int64, gate, date string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM pending_scans
			WHERE entry_id = ? AND gate_number = ? AND check_in_date = ?
		)`, entryID, gate, date).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to look up scan: %w", err)
	}
	return exists, nil
}

func (r *SQLiteRepository) ListUploadedBefore(ctx context.Context, t time.Time) ([]models.PendingScan, error) {
	return r.list(ctx,
		`SELECT `+selectColumns+` FROM pending_scans WHERE uploaded = 1 AND created_at < ? ORDER BY id`,
		formatTime(t.UTC()))
}

func (r *SQLiteRepository) PruneUploadedBefore(ctx context.Context, t time.Time, throughID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM pending_scans WHERE uploaded = 1 AND created_at < ? AND id <= ?`,
		formatTime(t.UTC()), throughID)
	if err != nil {
		return 0, fmt.Errorf("failed to prune scans: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]models.PendingScan, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select scans: %w", err)
	}
	defer rows.Close()

	var result []models.PendingScan
	for rows.Next() {
		var (
			s                models.PendingScan
			checkIn, created string
		)
		if err := rows.Scan(&s.ID, &s.EntryID, &s.SessionType, &s.SessionName, &s.GateNumber,
			&s.GateLocation, &checkIn, &s.ScannerDeviceID, &s.ScannerOperator, &s.Uploaded, &created); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if s.CheckInTime, err = parseTime(checkIn); err != nil {
			return nil, err
		}
		if s.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scans: %w", err)
	}
	return result, nil
}

// Times are stored as fixed-width UTC text so that string comparison in SQL
// matches chronological order.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(storedTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad stored time %q: %w", s, err)
	}
	return t, nil
}
