package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophgate/internal/dbx"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
	"github.com/dmitrijs2005/gophgate/internal/server/repositories/checkins"
	"github.com/dmitrijs2005/gophgate/internal/server/repositories/entries"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type fakeEntryRepo struct {
	list      []models.Entry
	listErr   error
	known     map[int64]bool
	existsErr error
	upserted  []int64
	upsertErr error
}

func (f *fakeEntryRepo) List(ctx context.Context) ([]models.Entry, error) {
	return f.list, f.listErr
}

func (f *fakeEntryRepo) Exists(ctx context.Context, id int64) (bool, error) {
	return f.known[id], f.existsErr
}

func (f *fakeEntryRepo) Upsert(ctx context.Context, e *models.Entry) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, e.ID)
	return nil
}

type checkInKey struct {
	entryID     int64
	sessionType string
	at          time.Time
}

type fakeCheckInRepo struct {
	stored    map[checkInKey]models.CheckIn
	nextID    int64
	createErr error
}

func newFakeCheckInRepo() *fakeCheckInRepo {
	return &fakeCheckInRepo{stored: map[checkInKey]models.CheckIn{}}
}

func (f *fakeCheckInRepo) Exists(ctx context.Context, entryID int64, sessionType string, at time.Time) (bool, error) {
	_, ok := f.stored[checkInKey{entryID, sessionType, at.UTC()}]
	return ok, nil
}

func (f *fakeCheckInRepo) Create(ctx context.Context, c *models.CheckIn) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	c.ID = f.nextID
	f.stored[checkInKey{c.EntryID, c.SessionType, c.CheckInTime.UTC()}] = *c
	return nil
}

type fakeRepoManager struct {
	entries  *fakeEntryRepo
	checkIns *fakeCheckInRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Entries(dbx.DBTX) entries.Repository      { return m.entries }
func (m *fakeRepoManager) CheckIns(dbx.DBTX) checkins.Repository    { return m.checkIns }
