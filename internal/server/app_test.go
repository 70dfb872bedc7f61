package server

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophgate/internal/dbx"
	"github.com/dmitrijs2005/gophgate/internal/logging"
	"github.com/dmitrijs2005/gophgate/internal/server/config"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
	"github.com/dmitrijs2005/gophgate/internal/server/repositories/checkins"
	"github.com/dmitrijs2005/gophgate/internal/server/repositories/entries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memEntries struct {
	upserted []models.Entry
}

func (m *memEntries) List(ctx context.Context) ([]models.Entry, error) { return m.upserted, nil }
func (m *memEntries) Exists(ctx context.Context, id int64) (bool, error) {
	return false, nil
}
func (m *memEntries) Upsert(ctx context.Context, e *models.Entry) error {
	m.upserted = append(m.upserted, *e)
	return nil
}

type fakeRM struct {
	migrateErr error
	migrated   bool
	entries    *memEntries
}

func (f *fakeRM) RunMigrations(ctx context.Context, db *sql.DB) error {
	f.migrated = true
	return f.migrateErr
}
func (f *fakeRM) Entries(dbx.DBTX) entries.Repository   { return f.entries }
func (f *fakeRM) CheckIns(dbx.DBTX) checkins.Repository { return nil }

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddr = "127.0.0.1:0"
	return c
}

func writeEntries(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "entries.json")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestNewApp_MigrationFailureClosesDB(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	rm := &fakeRM{migrateErr: errors.New("no such schema"), entries: &memEntries{}}
	_, err = newApp(context.Background(), testConfig(), logging.NewNopLogger(), db, rm)

	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_ImportsEntriesFile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	cfg := testConfig()
	cfg.EntriesFile = writeEntries(t, `[
		{"entry_id": 1042, "name": "Ada Lovelace", "qr_signature": "SIG1", "passes": {"plenary": true}},
		{"entry_id": 1043, "name": "Alan Turing", "qr_signature": "SIG2", "passes": {"exhibition_day1": true}}
	]`)

	rm := &fakeRM{entries: &memEntries{}}
	app, err := newApp(context.Background(), cfg, logging.NewNopLogger(), db, rm)
	require.NoError(t, err)
	require.NotNil(t, app)

	assert.True(t, rm.migrated)
	require.Len(t, rm.entries.upserted, 2)
	assert.True(t, rm.entries.upserted[0].Passes.Plenary)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_BadEntriesFile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	cfg := testConfig()
	cfg.EntriesFile = writeEntries(t, `{"not":"a list"}`)

	_, err = newApp(context.Background(), cfg, logging.NewNopLogger(), db, &fakeRM{entries: &memEntries{}})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadEntries_MissingFile(t *testing.T) {
	_, err := LoadEntries(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestRun_StopsOnCancelAndClosesDB(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	app, err := newApp(context.Background(), testConfig(), logging.NewNopLogger(), db, &fakeRM{entries: &memEntries{}})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	require.NoError(t, app.Run(ctx))
	require.NoError(t, mock.ExpectationsWereMet())
}
