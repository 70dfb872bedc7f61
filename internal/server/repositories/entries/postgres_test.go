package entries

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var entryColumns = []string{"id", "name", "organization", "mobile", "qr_signature",
	"exhibition_day1", "exhibition_day2", "interactive_sessions", "plenary"}

func TestList_ScansRows(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name, .* FROM entries ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(entryColumns).
			AddRow(int64(1), "Asha Rao", "DRDO", "98100", "SIG-1", true, false, false, true).
			AddRow(int64(2), "Vikram Singh", "", "", "SIG-2", false, true, true, false))

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 entries, got %d", len(got))
	}
	want := models.Entry{ID: 1, Name: "Asha Rao", Organization: "DRDO", Mobile: "98100", QRSignature: "SIG-1",
		Passes: models.Passes{ExhibitionDay1: true, Plenary: true}}
	if got[0] != want {
		t.Fatalf("first entry mismatch: got %+v want %+v", got[0], want)
	}
	if !got[1].Passes.InteractiveSessions {
		t.Fatalf("second entry passes not scanned: %+v", got[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestList_EmptyIsNotNil(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM entries`).WillReturnRows(sqlmock.NewRows(entryColumns))

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}
}

func TestList_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM entries`).WillReturnError(errors.New("db is down"))

	if _, err := repo.List(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestExists(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM entries WHERE id = \$1\)`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(43)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.Exists(context.Background(), 42)
	if err != nil || !ok {
		t.Fatalf("Exists(42) = %v, %v", ok, err)
	}
	ok, err = repo.Exists(context.Background(), 43)
	if err != nil || ok {
		t.Fatalf("Exists(43) = %v, %v", ok, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpsert(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO entries .* ON CONFLICT \(id\)\s+DO UPDATE SET`).
		WithArgs(int64(7), "Asha Rao", "DRDO", "", "SIG-7", true, false, false, false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), &models.Entry{
		ID: 7, Name: "Asha Rao", Organization: "DRDO", QRSignature: "SIG-7",
		Passes: models.Passes{ExhibitionDay1: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO entries`).WillReturnError(errors.New("unique violation"))

	if err := repo.Upsert(context.Background(), &models.Entry{ID: 1}); err == nil {
		t.Fatal("expected error")
	}
}
