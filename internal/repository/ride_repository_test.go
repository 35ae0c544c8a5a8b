package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestAdjustSeatsTxGuardsRange(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	repo := NewRideRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE rides").
		WithArgs(-3, uint64(1), -3, -3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	n, err := repo.AdjustSeatsTx(context.Background(), tx, 1, -3)
	if err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected guard miss with 0 rows, got %d", n)
	}
	_ = tx.Rollback()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSearchBuildsFiltersIncrementally(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	repo := NewRideRepo(db)

	cols := []string{
		"id", "driver_id", "email", "origin", "destination", "departs_at",
		"seats_total", "seats_available", "price_cents", "notes", "is_done",
	}
	departs := time.Now().UTC().Add(time.Hour)

	// All three filters present.
	mock.ExpectQuery(`SELECT (.+) FROM rides r JOIN users u (.+) AND r.origin LIKE (.+) AND r.destination LIKE (.+) AND DATE\(r.departs_at\) =`).
		WithArgs("%Astana%", "%Almaty%", "2025-06-01").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, 9, "driver@example.com", "Astana", "Almaty", departs, 4, 2, 1500, "", false))

	got, err := repo.Search(context.Background(), "Astana", "Almaty", "2025-06-01")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 1 || got[0].Origin != "Astana" || got[0].SeatsAvailable != 2 {
		t.Fatalf("unexpected result: %+v", got)
	}

	// No filters: only the open-ride predicate remains.
	mock.ExpectQuery(`SELECT (.+) FROM rides r JOIN users u (.+) WHERE r.is_done = 0 AND r.departs_at > UTC_TIMESTAMP\(\) ORDER BY`).
		WillReturnRows(sqlmock.NewRows(cols))

	got, err = repo.Search(context.Background(), "", "", "")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateDetailsChecksOwnership(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	repo := NewRideRepo(db)

	// Not the owner.
	mock.ExpectQuery("SELECT driver_id FROM rides WHERE id =").
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"driver_id"}).AddRow(9))

	err = repo.UpdateDetails(context.Background(), 1, 5, "A", "B", time.Now(), 1000, "")
	if err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// The owner: ownership check passes and the UPDATE runs.
	mock.ExpectQuery("SELECT driver_id FROM rides WHERE id =").
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"driver_id"}).AddRow(9))
	mock.ExpectExec("UPDATE rides").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateDetails(context.Background(), 1, 9, "A", "B", time.Now(), 1000, ""); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
