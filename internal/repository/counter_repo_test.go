package repository

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestCounterIncrement_Upsert(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewCounterSQLite(db)

	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO oven_counters (name, value) VALUES (?, 1)
		ON CONFLICT(name) DO UPDATE SET value = value + 1
	`)).
		WithArgs("completed").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Increment(ctx(t), "completed"); err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestCounterLoad_MapsNames(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewCounterSQLite(db)

	rows := sqlmock.NewRows([]string{"name", "value"}).
		AddRow("attempted", 12).
		AddRow("completed", 9).
		AddRow("cancelled", 1).
		AddRow("preheat_aborted", 1).
		AddRow("reflow_aborted", 1)

	mock.ExpectQuery("SELECT name, value FROM oven_counters").
		WillReturnRows(rows)

	set, err := repo.Load(ctx(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if set.Attempted != 12 || set.Completed != 9 || set.Cancelled != 1 {
		t.Fatalf("set = %+v", set)
	}
	if set.PreheatAborts != 1 || set.ReflowAborts != 1 {
		t.Fatalf("set = %+v", set)
	}
	// Counters never incremented read as zero.
	if set.SoakAborts != 0 || set.CycleAborts != 0 {
		t.Fatalf("set = %+v", set)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestCounterIncrement_DBError(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewCounterSQLite(db)

	mock.ExpectExec("INSERT INTO oven_counters").
		WillReturnError(errors.New("locked"))

	if err := repo.Increment(ctx(t), "attempted"); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}
