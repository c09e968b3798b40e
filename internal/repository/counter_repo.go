package repository

import (
	"context"
	"database/sql"

	"reflow_oven/internal/models"
)

type CounterSQLite struct {
	db *sql.DB
}

func NewCounterSQLite(db *sql.DB) *CounterSQLite { return &CounterSQLite{db: db} }

const (
	incrementCounterSQL = `
		INSERT INTO oven_counters (name, value) VALUES (?, 1)
		ON CONFLICT(name) DO UPDATE SET value = value + 1
	`
	selectCountersSQL = `SELECT name, value FROM oven_counters`
)

// Increment bumps the named counter by one, creating it at 1 if absent.
func (r *CounterSQLite) Increment(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, incrementCounterSQL, name)
	return err
}

// Load reads the whole counter set; missing counters read as zero.
func (r *CounterSQLite) Load(ctx context.Context) (models.CounterSet, error) {
	rows, err := r.db.QueryContext(ctx, selectCountersSQL)
	if err != nil {
		return models.CounterSet{}, err
	}
	defer rows.Close()

	var set models.CounterSet
	for rows.Next() {
		var (
			name  string
			value int
		)
		if err := rows.Scan(&name, &value); err != nil {
			return models.CounterSet{}, err
		}
		switch name {
		case "attempted":
			set.Attempted = value
		case "completed":
			set.Completed = value
		case "cancelled":
			set.Cancelled = value
		case "preheat_aborted":
			set.PreheatAborts = value
		case "soak_aborted":
			set.SoakAborts = value
		case "reflow_aborted":
			set.ReflowAborts = value
		case "cycle_aborted":
			set.CycleAborts = value
		}
	}
	return set, rows.Err()
}
