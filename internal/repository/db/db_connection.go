package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"

// InitDB opens/creates a SQLite DB file and ensures tables exist.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// Single writer: the control loop and the API share one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const schemaOvenState = `
CREATE TABLE IF NOT EXISTS oven_state (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    stage TEXT NOT NULL,
    profile TEXT NOT NULL,
    elapsed_s INTEGER NOT NULL,
    setpoint_c REAL NOT NULL,
    temp_c REAL NOT NULL,
    ramp_rate REAL NOT NULL,
    duty_percent REAL NOT NULL,
    heater_on BOOLEAN NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

const schemaOvenRuns = `
CREATE TABLE IF NOT EXISTS oven_runs (
    run_id TEXT PRIMARY KEY,
    profile TEXT NOT NULL,
    started_at TIMESTAMP NOT NULL,
    start_temp_c REAL NOT NULL,
    preheat_ended_at TIMESTAMP,
    preheat_end_temp_c REAL,
    soak_ended_at TIMESTAMP,
    soak_end_temp_c REAL,
    peak_at TIMESTAMP,
    peak_temp_c REAL,
    reflow_ended_at TIMESTAMP,
    reflow_end_temp_c REAL,
    ended_at TIMESTAMP,
    end_temp_c REAL,
    status TEXT NOT NULL
);
`

const schemaOvenCounters = `
CREATE TABLE IF NOT EXISTS oven_counters (
    name TEXT PRIMARY KEY,
    value INTEGER NOT NULL DEFAULT 0
);
`

const schemaOvenEvents = `
CREATE TABLE IF NOT EXISTS oven_events (
    id TEXT PRIMARY KEY,
    occurred_at TIMESTAMP NOT NULL,
    type TEXT NOT NULL,
    message TEXT NOT NULL,
    meta TEXT
);
`

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL
);
`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaOvenState,
		schemaOvenRuns,
		schemaOvenCounters,
		schemaOvenEvents,
		schemaUsers,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
