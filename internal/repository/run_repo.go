package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"reflow_oven/internal/models"
)

type RunSQLite struct {
	db *sql.DB
}

func NewRunSQLite(db *sql.DB) *RunSQLite { return &RunSQLite{db: db} }

const (
	upsertRunSQL = `
		INSERT INTO oven_runs (run_id, profile, started_at, start_temp_c,
			preheat_ended_at, preheat_end_temp_c, soak_ended_at, soak_end_temp_c,
			peak_at, peak_temp_c, reflow_ended_at, reflow_end_temp_c,
			ended_at, end_temp_c, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			preheat_ended_at=excluded.preheat_ended_at,
			preheat_end_temp_c=excluded.preheat_end_temp_c,
			soak_ended_at=excluded.soak_ended_at,
			soak_end_temp_c=excluded.soak_end_temp_c,
			peak_at=excluded.peak_at,
			peak_temp_c=excluded.peak_temp_c,
			reflow_ended_at=excluded.reflow_ended_at,
			reflow_end_temp_c=excluded.reflow_end_temp_c,
			ended_at=excluded.ended_at,
			end_temp_c=excluded.end_temp_c,
			status=excluded.status
	`

	selectRunColumns = `run_id, profile, started_at, start_temp_c,
		preheat_ended_at, preheat_end_temp_c, soak_ended_at, soak_end_temp_c,
		peak_at, peak_temp_c, reflow_ended_at, reflow_end_temp_c,
		ended_at, end_temp_c, status`
)

// SaveRun upserts one run record keyed by run_id.
func (r *RunSQLite) SaveRun(ctx context.Context, rec models.RunRecord) error {
	_, err := r.db.ExecContext(ctx, upsertRunSQL,
		rec.RunID,
		rec.Profile,
		rec.StartedAt.UTC(),
		rec.StartTempC,
		nullTime(rec.PreheatEndedAt), rec.PreheatEndTempC,
		nullTime(rec.SoakEndedAt), rec.SoakEndTempC,
		nullTime(rec.PeakAt), rec.PeakTempC,
		nullTime(rec.ReflowEndedAt), rec.ReflowEndTempC,
		nullTime(rec.EndedAt), rec.EndTempC,
		rec.Status,
	)
	return err
}

// Get returns one run by id. Returns (nil, nil) if not found.
func (r *RunSQLite) Get(ctx context.Context, runID string) (*models.RunRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectRunColumns+` FROM oven_runs WHERE run_id=?`, runID)
	rec, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

// List returns the most recent runs, newest first.
func (r *RunSQLite) List(ctx context.Context, limit int) ([]models.RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectRunColumns+` FROM oven_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.RunRecord, 0, limit)
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.RunRecord, error) {
	var (
		rec                                      models.RunRecord
		preheatAt, soakAt, peakAt, reflowAt, end sql.NullTime
		preheatC, soakC, peakC, reflowC, endC    sql.NullFloat64
	)
	if err := row.Scan(
		&rec.RunID,
		&rec.Profile,
		&rec.StartedAt,
		&rec.StartTempC,
		&preheatAt, &preheatC,
		&soakAt, &soakC,
		&peakAt, &peakC,
		&reflowAt, &reflowC,
		&end, &endC,
		&rec.Status,
	); err != nil {
		return nil, err
	}
	rec.StartedAt = rec.StartedAt.UTC()
	rec.PreheatEndedAt, rec.PreheatEndTempC = fromNull(preheatAt, preheatC)
	rec.SoakEndedAt, rec.SoakEndTempC = fromNull(soakAt, soakC)
	rec.PeakAt, rec.PeakTempC = fromNull(peakAt, peakC)
	rec.ReflowEndedAt, rec.ReflowEndTempC = fromNull(reflowAt, reflowC)
	rec.EndedAt, rec.EndTempC = fromNull(end, endC)
	return &rec, nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

func fromNull(t sql.NullTime, f sql.NullFloat64) (time.Time, float64) {
	var (
		ts time.Time
		v  float64
	)
	if t.Valid {
		ts = t.Time.UTC()
	}
	if f.Valid {
		v = f.Float64
	}
	return ts, v
}
