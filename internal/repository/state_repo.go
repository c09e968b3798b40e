package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"reflow_oven/internal/models"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

const (
	ovenStateRowID = 1

	upsertStateSQL = `
		INSERT INTO oven_state (id, stage, profile, elapsed_s, setpoint_c, temp_c, ramp_rate, duty_percent, heater_on, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			stage=excluded.stage,
			profile=excluded.profile,
			elapsed_s=excluded.elapsed_s,
			setpoint_c=excluded.setpoint_c,
			temp_c=excluded.temp_c,
			ramp_rate=excluded.ramp_rate,
			duty_percent=excluded.duty_percent,
			heater_on=excluded.heater_on,
			updated_at=excluded.updated_at
	`

	selectStateSQL = `
		SELECT stage, profile, elapsed_s, setpoint_c, temp_c, ramp_rate, duty_percent, heater_on, updated_at
		FROM oven_state WHERE id=?
	`
)

// SaveSnapshot upserts the single oven_state row (id always 1).
func (r *StateSQLite) SaveSnapshot(ctx context.Context, s models.OvenSnapshot) error {
	ts := s.UpdatedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := r.db.ExecContext(ctx, upsertStateSQL,
		ovenStateRowID,
		s.Stage,
		s.Profile,
		s.ElapsedSeconds,
		s.SetpointC,
		s.TempC,
		s.RampRateCPerS,
		s.DutyPercent,
		s.HeaterOn,
		ts.UTC(),
	)
	return err
}

// Load fetches the single oven_state row. Before the first save it returns
// an idle snapshot rather than an error.
func (r *StateSQLite) Load(ctx context.Context) (models.OvenSnapshot, error) {
	row := r.db.QueryRowContext(ctx, selectStateSQL, ovenStateRowID)

	var s models.OvenSnapshot
	if err := row.Scan(
		&s.Stage,
		&s.Profile,
		&s.ElapsedSeconds,
		&s.SetpointC,
		&s.TempC,
		&s.RampRateCPerS,
		&s.DutyPercent,
		&s.HeaterOn,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.OvenSnapshot{
				Stage:   models.StageIdle,
				Profile: models.ProfileLeadFree,
			}, nil
		}
		return models.OvenSnapshot{}, err
	}
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}
