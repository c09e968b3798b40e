package repository

import (
	"context"
	"database/sql"
	"time"

	"reflow_oven/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

type StateRepo interface {
	SaveSnapshot(ctx context.Context, s models.OvenSnapshot) error
	Load(ctx context.Context) (models.OvenSnapshot, error)
}

type RunRepo interface {
	SaveRun(ctx context.Context, r models.RunRecord) error
	Get(ctx context.Context, runID string) (*models.RunRecord, error)
	List(ctx context.Context, limit int) ([]models.RunRecord, error)
}

type CounterRepo interface {
	Increment(ctx context.Context, name string) error
	Load(ctx context.Context) (models.CounterSet, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.OvenEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.OvenEvent, error)
}

type Repository struct {
	StateRepo   StateRepo
	RunRepo     RunRepo
	CounterRepo CounterRepo
	EventRepo   EventRepo
	Auth        Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StateRepo:   NewStateSQLite(db),
		RunRepo:     NewRunSQLite(db),
		CounterRepo: NewCounterSQLite(db),
		EventRepo:   NewEventSQLite(db),
		Auth:        NewUserRepository(db),
	}
}
