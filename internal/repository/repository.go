package repository

import (
	"context"
	"database/sql"

	"damper/internal/models"
)

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// ParamRepo persists the node's storable parameters.
type ParamRepo interface {
	Save(ctx context.Context, p models.NodeParams) error
	Load(ctx context.Context) (models.NodeParams, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.NodeEvent) error
	List(ctx context.Context, f EventFilter) ([]models.NodeEvent, error)
}

type Repository struct {
	ParamRepo ParamRepo
	EventRepo EventRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		ParamRepo: NewParamSQLite(db),
		EventRepo: NewEventSQLite(db),
		Auth:      NewUserSQLite(db),
	}
}
