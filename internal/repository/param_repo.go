package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"damper/internal/models"
	"damper/internal/timerange"
)

type ParamSQLite struct {
	db *sql.DB
}

func NewParamSQLite(db *sql.DB) *ParamSQLite {
	return &ParamSQLite{db: db}
}

const (
	nodeParamsRowID = 1

	upsertParamsSQL = `
		INSERT INTO node_params (id, target, damping_factor, current_ticks, simulation_enabled, simulation_start_ticks, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			target=excluded.target,
			damping_factor=excluded.damping_factor,
			current_ticks=excluded.current_ticks,
			simulation_enabled=excluded.simulation_enabled,
			simulation_start_ticks=excluded.simulation_start_ticks,
			updated_at=excluded.updated_at
	`

	selectParamsSQL = `
		SELECT id, target, damping_factor, current_ticks, simulation_enabled, simulation_start_ticks, updated_at
		FROM node_params WHERE id=?
	`
)

// Save upserts the single node_params row (id always 1). Times are stored as ticks.
func (r *ParamSQLite) Save(ctx context.Context, p models.NodeParams) error {
	ts := p.UpdatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	} else {
		ts = ts.UTC()
	}

	_, err := r.db.ExecContext(ctx, upsertParamsSQL,
		nodeParamsRowID,
		p.Target,
		p.DampingFactor,
		int64(p.CurrentTime),
		p.SimulationEnabled,
		int64(p.SimulationStartTime),
		ts,
	)
	if err != nil {
		return fmt.Errorf("upsert node params: %w", err)
	}
	return nil
}

// Load fetches the node_params row. A zero value (ID 0) means nothing is stored yet.
func (r *ParamSQLite) Load(ctx context.Context) (models.NodeParams, error) {
	var (
		p            models.NodeParams
		current, sst int64
	)
	err := r.db.QueryRowContext(ctx, selectParamsSQL, nodeParamsRowID).Scan(
		&p.ID,
		&p.Target,
		&p.DampingFactor,
		&current,
		&p.SimulationEnabled,
		&sst,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.NodeParams{}, nil
		}
		return models.NodeParams{}, fmt.Errorf("select node params: %w", err)
	}
	p.CurrentTime = timerange.Time(current)
	p.SimulationStartTime = timerange.Time(sst)
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}
