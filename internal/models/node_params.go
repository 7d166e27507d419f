package models

import (
	"time"

	"damper/internal/timerange"
)

// NodeParams are the storable inputs of the damper node. Outputs are never
// persisted; they are recomputed.
type NodeParams struct {
	ID                  int            `json:"id"`
	Target              float64        `json:"target"`
	DampingFactor       float64        `json:"damping_factor"`
	CurrentTime         timerange.Time `json:"current_time"`
	SimulationEnabled   bool           `json:"simulation_enabled"`
	SimulationStartTime timerange.Time `json:"simulation_start_time"`
	UpdatedAt           time.Time      `json:"updated_at"`
}
