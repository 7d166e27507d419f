package models

import "time"

// NodeState is the monitoring snapshot of the node and its frame cache.
type NodeState struct {
	Params            NodeParams `json:"params"`
	CurrentTimeS      float64    `json:"current_time_s"`
	SimulationStartS  float64    `json:"simulation_start_s"`
	Output            float64    `json:"output"`
	OutputClean       bool       `json:"output_clean"`
	PreviousOutput    float64    `json:"previous_output"`
	CachedFrames      int        `json:"cached_frames"`
	LastEvaluatedS    *float64   `json:"last_evaluated_s,omitempty"`
	SimulationSupport bool       `json:"simulation_support"`
	Monitored         []string   `json:"monitored"`
	SnapshotAt        time.Time  `json:"snapshot_at"`
}
