package models

import "time"

// Event types.
const (
	EventParamChange = "PARAM_CHANGE"
	EventInvalidate  = "INVALIDATE"
	EventRestore     = "RESTORE"
	EventError       = "ERROR"
)

// NodeEvent is a single log entry.
type NodeEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // PARAM_CHANGE | INVALIDATE | RESTORE | ERROR
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
