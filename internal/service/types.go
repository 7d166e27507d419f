package service

import (
	"errors"
	"time"

	"damper/internal/timerange"
)

// ErrInvalidParams is returned for updates the node cannot accept as given.
var ErrInvalidParams = errors.New("invalid parameters")

// ParamsUpdate is a partial parameter change. Nil fields are left as they
// are. Edit reports an upstream change over a span and is only valid on its
// own: new parameter values always hold for all time.
type ParamsUpdate struct {
	Target            *float64
	DampingFactor     *float64
	SimulationEnabled *bool
	SimulationStartS  *float64
	Edit              *timerange.Interval
}

// LogFilter selects events by time range and type.
type LogFilter struct {
	From  time.Time // inclusive; zero means no lower bound
	To    time.Time // inclusive; zero means no upper bound
	Type  string    // "", "PARAM_CHANGE", "INVALIDATE", "RESTORE", "ERROR"
	Limit int
}
