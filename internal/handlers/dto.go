package handlers

import (
	"damper/internal/damper"
	"damper/internal/engine"
	"damper/internal/timerange"
)

// SpanRequest is a closed time span in seconds. A missing bound is open
// (infinite); Empty selects the empty span and ignores the bounds.
type SpanRequest struct {
	FromS *float64 `json:"from_s,omitempty" example:"1"`
	ToS   *float64 `json:"to_s,omitempty" example:"3"`
	Empty bool     `json:"empty,omitempty"`
}

func (s SpanRequest) interval() timerange.Interval {
	if s.Empty {
		return timerange.Empty()
	}
	from, to := timerange.MinTime, timerange.MaxTime
	if s.FromS != nil {
		from = timerange.FromSeconds(*s.FromS)
	}
	if s.ToS != nil {
		to = timerange.FromSeconds(*s.ToS)
	}
	return timerange.New(from, to)
}

// UpdateParamsRequest changes any subset of the writable parameters, which
// then hold for all time. Edit alone reports an upstream change over a span
// and cannot be combined with parameter values.
type UpdateParamsRequest struct {
	Target            *float64     `json:"target,omitempty" example:"2"`
	DampingFactor     *float64     `json:"damping_factor,omitempty" example:"0.1"`
	SimulationEnabled *bool        `json:"simulation_enabled,omitempty" example:"true"`
	SimulationStartS  *float64     `json:"simulation_start_s,omitempty" example:"0"`
	Edit              *SpanRequest `json:"edit,omitempty"`
}

// EvaluateRequest asks for the node output at TimeS seconds.
type EvaluateRequest struct {
	TimeS *float64 `json:"time_s" binding:"required" example:"2.5"`
}

// SpanResponse mirrors SpanRequest. Infinite bounds are omitted.
type SpanResponse struct {
	FromS     *float64 `json:"from_s,omitempty"`
	ToS       *float64 `json:"to_s,omitempty"`
	Empty     bool     `json:"empty"`
	Unbounded bool     `json:"unbounded"`
}

func spanResponse(r timerange.Interval) SpanResponse {
	out := SpanResponse{Empty: r.Empty, Unbounded: !r.Empty && r.IsUnbounded()}
	if r.Empty {
		return out
	}
	if !r.Start.IsInfinite() {
		v := r.Start.Seconds()
		out.FromS = &v
	}
	if !r.End.IsInfinite() {
		v := r.End.Seconds()
		out.ToS = &v
	}
	return out
}

type InvalidationResponse struct {
	Range  SpanResponse  `json:"range"`
	Reason damper.Reason `json:"reason"`
}

func invalidationResponse(inv damper.Invalidation) InvalidationResponse {
	return InvalidationResponse{Range: spanResponse(inv.Range), Reason: inv.Reason}
}

type CacheSetupResponse struct {
	SimulationSupport bool     `json:"simulation_support"`
	Monitored         []string `json:"monitored"`
}

func cacheSetupResponse(req damper.CacheRequirement) CacheSetupResponse {
	out := CacheSetupResponse{SimulationSupport: req.SimulationSupport, Monitored: make([]string, len(req.Monitored))}
	for i, id := range req.Monitored {
		out.Monitored[i] = id.String()
	}
	return out
}

type EvaluateResponse struct {
	TimeS    float64 `json:"time_s"`
	Output   float64 `json:"output"`
	Cached   bool    `json:"cached"`
	Replayed int     `json:"replayed"`
}

func evaluateResponse(r engine.Result) EvaluateResponse {
	return EvaluateResponse{TimeS: r.Time.Seconds(), Output: r.Output, Cached: r.Cached, Replayed: r.Replayed}
}
