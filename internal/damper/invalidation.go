package damper

import "damper/internal/timerange"

// Reason names the branch that produced an invalidation range.
type Reason string

const (
	// ReasonUnknownState: simulation settings are not clean, everything goes.
	ReasonUnknownState Reason = "unknown_state"
	// ReasonPassThrough: simulation disabled, the query is returned as is.
	ReasonPassThrough Reason = "pass_through"
	// ReasonWidened: the query touches the simulated span and is extended to its end.
	ReasonWidened Reason = "widened"
	// ReasonDisjoint: the query lies entirely before the simulated span.
	ReasonDisjoint Reason = "disjoint"
)

// Invalidation is a described range and the branch that produced it.
type Invalidation struct {
	Range  timerange.Interval `json:"range"`
	Reason Reason             `json:"reason"`
}

// InvalidationRange returns the span of cached results that must be discarded
// when query is invalidated upstream of the node.
//
// Once simulation is active every output depends on all earlier outputs, so a
// query that reaches the simulated span widens to the end of time. When the
// simulation settings themselves are not known the whole domain is returned:
// over-invalidation is acceptable, under-invalidation is not.
func InvalidationRange(query timerange.Interval, enabled Cached[bool], start Cached[timerange.Time]) timerange.Interval {
	return describe(query, enabled, start).Range
}

func describe(query timerange.Interval, enabled Cached[bool], start Cached[timerange.Time]) Invalidation {
	if !enabled.Valid || !start.Valid {
		return Invalidation{Range: timerange.Unbounded(), Reason: ReasonUnknownState}
	}
	if !enabled.Value {
		return Invalidation{Range: query, Reason: ReasonPassThrough}
	}

	sim := timerange.From(start.Value)
	if query.Intersects(sim) {
		return Invalidation{Range: query.Union(sim), Reason: ReasonWidened}
	}
	return Invalidation{Range: timerange.Empty(), Reason: ReasonDisjoint}
}

// DescribeInvalidation applies InvalidationRange to the simulation settings
// currently cached in b. It does not touch the feedback memory.
func (n *Node) DescribeInvalidation(b Block, query timerange.Interval) Invalidation {
	return describe(query, cachedBool(b, SimulationEnabled), cachedTime(b, SimulationStartTime))
}
