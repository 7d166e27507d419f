package damper

// CacheRequirement is what the node declares to the engine's caching layer.
type CacheRequirement struct {
	// SimulationSupport asks for strictly ordered, monotonic-time evaluation
	// instead of ordinary per-frame caching.
	SimulationSupport bool `json:"simulation_support"`
	// Monitored lists parameters whose validity changes should trigger a new query.
	Monitored []ParamID `json:"monitored"`
}

// RequiresSimulation reports whether simulation support is needed. Only a
// known false value lets the node be cached as a pure function.
func RequiresSimulation(enabled Cached[bool]) bool {
	return !enabled.Valid || enabled.Value
}

// CacheSetup answers the engine's configuration query.
func (n *Node) CacheSetup(b Block) CacheRequirement {
	return CacheRequirement{
		SimulationSupport: RequiresSimulation(cachedBool(b, SimulationEnabled)),
		Monitored:         []ParamID{SimulationEnabled},
	}
}
