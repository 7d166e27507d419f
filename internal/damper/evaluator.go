package damper

import "damper/internal/timerange"

// Inputs are the values the filter reads for one evaluation.
type Inputs struct {
	Target              float64
	DampingFactor       float64
	CurrentTime         timerange.Time
	SimulationEnabled   bool
	SimulationStartTime timerange.Time
}

// Effective reports whether the feedback path is engaged. Simulation only
// takes effect strictly after the start time.
func (in Inputs) Effective() bool {
	return in.SimulationEnabled && in.SimulationStartTime < in.CurrentTime
}

// Memory is the filter's history: the output of the last evaluation.
// Hidden and Persisted are the cell's flags; for the damper the cell is
// internal and is rebuilt by re-evaluation instead of being stored.
type Memory struct {
	value     float64
	Hidden    bool
	Persisted bool
}

func newMemory(d Descriptor) Memory {
	return Memory{value: d.Default.f, Hidden: d.Hidden, Persisted: d.Storable}
}

// Value returns the last emitted output.
func (m Memory) Value() float64 { return m.value }

// Reset clears the history back to zero.
func (m *Memory) Reset() { m.value = 0 }

// Evaluate runs one step of the damper and updates memory.
//
// When simulation is not effective the target passes through unchanged. When
// it is, the output closes DampingFactor of the gap between the previous
// output and the target. DampingFactor is not clamped: 0 freezes the output,
// 1 passes the target through, anything outside [0, 1] overshoots.
//
// Memory is updated in both modes so the filter resumes from the last emitted
// value once simulation engages.
func Evaluate(in Inputs, mem *Memory) float64 {
	out := in.Target
	if in.Effective() {
		prev := mem.value
		out = prev + (in.Target-prev)*in.DampingFactor
	}
	mem.value = out
	return out
}
