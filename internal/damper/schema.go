// Package damper implements a recursive smoothing node for a time-indexed
// evaluation graph: the per-evaluation exponential blend with its one-scalar
// feedback memory, and the description of which cached time span a parameter
// change invalidates.
package damper

import "damper/internal/timerange"

// ParamID identifies a parameter slot of the node.
type ParamID int

const (
	Target ParamID = iota
	DampingFactor
	CurrentTime
	SimulationEnabled
	SimulationStartTime
	Output
	PreviousOutput

	paramCount
)

// Kind is the value type carried by a parameter.
type Kind int

const (
	KindFloat Kind = iota
	KindBool
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	}
	return "unknown"
}

// Descriptor describes one parameter slot.
type Descriptor struct {
	ID        ParamID
	Name      string
	ShortName string
	Kind      Kind
	Default   Value
	// Storable parameters are persisted by the host; outputs never are.
	Storable bool
	// Writable parameters can be set by callers outside the node.
	Writable bool
	// Hidden parameters are internal state, not for external editing.
	Hidden bool
	// AffectsOutput marks inputs whose change dirties Output.
	AffectsOutput bool
}

// Schema is the enumerated set of parameter descriptors. It is built once and
// shared by every node instance.
type Schema struct {
	descriptors [paramCount]Descriptor
	byName      map[string]ParamID
}

// NewSchema builds the damper schema with its default values.
func NewSchema() *Schema {
	s := &Schema{byName: make(map[string]ParamID, paramCount)}
	s.add(Descriptor{ID: Target, Name: "target", ShortName: "tgt", Kind: KindFloat,
		Default: FloatValue(0), Storable: true, Writable: true, AffectsOutput: true})
	s.add(Descriptor{ID: DampingFactor, Name: "dampingFactor", ShortName: "df", Kind: KindFloat,
		Default: FloatValue(0.1), Storable: true, Writable: true, AffectsOutput: true})
	s.add(Descriptor{ID: CurrentTime, Name: "currentTime", ShortName: "ct", Kind: KindTime,
		Default: TimeValue(0), Storable: true, Writable: true, AffectsOutput: true})
	s.add(Descriptor{ID: SimulationEnabled, Name: "simulationEnabled", ShortName: "se", Kind: KindBool,
		Default: BoolValue(true), Storable: true, Writable: true, AffectsOutput: true})
	s.add(Descriptor{ID: SimulationStartTime, Name: "simulationStartTime", ShortName: "sst", Kind: KindTime,
		Default: TimeValue(timerange.Time(0)), Storable: true, Writable: true, AffectsOutput: true})
	s.add(Descriptor{ID: Output, Name: "output", ShortName: "out", Kind: KindFloat,
		Default: FloatValue(0)})
	s.add(Descriptor{ID: PreviousOutput, Name: "previousOutput", ShortName: "po", Kind: KindFloat,
		Default: FloatValue(0), Hidden: true})
	return s
}

func (s *Schema) add(d Descriptor) {
	s.descriptors[d.ID] = d
	s.byName[d.Name] = d.ID
	s.byName[d.ShortName] = d.ID
}

// Descriptor returns the descriptor for id.
func (s *Schema) Descriptor(id ParamID) (Descriptor, bool) {
	if id < 0 || id >= paramCount {
		return Descriptor{}, false
	}
	return s.descriptors[id], true
}

// Lookup resolves a long or short parameter name.
func (s *Schema) Lookup(name string) (ParamID, bool) {
	id, ok := s.byName[name]
	return id, ok
}

// Descriptors returns every descriptor in id order.
func (s *Schema) Descriptors() []Descriptor {
	out := make([]Descriptor, paramCount)
	copy(out, s.descriptors[:])
	return out
}

// Storable returns the ids the host persists.
func (s *Schema) Storable() []ParamID {
	var ids []ParamID
	for _, d := range s.descriptors {
		if d.Storable {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

func (id ParamID) String() string {
	switch id {
	case Target:
		return "target"
	case DampingFactor:
		return "dampingFactor"
	case CurrentTime:
		return "currentTime"
	case SimulationEnabled:
		return "simulationEnabled"
	case SimulationStartTime:
		return "simulationStartTime"
	case Output:
		return "output"
	case PreviousOutput:
		return "previousOutput"
	}
	return "unknown"
}

// MarshalText encodes the id by its long name.
func (id ParamID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}
