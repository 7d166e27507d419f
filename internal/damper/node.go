package damper

import (
	"fmt"

	"damper/internal/timerange"
)

// Block is the engine's data block for one node instance. Get reports the
// value and whether it is currently clean in the cache.
type Block interface {
	Get(id ParamID) (Value, bool)
	Set(id ParamID, v Value)
	MarkClean(id ParamID)
}

// Node is one damper instance. It owns the feedback memory; callers must
// serialize Compute and must not run DescribeInvalidation concurrently with it.
type Node struct {
	schema *Schema
	memory Memory
}

// NewNode returns a node bound to schema.
func NewNode(schema *Schema) *Node {
	d, _ := schema.Descriptor(PreviousOutput)
	return &Node{schema: schema, memory: newMemory(d)}
}

// Schema returns the node's schema.
func (n *Node) Schema() *Schema { return n.schema }

// Memory returns a copy of the feedback cell.
func (n *Node) Memory() Memory { return n.memory }

// ResetMemory drops the filter history.
func (n *Node) ResetMemory() { n.memory.Reset() }

// Compute evaluates id from the block. Only Output is handled.
// On success Output and PreviousOutput are written and marked clean; on
// failure the block and the memory are left untouched.
func (n *Node) Compute(b Block, id ParamID) error {
	if id != Output {
		return fmt.Errorf("compute %s: %w", id, ErrUnknownParameter)
	}

	in, err := n.readInputs(b)
	if err != nil {
		return fmt.Errorf("compute %s: %w", id, err)
	}

	out := Evaluate(in, &n.memory)

	b.Set(Output, FloatValue(out))
	b.MarkClean(Output)
	b.Set(PreviousOutput, FloatValue(out))
	b.MarkClean(PreviousOutput)
	return nil
}

// readInputs pulls only what the current branch needs: the time inputs when
// simulation is enabled, the damping factor when it is effective.
func (n *Node) readInputs(b Block) (Inputs, error) {
	var (
		in  Inputs
		err error
	)
	if in.Target, err = n.readFloat(b, Target); err != nil {
		return Inputs{}, err
	}
	if in.SimulationEnabled, err = n.readBool(b, SimulationEnabled); err != nil {
		return Inputs{}, err
	}
	if !in.SimulationEnabled {
		return in, nil
	}
	if in.CurrentTime, err = n.readTime(b, CurrentTime); err != nil {
		return Inputs{}, err
	}
	if in.SimulationStartTime, err = n.readTime(b, SimulationStartTime); err != nil {
		return Inputs{}, err
	}
	if !in.Effective() {
		return in, nil
	}
	if in.DampingFactor, err = n.readFloat(b, DampingFactor); err != nil {
		return Inputs{}, err
	}
	return in, nil
}

func (n *Node) read(b Block, id ParamID, want Kind) (Value, error) {
	d, ok := n.schema.Descriptor(id)
	if !ok {
		return Value{}, fmt.Errorf("%w: id %d", ErrUnknownParameter, id)
	}
	if d.Kind != want {
		return Value{}, fmt.Errorf("%w: %s is %s, read as %s", ErrKindMismatch, d.Name, d.Kind, want)
	}
	v, ok := b.Get(id)
	if !ok {
		return Value{}, fmt.Errorf("%w: %s", ErrMissingInput, d.Name)
	}
	if v.Kind() != want {
		return Value{}, fmt.Errorf("%w: %s holds %s", ErrKindMismatch, d.Name, v.Kind())
	}
	return v, nil
}

func (n *Node) readFloat(b Block, id ParamID) (float64, error) {
	v, err := n.read(b, id, KindFloat)
	f, _ := v.Float()
	return f, err
}

func (n *Node) readBool(b Block, id ParamID) (bool, error) {
	v, err := n.read(b, id, KindBool)
	x, _ := v.Bool()
	return x, err
}

func (n *Node) readTime(b Block, id ParamID) (timerange.Time, error) {
	v, err := n.read(b, id, KindTime)
	t, _ := v.Time()
	return t, err
}

// cachedBool and cachedTime read without failing: anything that is not a
// clean value of the right kind is reported as unknown.
func cachedBool(b Block, id ParamID) Cached[bool] {
	v, ok := b.Get(id)
	if !ok {
		return Unknown[bool]()
	}
	x, ok := v.Bool()
	if !ok {
		return Unknown[bool]()
	}
	return Known(x)
}

func cachedTime(b Block, id ParamID) Cached[timerange.Time] {
	v, ok := b.Get(id)
	if !ok {
		return Unknown[timerange.Time]()
	}
	t, ok := v.Time()
	if !ok {
		return Unknown[timerange.Time]()
	}
	return Known(t)
}
