package engine

import (
	"errors"
	"fmt"
	"sync"

	"damper/internal/damper"
	"damper/internal/metrics"
	"damper/internal/timerange"
)

var (
	// ErrReplayLimit is returned when ordered evaluation would need more
	// catch-up frames than the session allows.
	ErrReplayLimit = errors.New("replay exceeds frame limit")

	// ErrNotWritable is returned when a change targets a parameter callers cannot set.
	ErrNotWritable = errors.New("parameter is not writable")

	// ErrEngineDriven is returned for parameters the engine sets itself.
	ErrEngineDriven = errors.New("parameter is driven by the engine")
)

const (
	defaultFrameRate       = 24.0
	defaultMaxReplayFrames = 100_000
	defaultMaxCachedFrames = 100_000
)

// Options tune a Session.
type Options struct {
	// FrameRate defines the grid used to replay simulated frames in order.
	FrameRate float64
	// MaxReplayFrames caps catch-up work for a single evaluation.
	MaxReplayFrames int
	// MaxCachedFrames caps the frame cache; frames farthest from the latest
	// evaluation are dropped first.
	MaxCachedFrames int
}

// Session hosts one node instance. All methods are serialized: the node has a
// single feedback cell and is not reentrant.
type Session struct {
	mu        sync.Mutex
	node      *damper.Node
	block     *MemoryBlock
	frames    *FrameCache
	frameStep timerange.Time
	maxReplay int

	last    timerange.Time
	hasLast bool
}

// NewSession builds a node from schema with a fresh block and frame cache.
func NewSession(schema *damper.Schema, opts Options) *Session {
	if opts.FrameRate <= 0 {
		opts.FrameRate = defaultFrameRate
	}
	if opts.MaxReplayFrames <= 0 {
		opts.MaxReplayFrames = defaultMaxReplayFrames
	}
	if opts.MaxCachedFrames <= 0 {
		opts.MaxCachedFrames = defaultMaxCachedFrames
	}
	step := timerange.FromSeconds(1 / opts.FrameRate)
	if step <= 0 {
		step = 1
	}
	s := &Session{
		node:      damper.NewNode(schema),
		block:     NewMemoryBlock(schema),
		frames:    NewFrameCache(opts.MaxCachedFrames),
		frameStep: step,
		maxReplay: opts.MaxReplayFrames,
	}
	metrics.ObserveSimulationSupport(s.node.CacheSetup(s.block).SimulationSupport)
	return s
}

// FrameStep returns the duration of one frame.
func (s *Session) FrameStep() timerange.Time { return s.frameStep }

// Result is the outcome of one Evaluate call.
type Result struct {
	Time     timerange.Time
	Output   float64
	Cached   bool
	Replayed int
}

// Evaluate returns the node output at t, from the frame cache when possible.
//
// When the node requests simulation support, frames are computed strictly in
// order: a gap after the last evaluated frame is filled first, and a request
// behind it rewinds the feedback memory and replays from the simulation start.
func (s *Session) Evaluate(t timerange.Time) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.frames.Get(t); ok {
		metrics.Evaluations.WithLabelValues(metrics.ModeCached).Inc()
		return Result{Time: t, Output: v, Cached: true}, nil
	}

	replayed := 0
	if s.node.CacheSetup(s.block).SimulationSupport {
		n, err := s.catchUp(t)
		if err != nil {
			metrics.EvaluationErrors.Inc()
			return Result{}, err
		}
		replayed = n
	}

	out, err := s.computeAt(t)
	if err != nil {
		metrics.EvaluationErrors.Inc()
		return Result{}, err
	}
	metrics.Evaluations.WithLabelValues(metrics.ModeComputed).Inc()
	return Result{Time: t, Output: out, Replayed: replayed}, nil
}

// catchUp evaluates the frames that must precede t on the frame grid.
func (s *Session) catchUp(t timerange.Time) (int, error) {
	v, ok := s.block.Get(damper.SimulationStartTime)
	if !ok {
		return 0, nil
	}
	start, ok := v.Time()
	if !ok {
		return 0, nil
	}

	var from timerange.Time
	switch {
	case s.hasLast && s.last < t:
		from = max(s.last.Add(s.frameStep), start)
	default:
		// fresh session or time went backwards: rebuild history
		s.node.ResetMemory()
		s.hasLast = false
		from = start
	}
	if from >= t {
		return 0, nil
	}

	span := int64(t) - int64(from)
	frames := span / int64(s.frameStep)
	if span%int64(s.frameStep) != 0 {
		frames++
	}
	if frames > int64(s.maxReplay) {
		return 0, fmt.Errorf("catch up %s to %s: %d frames: %w", from, t, frames, ErrReplayLimit)
	}

	n := 0
	for ft := from; ft < t; ft = ft.Add(s.frameStep) {
		if _, err := s.computeAt(ft); err != nil {
			return n, err
		}
		n++
	}
	metrics.Evaluations.WithLabelValues(metrics.ModeReplayed).Add(float64(n))
	return n, nil
}

func (s *Session) computeAt(t timerange.Time) (float64, error) {
	s.block.Assign(damper.CurrentTime, damper.TimeValue(t))
	if err := s.node.Compute(s.block, damper.Output); err != nil {
		return 0, err
	}
	v, _ := s.block.Get(damper.Output)
	out, _ := v.Float()
	if n := s.frames.Put(t, out); n > 0 {
		metrics.FramesTrimmed.Add(float64(n))
	}
	s.last, s.hasLast = t, true
	metrics.FrameCacheSize.Set(float64(s.frames.Len()))
	return out, nil
}

// Change is a set of new parameter values or an upstream edit. A parameter
// holds one value for all time, so a change carrying values is described over
// the whole domain. Edit is only consulted when Values is empty: it names the
// span an upstream input changed over. Nil means all time.
type Change struct {
	Values map[damper.ParamID]damper.Value
	Edit   *timerange.Interval
}

// Applied reports what a change invalidated.
type Applied struct {
	Invalidation damper.Invalidation
	Evicted      int
	Requirement  damper.CacheRequirement
}

// Apply marks the changed parameters dirty, asks the node which cached span
// that invalidates, evicts it, and then commits the new values. A change
// without values only evicts what the node describes for Edit.
func (s *Session) Apply(c Change) (Applied, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	schema := s.node.Schema()
	for id, v := range c.Values {
		d, ok := schema.Descriptor(id)
		switch {
		case !ok:
			return Applied{}, fmt.Errorf("apply id %d: %w", id, damper.ErrUnknownParameter)
		case id == damper.CurrentTime:
			return Applied{}, fmt.Errorf("apply %s: %w", d.Name, ErrEngineDriven)
		case !d.Writable:
			return Applied{}, fmt.Errorf("apply %s: %w", d.Name, ErrNotWritable)
		case v.Kind() != d.Kind:
			return Applied{}, fmt.Errorf("apply %s: %w: got %s, want %s", d.Name, damper.ErrKindMismatch, v.Kind(), d.Kind)
		}
	}

	query := timerange.Unbounded()
	if len(c.Values) == 0 && c.Edit != nil {
		query = *c.Edit
	}

	for id := range c.Values {
		s.block.Dirty(id)
	}
	inv := s.node.DescribeInvalidation(s.block, query)
	evicted := s.frames.Evict(inv.Range)
	for id, v := range c.Values {
		s.block.Assign(id, v)
	}

	// history past the last frame is gone; the next ordered evaluation rebuilds it
	if s.hasLast && inv.Range.Contains(s.last) {
		s.hasLast = false
		s.node.ResetMemory()
	}

	req := s.node.CacheSetup(s.block)
	metrics.Invalidations.WithLabelValues(string(inv.Reason)).Inc()
	metrics.FramesEvicted.Add(float64(evicted))
	metrics.FrameCacheSize.Set(float64(s.frames.Len()))
	metrics.ObserveSimulationSupport(req.SimulationSupport)

	return Applied{Invalidation: inv, Evicted: evicted, Requirement: req}, nil
}

// Load assigns stored values without invalidating anything. It is meant for
// restoring a session before the first evaluation.
func (s *Session) Load(values map[damper.ParamID]damper.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, v := range values {
		s.block.Assign(id, v)
	}
	metrics.ObserveSimulationSupport(s.node.CacheSetup(s.block).SimulationSupport)
}

// Invalidation describes the span query would invalidate, without evicting.
func (s *Session) Invalidation(query timerange.Interval) damper.Invalidation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.node.DescribeInvalidation(s.block, query)
}

// CacheSetup returns the node's current cache requirement.
func (s *Session) CacheSetup() damper.CacheRequirement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.node.CacheSetup(s.block)
}

// Snapshot is a consistent view of the session.
type Snapshot struct {
	Values         map[damper.ParamID]damper.Value
	Output         float64
	OutputClean    bool
	PreviousOutput float64
	Frames         int
	LastEvaluated  timerange.Time
	HasEvaluated   bool
	Requirement    damper.CacheRequirement
}

// Snapshot returns the current values of every parameter and the cache state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Values:         make(map[damper.ParamID]damper.Value),
		PreviousOutput: s.node.Memory().Value(),
		Frames:         s.frames.Len(),
		LastEvaluated:  s.last,
		HasEvaluated:   s.hasLast,
		Requirement:    s.node.CacheSetup(s.block),
	}
	for _, d := range s.node.Schema().Descriptors() {
		if v, ok := s.block.Peek(d.ID); ok {
			snap.Values[d.ID] = v
		}
	}
	snap.OutputClean = s.block.IsClean(damper.Output)
	if v, ok := s.block.Peek(damper.Output); ok {
		snap.Output, _ = v.Float()
	}
	return snap
}

// StorableValues returns the values the host persists.
func (s *Session) StorableValues() map[damper.ParamID]damper.Value {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[damper.ParamID]damper.Value)
	for _, id := range s.node.Schema().Storable() {
		if v, ok := s.block.Peek(id); ok {
			out[id] = v
		}
	}
	if s.node.Memory().Persisted {
		out[damper.PreviousOutput] = damper.FloatValue(s.node.Memory().Value())
	}
	return out
}
