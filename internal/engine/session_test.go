package engine

import (
	"errors"
	"testing"

	"damper/internal/damper"
	"damper/internal/timerange"
)

func sec(s float64) timerange.Time { return timerange.FromSeconds(s) }

func newTestSession(t *testing.T, maxReplay int) *Session {
	t.Helper()
	return NewSession(damper.NewSchema(), Options{FrameRate: 1, MaxReplayFrames: maxReplay})
}

func mustApply(t *testing.T, s *Session, c Change) Applied {
	t.Helper()
	a, err := s.Apply(c)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	return a
}

func values(kv ...any) map[damper.ParamID]damper.Value {
	out := make(map[damper.ParamID]damper.Value)
	for i := 0; i < len(kv); i += 2 {
		out[kv[i].(damper.ParamID)] = kv[i+1].(damper.Value)
	}
	return out
}

func TestMemoryBlock_DefaultsAndFlags(t *testing.T) {
	b := NewMemoryBlock(damper.NewSchema())

	v, ok := b.Get(damper.DampingFactor)
	if f, _ := v.Float(); !ok || f != 0.1 {
		t.Fatalf("dampingFactor default: %v clean=%v", f, ok)
	}
	if _, ok := b.Get(damper.Output); ok {
		t.Fatalf("output must start dirty")
	}

	b.Dirty(damper.Target)
	if _, ok := b.Get(damper.Target); ok {
		t.Fatalf("dirty target reported clean")
	}
	if _, ok := b.Peek(damper.Target); !ok {
		t.Fatalf("peek should see a dirty value")
	}
	b.Assign(damper.Target, damper.FloatValue(3))
	if v, ok := b.Get(damper.Target); !ok {
		t.Fatalf("assign should mark clean")
	} else if f, _ := v.Float(); f != 3 {
		t.Fatalf("got %v, want 3", f)
	}
}

func TestFrameCache_Evict(t *testing.T) {
	c := NewFrameCache(0)
	for i := 0; i < 10; i++ {
		c.Put(sec(float64(i)), float64(i))
	}
	if n := c.Evict(timerange.Empty()); n != 0 {
		t.Fatalf("empty evicted %d", n)
	}
	if n := c.Evict(timerange.New(sec(2), sec(4))); n != 3 {
		t.Fatalf("evicted %d, want 3", n)
	}
	if _, ok := c.Get(sec(3)); ok {
		t.Fatalf("frame 3 should be gone")
	}
	times := c.Times()
	if len(times) != 7 || times[0] != sec(0) || times[6] != sec(9) {
		t.Fatalf("unexpected times %v", times)
	}
	if n := c.Evict(timerange.Unbounded()); n != 7 || c.Len() != 0 {
		t.Fatalf("unbounded evicted %d, left %d", n, c.Len())
	}
}

func TestFrameCache_TrimsFarthestFrames(t *testing.T) {
	c := NewFrameCache(8)
	for i := 0; i < 8; i++ {
		if n := c.Put(sec(float64(i)), float64(i)); n != 0 {
			t.Fatalf("trimmed %d below the limit", n)
		}
	}
	if n := c.Put(sec(100), 100); n != 3 {
		t.Fatalf("trimmed %d, want 3", n)
	}
	if c.Len() != 6 {
		t.Fatalf("len %d, want 6", c.Len())
	}
	if _, ok := c.Get(sec(100)); !ok {
		t.Fatalf("the frame just written must survive")
	}
	for _, gone := range []float64{0, 1, 2} {
		if _, ok := c.Get(sec(gone)); ok {
			t.Fatalf("frame %v should have been trimmed", gone)
		}
	}
}

func TestSession_FrameCacheIsBounded(t *testing.T) {
	s := NewSession(damper.NewSchema(), Options{FrameRate: 1, MaxCachedFrames: 4})
	mustApply(t, s, Change{Values: values(damper.SimulationEnabled, damper.BoolValue(false), damper.Target, damper.FloatValue(3))})
	for i := 0; i < 50; i++ {
		if _, err := s.Evaluate(sec(float64(i * 7))); err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if n := s.Snapshot().Frames; n > 4 {
			t.Fatalf("cache grew to %d frames", n)
		}
	}
	res, err := s.Evaluate(sec(0))
	if err != nil || res.Cached || res.Output != 3 {
		t.Fatalf("trimmed frame should be recomputed: %+v, %v", res, err)
	}
}

func TestSession_EvaluateReplaysFromStart(t *testing.T) {
	s := newTestSession(t, 0)
	mustApply(t, s, Change{Values: values(damper.Target, damper.FloatValue(10), damper.DampingFactor, damper.FloatValue(0.5))})

	res, err := s.Evaluate(sec(4))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if res.Output != 10 || res.Replayed != 4 || res.Cached {
		t.Fatalf("unexpected result %+v", res)
	}

	res, err = s.Evaluate(sec(2))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !res.Cached || res.Output != 10 {
		t.Fatalf("replayed frame should be cached: %+v", res)
	}

	snap := s.Snapshot()
	if snap.Frames != 5 || !snap.HasEvaluated || snap.LastEvaluated != sec(4) {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.PreviousOutput != 10 || !snap.OutputClean {
		t.Fatalf("unexpected outputs %+v", snap)
	}
}

func TestSession_ForwardGapIsFilled(t *testing.T) {
	s := newTestSession(t, 0)
	if _, err := s.Evaluate(sec(1)); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	res, err := s.Evaluate(sec(5))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if res.Replayed != 3 {
		t.Fatalf("replayed %d, want 3 (frames 2..4)", res.Replayed)
	}
}

func TestSession_RewindRebuildsHistory(t *testing.T) {
	s := newTestSession(t, 0)
	if _, err := s.Evaluate(sec(6)); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	res, err := s.Evaluate(sec(2.5))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if res.Cached || res.Replayed != 3 {
		t.Fatalf("expected a replay of frames 0..2, got %+v", res)
	}
}

func TestSession_ReplayLimit(t *testing.T) {
	s := newTestSession(t, 2)
	_, err := s.Evaluate(sec(10))
	if !errors.Is(err, ErrReplayLimit) {
		t.Fatalf("got %v, want ErrReplayLimit", err)
	}
	if s.Snapshot().Frames != 0 {
		t.Fatalf("nothing should be cached after a refused replay")
	}
}

func TestSession_DisabledSkipsReplay(t *testing.T) {
	s := newTestSession(t, 1)
	a := mustApply(t, s, Change{Values: values(damper.SimulationEnabled, damper.BoolValue(false), damper.Target, damper.FloatValue(5))})
	if a.Requirement.SimulationSupport {
		t.Fatalf("disabled node should not request simulation support")
	}
	if a.Invalidation.Reason != damper.ReasonUnknownState {
		t.Fatalf("changing simulationEnabled must be described while dirty, got %s", a.Invalidation.Reason)
	}

	res, err := s.Evaluate(sec(100))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if res.Output != 5 || res.Replayed != 0 {
		t.Fatalf("unexpected %+v", res)
	}
}

func TestSession_ApplyEvictsDescribedRange(t *testing.T) {
	s := newTestSession(t, 0)
	mustApply(t, s, Change{Values: values(damper.SimulationStartTime, damper.TimeValue(sec(8)), damper.Target, damper.FloatValue(2))})
	if _, err := s.Evaluate(sec(10)); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	before := s.Snapshot().Frames

	edit := timerange.New(sec(1), sec(3))
	a := mustApply(t, s, Change{Edit: &edit})
	if a.Invalidation.Reason != damper.ReasonDisjoint || a.Evicted != 0 {
		t.Fatalf("edit before start: %+v", a)
	}
	if s.Snapshot().Frames != before {
		t.Fatalf("frames changed on a disjoint edit")
	}

	edit = timerange.New(sec(9), sec(9))
	a = mustApply(t, s, Change{Edit: &edit})
	if a.Invalidation.Reason != damper.ReasonWidened || a.Invalidation.Range.Start != sec(8) {
		t.Fatalf("edit after start: %+v", a)
	}
	if a.Evicted != before {
		t.Fatalf("evicted %d, want %d", a.Evicted, before)
	}
	if s.Snapshot().HasEvaluated {
		t.Fatalf("history should be dropped when the last frame is invalidated")
	}

	res, err := s.Evaluate(sec(9))
	if err != nil || res.Output != 2 || res.Replayed != 1 {
		t.Fatalf("re-evaluate: %+v, %v", res, err)
	}
}

func TestSession_ValueChangeLeavesNoStaleFrames(t *testing.T) {
	cases := []struct {
		name    string
		setup   map[damper.ParamID]damper.Value
		at      timerange.Time
		edit    timerange.Interval
		changed map[damper.ParamID]damper.Value
		reason  damper.Reason
	}{
		{
			name:    "disabled, edit elsewhere",
			setup:   values(damper.SimulationEnabled, damper.BoolValue(false), damper.Target, damper.FloatValue(1)),
			at:      sec(20),
			edit:    timerange.New(sec(5), sec(15)),
			changed: values(damper.Target, damper.FloatValue(9)),
			reason:  damper.ReasonPassThrough,
		},
		{
			name:    "simulating, edit before start",
			setup:   values(damper.SimulationStartTime, damper.TimeValue(sec(8)), damper.Target, damper.FloatValue(1)),
			at:      sec(12),
			edit:    timerange.New(sec(1), sec(3)),
			changed: values(damper.Target, damper.FloatValue(100)),
			reason:  damper.ReasonWidened,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestSession(t, 0)
			mustApply(t, s, Change{Values: tc.setup})
			old, err := s.Evaluate(tc.at)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if old.Output != 1 {
				t.Fatalf("setup output %v, want 1", old.Output)
			}

			edit := tc.edit
			a := mustApply(t, s, Change{Values: tc.changed, Edit: &edit})
			if !a.Invalidation.Range.IsUnbounded() || a.Invalidation.Reason != tc.reason {
				t.Fatalf("value change must invalidate all time: %+v", a.Invalidation)
			}
			if s.Snapshot().Frames != 0 {
				t.Fatalf("%d stale frames survived", s.Snapshot().Frames)
			}

			res, err := s.Evaluate(tc.at)
			if err != nil {
				t.Fatalf("re-evaluate: %v", err)
			}
			if res.Cached || res.Output == old.Output {
				t.Fatalf("stale output at %s: %+v", tc.at, res)
			}
		})
	}
}

func TestSession_ApplyValidation(t *testing.T) {
	cases := []struct {
		name string
		vals map[damper.ParamID]damper.Value
		want error
	}{
		{"output", values(damper.Output, damper.FloatValue(1)), ErrNotWritable},
		{"previous output", values(damper.PreviousOutput, damper.FloatValue(1)), ErrNotWritable},
		{"current time", values(damper.CurrentTime, damper.TimeValue(0)), ErrEngineDriven},
		{"wrong kind", values(damper.Target, damper.BoolValue(true)), damper.ErrKindMismatch},
		{"unknown id", values(damper.ParamID(42), damper.FloatValue(1)), damper.ErrUnknownParameter},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestSession(t, 0)
			if _, err := s.Apply(Change{Values: tc.vals}); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestSession_InvalidationIsReadOnly(t *testing.T) {
	s := newTestSession(t, 0)
	if _, err := s.Evaluate(sec(3)); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	inv := s.Invalidation(timerange.Unbounded())
	if !inv.Range.IsUnbounded() {
		t.Fatalf("unexpected %+v", inv)
	}
	if s.Snapshot().Frames != 4 {
		t.Fatalf("query must not evict")
	}
}

func TestSession_StorableValues(t *testing.T) {
	s := newTestSession(t, 0)
	s.Load(values(damper.Target, damper.FloatValue(7)))
	vals := s.StorableValues()
	if len(vals) != 5 {
		t.Fatalf("got %d storable values, want 5", len(vals))
	}
	if f, _ := vals[damper.Target].Float(); f != 7 {
		t.Fatalf("target: got %v", f)
	}
	if _, ok := vals[damper.PreviousOutput]; ok {
		t.Fatalf("feedback memory must not be persisted")
	}
}
