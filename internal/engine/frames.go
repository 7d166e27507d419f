package engine

import (
	"slices"

	"damper/internal/timerange"
)

// FrameCache holds evaluated outputs keyed by time. When a limit is set it
// never holds more than limit frames.
type FrameCache struct {
	frames map[timerange.Time]float64
	limit  int
}

// NewFrameCache returns a cache holding at most limit frames; limit <= 0
// means unbounded.
func NewFrameCache(limit int) *FrameCache {
	return &FrameCache{frames: make(map[timerange.Time]float64), limit: limit}
}

func (c *FrameCache) Get(t timerange.Time) (float64, bool) {
	v, ok := c.frames[t]
	return v, ok
}

// Put stores v at t. Past the limit it trims the frames farthest from t and
// returns how many were dropped.
func (c *FrameCache) Put(t timerange.Time, v float64) int {
	c.frames[t] = v
	if c.limit <= 0 || len(c.frames) <= c.limit {
		return 0
	}
	return c.trim(t)
}

// trim drops frames farthest from t down to three quarters of the limit, so
// trimming is not repeated on every Put.
func (c *FrameCache) trim(t timerange.Time) int {
	keep := max(c.limit*3/4, 1)
	times := c.Times()
	slices.SortFunc(times, func(a, b timerange.Time) int {
		da, db := distance(a, t), distance(b, t)
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		default:
			return 0
		}
	})
	for _, ft := range times[keep:] {
		delete(c.frames, ft)
	}
	return len(times) - keep
}

func distance(a, b timerange.Time) int64 {
	if a > b {
		return int64(a) - int64(b)
	}
	return int64(b) - int64(a)
}

// Evict drops every frame inside r and returns how many were dropped.
func (c *FrameCache) Evict(r timerange.Interval) int {
	if r.Empty {
		return 0
	}
	if r.IsUnbounded() {
		n := len(c.frames)
		clear(c.frames)
		return n
	}
	n := 0
	for t := range c.frames {
		if r.Contains(t) {
			delete(c.frames, t)
			n++
		}
	}
	return n
}

func (c *FrameCache) Len() int { return len(c.frames) }

// Times returns the cached times in ascending order.
func (c *FrameCache) Times() []timerange.Time {
	out := make([]timerange.Time, 0, len(c.frames))
	for t := range c.frames {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}
