package timerange

// Interval is a closed range [Start, End] on the time axis. An interval with
// Empty set covers nothing and its bounds carry no meaning.
type Interval struct {
	Start Time `json:"start"`
	End   Time `json:"end"`
	Empty bool `json:"empty,omitempty"`
}

// New returns the closed interval between a and b, in either order, clamped
// to the representable domain.
func New(a, b Time) Interval {
	a, b = clamp(a), clamp(b)
	if a > b {
		a, b = b, a
	}
	return Interval{Start: a, End: b}
}

// Instant returns the degenerate interval [t, t].
func Instant(t Time) Interval {
	return New(t, t)
}

// Empty returns the interval that covers nothing.
func Empty() Interval {
	return Interval{Empty: true}
}

// Unbounded returns the interval spanning the whole representable domain.
func Unbounded() Interval {
	return Interval{Start: MinTime, End: MaxTime}
}

// From returns [t, MaxTime].
func From(t Time) Interval {
	return New(t, MaxTime)
}

// IsUnbounded reports whether r spans the whole domain.
func (r Interval) IsUnbounded() bool {
	return !r.Empty && r.Start <= MinTime && r.End >= MaxTime
}

// Contains reports whether t lies within r.
func (r Interval) Contains(t Time) bool {
	return !r.Empty && r.Start <= t && t <= r.End
}

// Intersects reports whether r and o share at least one instant.
func (r Interval) Intersects(o Interval) bool {
	if r.Empty || o.Empty {
		return false
	}
	return r.Start <= o.End && o.Start <= r.End
}

// Union returns the smallest interval covering both r and o. Empty is the
// identity. For disjoint inputs the gap between them is covered too.
func (r Interval) Union(o Interval) Interval {
	switch {
	case r.Empty:
		return o
	case o.Empty:
		return r
	}
	return Interval{Start: min(r.Start, o.Start), End: max(r.End, o.End)}
}

// Covers reports whether every instant of o lies within r.
func (r Interval) Covers(o Interval) bool {
	if o.Empty {
		return true
	}
	return !r.Empty && r.Start <= o.Start && o.End <= r.End
}

func (r Interval) String() string {
	if r.Empty {
		return "[]"
	}
	return "[" + r.Start.String() + ", " + r.End.String() + "]"
}
