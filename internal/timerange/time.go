// Package timerange holds the fixed-point time axis shared by the node and the
// host engine, together with the closed interval type used to describe cache
// invalidation.
package timerange

import (
	"math"
	"strconv"
)

// Time is a point on the evaluation time axis, in engine ticks.
type Time int64

// TicksPerSecond is the engine resolution.
const TicksPerSecond = 141120000

// Sentinel bounds of the representable time domain. They sit at half of the
// int64 range so that sums of two in-range values cannot overflow.
const (
	MaxTime Time = math.MaxInt64 / 2
	MinTime Time = -(math.MaxInt64 / 2)
)

// FromSeconds converts seconds to ticks, saturating at the sentinel bounds.
// NaN maps to zero.
func FromSeconds(s float64) Time {
	if math.IsNaN(s) {
		return 0
	}
	v := math.Round(s * TicksPerSecond)
	switch {
	case v >= float64(MaxTime):
		return MaxTime
	case v <= float64(MinTime):
		return MinTime
	}
	return Time(v)
}

// Seconds returns t in seconds.
func (t Time) Seconds() float64 {
	return float64(t) / TicksPerSecond
}

// Add returns t+d clamped to [MinTime, MaxTime].
func (t Time) Add(d Time) Time {
	return clamp(clamp(t) + clamp(d))
}

// Sub returns t-d clamped to [MinTime, MaxTime].
func (t Time) Sub(d Time) Time {
	return clamp(clamp(t) - clamp(d))
}

// IsInfinite reports whether t sits on one of the sentinel bounds.
func (t Time) IsInfinite() bool {
	return t >= MaxTime || t <= MinTime
}

func (t Time) String() string {
	switch {
	case t >= MaxTime:
		return "+inf"
	case t <= MinTime:
		return "-inf"
	}
	return strconv.FormatFloat(t.Seconds(), 'f', -1, 64) + "s"
}

func clamp(t Time) Time {
	if t > MaxTime {
		return MaxTime
	}
	if t < MinTime {
		return MinTime
	}
	return t
}
