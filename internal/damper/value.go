package damper

import (
	"fmt"

	"damper/internal/timerange"
)

// Value is a tagged parameter value.
type Value struct {
	kind Kind
	f    float64
	b    bool
	t    timerange.Time
}

// FloatValue wraps a float.
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// TimeValue wraps a time.
func TimeValue(t timerange.Time) Value { return Value{kind: KindTime, t: t} }

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// Float returns the float payload and whether v is a float.
func (v Value) Float() (float64, bool) { return v.f, v.kind == KindFloat }

// Bool returns the bool payload and whether v is a bool.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Time returns the time payload and whether v is a time.
func (v Value) Time() (timerange.Time, bool) { return v.t, v.kind == KindTime }

func (v Value) String() string {
	switch v.kind {
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindTime:
		return v.t.String()
	}
	return "?"
}

// Cached is a value read from the engine cache together with its validity.
type Cached[T any] struct {
	Value T
	Valid bool
}

// Known wraps a valid cached value.
func Known[T any](v T) Cached[T] {
	return Cached[T]{Value: v, Valid: true}
}

// Unknown is a cached value that is not currently clean.
func Unknown[T any]() Cached[T] {
	return Cached[T]{}
}
