package service

import (
	"fmt"
	"math"

	"damper/internal/damper"
	"damper/internal/engine"
	"damper/internal/models"
	"damper/internal/timerange"
)

const nodeParamsID = 1

// paramsFromValues maps storable node values onto the persisted row.
func paramsFromValues(vals map[damper.ParamID]damper.Value) models.NodeParams {
	p := models.NodeParams{ID: nodeParamsID}
	if v, ok := vals[damper.Target]; ok {
		p.Target, _ = v.Float()
	}
	if v, ok := vals[damper.DampingFactor]; ok {
		p.DampingFactor, _ = v.Float()
	}
	if v, ok := vals[damper.CurrentTime]; ok {
		p.CurrentTime, _ = v.Time()
	}
	if v, ok := vals[damper.SimulationEnabled]; ok {
		p.SimulationEnabled, _ = v.Bool()
	}
	if v, ok := vals[damper.SimulationStartTime]; ok {
		p.SimulationStartTime, _ = v.Time()
	}
	return p
}

// valuesFromParams is the inverse of paramsFromValues.
func valuesFromParams(p models.NodeParams) map[damper.ParamID]damper.Value {
	return map[damper.ParamID]damper.Value{
		damper.Target:              damper.FloatValue(p.Target),
		damper.DampingFactor:       damper.FloatValue(p.DampingFactor),
		damper.CurrentTime:         damper.TimeValue(p.CurrentTime),
		damper.SimulationEnabled:   damper.BoolValue(p.SimulationEnabled),
		damper.SimulationStartTime: damper.TimeValue(p.SimulationStartTime),
	}
}

func finite(name string, v *float64) error {
	if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
		return fmt.Errorf("%w: %s must be finite", ErrInvalidParams, name)
	}
	return nil
}

// change converts u into an engine change. Out-of-range damping factors are
// accepted; the node defines what they do.
func (u ParamsUpdate) change() (engine.Change, error) {
	for name, v := range map[string]*float64{
		"target":             u.Target,
		"damping_factor":     u.DampingFactor,
		"simulation_start_s": u.SimulationStartS,
	} {
		if err := finite(name, v); err != nil {
			return engine.Change{}, err
		}
	}

	vals := make(map[damper.ParamID]damper.Value)
	if u.Target != nil {
		vals[damper.Target] = damper.FloatValue(*u.Target)
	}
	if u.DampingFactor != nil {
		vals[damper.DampingFactor] = damper.FloatValue(*u.DampingFactor)
	}
	if u.SimulationEnabled != nil {
		vals[damper.SimulationEnabled] = damper.BoolValue(*u.SimulationEnabled)
	}
	if u.SimulationStartS != nil {
		vals[damper.SimulationStartTime] = damper.TimeValue(timerange.FromSeconds(*u.SimulationStartS))
	}
	switch {
	case len(vals) == 0 && u.Edit == nil:
		return engine.Change{}, fmt.Errorf("%w: nothing to update", ErrInvalidParams)
	case len(vals) > 0 && u.Edit != nil:
		return engine.Change{}, fmt.Errorf("%w: edit span cannot be combined with parameter values", ErrInvalidParams)
	}

	return engine.Change{Values: vals, Edit: u.Edit}, nil
}

// names keys a value map by parameter name for event metadata.
func names(vals map[damper.ParamID]damper.Value) map[string]string {
	out := make(map[string]string, len(vals))
	for id, v := range vals {
		out[id.String()] = v.String()
	}
	return out
}
