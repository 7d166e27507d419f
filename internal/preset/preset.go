// Package preset reads initial node parameters from a YAML file.
//
//	target: 1.0
//	damping_factor: 0.1
//	simulation_enabled: true
//	simulation_start_s: 0
//
// Absent keys keep their schema defaults.
package preset

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"damper/internal/damper"
	"damper/internal/timerange"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned for values no node parameter can hold.
var ErrInvalid = errors.New("invalid preset")

type Preset struct {
	Target            *float64 `yaml:"target"`
	DampingFactor     *float64 `yaml:"damping_factor"`
	SimulationEnabled *bool    `yaml:"simulation_enabled"`
	SimulationStartS  *float64 `yaml:"simulation_start_s"`
}

// Load parses the preset at path. A missing file wraps fs.ErrNotExist.
func Load(path string) (Preset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Preset{}, fmt.Errorf("open preset: %w", err)
	}
	defer f.Close()

	p, err := Parse(f)
	if err != nil {
		return Preset{}, fmt.Errorf("preset %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes one preset document. Unknown keys are rejected.
func Parse(r io.Reader) (Preset, error) {
	var p Preset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Preset{}, fmt.Errorf("decode: %w", err)
	}
	if err := p.validate(); err != nil {
		return Preset{}, err
	}
	return p, nil
}

func (p Preset) validate() error {
	for name, v := range map[string]*float64{
		"target":             p.Target,
		"damping_factor":     p.DampingFactor,
		"simulation_start_s": p.SimulationStartS,
	} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalid, name)
		}
	}
	return nil
}

// Values returns the parameters the preset sets.
func (p Preset) Values() map[damper.ParamID]damper.Value {
	out := make(map[damper.ParamID]damper.Value)
	if p.Target != nil {
		out[damper.Target] = damper.FloatValue(*p.Target)
	}
	if p.DampingFactor != nil {
		out[damper.DampingFactor] = damper.FloatValue(*p.DampingFactor)
	}
	if p.SimulationEnabled != nil {
		out[damper.SimulationEnabled] = damper.BoolValue(*p.SimulationEnabled)
	}
	if p.SimulationStartS != nil {
		out[damper.SimulationStartTime] = damper.TimeValue(timerange.FromSeconds(*p.SimulationStartS))
	}
	return out
}
