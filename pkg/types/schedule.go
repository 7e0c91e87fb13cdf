// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Pulse is one segment of an irradiation schedule with constant relative
// source strength.
type Pulse struct {
	// Duration is the pulse length in seconds.
	Duration float64 `json:"duration" yaml:"duration"`

	// Strength is the source strength relative to nominal; zero for pure decay.
	Strength float64 `json:"strength" yaml:"strength"`
}

// Schedule is an ordered sequence of pulses.
type Schedule struct {
	Name   string  `json:"name" yaml:"name"`
	Pulses []Pulse `json:"pulses" yaml:"pulses"`
}

// Clone returns a deep copy of s.
func (s Schedule) Clone() Schedule {
	out := Schedule{Name: s.Name, Pulses: make([]Pulse, len(s.Pulses))}
	copy(out.Pulses, s.Pulses)
	return out
}

// Duration returns the summed length of all pulses in seconds.
func (s Schedule) Duration() float64 {
	var total float64
	for _, p := range s.Pulses {
		total += p.Duration
	}
	return total
}
