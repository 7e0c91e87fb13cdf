// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schedule provides irradiation schedules: the built-in ITER
// scenarios and user schedules loaded from files. A Provider owns the cache
// of loaded user schedules.
package schedule

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/pdiddy/purity-engine/pkg/types"
)

const (
	daySeconds  = 24 * 60 * 60
	yearSeconds = 365.25 * daySeconds
)

var (
	// ErrNotFound is returned when a schedule is neither built in nor an
	// existing file.
	ErrNotFound = errors.New("schedule not found")

	// ErrMalformed is returned for schedule files that cannot be parsed.
	ErrMalformed = errors.New("malformed schedule")
)

// Builtin returns the built-in schedules keyed by name. Reference
// ITER_D_8WK64Y.
func Builtin() map[string]types.Schedule {
	return map[string]types.Schedule{
		"DT1": dt1(),
		"SA2": sa2(),
	}
}

func dt1() types.Schedule {
	strengths := []float64{1.70427e-06, 1.17412e-04, 3.87673e-04, 9.95946e-04, 1.58543e-03}
	s := types.Schedule{Name: "DT1"}
	for _, f := range strengths {
		s.Pulses = append(s.Pulses, types.Pulse{Duration: 730.5 * daySeconds, Strength: f})
	}
	s.Pulses = append(s.Pulses, types.Pulse{Duration: 600, Strength: 5.01221e-01})
	return s
}

func sa2() types.Schedule {
	s := types.Schedule{Name: "SA2", Pulses: []types.Pulse{
		{Duration: 2 * yearSeconds, Strength: 0.00536},
		{Duration: 10 * yearSeconds, Strength: 0.0412},
		{Duration: 0.667 * yearSeconds, Strength: 0},
		{Duration: 1.325 * yearSeconds, Strength: 0.083},
	}}
	for i := 0; i < 17; i++ {
		s.Pulses = append(s.Pulses,
			types.Pulse{Duration: 3920, Strength: 0},
			types.Pulse{Duration: 400, Strength: 1})
	}
	for i := 0; i < 3; i++ {
		s.Pulses = append(s.Pulses,
			types.Pulse{Duration: 3920, Strength: 0},
			types.Pulse{Duration: 400, Strength: 1.4})
	}
	return s
}

// Provider resolves schedule names. Built-in names take precedence; any
// other name is treated as a file path, loaded once and cached under that
// path until Reset.
type Provider struct {
	mu      sync.Mutex
	builtin map[string]types.Schedule
	cache   map[string]types.Schedule
}

// NewProvider returns a Provider with the built-in schedules.
func NewProvider() *Provider {
	return &Provider{
		builtin: Builtin(),
		cache:   make(map[string]types.Schedule),
	}
}

// Resolve returns a copy of the named schedule.
func (p *Provider) Resolve(name string) (types.Schedule, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s, ok := p.builtin[name]; ok {
		return s.Clone(), nil
	}
	if s, ok := p.cache[name]; ok {
		return s.Clone(), nil
	}

	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return types.Schedule{}, fmt.Errorf("%w: %s is not a built-in schedule or an existing file", ErrNotFound, name)
		}
		return types.Schedule{}, fmt.Errorf("checking schedule file %s: %w", name, err)
	}
	s, err := LoadFile(name)
	if err != nil {
		return types.Schedule{}, err
	}
	p.cache[name] = s
	return s.Clone(), nil
}

// Names returns the built-in and cached schedule names, sorted.
func (p *Provider) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, 0, len(p.builtin)+len(p.cache))
	for name := range p.builtin {
		names = append(names, name)
	}
	for name := range p.cache {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset drops all cached user schedules.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache = make(map[string]types.Schedule)
}

// WithDecay returns a copy of s with a terminal pure-decay pulse of
// decayTime seconds appended.
func WithDecay(s types.Schedule, decayTime float64) types.Schedule {
	out := s.Clone()
	out.Pulses = append(out.Pulses, types.Pulse{Duration: decayTime, Strength: 0})
	return out
}
