// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reaction

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Spectrum holds group neutron fluxes (n/cm²/s) at the source. A point
// source has one sample; a line source has one sample per cell crossed.
type Spectrum struct {
	// Groups optionally labels the energy groups (upper bounds, MeV).
	Groups []float64 `json:"groups,omitempty" yaml:"groups,omitempty"`

	// Samples holds one flux vector per sample, one value per group.
	Samples [][]float64 `json:"samples" yaml:"samples"`
}

// LoadSpectrum reads a spectrum YAML file.
func LoadSpectrum(path string) (*Spectrum, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spectrum: %w", err)
	}
	var s Spectrum
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing spectrum %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("spectrum %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks that the spectrum has samples of equal, non-zero group
// count and no negative fluxes.
func (s *Spectrum) Validate() error {
	if len(s.Samples) == 0 {
		return fmt.Errorf("no flux samples")
	}
	n := len(s.Samples[0])
	if n == 0 {
		return fmt.Errorf("sample 0 has no groups")
	}
	if len(s.Groups) > 0 && len(s.Groups) != n {
		return fmt.Errorf("%d group labels for %d groups", len(s.Groups), n)
	}
	for i, sample := range s.Samples {
		if len(sample) != n {
			return fmt.Errorf("sample %d has %d groups, want %d", i, len(sample), n)
		}
		for g, phi := range sample {
			if phi < 0 {
				return fmt.Errorf("sample %d group %d: negative flux %g", i, g, phi)
			}
		}
	}
	return nil
}

// Total returns the summed flux of sample i.
func (s *Spectrum) Total(i int) float64 {
	var total float64
	for _, phi := range s.Samples[i] {
		total += phi
	}
	return total
}
