// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reaction

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

func TestLoadSpectrum(t *testing.T) {
	s, err := LoadSpectrum(filepath.Join("testdata", "spectrum.yaml"))
	require.NoError(t, err)
	require.Len(t, s.Samples, 2)
	assert.Len(t, s.Groups, 5)
	assert.InDelta(t, 15e10, s.Total(0), 1)
	assert.InDelta(t, 20e10, s.Total(1), 1)
}

func TestSpectrumValidate(t *testing.T) {
	tests := []struct {
		name string
		s    Spectrum
		ok   bool
	}{
		{"point source", Spectrum{Samples: [][]float64{{1, 2}}}, true},
		{"no samples", Spectrum{}, false},
		{"empty sample", Spectrum{Samples: [][]float64{{}}}, false},
		{"ragged", Spectrum{Samples: [][]float64{{1, 2}, {1}}}, false},
		{"negative", Spectrum{Samples: [][]float64{{1, -2}}}, false},
		{"group labels", Spectrum{Groups: []float64{1}, Samples: [][]float64{{1, 2}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestIsotopes(t *testing.T) {
	iso, err := LoadIsotopes(filepath.Join("testdata", "isotopes.yaml"))
	require.NoError(t, err)

	natural := iso.Natural("ni")
	require.Len(t, natural, 2)
	assert.Equal(t, "Ni058", natural[0].Name)
	assert.Equal(t, "Ni", natural[0].Element)

	co := iso.Natural("Co")
	require.Len(t, co, 1)
	assert.Equal(t, "Co059", co[0].Name)

	atoms, err := iso.Atoms("co59", 100)
	require.NoError(t, err)
	assert.InEpsilon(t, Avogadro/58.933194, atoms, 1e-12)

	_, err = iso.Atoms("Fe056", 1)
	assert.Error(t, err)
}

func TestNewIsotopeTableErrors(t *testing.T) {
	_, err := NewIsotopeTable([]Isotope{{Name: "Co59", MolarMass: 0}})
	assert.Error(t, err)

	_, err = NewIsotopeTable([]Isotope{{Name: "Co59", MolarMass: 1}, {Name: "co059", MolarMass: 1}})
	assert.Error(t, err)
}
