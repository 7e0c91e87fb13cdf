// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dose

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/purity-engine/internal/activity"
)

func TestLoadFactors(t *testing.T) {
	f, err := LoadFactors(filepath.Join("testdata", "dose_factors.csv"))
	require.NoError(t, err)
	assert.Len(t, f, 4)

	v, ok := f.Lookup("Co060")
	require.True(t, ok)
	assert.Equal(t, 3.7e-13, v)

	v, ok = f.Lookup("co60m")
	require.True(t, ok)
	assert.Equal(t, 1.2e-15, v)

	_, ok = f.Lookup("Fe055")
	assert.False(t, ok)
}

func TestParseFactors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Factors
		wantErr bool
	}{
		{"no header", "X1,0.5\nX2,0.7\n", Factors{"X1": 0.5, "X2": 0.7}, false},
		{"header and comment", "# factors\nNuclide,Factor\nX3,0.9\n", Factors{"X3": 0.9}, false},
		{"bad factor", "X1,0.5\nX2,abc\n", nil, true},
		{"one column", "X1\n", nil, true},
		{"bad name", "1,0.5\ncobalt,0.3\n", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFactors(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDose(t *testing.T) {
	for _, a := range []float64{1, 2, 3, 4, 5} {
		assert.Equal(t, 0.5*a*1e6, Dose(0.5, a))
	}
}

func TestPerSample(t *testing.T) {
	factors := Factors{"Co60": 2e-13, "Nb94": 1e-13}
	units := []activity.Unit{
		{Parent: "Co059", Sample: 0, Activities: map[string]float64{"Co060": 1e8, "Co060m": 5}},
		{Parent: "Co059", Sample: 1, Activities: map[string]float64{"Co060": 2e8}},
		{Parent: "Nb093", Sample: 0, Activities: map[string]float64{"Nb094": 1e4, "Nb093m": 1}},
	}

	var log bytes.Buffer
	got := PerSample(units, factors, &log)
	require.Len(t, got, 2)
	assert.InEpsilon(t, 2e-13*1e8*1e6+1e-13*1e4*1e6, got[0], 1e-12)
	assert.InEpsilon(t, 2e-13*2e8*1e6, got[1], 1e-12)
	assert.Equal(t, "warning: no dose conversion factor for Co060m, Nb093m\n", log.String())

	assert.Empty(t, PerSample(nil, factors, nil))
}
