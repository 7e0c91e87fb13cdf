// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dose

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/purity-engine/pkg/types"
)

func loadWorkstations(t *testing.T) []types.Workstation {
	t.Helper()
	ws, err := LoadWorkstations(filepath.Join("testdata", "workstations.yaml"))
	require.NoError(t, err)
	return ws
}

func TestSelect(t *testing.T) {
	ws := loadWorkstations(t)

	all, err := Select(ws, "Nb cell", "ALL")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := Select(ws, "Nb cell", "2")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, -300.0, one[0].Bounds.Min.X)

	_, err = Select(ws, "Nb cell", "bench")
	assert.Error(t, err)
	_, err = Select(ws, "Basement", "all")
	assert.Error(t, err)
}

func TestLoadWorkstationsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ws.yaml")
	content := "- name: a\n  location: x\n  bounds: {min: {x: 1}, max: {x: 0}}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	_, err := LoadWorkstations(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("- name: a\n"), 0o644))
	_, err = LoadWorkstations(path)
	assert.Error(t, err)
}

func TestMaxDosePointSource(t *testing.T) {
	ws := types.Workstation{Name: "1", Bounds: types.Box{
		Min: types.Point{X: 100, Y: -50, Z: 0},
		Max: types.Point{X: 200, Y: 50, Z: 180},
	}}

	got := MaxDose(ws, types.Source{Start: types.Point{X: 0, Y: 0, Z: 90}}, []float64{1000})
	assert.Equal(t, types.Point{X: 100, Y: 0, Z: 90}, got.At)
	assert.InEpsilon(t, 1000/(4*math.Pi*1e4), got.Dose, 1e-12)
	assert.Equal(t, "1", got.Workstation)

	inside := MaxDose(ws, types.Source{Start: types.Point{X: 150, Y: 0, Z: 10}}, []float64{1000})
	assert.Equal(t, 1000.0, inside.Dose)
}

func TestMaxDoseLineSource(t *testing.T) {
	ws := types.Workstation{Name: "bench", Bounds: types.Box{
		Min: types.Point{X: 10, Y: -5, Z: 0},
		Max: types.Point{X: 20, Y: 5, Z: 10},
	}}
	end := types.Point{Z: 10}
	src := types.Source{Start: types.Point{}, End: &end}
	doses := []float64{1, 2, 3, 4, 5}

	got := MaxDose(ws, src, doses)
	// The nearest face is x = 10; the grid point at mid-height sees the line
	// under the widest angle.
	assert.Equal(t, 10.0, got.At.X)
	assert.Equal(t, LineDose(doses, src.Start, end, got.At), got.Dose)
	assert.Greater(t, got.Dose, LineDose(doses, src.Start, end, types.Point{X: 20, Z: 5}))

	crossing := types.Point{X: 30, Z: 5}
	through := MaxDose(ws, types.Source{Start: types.Point{X: 0, Z: 5}, End: &crossing}, doses)
	assert.InEpsilon(t, 15.0/30.0, through.Dose, 1e-12)
}

func TestSegmentHitsBox(t *testing.T) {
	box := types.Box{Min: types.Point{}, Max: types.Point{X: 1, Y: 1, Z: 1}}
	tests := []struct {
		name string
		a, b types.Point
		want bool
	}{
		{"through", types.Point{X: -1, Y: 0.5, Z: 0.5}, types.Point{X: 2, Y: 0.5, Z: 0.5}, true},
		{"ends inside", types.Point{X: -1, Y: 0.5, Z: 0.5}, types.Point{X: 0.5, Y: 0.5, Z: 0.5}, true},
		{"stops short", types.Point{X: -2, Y: 0.5, Z: 0.5}, types.Point{X: -1, Y: 0.5, Z: 0.5}, false},
		{"parallel outside", types.Point{X: -1, Y: 2, Z: 0.5}, types.Point{X: 2, Y: 2, Z: 0.5}, false},
		{"diagonal miss", types.Point{X: 2, Y: -1, Z: 0.5}, types.Point{X: 3, Y: 1, Z: 0.5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, segmentHitsBox(tt.a, tt.b, box))
		})
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []types.WorkstationDose{
		{Workstation: "1", Dose: 1234},
		{Workstation: "2", Dose: 0.000123},
	}))
	assert.Equal(t, "Workstation,Delta Dose (micro Sieverts per hour)\n1,1.234e+03\n2,1.230e-04\n", buf.String())
}

func TestMaxTotalDose(t *testing.T) {
	ws := types.Workstation{Name: "1", Bounds: types.Box{
		Min: types.Point{X: 100, Y: -50, Z: 0},
		Max: types.Point{X: 200, Y: 50, Z: 180},
	}}
	near := types.Source{Start: types.Point{X: 0, Y: 0, Z: 90}}
	far := types.Source{Start: types.Point{X: -1000, Y: 0, Z: 90}}

	single, err := MaxTotalDose(ws, []types.Source{near}, [][]float64{{1000}})
	require.NoError(t, err)
	assert.Equal(t, MaxDose(ws, near, []float64{1000}), single)

	both, err := MaxTotalDose(ws, []types.Source{near, far}, [][]float64{{1000}, {1000}})
	require.NoError(t, err)
	assert.Greater(t, both.Dose, single.Dose)
	assert.Less(t, both.Dose, 2*single.Dose)

	inside := types.Source{Start: types.Point{X: 150, Y: 0, Z: 10}}
	hot, err := MaxTotalDose(ws, []types.Source{near, inside}, [][]float64{{1000}, {5}})
	require.NoError(t, err)
	assert.Equal(t, inside.Start, hot.At)
	assert.Greater(t, hot.Dose, 5.0)

	_, err = MaxTotalDose(ws, []types.Source{near}, nil)
	assert.Error(t, err)
}
