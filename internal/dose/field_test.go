// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dose

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/purity-engine/pkg/types"
)

func TestFieldBounds(t *testing.T) {
	point := FieldBounds(types.Source{Start: types.Point{X: 100, Y: -50, Z: 0}})
	assert.Equal(t, types.Point{X: -400, Y: -550, Z: -500}, point.Min)
	assert.Equal(t, types.Point{X: 600, Y: 450, Z: 500}, point.Max)

	end := types.Point{X: 200}
	line := FieldBounds(types.Source{Start: types.Point{}, End: &end})
	assert.Equal(t, types.Point{X: -400, Y: -500, Z: -500}, line.Min)
	assert.Equal(t, types.Point{X: 600, Y: 500, Z: 500}, line.Max)
}

func TestNewFieldDefaultRegion(t *testing.T) {
	src := types.Source{Start: types.Point{Z: 90}}
	f, err := NewField(src, []float64{100}, FieldBounds(src), FieldStep)
	require.NoError(t, err)

	// 1000 cm at a 50 cm step gives 20 nodes and 19 cells per axis.
	require.Len(t, f.X, 20)
	assert.Equal(t, -500.0, f.X[0])
	assert.Equal(t, 500.0, f.X[19])
	nx, ny, nz := f.Shape()
	assert.Equal(t, [3]int{19, 19, 19}, [3]int{nx, ny, nz})
	assert.Len(t, f.Values, 19*19*19)
}

func TestNewFieldPointSource(t *testing.T) {
	d := 4 * math.Pi * 1e4
	src := types.Source{Start: types.Point{}}
	bounds := types.Box{Max: types.Point{X: 90, Y: 90, Z: 90}}

	f, err := NewField(src, []float64{d}, bounds, 22.5)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 30, 60, 90}, f.X)

	assert.Equal(t, d, f.At(0, 0, 0))
	assert.InDelta(t, 1e4/900, f.At(1, 0, 0), 1e-9)
	assert.InDelta(t, 1e4/(900+3600), f.At(1, 2, 0), 1e-9)

	at, peak := f.Max()
	assert.Equal(t, types.Point{}, at)
	assert.Equal(t, d, peak)
}

func TestNewFieldLineSource(t *testing.T) {
	end := types.Point{X: 100}
	src := types.Source{Start: types.Point{}, End: &end}
	doses := []float64{10, 20, 30}
	bounds := types.Box{Min: types.Point{Y: 10, Z: -50}, Max: types.Point{X: 100, Y: 60, Z: 50}}

	f, err := NewField(src, doses, bounds, 25)
	require.NoError(t, err)
	nx, ny, nz := f.Shape()
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				p := types.Point{X: f.X[i], Y: f.Y[j], Z: f.Z[k]}
				assert.Equal(t, SourceDose(src, doses, p), f.At(i, j, k))
			}
		}
	}

	// The closest nodes to the line carry the largest dose.
	at, _ := f.Max()
	assert.Equal(t, 10.0, at.Y)
	assert.InDelta(t, 50.0/3, math.Abs(at.Z), 1e-9)
}

func TestNewFieldErrors(t *testing.T) {
	src := types.Source{}
	_, err := NewField(src, []float64{1}, FieldBounds(src), 0)
	assert.Error(t, err)

	flat := types.Box{Max: types.Point{X: 100, Y: 100, Z: 10}}
	_, err = NewField(src, []float64{1}, flat, 20)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "z axis")
}

func TestFieldWriteCSV(t *testing.T) {
	src := types.Source{Start: types.Point{}}
	f, err := NewField(src, []float64{1}, types.Box{Max: types.Point{X: 90, Y: 90, Z: 90}}, 22.5)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.WriteCSV(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1+27)
	assert.Equal(t, "x (cm),y (cm),z (cm),Delta Dose (micro Sieverts per hour)", lines[0])
	assert.Equal(t, "0,0,0,1.000e+00", lines[1])
	assert.Equal(t, "0,0,30,8.842e-05", lines[2])
}
