// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dose

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/pdiddy/purity-engine/pkg/types"
)

const (
	// FieldHalfWidth is the distance (cm) from the source centre to each
	// face of the default field region.
	FieldHalfWidth = 500.0

	// FieldStep is the nominal grid spacing (cm) of a dose field.
	FieldStep = 50.0
)

// Field is the dose of one source evaluated on a regular grid. X, Y and Z
// hold the grid nodes; each cell carries the dose at its lower corner node.
type Field struct {
	X, Y, Z []float64

	// Values holds one dose (µSv/h) per cell, x varying slowest.
	Values []float64
}

// FieldBounds returns the region of the default field: a cube of
// 2·FieldHalfWidth centred on a point source or on the midpoint of a line.
func FieldBounds(source types.Source) types.Box {
	c := source.Start
	if source.IsLine() {
		c = types.Point{
			X: (source.Start.X + source.End.X) / 2,
			Y: (source.Start.Y + source.End.Y) / 2,
			Z: (source.Start.Z + source.End.Z) / 2,
		}
	}
	h := FieldHalfWidth
	return types.Box{
		Min: types.Point{X: c.X - h, Y: c.Y - h, Z: c.Z - h},
		Max: types.Point{X: c.X + h, Y: c.Y + h, Z: c.Z + h},
	}
}

// NewField evaluates SourceDose over bounds. Each axis gets
// int(extent/step) evenly spaced nodes from min to max inclusive, so an
// axis needs room for at least two nodes.
func NewField(source types.Source, doses []float64, bounds types.Box, step float64) (*Field, error) {
	if step <= 0 {
		return nil, fmt.Errorf("field step must be positive, got %g", step)
	}
	f := &Field{}
	var err error
	if f.X, err = axis(bounds.Min.X, bounds.Max.X, step); err != nil {
		return nil, fmt.Errorf("x axis: %w", err)
	}
	if f.Y, err = axis(bounds.Min.Y, bounds.Max.Y, step); err != nil {
		return nil, fmt.Errorf("y axis: %w", err)
	}
	if f.Z, err = axis(bounds.Min.Z, bounds.Max.Z, step); err != nil {
		return nil, fmt.Errorf("z axis: %w", err)
	}

	nx, ny, nz := f.Shape()
	f.Values = make([]float64, 0, nx*ny*nz)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				p := types.Point{X: f.X[i], Y: f.Y[j], Z: f.Z[k]}
				f.Values = append(f.Values, SourceDose(source, doses, p))
			}
		}
	}
	return f, nil
}

// axis returns int((hi-lo)/step) nodes spanning [lo, hi].
func axis(lo, hi, step float64) ([]float64, error) {
	n := int((hi - lo) / step)
	if n < 2 {
		return nil, fmt.Errorf("extent %g to %g too small for step %g", lo, hi, step)
	}
	nodes := make([]float64, n)
	for i := range nodes {
		nodes[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return nodes, nil
}

// Shape returns the number of cells along each axis.
func (f *Field) Shape() (nx, ny, nz int) {
	return len(f.X) - 1, len(f.Y) - 1, len(f.Z) - 1
}

// At returns the dose of cell (i, j, k).
func (f *Field) At(i, j, k int) float64 {
	_, ny, nz := f.Shape()
	return f.Values[(i*ny+j)*nz+k]
}

// Max returns the largest cell dose and the node it was evaluated at.
func (f *Field) Max() (types.Point, float64) {
	_, ny, nz := f.Shape()
	best := 0
	for n, v := range f.Values {
		if v > f.Values[best] {
			best = n
		}
	}
	i, j, k := best/(ny*nz), best/nz%ny, best%nz
	return types.Point{X: f.X[i], Y: f.Y[j], Z: f.Z[k]}, f.Values[best]
}

// WriteCSV writes one x,y,z,dose row per cell to w.
func (f *Field) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"x (cm)", "y (cm)", "z (cm)", "Delta Dose (micro Sieverts per hour)"}); err != nil {
		return err
	}
	nx, ny, nz := f.Shape()
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				row := []string{
					fmt.Sprintf("%g", f.X[i]),
					fmt.Sprintf("%g", f.Y[j]),
					fmt.Sprintf("%g", f.Z[k]),
					fmt.Sprintf("%.3e", f.At(i, j, k)),
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
