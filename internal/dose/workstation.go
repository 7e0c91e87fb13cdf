// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dose

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/purity-engine/pkg/types"
)

// gridSamples is the number of sample points per axis when searching a
// workstation for the maximum dose of a line source.
const gridSamples = 10

// LoadWorkstations reads a YAML list of workstations.
func LoadWorkstations(path string) ([]types.Workstation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workstations: %w", err)
	}
	var ws []types.Workstation
	if err := yaml.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("parsing workstations %s: %w", path, err)
	}
	for i, w := range ws {
		if w.Name == "" || w.Location == "" {
			return nil, fmt.Errorf("workstation %d: name and location are required", i)
		}
		b := w.Bounds
		if b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z {
			return nil, fmt.Errorf("workstation %s: min bound exceeds max bound", w.Name)
		}
	}
	return ws, nil
}

// Select returns the workstations of location, either all of them when name
// is "all" or the one named name.
func Select(ws []types.Workstation, location, name string) ([]types.Workstation, error) {
	var inLocation []types.Workstation
	for _, w := range ws {
		if w.Location == location {
			inLocation = append(inLocation, w)
		}
	}
	if len(inLocation) == 0 {
		return nil, fmt.Errorf("no workstations at location %q", location)
	}
	if strings.EqualFold(name, "all") {
		return inLocation, nil
	}
	for _, w := range inLocation {
		if w.Name == name {
			return []types.Workstation{w}, nil
		}
	}
	return nil, fmt.Errorf("no workstation %q at location %q", name, location)
}

// MaxDose returns the largest dose found inside the workstation from source.
// A source inside the workstation yields the source dose. For a point
// source the maximum sits at the point of the box closest to the source; for
// a line source the box is sampled on a regular grid.
func MaxDose(w types.Workstation, source types.Source, doses []float64) types.WorkstationDose {
	out := types.WorkstationDose{Workstation: w.Name}
	b := w.Bounds

	if !source.IsLine() {
		var total float64
		for _, d := range doses {
			total += d
		}
		out.At = types.Point{
			X: clamp(source.Start.X, b.Min.X, b.Max.X),
			Y: clamp(source.Start.Y, b.Min.Y, b.Max.Y),
			Z: clamp(source.Start.Z, b.Min.Z, b.Max.Z),
		}
		out.Dose = PointDose(total, source.Start, out.At)
		return out
	}

	if segmentHitsBox(source.Start, *source.End, b) {
		out.At = source.Start
		out.Dose = SourceDose(source, doses, source.Start)
		return out
	}

	for i := 0; i < gridSamples; i++ {
		for j := 0; j < gridSamples; j++ {
			for k := 0; k < gridSamples; k++ {
				p := types.Point{
					X: lerp(b.Min.X, b.Max.X, i),
					Y: lerp(b.Min.Y, b.Max.Y, j),
					Z: lerp(b.Min.Z, b.Max.Z, k),
				}
				if d := LineDose(doses, source.Start, *source.End, p); d > out.Dose {
					out.Dose, out.At = d, p
				}
			}
		}
	}
	return out
}

// MaxTotalDose returns the largest combined dose of several sources inside
// the workstation. doses[i] holds the per-sample doses of sources[i]. The
// grid points of the box are searched together with the point of the box
// closest to each source start, so a source inside the box is always hit.
func MaxTotalDose(w types.Workstation, sources []types.Source, doses [][]float64) (types.WorkstationDose, error) {
	if len(sources) != len(doses) {
		return types.WorkstationDose{}, fmt.Errorf("%d sources but %d dose lists", len(sources), len(doses))
	}
	b := w.Bounds
	candidates := make([]types.Point, 0, gridSamples*gridSamples*gridSamples+len(sources))
	for _, src := range sources {
		candidates = append(candidates, types.Point{
			X: clamp(src.Start.X, b.Min.X, b.Max.X),
			Y: clamp(src.Start.Y, b.Min.Y, b.Max.Y),
			Z: clamp(src.Start.Z, b.Min.Z, b.Max.Z),
		})
	}
	for i := 0; i < gridSamples; i++ {
		for j := 0; j < gridSamples; j++ {
			for k := 0; k < gridSamples; k++ {
				candidates = append(candidates, types.Point{
					X: lerp(b.Min.X, b.Max.X, i),
					Y: lerp(b.Min.Y, b.Max.Y, j),
					Z: lerp(b.Min.Z, b.Max.Z, k),
				})
			}
		}
	}

	out := types.WorkstationDose{Workstation: w.Name}
	for _, p := range candidates {
		var total float64
		for i, src := range sources {
			total += SourceDose(src, doses[i], p)
		}
		if total > out.Dose {
			out.Dose, out.At = total, p
		}
	}
	return out, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// lerp returns the i-th of gridSamples evenly spaced values from lo to hi.
func lerp(lo, hi float64, i int) float64 {
	return lo + (hi-lo)*float64(i)/float64(gridSamples-1)
}

// segmentHitsBox reports whether the segment from a to b touches the box,
// using the slab test.
func segmentHitsBox(a, b types.Point, box types.Box) bool {
	tMin, tMax := 0.0, 1.0
	axes := [3][4]float64{
		{a.X, b.X - a.X, box.Min.X, box.Max.X},
		{a.Y, b.Y - a.Y, box.Min.Y, box.Max.Y},
		{a.Z, b.Z - a.Z, box.Min.Z, box.Max.Z},
	}
	for _, ax := range axes {
		origin, dir, lo, hi := ax[0], ax[1], ax[2], ax[3]
		if dir == 0 {
			if origin < lo || origin > hi {
				return false
			}
			continue
		}
		t1, t2 := (lo-origin)/dir, (hi-origin)/dir
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin, tMax = math.Max(tMin, t1), math.Min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}
	return true
}

// WriteCSV writes one row per workstation dose to w.
func WriteCSV(w io.Writer, doses []types.WorkstationDose) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Workstation", "Delta Dose (micro Sieverts per hour)"}); err != nil {
		return err
	}
	for _, d := range doses {
		if err := cw.Write([]string{d.Workstation, fmt.Sprintf("%.3e", d.Dose)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
