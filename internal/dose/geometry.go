// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dose

import (
	"math"

	"github.com/pdiddy/purity-engine/pkg/types"
)

func sub(a, b types.Point) types.Point {
	return types.Point{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z}
}

func dot(a, b types.Point) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func cross(a, b types.Point) types.Point {
	return types.Point{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func norm(a types.Point) float64 {
	return math.Sqrt(dot(a, a))
}

// PointDose returns the dose at p from a point source of dose d, falling off
// as 1/(4πr²). At the source itself the source dose is returned.
func PointDose(d float64, source, p types.Point) float64 {
	r := norm(sub(p, source))
	if r == 0 {
		return d
	}
	return d / (4 * math.Pi * r * r)
}

// LineDose returns the dose at p from a line source from start to end whose
// cells carry doses. The summed dose is spread uniformly along the line and
// integrated over the angle θ the line subtends at p: (ΣD/L)·θ/(4πw), w
// being the perpendicular distance to the line. On the line itself the dose
// per unit length is returned.
func LineDose(doses []float64, start, end, p types.Point) float64 {
	var total float64
	for _, d := range doses {
		total += d
	}
	axis := sub(end, start)
	length := norm(axis)
	if length == 0 {
		return PointDose(total, start, p)
	}
	perLength := total / length

	w := norm(cross(axis, sub(p, start))) / length
	if w == 0 {
		return perLength
	}

	toStart, toEnd := sub(start, p), sub(end, p)
	cos := dot(toStart, toEnd) / (norm(toStart) * norm(toEnd))
	theta := math.Acos(math.Max(-1, math.Min(1, cos)))
	return perLength * theta / (4 * math.Pi * w)
}

// SourceDose returns the dose at p from source with per-sample doses.
func SourceDose(source types.Source, doses []float64, p types.Point) float64 {
	if source.IsLine() {
		return LineDose(doses, source.Start, *source.End, p)
	}
	var total float64
	for _, d := range doses {
		total += d
	}
	return PointDose(total, source.Start, p)
}
