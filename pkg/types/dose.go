// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Point is a position in the facility coordinate system (cm).
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Source locates an impurity: a point source when End is nil, otherwise a
// line source from Start to End.
type Source struct {
	Start Point  `json:"start" yaml:"start"`
	End   *Point `json:"end,omitempty" yaml:"end,omitempty"`
}

// IsLine reports whether s is a line source.
func (s Source) IsLine() bool {
	return s.End != nil
}

// Box is an axis-aligned volume.
type Box struct {
	Min Point `json:"min" yaml:"min"`
	Max Point `json:"max" yaml:"max"`
}

// Contains reports whether p lies inside b, boundary included.
func (b Box) Contains(p Point) bool {
	return b.Min.X <= p.X && p.X <= b.Max.X &&
		b.Min.Y <= p.Y && p.Y <= b.Max.Y &&
		b.Min.Z <= p.Z && p.Z <= b.Max.Z
}

// Workstation is a named maintenance position.
type Workstation struct {
	Name     string `json:"name" yaml:"name"`
	Location string `json:"location" yaml:"location"`
	Bounds   Box    `json:"bounds" yaml:"bounds"`
}

// WorkstationDose is the maximum dose deviation found in one workstation.
type WorkstationDose struct {
	Workstation string  `json:"workstation" yaml:"workstation"`
	Dose        float64 `json:"dose_usv_h" yaml:"dose_usv_h"`
	At          Point   `json:"at" yaml:"at"`
}
