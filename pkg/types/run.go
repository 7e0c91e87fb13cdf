// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ActivityRecord is the activity of one nuclide produced by one
// (parent, sample) unit.
type ActivityRecord struct {
	Nuclide  string  `json:"nuclide" yaml:"nuclide"`
	Parent   string  `json:"parent" yaml:"parent"`
	Sample   int     `json:"sample" yaml:"sample"`
	Activity float64 `json:"activity_bq" yaml:"activity_bq"`
}

// RunSummary identifies a stored run.
type RunSummary struct {
	ID        string    `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Scenario  string    `json:"scenario" yaml:"scenario"`
	DecayTime float64   `json:"decay_time" yaml:"decay_time"`
	Element   string    `json:"element,omitempty" yaml:"element,omitempty"`
	Dir       string    `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// Run is the complete record of one source evaluated by a calc invocation.
// A calc over several sources stores one Run per source, all sharing Dir.
type Run struct {
	RunSummary `yaml:",inline"`

	Source       Source            `json:"source" yaml:"source"`
	Config       RunConfig         `json:"config" yaml:"config"`
	Activities   []ActivityRecord  `json:"activities" yaml:"activities"`
	SampleDoses  []float64         `json:"sample_doses_usv_h,omitempty" yaml:"sample_doses_usv_h,omitempty"`
	Workstations []WorkstationDose `json:"workstations,omitempty" yaml:"workstations,omitempty"`
}
