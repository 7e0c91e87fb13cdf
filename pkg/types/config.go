// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DegeneracyPolicy selects how the chain solver treats decay constants that
// coincide within the solver tolerance.
type DegeneracyPolicy string

const (
	// DegeneracyLimit merges coinciding constants and evaluates the
	// repeated-root closed form.
	DegeneracyLimit DegeneracyPolicy = "limit"

	// DegeneracyError aborts the (parent, sample) unit with an error.
	DegeneracyError DegeneracyPolicy = "error"
)

// SolverConfig holds settings for the Bateman chain solver.
type SolverConfig struct {
	// MinBranchRate is the partial decay constant (1/s) below which a decay
	// branch is treated as terminal (default 1e-20).
	MinBranchRate float64 `json:"min_branch_rate" yaml:"min_branch_rate"`

	// DegeneracyTolerance is the relative distance under which two chain
	// constants are considered equal (default 1e-6).
	DegeneracyTolerance float64 `json:"degeneracy_tolerance" yaml:"degeneracy_tolerance"`

	// Degeneracy selects the repeated-constant policy: limit or error.
	Degeneracy DegeneracyPolicy `json:"degeneracy" yaml:"degeneracy"`

	// Workers is the number of (parent, sample) units evaluated concurrently.
	// Zero or one evaluates sequentially.
	Workers int `json:"workers" yaml:"workers"`
}

// ScheduleConfig holds settings for the irradiation scenario of a run.
type ScheduleConfig struct {
	// Scenario is a built-in schedule name (DT1, SA2) or a path to a user
	// schedule file.
	Scenario string `json:"scenario" yaml:"scenario"`

	// DecayTime is the cooling time in seconds appended after the last pulse.
	DecayTime float64 `json:"decay_time" yaml:"decay_time"`
}

// DoseConfig holds settings for activity-to-dose conversion.
type DoseConfig struct {
	// FactorsPath is the CSV table of dose conversion factors (Sv/h per Bq).
	FactorsPath string `json:"factors_path,omitempty" yaml:"factors_path,omitempty"`

	// WorkstationsPath is the YAML list of maintenance workstations.
	WorkstationsPath string `json:"workstations_path,omitempty" yaml:"workstations_path,omitempty"`

	// Location selects the workstation location (e.g. "Nb cell").
	Location string `json:"location,omitempty" yaml:"location,omitempty"`

	// Workstation selects one workstation by name, or "all".
	Workstation string `json:"workstation,omitempty" yaml:"workstation,omitempty"`
}

// ResultsConfig holds settings for run output and the results store.
type ResultsConfig struct {
	// OutputRoot is the directory under which run directories are created.
	OutputRoot string `json:"output_root" yaml:"output_root"`

	// ResultsDir contains the SQLite results database.
	ResultsDir string `json:"results_dir" yaml:"results_dir"`

	// MetricsFile, when set, receives solver metrics in Prometheus text format.
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`
}

// RunConfig groups all settings of one calc invocation. It is written to the
// run directory as metadata.yaml.
//
// Reaction rates come either from RatesPaths or are built from XSPath,
// SpectrumPaths and IsotopesPath; in both cases there is one file per
// source.
type RunConfig struct {
	Element       string         `json:"element,omitempty" yaml:"element,omitempty"`
	DeltaImpurity float64        `json:"delta_impurity,omitempty" yaml:"delta_impurity,omitempty"`
	DecayDataPath string         `json:"decay_data" yaml:"decay_data"`
	RatesPaths    []string       `json:"rates,omitempty" yaml:"rates,omitempty"`
	XSPath        string         `json:"xs,omitempty" yaml:"xs,omitempty"`
	SpectrumPaths []string       `json:"spectra,omitempty" yaml:"spectra,omitempty"`
	IsotopesPath  string         `json:"isotopes,omitempty" yaml:"isotopes,omitempty"`
	Sources       []Source       `json:"sources" yaml:"sources"`
	Schedule      ScheduleConfig `json:"schedule" yaml:"schedule"`
	Solver        SolverConfig   `json:"solver" yaml:"solver"`
	Dose          DoseConfig     `json:"dose" yaml:"dose"`
	Results       ResultsConfig  `json:"results" yaml:"results"`
}

// DefaultSolverConfig returns the solver settings used when none are given.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		MinBranchRate:       1e-20,
		DegeneracyTolerance: 1e-6,
		Degeneracy:          DegeneracyLimit,
	}
}
