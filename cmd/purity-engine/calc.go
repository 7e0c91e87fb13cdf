// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/purity-engine/pkg/types"
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Calculate activity and dose deviations for impurity sources",
	Long: `Calc evaluates one or more impurity sources. For each source it obtains a
reaction-rate table (from --rates, or built from a cross-section library, a
neutron spectrum and the isotope table), runs every parent through the
irradiation scenario followed by the decay time, and sums the activity of each
nuclide.

With --dose-factors the activities are converted to dose-rate deviations and
the dose of each source is written on a 3D grid around it.
With --workstations, --location and --workstation the maximum dose in each
selected workstation is written to a CSV file in the run directory.

A source is a point (--x1 --y1 --z1) or a line from (x1, y1, z1) to
(x2, y2, z2). Repeat the coordinates to evaluate several sources; each is
processed independently and, when workstations are selected, a combined
workstation dose is written as well.`,
	RunE: runCalcCmd,
}

// calcFlags maps config keys to calc flag names.
var calcFlags = map[string]string{
	"decay_data":           "decay-data",
	"rates":                "rates",
	"xs":                   "xs",
	"spectrum":             "spectrum",
	"isotopes":             "isotopes",
	"element":              "element",
	"delta_impurity":       "delta-impurity",
	"irrad_scenario":       "irrad-scenario",
	"decay_time":           "decay-time",
	"dose_factors":         "dose-factors",
	"workstations":         "workstations",
	"location":             "location",
	"workstation":          "workstation",
	"output_root":          "root-output",
	"results_dir":          "results-dir",
	"metrics_file":         "metrics-file",
	"workers":              "workers",
	"degeneracy":           "degeneracy",
	"degeneracy_tolerance": "degeneracy-tolerance",
	"min_branch_rate":      "min-branch-rate",
}

func runCalcCmd(cmd *cobra.Command, args []string) error {
	cfg, err := calcConfig(cmd)
	if err != nil {
		return err
	}
	_, err = runCalc(cmd.Context(), cfg, cmd.OutOrStdout(), time.Now())
	return err
}

// calcConfig assembles the run configuration from flags, the config file
// and the environment.
func calcConfig(cmd *cobra.Command) (types.RunConfig, error) {
	def := types.DefaultSolverConfig()
	cfg := types.RunConfig{
		Element:       viper.GetString("element"),
		DeltaImpurity: viper.GetFloat64("delta_impurity"),
		DecayDataPath: viper.GetString("decay_data"),
		RatesPaths:    viper.GetStringSlice("rates"),
		XSPath:        viper.GetString("xs"),
		SpectrumPaths: viper.GetStringSlice("spectrum"),
		IsotopesPath:  viper.GetString("isotopes"),
		Schedule: types.ScheduleConfig{
			Scenario:  viper.GetString("irrad_scenario"),
			DecayTime: viper.GetFloat64("decay_time"),
		},
		Solver: types.SolverConfig{
			MinBranchRate:       viper.GetFloat64("min_branch_rate"),
			DegeneracyTolerance: viper.GetFloat64("degeneracy_tolerance"),
			Degeneracy:          types.DegeneracyPolicy(viper.GetString("degeneracy")),
			Workers:             viper.GetInt("workers"),
		},
		Dose: types.DoseConfig{
			FactorsPath:      viper.GetString("dose_factors"),
			WorkstationsPath: viper.GetString("workstations"),
			Location:         viper.GetString("location"),
			Workstation:      viper.GetString("workstation"),
		},
		Results: types.ResultsConfig{
			OutputRoot:  viper.GetString("output_root"),
			ResultsDir:  viper.GetString("results_dir"),
			MetricsFile: viper.GetString("metrics_file"),
		},
	}
	if cfg.Solver.Degeneracy == "" {
		cfg.Solver.Degeneracy = def.Degeneracy
	}
	if cfg.Results.ResultsDir == "" {
		cfg.Results.ResultsDir = cfg.Results.OutputRoot
	}

	sources, err := calcSources(cmd)
	if err != nil {
		return types.RunConfig{}, err
	}
	cfg.Sources = sources

	if err := validateCalc(cfg); err != nil {
		return types.RunConfig{}, err
	}
	return cfg, nil
}

// calcSources reads the sources from the coordinate flags, falling back to
// the sources list of the config file.
func calcSources(cmd *cobra.Command) ([]types.Source, error) {
	if cmd.Flags().Changed("x1") || cmd.Flags().Changed("y1") || cmd.Flags().Changed("z1") {
		coords := make(map[string][]float64, 6)
		for _, name := range []string{"x1", "y1", "z1", "x2", "y2", "z2"} {
			v, err := cmd.Flags().GetFloat64Slice(name)
			if err != nil {
				return nil, err
			}
			coords[name] = v
		}
		return sourcesFromCoords(coords["x1"], coords["y1"], coords["z1"], coords["x2"], coords["y2"], coords["z2"])
	}

	var sources []types.Source
	if err := viper.UnmarshalKey("sources", &sources); err != nil {
		return nil, fmt.Errorf("reading sources from config: %w", err)
	}
	return sources, nil
}

// sourcesFromCoords pairs the start coordinates, and the end coordinates
// when given, into sources.
func sourcesFromCoords(x1, y1, z1, x2, y2, z2 []float64) ([]types.Source, error) {
	n := len(x1)
	if len(y1) != n || len(z1) != n {
		return nil, fmt.Errorf("--x1, --y1 and --z1 need the same number of values")
	}
	line := len(x2) > 0 || len(y2) > 0 || len(z2) > 0
	if line && (len(x2) != n || len(y2) != n || len(z2) != n) {
		return nil, fmt.Errorf("--x2, --y2 and --z2 need one value per source")
	}

	sources := make([]types.Source, n)
	for i := range sources {
		sources[i].Start = types.Point{X: x1[i], Y: y1[i], Z: z1[i]}
		if line {
			sources[i].End = &types.Point{X: x2[i], Y: y2[i], Z: z2[i]}
		}
	}
	return sources, nil
}

func validateCalc(cfg types.RunConfig) error {
	n := len(cfg.Sources)
	if n == 0 {
		return fmt.Errorf("no sources: give --x1 --y1 --z1 or a sources list in the config file")
	}
	if cfg.DecayDataPath == "" {
		return fmt.Errorf("--decay-data is required")
	}
	if cfg.Schedule.Scenario == "" {
		return fmt.Errorf("--irrad-scenario is required")
	}
	if cfg.Schedule.DecayTime < 0 {
		return fmt.Errorf("decay time must not be negative, got %g", cfg.Schedule.DecayTime)
	}

	switch {
	case len(cfg.RatesPaths) > 0 && cfg.XSPath != "":
		return fmt.Errorf("--rates and --xs are mutually exclusive")
	case len(cfg.RatesPaths) > 0:
		if len(cfg.RatesPaths) != n {
			return fmt.Errorf("%d rate tables for %d sources", len(cfg.RatesPaths), n)
		}
	case cfg.XSPath != "":
		if cfg.IsotopesPath == "" || cfg.Element == "" {
			return fmt.Errorf("--xs needs --isotopes and --element")
		}
		if cfg.DeltaImpurity <= 0 {
			return fmt.Errorf("--delta-impurity must be positive, got %g", cfg.DeltaImpurity)
		}
		if len(cfg.SpectrumPaths) != n {
			return fmt.Errorf("%d spectra for %d sources", len(cfg.SpectrumPaths), n)
		}
	default:
		return fmt.Errorf("reaction rates required: give --rates or --xs with --spectrum")
	}

	switch cfg.Solver.Degeneracy {
	case types.DegeneracyLimit, types.DegeneracyError:
	default:
		return fmt.Errorf("unknown degeneracy policy %q: use limit or error", cfg.Solver.Degeneracy)
	}

	d := cfg.Dose
	if (d.Location == "") != (d.Workstation == "") {
		return fmt.Errorf("--workstation and --location must be supplied together")
	}
	if d.Location != "" {
		if d.WorkstationsPath == "" {
			return fmt.Errorf("--location needs --workstations")
		}
		if d.FactorsPath == "" {
			return fmt.Errorf("workstation doses need --dose-factors")
		}
	}
	return nil
}

// slug turns a location name into a file name fragment.
func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

func init() {
	f := calcCmd.Flags()

	// Inputs.
	f.String("decay-data", "data/decay_co_nb.json", "decay database (JSON or YAML)")
	f.StringSlice("rates", nil, "reaction-rate table per source (YAML)")
	f.String("xs", "", "cross-section library")
	f.StringSlice("spectrum", nil, "neutron spectrum per source (YAML)")
	f.String("isotopes", "", "isotope table with molar masses and abundances (YAML)")
	f.String("element", "", "impurity element, e.g. Co")
	f.Float64("delta-impurity", 0, "impurity deviation in weight percent")

	// Scenario.
	f.String("irrad-scenario", "SA2", "irradiation scenario: DT1, SA2 or a schedule file")
	f.Float64("decay-time", 1e6, "cooling time after the last pulse (s)")

	// Sources.
	for _, axis := range []string{"x", "y", "z"} {
		f.Float64Slice(axis+"1", nil, "source start "+axis+" coordinate (cm), one per source")
		f.Float64Slice(axis+"2", nil, "line source end "+axis+" coordinate (cm), one per source")
	}

	// Dose.
	f.String("dose-factors", "", "dose conversion factors (CSV nuclide,factor in Sv/h per Bq)")
	f.String("workstations", "", "workstation list (YAML)")
	f.String("location", "", "workstation location, e.g. \"Nb cell\"")
	f.String("workstation", "", "workstation name or \"all\"")

	// Output.
	f.String("root-output", "output", "directory for run directories")
	f.String("results-dir", "", "directory of the results database (default: --root-output)")
	f.String("metrics-file", "", "write solver metrics to this file in Prometheus text format")

	// Solver.
	f.Int("workers", 1, "parent and sample units evaluated concurrently")
	f.String("degeneracy", string(types.DegeneracyLimit), "repeated decay constant policy: limit or error")
	f.Float64("degeneracy-tolerance", types.DefaultSolverConfig().DegeneracyTolerance, "relative tolerance under which decay constants coincide")
	f.Float64("min-branch-rate", types.DefaultSolverConfig().MinBranchRate, "decay branches slower than this (1/s) end a chain")

	for key, name := range calcFlags {
		if err := viper.BindPFlag(key, f.Lookup(name)); err != nil {
			fmt.Fprintf(os.Stderr, "binding flag %s: %v\n", name, err)
		}
	}

	rootCmd.AddCommand(calcCmd)
}
