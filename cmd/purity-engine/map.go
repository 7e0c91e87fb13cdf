// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/purity-engine/internal/cellmap"
	"github.com/pdiddy/purity-engine/internal/reaction"
	"github.com/pdiddy/purity-engine/internal/rundir"
	"github.com/pdiddy/purity-engine/pkg/types"
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Tabulate effective cross sections and activities over a spectrum map",
	Long: `Map treats every sample of --spectrum as one cell of a flux map. For each
cell it collapses the cross sections of --element into effective cross
sections (sigma_eff_map.csv) and, unless --xs-only is set, runs the cell's
reaction rates through the irradiation scenario and decay time to give the
activity per gram of each nuclide (activity_map.csv).`,
	RunE: runMapCmd,
}

func runMapCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	str := func(name string) string {
		v, _ := flags.GetString(name)
		return v
	}
	num := func(name string) float64 {
		v, _ := flags.GetFloat64(name)
		return v
	}
	workers, _ := flags.GetInt("workers")
	xsOnly, _ := flags.GetBool("xs-only")

	cfg := types.RunConfig{
		Element:       str("element"),
		DeltaImpurity: num("delta-impurity"),
		DecayDataPath: str("decay-data"),
		XSPath:        str("xs"),
		SpectrumPaths: []string{str("spectrum")},
		IsotopesPath:  str("isotopes"),
		Schedule: types.ScheduleConfig{
			Scenario:  str("irrad-scenario"),
			DecayTime: num("decay-time"),
		},
		Solver:  types.DefaultSolverConfig(),
		Results: types.ResultsConfig{OutputRoot: str("root-output")},
	}
	cfg.Solver.Workers = workers

	if err := validateMap(cfg, xsOnly); err != nil {
		return err
	}
	_, err := runMap(cmd.Context(), cfg, xsOnly, cmd.OutOrStdout(), time.Now())
	return err
}

func validateMap(cfg types.RunConfig, xsOnly bool) error {
	if cfg.XSPath == "" || cfg.SpectrumPaths[0] == "" || cfg.Element == "" {
		return fmt.Errorf("--xs, --spectrum and --element are required")
	}
	if xsOnly {
		return nil
	}
	if cfg.IsotopesPath == "" || cfg.DecayDataPath == "" {
		return fmt.Errorf("activity maps need --isotopes and --decay-data")
	}
	if cfg.DeltaImpurity <= 0 {
		return fmt.Errorf("--delta-impurity must be positive, got %g", cfg.DeltaImpurity)
	}
	if cfg.Schedule.DecayTime < 0 {
		return fmt.Errorf("decay time must not be negative, got %g", cfg.Schedule.DecayTime)
	}
	return nil
}

// runMap writes the cell maps of cfg's spectrum into a new run directory.
func runMap(ctx context.Context, cfg types.RunConfig, xsOnly bool, w io.Writer, now time.Time) (*rundir.Dir, error) {
	lib, err := reaction.LoadLibrary(cfg.XSPath)
	if err != nil {
		return nil, err
	}
	spectrum, err := reaction.LoadSpectrum(cfg.SpectrumPaths[0])
	if err != nil {
		return nil, err
	}

	dir, err := rundir.Create(cfg.Results.OutputRoot, now)
	if err != nil {
		return nil, err
	}
	if err := dir.WriteMetadata(cfg); err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "Map %s in %s (%d cells)\n", dir.ID, dir.Path, len(spectrum.Samples))

	xs, err := cellmap.EffectiveXS(lib, spectrum, cfg.Element, w)
	if err != nil {
		return nil, err
	}
	if err := writeMap(dir.File("sigma_eff_map.csv"), xs, " (barn)"); err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "Wrote %d effective cross section(s)\n", len(xs.Columns))
	if xsOnly {
		return dir, nil
	}

	p, err := newPipeline(cfg, w)
	if err != nil {
		return nil, err
	}
	table, err := p.table(0)
	if err != nil {
		return nil, err
	}
	units, err := p.agg.Units(ctx, table, cfg.Schedule.Scenario, cfg.Schedule.DecayTime)
	if err != nil {
		return nil, err
	}
	activities, err := cellmap.Activity(units, len(spectrum.Samples))
	if err != nil {
		return nil, err
	}
	if err := writeMap(dir.File("activity_map.csv"), activities, " (Bq/g)"); err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "Wrote activities of %d nuclide(s)\n", len(activities.Columns))
	return dir, nil
}

func writeMap(path string, m *cellmap.Map, suffix string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := m.WriteCSV(f, suffix); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func init() {
	f := mapCmd.Flags()
	f.String("xs", "", "cross-section library")
	f.String("spectrum", "", "neutron spectrum map, one sample per cell (YAML)")
	f.String("isotopes", "", "isotope table (YAML)")
	f.String("element", "", "impurity element, e.g. Co")
	f.Float64("delta-impurity", 0, "impurity deviation in weight percent")
	f.String("decay-data", "data/decay_co_nb.json", "decay database (JSON or YAML)")
	f.String("irrad-scenario", "SA2", "irradiation scenario: DT1, SA2 or a schedule file")
	f.Float64("decay-time", 1e6, "cooling time after the last pulse (s)")
	f.String("root-output", "output", "directory for run directories")
	f.Int("workers", 1, "cells evaluated concurrently")
	f.Bool("xs-only", false, "write only the effective cross-section map")

	rootCmd.AddCommand(mapCmd)
}
