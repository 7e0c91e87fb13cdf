// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/purity-engine/internal/activity"
	"github.com/pdiddy/purity-engine/internal/chain"
	"github.com/pdiddy/purity-engine/internal/decaydata"
	"github.com/pdiddy/purity-engine/internal/dose"
	"github.com/pdiddy/purity-engine/internal/metrics"
	"github.com/pdiddy/purity-engine/internal/reaction"
	"github.com/pdiddy/purity-engine/internal/results"
	"github.com/pdiddy/purity-engine/internal/rundir"
	"github.com/pdiddy/purity-engine/internal/schedule"
	"github.com/pdiddy/purity-engine/pkg/types"
)

// calcOutcome is what a calc run produced.
type calcOutcome struct {
	Dir  *rundir.Dir
	Runs []types.Run
}

// pipeline holds the inputs shared by every source of a calc run.
type pipeline struct {
	cfg types.RunConfig
	w   io.Writer

	agg          *activity.Aggregator
	recorder     *metrics.Recorder
	factors      dose.Factors
	workstations []types.Workstation

	// Set only when rates are built from cross sections.
	library  *reaction.Library
	isotopes *reaction.IsotopeTable
}

// runCalc evaluates every source of cfg, writes the run directory and
// stores one run per source in the results database.
func runCalc(ctx context.Context, cfg types.RunConfig, w io.Writer, now time.Time) (*calcOutcome, error) {
	p, err := newPipeline(cfg, w)
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
	fmt.Fprintf(w, "Run %s in %s\n", dir.ID, dir.Path)

	store, err := results.NewStore(cfg.Results)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	out := &calcOutcome{Dir: dir}
	for i, src := range cfg.Sources {
		run, err := p.source(ctx, i, src)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i+1, err)
		}
		run.ID = fmt.Sprintf("%s-s%d", dir.ID, i+1)
		run.CreatedAt = now.UTC()
		run.Dir = dir.Path

		if err := writeRunFile(dir.File(fmt.Sprintf("source_%d.yaml", i+1)), run); err != nil {
			return nil, err
		}
		if len(run.SampleDoses) > 0 {
			if err := writeField(w, dir.File(fmt.Sprintf("dose_field_%d.csv", i+1)), run); err != nil {
				return nil, err
			}
		}
		if len(run.Workstations) > 0 {
			name := fmt.Sprintf("dose_%d_%s.csv", i+1, slug(cfg.Dose.Location))
			if err := writeDoseCSV(dir.File(name), run.Workstations); err != nil {
				return nil, err
			}
		}
		if err := store.SaveRun(ctx, run); err != nil {
			return nil, err
		}
		printRun(w, i, run)
		out.Runs = append(out.Runs, run)
	}

	if len(out.Runs) > 1 && len(p.workstations) > 0 {
		if err := p.writeTotals(dir, out.Runs); err != nil {
			return nil, err
		}
	}

	if cfg.Results.MetricsFile != "" {
		if err := p.recorder.WriteTextfile(cfg.Results.MetricsFile); err != nil {
			return nil, err
		}
		fmt.Fprintf(w, "Metrics written to %s\n", cfg.Results.MetricsFile)
	}
	return out, nil
}

func newPipeline(cfg types.RunConfig, w io.Writer) (*pipeline, error) {
	db, err := decaydata.Load(cfg.DecayDataPath)
	if err != nil {
		return nil, err
	}
	if missing := db.Validate(); len(missing) > 0 {
		fmt.Fprintf(w, "warning: decay data references unknown daughters: %s\n", strings.Join(missing, ", "))
	}

	recorder := metrics.NewRecorder()
	solver := chain.NewSolver(cfg.Solver)
	solver.Observer = recorder

	p := &pipeline{
		cfg: cfg,
		w:   w,
		agg: &activity.Aggregator{
			DB:        db,
			Schedules: schedule.NewProvider(),
			Solver:    solver,
			Workers:   cfg.Solver.Workers,
			Observer:  recorder,
			Log:       w,
		},
		recorder: recorder,
	}

	if cfg.XSPath != "" {
		if p.library, err = reaction.LoadLibrary(cfg.XSPath); err != nil {
			return nil, err
		}
		if p.isotopes, err = reaction.LoadIsotopes(cfg.IsotopesPath); err != nil {
			return nil, err
		}
	}

	if cfg.Dose.FactorsPath != "" {
		if p.factors, err = dose.LoadFactors(cfg.Dose.FactorsPath); err != nil {
			return nil, err
		}
	}
	if cfg.Dose.Location != "" {
		all, err := dose.LoadWorkstations(cfg.Dose.WorkstationsPath)
		if err != nil {
			return nil, err
		}
		if p.workstations, err = dose.Select(all, cfg.Dose.Location, cfg.Dose.Workstation); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// table returns the reaction-rate table of source i.
func (p *pipeline) table(i int) (types.ReactionRateTable, error) {
	if len(p.cfg.RatesPaths) > 0 {
		return reaction.LoadTable(p.cfg.RatesPaths[i])
	}
	spectrum, err := reaction.LoadSpectrum(p.cfg.SpectrumPaths[i])
	if err != nil {
		return nil, err
	}
	return reaction.BuildTable(reaction.Inputs{
		Library:       p.library,
		Spectrum:      spectrum,
		Isotopes:      p.isotopes,
		Element:       p.cfg.Element,
		DeltaImpurity: p.cfg.DeltaImpurity,
	}, p.w)
}

// source evaluates one source and returns its run record without identity.
func (p *pipeline) source(ctx context.Context, i int, src types.Source) (types.Run, error) {
	table, err := p.table(i)
	if err != nil {
		return types.Run{}, err
	}

	units, err := p.agg.Units(ctx, table, p.cfg.Schedule.Scenario, p.cfg.Schedule.DecayTime)
	if err != nil {
		return types.Run{}, err
	}

	run := types.Run{
		RunSummary: types.RunSummary{
			Scenario:  p.cfg.Schedule.Scenario,
			DecayTime: p.cfg.Schedule.DecayTime,
			Element:   p.cfg.Element,
		},
		Source:     src,
		Config:     p.cfg,
		Activities: results.Records(units),
	}

	if p.factors != nil {
		run.SampleDoses = dose.PerSample(units, p.factors, p.w)
		if src.IsLine() && len(run.SampleDoses) < 2 {
			fmt.Fprintf(p.w, "warning: line source evaluated with %d sample(s)\n", len(run.SampleDoses))
		}
		for _, ws := range p.workstations {
			run.Workstations = append(run.Workstations, dose.MaxDose(ws, src, run.SampleDoses))
		}
	}
	return run, nil
}

// writeTotals writes the combined workstation dose of all sources.
func (p *pipeline) writeTotals(dir *rundir.Dir, runs []types.Run) error {
	sources := make([]types.Source, len(runs))
	doses := make([][]float64, len(runs))
	for i, run := range runs {
		sources[i] = run.Source
		doses[i] = run.SampleDoses
	}

	var totals []types.WorkstationDose
	for _, ws := range p.workstations {
		d, err := dose.MaxTotalDose(ws, sources, doses)
		if err != nil {
			return err
		}
		totals = append(totals, d)
	}
	return writeDoseCSV(dir.File(fmt.Sprintf("dose_total_%s.csv", slug(p.cfg.Dose.Location))), totals)
}

func writeRunFile(path string, run types.Run) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := results.Encode(f, run, results.FormatYAML); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeField evaluates the dose of run's source around it and writes the
// grid to path.
func writeField(w io.Writer, path string, run types.Run) error {
	field, err := dose.NewField(run.Source, run.SampleDoses, dose.FieldBounds(run.Source), dose.FieldStep)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := field.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	at, peak := field.Max()
	fmt.Fprintf(w, "Dose field peak %.3e uSv/h at (%g, %g, %g)\n", peak, at.X, at.Y, at.Z)
	return f.Close()
}

func writeDoseCSV(path string, doses []types.WorkstationDose) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := dose.WriteCSV(f, doses); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func printRun(w io.Writer, i int, run types.Run) {
	fmt.Fprintf(w, "\nSource %d: %s\n", i+1, describeSource(run.Source))
	printActivities(w, run)

	if len(run.SampleDoses) > 0 {
		var sum float64
		for _, d := range run.SampleDoses {
			sum += d
		}
		fmt.Fprintf(w, "  Dose deviation: %.3e uSv/h\n", sum)
	}
	for _, ws := range run.Workstations {
		fmt.Fprintf(w, "  Workstation %s: %.3e uSv/h\n", ws.Workstation, ws.Dose)
	}
}

// printActivities prints the summed activity per nuclide of run.
func printActivities(w io.Writer, run types.Run) {
	totals := results.Totals(run)
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "  %-10s  %s\n", "Nuclide", "Activity (Bq)")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 25))
	for _, name := range names {
		fmt.Fprintf(w, "  %-10s  %.3e\n", name, totals[name])
	}
}

func describeSource(s types.Source) string {
	if s.IsLine() {
		return fmt.Sprintf("line (%g, %g, %g) to (%g, %g, %g)",
			s.Start.X, s.Start.Y, s.Start.Z, s.End.X, s.End.Y, s.End.Z)
	}
	return fmt.Sprintf("point (%g, %g, %g)", s.Start.X, s.Start.Y, s.Start.Z)
}
