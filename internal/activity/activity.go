// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package activity turns a reaction-rate table into nuclide activities. Each
// (parent, sample) unit gets its own decay graph and is run through the
// irradiation schedule; the activities of all units are collected per
// nuclide in deterministic order.
package activity

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/purity-engine/internal/chain"
	"github.com/pdiddy/purity-engine/internal/decaydata"
	"github.com/pdiddy/purity-engine/internal/nuclide"
	"github.com/pdiddy/purity-engine/internal/schedule"
	"github.com/pdiddy/purity-engine/pkg/types"
)

// UnitObserver is told about every finished unit. Implementations must be
// safe for concurrent use when Workers > 1.
type UnitObserver interface {
	UnitDone(elapsed time.Duration, err error)
}

// Unit is the result of one (parent, sample) evaluation.
type Unit struct {
	Parent string
	Sample int

	// Inventory holds the atoms of every nuclide at the end of the schedule,
	// stable ones included.
	Inventory types.Inventory

	// Activities holds the activity in Bq of every unstable nuclide of
	// Inventory.
	Activities map[string]float64
}

// Aggregator evaluates reaction-rate tables against the decay database.
type Aggregator struct {
	DB        *decaydata.Database
	Schedules *schedule.Provider
	Solver    *chain.Solver

	// Workers is the number of units evaluated concurrently. Zero or one
	// evaluates sequentially.
	Workers int

	// Observer, when set, receives unit timings.
	Observer UnitObserver

	// Log receives progress lines. Nil discards them.
	Log io.Writer
}

// job is one (parent, sample) unit before evaluation.
type job struct {
	parent   string
	sample   int
	atoms    float64
	channels map[string]float64
}

// CalculateTotalActivity runs every (parent, sample) unit of table through
// the named schedule followed by decayTime seconds of cooling and returns the
// activities of all unstable nuclides. Each nuclide's list holds one value
// per unit that produced it, ordered by parent name then sample index.
func (a *Aggregator) CalculateTotalActivity(ctx context.Context, table types.ReactionRateTable, scheduleName string, decayTime float64) (types.Activities, error) {
	units, err := a.Units(ctx, table, scheduleName, decayTime)
	if err != nil {
		return nil, err
	}
	return Collect(units), nil
}

// Collect folds unit activities into per-nuclide lists in unit order.
func Collect(units []Unit) types.Activities {
	out := make(types.Activities)
	for _, u := range units {
		for name, bq := range u.Activities {
			out[name] = append(out[name], bq)
		}
	}
	return out
}

// Units evaluates every (parent, sample) unit of table and returns them in
// parent then sample order.
func (a *Aggregator) Units(ctx context.Context, table types.ReactionRateTable, scheduleName string, decayTime float64) ([]Unit, error) {
	if decayTime < 0 {
		return nil, fmt.Errorf("negative decay time %g", decayTime)
	}
	sched, err := a.Schedules.Resolve(scheduleName)
	if err != nil {
		return nil, fmt.Errorf("resolving schedule: %w", err)
	}
	sched = schedule.WithDecay(sched, decayTime)

	jobs, err := a.jobs(table)
	if err != nil {
		return nil, err
	}
	a.logf("evaluating %d units over %d pulses of %s\n", len(jobs), len(sched.Pulses), sched.Name)

	units := make([]Unit, len(jobs))
	if a.Workers <= 1 {
		for i, j := range jobs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if units[i], err = a.evaluate(j, sched); err != nil {
				return nil, err
			}
		}
		return units, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.Workers)
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			u, err := a.evaluate(j, sched)
			if err != nil {
				return err
			}
			units[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return units, nil
}

// jobs normalizes names and splits every parent into per-sample units.
func (a *Aggregator) jobs(table types.ReactionRateTable) ([]job, error) {
	rates, err := Normalize(table)
	if err != nil {
		return nil, err
	}

	parents := make([]string, 0, len(rates))
	for p := range rates {
		parents = append(parents, p)
	}
	sort.Strings(parents)

	var jobs []job
	for _, parent := range parents {
		pr := rates[parent]
		n := pr.Samples()
		if n == 0 {
			a.logf("warning: %s has no reaction channels, skipping\n", parent)
			continue
		}
		for i := 0; i < n; i++ {
			// Every product gets a channel in every sample, zero where its
			// list is short, so each nuclide's list follows sample order.
			channels := make(map[string]float64, len(pr.Reactions))
			for product, values := range pr.Reactions {
				channels[product] = 0
				if i < len(values) {
					channels[product] = values[i]
				}
			}
			jobs = append(jobs, job{parent: parent, sample: i, atoms: pr.Atoms, channels: channels})
		}
	}
	return jobs, nil
}

func (a *Aggregator) evaluate(j job, sched types.Schedule) (u Unit, err error) {
	start := time.Now()
	defer func() {
		if a.Observer != nil {
			a.Observer.UnitDone(time.Since(start), err)
		}
	}()

	g, err := chain.Assemble(a.DB, j.parent, j.channels)
	if err != nil {
		return Unit{}, fmt.Errorf("parent %s sample %d: %w", j.parent, j.sample, err)
	}
	inv, err := a.Solver.RunSchedule(g, sched, j.atoms)
	if err != nil {
		return Unit{}, fmt.Errorf("parent %s sample %d: %w", j.parent, j.sample, err)
	}

	u = Unit{Parent: j.parent, Sample: j.sample, Inventory: inv, Activities: make(map[string]float64)}
	for name, atoms := range inv {
		node, ok := a.DB.Node(name)
		if !ok || node.Stable() {
			continue
		}
		u.Activities[name] = atoms * node.Total()
	}
	return u, nil
}

func (a *Aggregator) logf(format string, args ...any) {
	if a.Log != nil {
		fmt.Fprintf(a.Log, format, args...)
	}
}

// Normalize returns a copy of table with every parent and product name in
// long form. Two spellings of the same nuclide are an error.
func Normalize(table types.ReactionRateTable) (types.ReactionRateTable, error) {
	out := make(types.ReactionRateTable, len(table))
	for parent, pr := range table {
		long, err := nuclide.Long(parent)
		if err != nil {
			return nil, fmt.Errorf("parent name: %w", err)
		}
		if _, dup := out[long]; dup {
			return nil, fmt.Errorf("parent %s given more than once", long)
		}
		reactions := make(map[string][]float64, len(pr.Reactions))
		for product, values := range pr.Reactions {
			lp, err := nuclide.Long(product)
			if err != nil {
				return nil, fmt.Errorf("product name of %s: %w", long, err)
			}
			if _, dup := reactions[lp]; dup {
				return nil, fmt.Errorf("product %s of %s given more than once", lp, long)
			}
			reactions[lp] = append([]float64(nil), values...)
		}
		out[long] = types.ParentRates{Atoms: pr.Atoms, Reactions: reactions}
	}
	return out, nil
}
