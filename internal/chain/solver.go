// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chain

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/pdiddy/purity-engine/pkg/types"
)

var (
	// ErrDegenerateChain is returned under the error degeneracy policy when
	// a chain holds coinciding decay constants.
	ErrDegenerateChain = errors.New("degenerate decay chain")

	// ErrNonFinite is returned when a chain evaluates to NaN or infinity.
	ErrNonFinite = errors.New("non-finite chain result")
)

// Observer receives solver events. Implementations must be safe for
// concurrent use when the solver is shared between goroutines.
type Observer interface {
	ChainSolved()
	PulseSolved()
	DegenerateChain(clusters int)
}

type nopObserver struct{}

func (nopObserver) ChainSolved()        {}
func (nopObserver) PulseSolved()        {}
func (nopObserver) DegenerateChain(int) {}

// Solver evaluates decay graphs with the Bateman solution. A Solver holds no
// per-run state and may be shared.
type Solver struct {
	Policy     TerminalPolicy
	Tolerance  float64
	Degeneracy types.DegeneracyPolicy
	Observer   Observer
}

// NewSolver returns a Solver configured from cfg. Zero fields fall back to
// the defaults.
func NewSolver(cfg types.SolverConfig) *Solver {
	def := types.DefaultSolverConfig()
	if cfg.MinBranchRate <= 0 {
		cfg.MinBranchRate = def.MinBranchRate
	}
	if cfg.DegeneracyTolerance <= 0 {
		cfg.DegeneracyTolerance = def.DegeneracyTolerance
	}
	if cfg.Degeneracy == "" {
		cfg.Degeneracy = def.Degeneracy
	}
	return &Solver{
		Policy:     TerminalPolicy{MinBranchRate: cfg.MinBranchRate},
		Tolerance:  cfg.DegeneracyTolerance,
		Degeneracy: cfg.Degeneracy,
		Observer:   nopObserver{},
	}
}

func (s *Solver) observer() Observer {
	if s.Observer == nil {
		return nopObserver{}
	}
	return s.Observer
}

// path is the chain from the root to the current nuclide. Extending a path
// never writes into the parent's backing arrays, so sibling branches cannot
// see each other's entries.
type path struct {
	edges []float64
	names []string
}

func (p path) extend(name string, rate float64) path {
	return path{
		edges: append(p.edges[:len(p.edges):len(p.edges)], rate),
		names: append(p.names[:len(p.names):len(p.names)], name),
	}
}

func (p path) contains(name string) bool {
	for _, n := range p.names {
		if n == name {
			return true
		}
	}
	return false
}

// walker carries the fixed inputs of one SolvePulse call.
type walker struct {
	s        *Solver
	g        *Graph
	atoms    float64
	duration float64
	out      types.Inventory
}

// SolvePulse returns the population after duration seconds of every nuclide
// reachable from root, given atoms of root at the start of the pulse and no
// other nuclide present. Contributions reaching a nuclide through different
// branches are summed. Stable daughters are included as chain sinks.
func (s *Solver) SolvePulse(g *Graph, root string, atoms, duration float64) (types.Inventory, error) {
	if _, ok := g.Node(root); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNuclide, root)
	}
	w := &walker{s: s, g: g, atoms: atoms, duration: duration, out: make(types.Inventory)}
	if err := w.walk(root, path{names: []string{root}}); err != nil {
		return nil, err
	}
	return w.out, nil
}

func (w *walker) walk(name string, p path) error {
	node, _ := w.g.Node(name)

	rates := append(p.edges[:len(p.edges):len(p.edges)], node.Total())
	frac, merged := transfer(rates, w.duration, w.s.Tolerance)
	if merged > 0 {
		w.s.observer().DegenerateChain(merged)
		if w.s.Degeneracy == types.DegeneracyError {
			return fmt.Errorf("%w: %v", ErrDegenerateChain, p.names)
		}
	}
	atoms := w.atoms * frac
	if math.IsNaN(atoms) || math.IsInf(atoms, 0) {
		return fmt.Errorf("%w: %v", ErrNonFinite, p.names)
	}
	w.out[name] += atoms
	w.s.observer().ChainSolved()

	for i := 1; i < len(node.Constants); i++ {
		rate, daughter := node.Constants[i], node.Daughters[i]
		if w.s.Policy.Terminal(node.Kinds[i], rate) {
			continue
		}
		if daughter == w.g.Parent() || p.contains(daughter) {
			continue
		}
		if _, ok := w.g.Node(daughter); !ok {
			return fmt.Errorf("%w: daughter %s of %s", ErrUnknownNuclide, daughter, name)
		}
		if err := w.walk(daughter, p.extend(daughter, rate)); err != nil {
			return err
		}
	}
	return nil
}

// RunSchedule propagates initialAtoms of the graph's parent through every
// pulse of sched and returns the final inventory. For each pulse the parent
// production constants are reset to nominal and scaled by the pulse
// strength, every nuclide present at the start of the pulse is solved as a
// chain root, and the results are summed into the next starting inventory.
func (s *Solver) RunSchedule(g *Graph, sched types.Schedule, initialAtoms float64) (types.Inventory, error) {
	current := types.Inventory{g.Parent(): initialAtoms}

	for i, pulse := range sched.Pulses {
		pg := g.Scaled(pulse.Strength)
		next := make(types.Inventory, len(current))

		roots := make([]string, 0, len(current))
		for name := range current {
			roots = append(roots, name)
		}
		sort.Strings(roots)

		for _, root := range roots {
			out, err := s.SolvePulse(pg, root, current[root], pulse.Duration)
			if err != nil {
				return nil, fmt.Errorf("pulse %d of %s: %w", i+1, sched.Name, err)
			}
			next.Add(out)
		}
		current = next
		s.observer().PulseSolved()
	}
	return current, nil
}
