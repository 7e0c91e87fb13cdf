// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chain evaluates activation and decay chains. Assemble builds the
// decay graph seen by one irradiated parent, and Solver propagates atom
// populations through that graph over a pulsed irradiation schedule with the
// analytical Bateman solution.
package chain

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/pdiddy/purity-engine/internal/decaydata"
)

// ErrUnknownNuclide is returned when a parent, product or daughter is absent
// from the decay database.
var ErrUnknownNuclide = errors.New("nuclide not in decay data")

// Graph is the decay graph for one parent and one reaction-rate sample. The
// parent node is an overlay whose branches are the reaction channels; every
// other nuclide is read from the shared database, which is never modified.
type Graph struct {
	db      *decaydata.Database
	parent  decaydata.Node
	nominal []float64
}

// Assemble builds the graph for parent irradiated with the given reaction
// rates (reactions/atom/s) keyed by product name. The parent node gets
// Daughters = [parent, products...] and Constants = [sum of rates, rates...],
// products ordered by name.
func Assemble(db *decaydata.Database, parent string, channels map[string]float64) (*Graph, error) {
	base, ok := db.Node(parent)
	if !ok {
		return nil, fmt.Errorf("%w: parent %s", ErrUnknownNuclide, parent)
	}

	products := make([]string, 0, len(channels))
	for product := range channels {
		products = append(products, product)
	}
	sort.Strings(products)

	node := decaydata.Node{
		Name:      parent,
		HalfLife:  base.HalfLife,
		Constants: make([]float64, 1, len(products)+1),
		Daughters: make([]string, 1, len(products)+1),
		Kinds:     make([]decaydata.Kind, 1, len(products)+1),
	}
	node.Daughters[0] = parent
	node.Kinds[0] = decaydata.KindDecay

	for _, product := range products {
		if !db.Has(product) {
			return nil, fmt.Errorf("%w: product %s of %s", ErrUnknownNuclide, product, parent)
		}
		rate := channels[product]
		if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
			return nil, fmt.Errorf("invalid reaction rate %g for %s -> %s", rate, parent, product)
		}
		node.Constants[0] += rate
		node.Constants = append(node.Constants, rate)
		node.Daughters = append(node.Daughters, product)
		node.Kinds = append(node.Kinds, decaydata.KindProduction)
	}

	return &Graph{
		db:      db,
		parent:  node,
		nominal: append([]float64(nil), node.Constants...),
	}, nil
}

// Parent returns the name of the irradiated nuclide.
func (g *Graph) Parent() string {
	return g.parent.Name
}

// Node returns the node for name, consulting the parent overlay first.
func (g *Graph) Node(name string) (decaydata.Node, bool) {
	if name == g.parent.Name {
		return g.parent, true
	}
	return g.db.Node(name)
}

// Nominal returns a copy of the parent node at full source strength.
func (g *Graph) Nominal() decaydata.Node {
	n := g.parent.Clone()
	copy(n.Constants, g.nominal)
	return n
}

// Scaled returns a graph whose parent production constants are the nominal
// constants multiplied by strength. Scaling always starts from the nominal
// values, so successive calls do not compound.
func (g *Graph) Scaled(strength float64) *Graph {
	node := g.parent
	node.Constants = make([]float64, len(g.nominal))
	for i, c := range g.nominal {
		node.Constants[i] = c * strength
	}
	return &Graph{db: g.db, parent: node, nominal: g.nominal}
}
