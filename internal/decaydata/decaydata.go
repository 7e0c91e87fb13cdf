// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package decaydata loads the nuclide decay database and precomputes the
// decay constants of every unstable nuclide. A Database is read-only once
// loaded and may be shared by concurrent chain evaluations.
package decaydata

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/purity-engine/pkg/types"
)

// Kind classifies a branch of a decay graph node.
type Kind string

const (
	// KindDecay is ordinary radioactive decay. The self entry of every node
	// also carries this kind.
	KindDecay Kind = "RR"

	// KindFission is spontaneous fission. Fission products are not resolved.
	KindFission Kind = "f"

	// KindProduction is a neutron reaction channel of an irradiated parent.
	KindProduction Kind = "production"
)

// brTolerance is the slack allowed when branching ratios sum past one.
const brTolerance = 1e-6

// Node is the decay graph form of a nuclide. Index 0 of the parallel slices
// describes the nuclide itself: Constants[0] is the total removal constant
// and Daughters[0] the nuclide name. Indices 1..n describe the branches.
// Stable nuclides have empty slices.
//
// The slices of a Node returned by a Database are shared and must not be
// modified.
type Node struct {
	Name      string
	HalfLife  float64
	Constants []float64
	Daughters []string
	Kinds     []Kind
}

// Stable reports whether the nuclide has no decay data.
func (n Node) Stable() bool {
	return len(n.Constants) == 0
}

// Total returns the total removal constant, zero for stable nuclides.
func (n Node) Total() float64 {
	if n.Stable() {
		return 0
	}
	return n.Constants[0]
}

// Branches returns the number of branches leaving the nuclide.
func (n Node) Branches() int {
	if n.Stable() {
		return 0
	}
	return len(n.Constants) - 1
}

// Clone returns a copy of n that does not share slices.
func (n Node) Clone() Node {
	return Node{
		Name:      n.Name,
		HalfLife:  n.HalfLife,
		Constants: append([]float64(nil), n.Constants...),
		Daughters: append([]string(nil), n.Daughters...),
		Kinds:     append([]Kind(nil), n.Kinds...),
	}
}

// Database maps nuclide names to decay graph nodes.
type Database struct {
	nodes map[string]Node
}

// Load reads a decay database file. Files ending in .yaml or .yml are read
// as YAML, everything else as JSON. Both hold a list of decay records.
func Load(path string) (*Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading decay data: %w", err)
	}

	var records []types.DecayRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &records)
	default:
		err = json.Unmarshal(data, &records)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing decay data %s: %w", path, err)
	}
	return New(records)
}

// New builds a Database from decay records.
func New(records []types.DecayRecord) (*Database, error) {
	db := &Database{nodes: make(map[string]Node, len(records))}
	for _, r := range records {
		if r.Name == "" {
			return nil, fmt.Errorf("decay record without name")
		}
		if _, dup := db.nodes[r.Name]; dup {
			return nil, fmt.Errorf("duplicate decay record %s", r.Name)
		}
		n, err := buildNode(r)
		if err != nil {
			return nil, err
		}
		db.nodes[r.Name] = n
	}
	return db, nil
}

func buildNode(r types.DecayRecord) (Node, error) {
	n := Node{Name: r.Name}
	if r.Stable() {
		return n, nil
	}

	halfLife := *r.HalfLife
	if halfLife <= 0 || math.IsNaN(halfLife) || math.IsInf(halfLife, 0) {
		return Node{}, fmt.Errorf("nuclide %s: invalid half-life %g", r.Name, halfLife)
	}
	if len(r.BranchingRatios) != len(r.Daughters) {
		return Node{}, fmt.Errorf("nuclide %s: %d branching ratios for %d daughters",
			r.Name, len(r.BranchingRatios), len(r.Daughters))
	}
	if len(r.Modes) > 0 && len(r.Modes) != len(r.Daughters) {
		return Node{}, fmt.Errorf("nuclide %s: %d decay modes for %d daughters",
			r.Name, len(r.Modes), len(r.Daughters))
	}

	lambda := math.Ln2 / halfLife
	n.HalfLife = halfLife
	n.Constants = make([]float64, 1, len(r.BranchingRatios)+1)
	n.Daughters = make([]string, 1, len(r.Daughters)+1)
	n.Kinds = make([]Kind, 1, len(r.Daughters)+1)
	n.Daughters[0] = r.Name
	n.Kinds[0] = KindDecay

	var brSum float64
	for i, br := range r.BranchingRatios {
		if br < 0 {
			return Node{}, fmt.Errorf("nuclide %s: negative branching ratio %g", r.Name, br)
		}
		brSum += br
		kind := KindDecay
		if len(r.Modes) > 0 && r.Modes[i] == string(KindFission) {
			kind = KindFission
		}
		n.Constants = append(n.Constants, br*lambda)
		n.Daughters = append(n.Daughters, r.Daughters[i])
		n.Kinds = append(n.Kinds, kind)
		n.Constants[0] += br * lambda
	}
	if brSum > 1+brTolerance {
		return Node{}, fmt.Errorf("nuclide %s: branching ratios sum to %g", r.Name, brSum)
	}
	return n, nil
}

// Node returns the decay graph node for name.
func (db *Database) Node(name string) (Node, bool) {
	n, ok := db.nodes[name]
	return n, ok
}

// Has reports whether name is in the database.
func (db *Database) Has(name string) bool {
	_, ok := db.nodes[name]
	return ok
}

// Len returns the number of nuclides in the database.
func (db *Database) Len() int {
	return len(db.nodes)
}

// Names returns all nuclide names in sorted order.
func (db *Database) Names() []string {
	names := make([]string, 0, len(db.nodes))
	for name := range db.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every daughter named by a branch exists in the
// database and returns the missing names, sorted.
func (db *Database) Validate() []string {
	missing := make(map[string]bool)
	for _, n := range db.nodes {
		for _, d := range n.Daughters {
			if !db.Has(d) {
				missing[d] = true
			}
		}
	}
	out := make([]string, 0, len(missing))
	for name := range missing {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
