// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DecayRecord is one entry of the decay database file. Records without a
// half-life describe stable nuclides.
type DecayRecord struct {
	// Name is the long nuclide name (e.g. "Co060", "Co060m").
	Name string `json:"name" yaml:"name"`

	// HalfLife is the half-life in seconds. Nil for stable nuclides.
	HalfLife *float64 `json:"half_life_secs,omitempty" yaml:"half_life_secs,omitempty"`

	// BranchingRatios lists the fraction of decays taking each branch.
	BranchingRatios []float64 `json:"BR,omitempty" yaml:"BR,omitempty"`

	// Daughters names the product of each branch, parallel to BranchingRatios.
	Daughters []string `json:"Decay_daughter_names,omitempty" yaml:"Decay_daughter_names,omitempty"`

	// Modes tags each branch with its decay mode; "f" marks fission.
	Modes []string `json:"Decay_name,omitempty" yaml:"Decay_name,omitempty"`
}

// Stable reports whether the record has no half-life.
func (r DecayRecord) Stable() bool {
	return r.HalfLife == nil
}

// ParentRates holds the inventory and reaction rates of one irradiated
// nuclide.
type ParentRates struct {
	// Atoms is the number of parent atoms present at the start of irradiation.
	Atoms float64 `json:"atoms" yaml:"atoms"`

	// Reactions maps product names to reaction rates (reactions/atom/s), one
	// value per sample: a single value for a point source, one per cell for a
	// line source.
	Reactions map[string][]float64 `json:"reactions" yaml:"reactions"`
}

// Samples returns the largest number of samples over all reaction channels.
func (p ParentRates) Samples() int {
	n := 0
	for _, v := range p.Reactions {
		if len(v) > n {
			n = len(v)
		}
	}
	return n
}

// ReactionRateTable maps parent nuclide names to their reaction rates.
type ReactionRateTable map[string]ParentRates

// Inventory maps nuclide names to atom counts at one instant.
type Inventory map[string]float64

// Add accumulates every entry of other into inv.
func (inv Inventory) Add(other Inventory) {
	for name, atoms := range other {
		inv[name] += atoms
	}
}

// Activities maps nuclide names to activity values in Bq, one entry per
// (parent, sample) unit that produced the nuclide.
type Activities map[string][]float64
