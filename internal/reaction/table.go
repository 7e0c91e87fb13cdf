// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reaction

import (
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/purity-engine/pkg/types"
)

// Inputs are the files needed to build a reaction-rate table.
type Inputs struct {
	Library  *Library
	Spectrum *Spectrum
	Isotopes *IsotopeTable

	// Element is the impurity element symbol (e.g. "Co").
	Element string

	// DeltaImpurity is the impurity deviation in weight percent.
	DeltaImpurity float64
}

// BuildTable returns the reaction-rate table of every library reaction
// whose parent is a natural isotope of the element. Each channel holds one
// rate per spectrum sample. Warnings go to w.
func BuildTable(in Inputs, w io.Writer) (types.ReactionRateTable, error) {
	if in.DeltaImpurity <= 0 {
		return nil, fmt.Errorf("delta impurity must be positive, got %g", in.DeltaImpurity)
	}
	natural := make(map[string]bool)
	for _, iso := range in.Isotopes.Natural(in.Element) {
		natural[iso.Name] = true
	}
	if len(natural) == 0 {
		return nil, fmt.Errorf("no natural isotopes of %s in isotope table", in.Element)
	}

	table := make(types.ReactionRateTable)
	for _, rx := range in.Library.Reactions() {
		if !natural[rx.Parent] {
			continue
		}
		pr, ok := table[rx.Parent]
		if !ok {
			atoms, err := in.Isotopes.Atoms(rx.Parent, in.DeltaImpurity)
			if err != nil {
				return nil, err
			}
			pr = types.ParentRates{Atoms: atoms, Reactions: make(map[string][]float64)}
		}

		xs, _ := in.Library.XS(rx.Parent, rx.Product)
		rates := make([]float64, len(in.Spectrum.Samples))
		for i, flux := range in.Spectrum.Samples {
			sigma, err := Collapse(xs, flux, w)
			if err != nil {
				return nil, fmt.Errorf("collapsing %s: %w", rx, err)
			}
			rates[i] = Rate(in.DeltaImpurity, sigma, in.Spectrum.Total(i))
		}
		pr.Reactions[rx.Product] = rates
		table[rx.Parent] = pr
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("cross-section library has no reactions for %s", in.Element)
	}
	return table, nil
}

// LoadTable reads a reaction-rate table from YAML (JSON is accepted as a
// YAML subset).
func LoadTable(path string) (types.ReactionRateTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading reaction rates: %w", err)
	}
	var table types.ReactionRateTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parsing reaction rates %s: %w", path, err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("reaction rates %s: no parents", path)
	}
	return table, nil
}

// WriteTable writes table as YAML to w.
func WriteTable(w io.Writer, table types.ReactionRateTable) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(table); err != nil {
		return fmt.Errorf("encoding reaction rates: %w", err)
	}
	return enc.Close()
}
