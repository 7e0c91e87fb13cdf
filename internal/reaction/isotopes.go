// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reaction

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/purity-engine/internal/nuclide"
)

// Avogadro is the Avogadro constant (1/mol).
const Avogadro = 6.02214076e23

// Isotope is one row of the isotope table.
type Isotope struct {
	Element   string  `json:"element" yaml:"element"`
	Name      string  `json:"name" yaml:"name"`
	MolarMass float64 `json:"molar_mass" yaml:"molar_mass"`

	// Abundance is the natural isotopic fraction; zero for isotopes that do
	// not occur naturally.
	Abundance float64 `json:"abundance" yaml:"abundance"`
}

// IsotopeTable looks up isotopes by long name.
type IsotopeTable struct {
	byName map[string]Isotope
	order  []string
}

// LoadIsotopes reads an isotope table YAML file holding a list of isotopes.
func LoadIsotopes(path string) (*IsotopeTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading isotope table: %w", err)
	}
	var rows []Isotope
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing isotope table %s: %w", path, err)
	}
	return NewIsotopeTable(rows)
}

// NewIsotopeTable indexes rows by long name.
func NewIsotopeTable(rows []Isotope) (*IsotopeTable, error) {
	t := &IsotopeTable{byName: make(map[string]Isotope, len(rows))}
	for _, row := range rows {
		long, err := nuclide.Long(row.Name)
		if err != nil {
			return nil, fmt.Errorf("isotope table: %w", err)
		}
		if row.MolarMass <= 0 {
			return nil, fmt.Errorf("isotope %s: molar mass must be positive", long)
		}
		if _, dup := t.byName[long]; dup {
			return nil, fmt.Errorf("isotope %s listed twice", long)
		}
		el, _ := nuclide.Element(long)
		row.Name, row.Element = long, el
		t.byName[long] = row
		t.order = append(t.order, long)
	}
	return t, nil
}

// Natural returns the naturally occurring isotopes of element in table
// order.
func (t *IsotopeTable) Natural(element string) []Isotope {
	el := normalizeElement(element)
	var out []Isotope
	for _, name := range t.order {
		iso := t.byName[name]
		if iso.Element == el && iso.Abundance > 0 {
			out = append(out, iso)
		}
	}
	return out
}

// Atoms returns the number of atoms of isotope per gram of material holding
// deltaImpurity weight percent of it: (Δ/100)·N_A/M.
func (t *IsotopeTable) Atoms(isotope string, deltaImpurity float64) (float64, error) {
	long, err := nuclide.Long(isotope)
	if err != nil {
		return 0, err
	}
	iso, ok := t.byName[long]
	if !ok {
		return 0, fmt.Errorf("isotope %s not in isotope table", long)
	}
	return deltaImpurity / 100 * Avogadro / iso.MolarMass, nil
}

func normalizeElement(s string) string {
	if s == "" {
		return s
	}
	// Reuse name parsing by giving the symbol a dummy mass number.
	el, err := nuclide.Element(s + "1")
	if err != nil {
		return s
	}
	return el
}
