// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reaction computes neutron reaction rates for the isotopes of an
// impurity element. Group cross sections from a library file are collapsed
// with the neutron spectrum at the source location into effective cross
// sections, which are turned into reaction rates per parent atom.
package reaction

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/purity-engine/internal/nuclide"
)

// Reaction identifies one channel of a cross-section library.
type Reaction struct {
	Parent  string `json:"parent" yaml:"parent"`
	Type    string `json:"type" yaml:"type"`
	Product string `json:"product" yaml:"product"`
}

// String renders the reaction the way library headers spell it.
func (r Reaction) String() string {
	return fmt.Sprintf("%s %s %s", r.Parent, r.Type, r.Product)
}

// Library holds group cross sections (barn) keyed by reaction. Parent and
// product names are stored in long form.
type Library struct {
	xs        map[[2]string][]float64
	reactions []Reaction
}

// LoadLibrary reads a cross-section library file.
func LoadLibrary(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening cross-section library: %w", err)
	}
	defer f.Close()

	lib, err := ParseLibrary(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return lib, nil
}

// ParseLibrary reads a cross-section library. A block starts with a header
// line "parent (n,x) product" followed by one row per energy group whose
// third column is the cross section. A blank line ends the block. Lines
// starting with # are ignored.
func ParseLibrary(r io.Reader) (*Library, error) {
	lib := &Library{xs: make(map[[2]string][]float64)}

	var current *Reaction
	var values []float64
	flush := func() {
		if current != nil {
			lib.add(*current, values)
		}
		current, values = nil, nil
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch {
		case len(fields) == 0:
			flush()
		case len(fields) == 3 && strings.HasPrefix(fields[1], "("):
			flush()
			rx, err := header(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			current = &rx
		case current != nil && len(fields) == 3:
			v, err := strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: cross section %q: %w", lineNo, fields[2], err)
			}
			values = append(values, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	sort.Slice(lib.reactions, func(i, j int) bool {
		a, b := lib.reactions[i], lib.reactions[j]
		if a.Parent != b.Parent {
			return a.Parent < b.Parent
		}
		return a.Product < b.Product
	})
	return lib, nil
}

func header(fields []string) (Reaction, error) {
	parent, err := nuclide.Long(fields[0])
	if err != nil {
		return Reaction{}, err
	}
	product, err := nuclide.Long(fields[2])
	if err != nil {
		return Reaction{}, err
	}
	return Reaction{Parent: parent, Type: fields[1], Product: product}, nil
}

// add stores a block. A repeated (parent, product) pair keeps the first
// block, matching the first-match lookup of the library format.
func (l *Library) add(rx Reaction, values []float64) {
	key := [2]string{rx.Parent, rx.Product}
	if _, ok := l.xs[key]; ok {
		return
	}
	l.xs[key] = values
	l.reactions = append(l.reactions, rx)
}

// Reactions returns every reaction of the library ordered by parent then
// product.
func (l *Library) Reactions() []Reaction {
	return append([]Reaction(nil), l.reactions...)
}

// XS returns the group cross sections of parent -> product. Names may be in
// any supported spelling.
func (l *Library) XS(parent, product string) ([]float64, bool) {
	p, err := nuclide.Long(parent)
	if err != nil {
		return nil, false
	}
	d, err := nuclide.Long(product)
	if err != nil {
		return nil, false
	}
	v, ok := l.xs[[2]string{p, d}]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), v...), true
}
