// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cellmap tabulates quantities over the cells of a spectrum map:
// the effective cross section of every reaction channel and the activity of
// every nuclide, one row per cell.
package cellmap

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/purity-engine/internal/activity"
	"github.com/pdiddy/purity-engine/internal/nuclide"
	"github.com/pdiddy/purity-engine/internal/reaction"
)

// Map holds one value per (cell, column).
type Map struct {
	Columns []string
	Rows    [][]float64
}

// New returns a map of cells rows with all values zero.
func New(columns []string, cells int) *Map {
	m := &Map{Columns: columns, Rows: make([][]float64, cells)}
	for i := range m.Rows {
		m.Rows[i] = make([]float64, len(columns))
	}
	return m
}

// Column returns the values of the named column, or nil.
func (m *Map) Column(name string) []float64 {
	for c, col := range m.Columns {
		if col != name {
			continue
		}
		out := make([]float64, len(m.Rows))
		for i, row := range m.Rows {
			out[i] = row[c]
		}
		return out
	}
	return nil
}

// EffectiveXS collapses every library reaction whose parent belongs to
// element with the flux of each spectrum sample. Columns are named
// "parent to product".
func EffectiveXS(lib *reaction.Library, spectrum *reaction.Spectrum, element string, w io.Writer) (*Map, error) {
	var rxs []reaction.Reaction
	for _, rx := range lib.Reactions() {
		el, err := nuclide.Element(rx.Parent)
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(el, element) {
			rxs = append(rxs, rx)
		}
	}
	if len(rxs) == 0 {
		return nil, fmt.Errorf("cross-section library has no reactions for %s", element)
	}

	columns := make([]string, len(rxs))
	for c, rx := range rxs {
		columns[c] = rx.Parent + " to " + rx.Product
	}
	m := New(columns, len(spectrum.Samples))
	for c, rx := range rxs {
		xs, _ := lib.XS(rx.Parent, rx.Product)
		for i, flux := range spectrum.Samples {
			sigma, err := reaction.Collapse(xs, flux, w)
			if err != nil {
				return nil, fmt.Errorf("collapsing %s in cell %d: %w", rx, i, err)
			}
			m.Rows[i][c] = sigma
		}
	}
	return m, nil
}

// Activity sums the unit activities of every nuclide per cell, where a
// unit's sample index is its cell. Columns are the nuclides in name order.
func Activity(units []activity.Unit, cells int) (*Map, error) {
	seen := make(map[string]bool)
	for _, u := range units {
		if u.Sample < 0 || u.Sample >= cells {
			return nil, fmt.Errorf("unit %s sample %d outside %d cells", u.Parent, u.Sample, cells)
		}
		for name := range u.Activities {
			seen[name] = true
		}
	}
	columns := make([]string, 0, len(seen))
	for name := range seen {
		columns = append(columns, name)
	}
	sort.Strings(columns)
	index := make(map[string]int, len(columns))
	for c, name := range columns {
		index[name] = c
	}

	m := New(columns, cells)
	for _, u := range units {
		for name, bq := range u.Activities {
			m.Rows[u.Sample][index[name]] += bq
		}
	}
	return m, nil
}

// WriteCSV writes a header of "cell" and the column names followed by one
// row per cell. suffix is appended to every column header.
func (m *Map) WriteCSV(w io.Writer, suffix string) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(m.Columns)+1)
	header = append(header, "cell")
	for _, col := range m.Columns {
		header = append(header, col+suffix)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, row := range m.Rows {
		rec := make([]string, 0, len(row)+1)
		rec = append(rec, fmt.Sprint(i))
		for _, v := range row {
			rec = append(rec, fmt.Sprintf("%.6e", v))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
