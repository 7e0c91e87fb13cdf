// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dose converts nuclide activities into dose-rate deviations and
// evaluates them at points, along line sources and inside maintenance
// workstations.
package dose

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/purity-engine/internal/activity"
	"github.com/pdiddy/purity-engine/internal/nuclide"
)

// Factors maps short nuclide names ("Co60") to dose conversion factors in
// Sv/h per Bq.
type Factors map[string]float64

// LoadFactors reads a two-column CSV of nuclide name and factor. A first
// row whose factor column is not a number is taken as a header.
func LoadFactors(path string) (Factors, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dose factors: %w", err)
	}
	defer f.Close()

	factors, err := ParseFactors(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return factors, nil
}

// ParseFactors reads the dose factor CSV from r.
func ParseFactors(r io.Reader) (Factors, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	factors := make(Factors)
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("row %d: want nuclide and factor", row)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			if row == 1 {
				continue
			}
			return nil, fmt.Errorf("row %d: factor %q: %w", row, rec[1], err)
		}
		name, err := nuclide.Short(rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		factors[name] = v
	}
	return factors, nil
}

// Lookup returns the factor for a nuclide given in any supported spelling.
func (f Factors) Lookup(name string) (float64, bool) {
	short, err := nuclide.Short(name)
	if err != nil {
		return 0, false
	}
	v, ok := f[short]
	return v, ok
}

// Dose returns the dose-rate deviation in µSv/h of bq Bq of a nuclide with
// the given factor.
func Dose(factor, bq float64) float64 {
	return factor * bq * 1e6
}

// PerSample sums the dose of every unit into one value per sample index: a
// single value for a point source, one per cell for a line source. Nuclides
// without a factor are skipped and listed once on w.
func PerSample(units []activity.Unit, factors Factors, w io.Writer) []float64 {
	samples := 0
	for _, u := range units {
		if u.Sample+1 > samples {
			samples = u.Sample + 1
		}
	}
	out := make([]float64, samples)
	missing := make(map[string]bool)
	for _, u := range units {
		for name, bq := range u.Activities {
			factor, ok := factors.Lookup(name)
			if !ok {
				missing[name] = true
				continue
			}
			out[u.Sample] += Dose(factor, bq)
		}
	}

	if w != nil && len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for name := range missing {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(w, "warning: no dose conversion factor for %s\n", strings.Join(names, ", "))
	}
	return out
}
