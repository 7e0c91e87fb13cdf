// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chain

import (
	"math"
	"sort"
)

// cluster is a group of chain constants that coincide within tolerance.
type cluster struct {
	value float64
	mult  int
}

// transfer returns the fraction of the atoms at the head of a linear chain
// that sit in its last member after time t. rates[i] is the constant that
// moves atoms from member i to member i+1, and the final entry is the total
// removal constant of the last member (zero for a stable sink).
//
// The result is Π rates[:n-1] · S, where S is the Bateman sum
// Σ_i exp(-λ_i t) / Π_{j≠i} (λ_j - λ_i). Constants closer than tol
// (relative) are merged and contribute through the repeated-root limit of S,
// evaluated as a truncated Taylor product around the merged value. merged
// counts the clusters holding more than one constant.
func transfer(rates []float64, t, tol float64) (value float64, merged int) {
	n := len(rates)
	if n == 0 {
		return 0, 0
	}

	// The fraction is invariant under λ -> λ/s, t -> t·s. Normalizing by
	// the largest constant keeps the partial fractions near unit scale.
	scale := 0.0
	for _, r := range rates {
		scale = math.Max(scale, math.Abs(r))
	}
	if scale == 0 {
		// Only a lone stable member keeps its atoms.
		if n == 1 {
			return 1, 0
		}
		return 0, 0
	}
	norm := make([]float64, n)
	for i, r := range rates {
		norm[i] = r / scale
	}
	ts := t * scale

	prod := 1.0
	for _, r := range norm[:n-1] {
		prod *= r
	}
	if prod == 0 {
		return 0, 0
	}

	groups := clusters(norm, tol)
	var sum float64
	for k, c := range groups {
		if c.mult > 1 {
			merged++
		}
		// Taylor coefficients of exp(-x t) around x = c.value.
		series := make([]float64, c.mult)
		term := math.Exp(-c.value * ts)
		for p := range series {
			series[p] = term
			term *= -ts / float64(p+1)
		}
		for l, o := range groups {
			if l == k {
				continue
			}
			series = mulTrunc(series, inversePower(c.value-o.value, o.mult, c.mult))
		}
		sum += series[c.mult-1]
	}
	if (n-1)%2 == 1 {
		sum = -sum
	}
	return prod * sum, merged
}

// inversePower returns the first terms Taylor coefficients in u of
// (d + u)^-m.
func inversePower(d float64, m, terms int) []float64 {
	out := make([]float64, terms)
	coef := math.Pow(d, -float64(m))
	for p := range out {
		out[p] = coef
		coef *= -float64(m+p) / (float64(p+1) * d)
	}
	return out
}

// mulTrunc multiplies two power series of equal length, truncating to that
// length.
func mulTrunc(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for p := range out {
		for i := 0; i <= p; i++ {
			out[p] += a[i] * b[p-i]
		}
	}
	return out
}

// clusters sorts the constants and groups runs whose relative distance to
// the first member of the run is within tol. Each group is represented by
// its mean.
func clusters(rates []float64, tol float64) []cluster {
	sorted := append([]float64(nil), rates...)
	sort.Float64s(sorted)

	var out []cluster
	start, sum := 0, 0.0
	for i, v := range sorted {
		if i > start && !near(sorted[start], v, tol) {
			out = append(out, cluster{value: sum / float64(i-start), mult: i - start})
			start, sum = i, 0
		}
		sum += v
	}
	return append(out, cluster{value: sum / float64(len(sorted)-start), mult: len(sorted) - start})
}

func near(a, b, tol float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= tol*math.Max(math.Abs(a), math.Abs(b))
}
