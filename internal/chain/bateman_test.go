// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// twoMember is the textbook population of the daughter of a pure decay
// chain, per parent atom.
func twoMember(l1, l2, t float64) float64 {
	return l1 / (l2 - l1) * (math.Exp(-l1*t) - math.Exp(-l2*t))
}

func assertRel(t *testing.T, want, got, rel float64, msgAndArgs ...any) {
	t.Helper()
	if want == 0 {
		assert.InDelta(t, 0, got, 1e-300, msgAndArgs...)
		return
	}
	assert.InEpsilon(t, want, got, rel, msgAndArgs...)
}

func TestTransferSingleMember(t *testing.T) {
	got, merged := transfer([]float64{1e-3}, 500, 1e-6)
	assertRel(t, math.Exp(-0.5), got, 1e-12)
	assert.Zero(t, merged)

	got, _ = transfer([]float64{0}, 1e9, 1e-6)
	assert.Equal(t, 1.0, got)
}

func TestTransferTwoMemberChain(t *testing.T) {
	tests := []struct {
		name       string
		l1, l2, tt float64
	}{
		{"short daughter", 1e-6, 1e-2, 3600},
		{"long daughter", 1e-2, 1e-6, 3600},
		{"similar", 1e-3, 3e-4, 2000},
		{"very long time", 4.17e-9, 1.1e-3, 1e8},
		{"reaction rate", 3.05e-14, 4.17e-9, 6.3e7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, merged := transfer([]float64{tt.l1, tt.l2}, tt.tt, 1e-6)
			assertRel(t, twoMember(tt.l1, tt.l2, tt.tt), got, 1e-6)
			assert.Zero(t, merged)
		})
	}
}

func TestTransferThreeMemberChain(t *testing.T) {
	l1, l2, l3, tt := 2e-3, 5e-4, 1e-4, 4000.0
	want := l1 * l2 * (math.Exp(-l1*tt)/((l2-l1)*(l3-l1)) +
		math.Exp(-l2*tt)/((l1-l2)*(l3-l2)) +
		math.Exp(-l3*tt)/((l1-l3)*(l2-l3)))
	got, _ := transfer([]float64{l1, l2, l3}, tt, 1e-6)
	assertRel(t, want, got, 1e-9)
}

func TestTransferStableSink(t *testing.T) {
	l, tt := 1e-4, 7000.0
	got, _ := transfer([]float64{l, 0}, tt, 1e-6)
	assertRel(t, 1-math.Exp(-l*tt), got, 1e-12)

	// Effectively infinite cooling moves every atom into the sink.
	got, _ = transfer([]float64{l, 0}, 1e9, 1e-6)
	assertRel(t, 1, got, 1e-12)
}

func TestTransferZeroEdge(t *testing.T) {
	got, _ := transfer([]float64{0, 1e-3}, 100, 1e-6)
	assert.Equal(t, 0.0, got)
	assert.False(t, math.IsNaN(got))

	got, _ = transfer([]float64{0, 0}, 100, 1e-6)
	assert.Equal(t, 0.0, got)
}

func TestTransferRepeatedRoots(t *testing.T) {
	l, tt := 1e-3, 2000.0

	got, merged := transfer([]float64{l, l}, tt, 1e-6)
	assertRel(t, l*tt*math.Exp(-l*tt), got, 1e-12)
	assert.Equal(t, 1, merged)

	got, merged = transfer([]float64{l, l, l}, tt, 1e-6)
	assertRel(t, l*l*tt*tt/2*math.Exp(-l*tt), got, 1e-12)
	assert.Equal(t, 1, merged)

	// A repeated pair followed by a distinct tail constant.
	m := 3e-4
	got, merged = transfer([]float64{l, l, m}, tt, 1e-6)
	want := l * l * ((math.Exp(-m*tt)-math.Exp(-l*tt))/((m-l)*(m-l)) +
		tt*math.Exp(-l*tt)/(m-l))
	assertRel(t, want, got, 1e-9)
	assert.Equal(t, 1, merged)
}

func TestTransferNearDegenerateIsContinuous(t *testing.T) {
	l, tt := 1e-3, 2000.0
	limit := l * tt * math.Exp(-l*tt)

	for _, eps := range []float64{1e-12, 1e-9, 1e-7, 1e-5, 1e-4} {
		got, _ := transfer([]float64{l, l * (1 + eps)}, tt, 1e-6)
		assertRel(t, limit, got, 10*eps+1e-9, "eps=%g", eps)
		assert.False(t, math.IsNaN(got) || math.IsInf(got, 0))
	}
}

func TestClusters(t *testing.T) {
	got := clusters([]float64{3, 1, 1 + 1e-9, 2, 0}, 1e-6)
	assert.Len(t, got, 4)
	assert.Equal(t, 0.0, got[0].value)
	assert.Equal(t, 2, got[1].mult)
	assert.InDelta(t, 1+5e-10, got[1].value, 1e-15)
	assert.Equal(t, cluster{value: 3, mult: 1}, got[3])
}
