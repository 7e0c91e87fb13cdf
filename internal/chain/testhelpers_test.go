// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pdiddy/purity-engine/internal/decaydata"
	"github.com/pdiddy/purity-engine/pkg/types"
)

func halfLife(lambda float64) *float64 {
	h := math.Ln2 / lambda
	return &h
}

func decays(name string, lambda float64, daughters ...string) types.DecayRecord {
	brs := make([]float64, len(daughters))
	for i := range brs {
		brs[i] = 1 / float64(len(daughters))
	}
	return types.DecayRecord{
		Name:            name,
		HalfLife:        halfLife(lambda),
		BranchingRatios: brs,
		Daughters:       daughters,
	}
}

func stable(name string) types.DecayRecord {
	return types.DecayRecord{Name: name}
}

func newDB(t *testing.T, records ...types.DecayRecord) *decaydata.Database {
	t.Helper()
	db, err := decaydata.New(records)
	require.NoError(t, err)
	return db
}

type countingObserver struct {
	chains, pulses, degenerate int
}

func (c *countingObserver) ChainSolved()        { c.chains++ }
func (c *countingObserver) PulseSolved()        { c.pulses++ }
func (c *countingObserver) DegenerateChain(int) { c.degenerate++ }
