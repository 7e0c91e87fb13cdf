// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chain

import "github.com/pdiddy/purity-engine/internal/decaydata"

// DefaultMinBranchRate is the partial decay constant (1/s) below which a
// decay branch is not followed.
const DefaultMinBranchRate = 1e-20

// TerminalPolicy decides which branches end a chain. Fission branches are
// always terminal since fission product yields are not resolved. Decay
// branches slower than MinBranchRate are terminal. Production branches are
// never terminal: a zero-rate channel still yields its products with zero
// atoms, so every sample of a parent reaches the same set of nuclides.
type TerminalPolicy struct {
	MinBranchRate float64
}

// Terminal reports whether a branch of the given kind and rate is not
// followed.
func (p TerminalPolicy) Terminal(kind decaydata.Kind, rate float64) bool {
	switch kind {
	case decaydata.KindFission:
		return true
	case decaydata.KindProduction:
		return false
	default:
		return rate < p.MinBranchRate
	}
}
