// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reaction

import (
	"fmt"
	"io"
)

// barn is one barn in cm².
const barn = 1e-24

// Collapse returns the flux-weighted effective cross section Σσφ/Σφ. A zero
// total flux gives zero with a warning on w, since the location simply sees
// no neutrons.
func Collapse(xs, flux []float64, w io.Writer) (float64, error) {
	if len(xs) != len(flux) {
		return 0, fmt.Errorf("%d cross-section groups for %d flux groups", len(xs), len(flux))
	}
	var num, total float64
	for g := range xs {
		num += xs[g] * flux[g]
		total += flux[g]
	}
	if total == 0 {
		if w != nil {
			fmt.Fprintln(w, "warning: the flux is zero in all energy groups at the selected location")
		}
		return 0, nil
	}
	return num / total, nil
}

// Rate returns the reaction rate per parent atom (1/s) for an impurity of
// deltaImpurity weight percent with effective cross section sigmaEff (barn)
// in a total flux (n/cm²/s).
func Rate(deltaImpurity, sigmaEff, totalFlux float64) float64 {
	return deltaImpurity / 100 * sigmaEff * totalFlux * barn
}
