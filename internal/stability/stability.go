// Package stability derives the numerically stable time step and the
// maximum usable source frequency for an explicit 2-D finite-difference
// scheme from the operator coefficient tables, the grid spacing, and the
// velocity extrema of the model.
package stability

import (
	"fmt"
	"math"
)

// #region cfl

// MaxStableDT computes the largest stable time step for the explicit
// time-domain scheme according to the Courant-Friedrichs-Lewy criterion,
// then rounds it down onto the conventional seismic sampling ladder.
func MaxStableDT(class ErrorClass, halfLength int, dh, maxVP, maxVS float64) (float64, error) {
	if dh <= 0 {
		return 0, fmt.Errorf("grid spacing %g must be positive", dh)
	}
	row, err := OperatorWeights(class, halfLength)
	if err != nil {
		return 0, err
	}

	var gamma float64
	for _, w := range row {
		gamma += math.Abs(w)
	}

	maxVel := maxVP
	if maxVS > maxVel {
		maxVel = maxVS
	}
	if maxVel <= 0 {
		return 0, fmt.Errorf("maximum velocity %g must be positive", maxVel)
	}

	dt := dh / (math.Sqrt2 * gamma * maxVel)
	return roundTimestep(dt), nil
}

// #endregion cfl

// #region rounding

// endings are the admissible two-digit mantissas of a rounded time step.
// The set matches common seismic sampling intervals (1, 2, 2.5, 5, 8 ms
// and their decades) and must never be extended upward: rounding up would
// break the stability guarantee.
var endings = [...]float64{10, 20, 25, 50, 80}

// roundTimestep rounds dt down onto the sampling ladder. A 1% safety
// margin is applied first so a dt sitting exactly on a ladder value still
// rounds to it rather than to the value above.
func roundTimestep(dt float64) float64 {
	safe := 0.99 * dt
	exp10 := math.Floor(math.Log10(safe)) - 1
	scale := math.Pow(10, exp10)
	mantissa := safe / scale

	best := 0.0
	for _, e := range endings {
		if mantissa >= e {
			best = e
		}
	}
	if best == 0 {
		// Mantissa below the whole ladder. Unreachable for positive finite
		// input since the mantissa lands in [10,100) by construction, but
		// guarded by stepping one decade down: still a round-down.
		return endings[len(endings)-1] * scale / 10
	}
	return best * scale
}

// #endregion rounding
