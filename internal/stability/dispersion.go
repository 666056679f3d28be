package stability

import "fmt"

// #region dispersion

// MaxSourceFrequency computes the highest source-wavelet frequency the
// grid can represent without numerical dispersion, from the grid points
// per minimum wavelength required by the chosen operator.
func MaxSourceFrequency(class ErrorClass, halfLength int, dh, minVP, minVS float64) (float64, error) {
	if class < 0 || class >= numClasses {
		return 0, fmt.Errorf("error class %d out of range [0,%d]", class, numClasses-1)
	}
	if halfLength < 1 || halfLength > MaxHalfLength {
		return 0, fmt.Errorf("operator half-length %d out of range [1,%d]", halfLength, MaxHalfLength)
	}
	if dh <= 0 {
		return 0, fmt.Errorf("grid spacing %g must be positive", dh)
	}

	minVel := minVS
	if minVP < minVel {
		minVel = minVP
	}
	if minVel <= 0 {
		return 0, fmt.Errorf("minimum velocity %g must be positive", minVel)
	}

	points := gridpointsPerWavelength[class][halfLength-1]
	return minVel / (points * dh), nil
}

// GridpointsPerWavelength returns the dispersion-table entry for an error
// class and operator half-length (1..MaxHalfLength).
func GridpointsPerWavelength(class ErrorClass, halfLength int) (float64, error) {
	if class < 0 || class >= numClasses {
		return 0, fmt.Errorf("error class %d out of range [0,%d]", class, numClasses-1)
	}
	if halfLength < 1 || halfLength > MaxHalfLength {
		return 0, fmt.Errorf("operator half-length %d out of range [1,%d]", halfLength, MaxHalfLength)
	}
	return gridpointsPerWavelength[class][halfLength-1], nil
}

// #endregion dispersion
