package stability

import "fmt"

// #region error-class

// ErrorClass selects a family of finite-difference operator coefficients,
// trading numerical error against operator support width.
type ErrorClass int

const (
	Taylor     ErrorClass = 0 // exact Taylor weights
	Holberg01  ErrorClass = 1 // Holberg, E = 0.1%
	Holberg05  ErrorClass = 2 // Holberg, E = 0.5%
	Holberg10  ErrorClass = 3 // Holberg, E = 1.0%
	Holberg30  ErrorClass = 4 // Holberg, E = 3.0%
	numClasses            = 5
)

// MaxHalfLength is the largest supported operator half-length
// (FD_ORDER up to 12).
const MaxHalfLength = 6

func (c ErrorClass) String() string {
	switch c {
	case Taylor:
		return "taylor"
	case Holberg01:
		return "holberg-0.1%"
	case Holberg05:
		return "holberg-0.5%"
	case Holberg10:
		return "holberg-1.0%"
	case Holberg30:
		return "holberg-3.0%"
	}
	return fmt.Sprintf("class-%d", int(c))
}

// #endregion error-class

// #region operator-weights

// operatorWeights[class][halfLength-1] holds the FD operator weights per
// error class and operator half-length. Unused tail positions are zero and
// do not affect the absolute row sums used by the CFL bound.
var operatorWeights = [numClasses][MaxHalfLength][MaxHalfLength]float64{
	// Taylor coefficients
	{
		{1.0, 0.0, 0.0, 0.0, 0.0, 0.0},
		{9.0 / 8.0, -1.0 / 24.0, 0.0, 0.0, 0.0, 0.0},
		{75.0 / 64.0, -25.0 / 384.0, 3.0 / 640.0, 0.0, 0.0, 0.0},
		{1225.0 / 1024.0, -245.0 / 3072.0, 49.0 / 5120.0, -5.0 / 7168.0, 0.0, 0.0},
		{19845.0 / 16384.0, -735.0 / 8192.0, 567.0 / 40960.0, -405.0 / 229376.0, 35.0 / 294912.0, 0.0},
		{160083.0 / 131072.0, -12705.0 / 131072.0, 22869.0 / 1310720.0, -5445.0 / 1835008.0, 847.0 / 2359296.0, -63.0 / 2883584.0},
	},
	// Holberg coefficients (E = 0.1%)
	{
		{1.001, 0.0, 0.0, 0.0, 0.0, 0.0},
		{1.1382, -0.046414, 0.0, 0.0, 0.0, 0.0},
		{1.1965, -0.078804, 0.0081781, 0.0, 0.0, 0.0},
		{1.2257, -0.099537, 0.018063, -0.0026274, 0.0, 0.0},
		{1.2415, -0.11231, 0.026191, -0.0064682, 0.001191, 0.0},
		{1.2508, -0.12034, 0.032131, -0.010142, 0.0029857, -0.00066667},
	},
	// Holberg coefficients (E = 0.5%)
	{
		{1.005, 0.0, 0.0, 0.0, 0.0, 0.0},
		{1.1534, -0.052806, 0.0, 0.0, 0.0, 0.0},
		{1.2111, -0.088313, 0.011768, 0.0, 0.0, 0.0},
		{1.2367, -0.10815, 0.023113, -0.0046905, 0.0, 0.0},
		{1.2496, -0.11921, 0.03113, -0.0093272, 0.0025161, 0.0},
		{1.2568, -0.12573, 0.036423, -0.013132, 0.0047484, -0.0015979},
	},
	// Holberg coefficients (E = 1.0%)
	{
		{1.01, 0.0, 0.0, 0.0, 0.0, 0.0},
		{1.164, -0.057991, 0.0, 0.0, 0.0, 0.0},
		{1.2192, -0.09407, 0.014608, 0.0, 0.0, 0.0},
		{1.2422, -0.11269, 0.02614, -0.0064054, 0.0, 0.0},
		{1.2534, -0.12257, 0.033755, -0.011081, 0.0036784, 0.0},
		{1.2596, -0.12825, 0.03855, -0.014763, 0.0058619, -0.0024538},
	},
	// Holberg coefficients (E = 3.0%)
	{
		{1.03, 0.0, 0.0, 0.0, 0.0, 0.0},
		{1.1876, -0.072518, 0.0, 0.0, 0.0, 0.0},
		{1.2341, -0.10569, 0.022589, 0.0, 0.0, 0.0},
		{1.2516, -0.12085, 0.032236, -0.011459, 0.0, 0.0},
		{1.2596, -0.12829, 0.038533, -0.014681, 0.007258, 0.0},
		{1.264, -0.13239, 0.042217, -0.017803, 0.0081959, -0.0051848},
	},
}

// gridpointsPerWavelength[class][halfLength-1] holds the grid points per
// minimum wavelength required by the dispersion criterion.
var gridpointsPerWavelength = [numClasses][MaxHalfLength]float64{
	{23.0, 8.0, 6.0, 5.0, 5.0, 4.0},
	{49.7, 8.32, 4.77, 3.69, 3.19, 2.91},
	{22.2, 5.65, 3.74, 3.11, 2.8, 2.62},
	{15.8, 4.8, 3.39, 2.9, 2.65, 2.51},
	{9.16, 3.47, 2.91, 2.61, 2.45, 2.36},
}

// #endregion operator-weights

// #region lookup

// OperatorWeights returns the coefficient row for an error class and
// operator half-length (1..MaxHalfLength).
func OperatorWeights(class ErrorClass, halfLength int) ([]float64, error) {
	if class < 0 || class >= numClasses {
		return nil, fmt.Errorf("error class %d out of range [0,%d]", class, numClasses-1)
	}
	if halfLength < 1 || halfLength > MaxHalfLength {
		return nil, fmt.Errorf("operator half-length %d out of range [1,%d]", halfLength, MaxHalfLength)
	}
	row := operatorWeights[class][halfLength-1]
	return row[:], nil
}

// HalfLengthFromOrder converts a configured FD_ORDER to the operator
// half-length used for table lookups.
func HalfLengthFromOrder(fdOrder int) int {
	return fdOrder / 2
}

// #endregion lookup
