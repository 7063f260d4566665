package pid

import "math"

// Coefficients of the discrete 2x2 state space measurement filter
//
//	yf[k+1]  = A11*yf[k] + A12*dyf[k] + B1*y[k]
//	dyf[k+1] = A21*yf[k] + A22*dyf[k] + B2*y[k]
type Coefficients struct {
	A11 float64 `json:"a11"`
	A12 float64 `json:"a12"`
	A21 float64 `json:"a21"`
	A22 float64 `json:"a22"`
	B1  float64 `json:"b1"`
	B2  float64 `json:"b2"`
}

// Discretize computes the zero-order-hold discretization of the second order
// measurement filter (low pass output and its derivative).
//
// tfTs is the filter time constant as a multiple of the nominal sample time,
// tx is the actual execution period normalized to the nominal sample time.
// Both must be positive and finite, otherwise the result contains NaN or Inf.
func Discretize(tfTs float64, tx float64) Coefficients {
	h1 := tx / tfTs
	h2 := math.Exp(-h1)
	h3 := h1 * h2
	h4 := h3 / tfTs

	return Coefficients{
		A11: h2 + h3,
		A12: h2,
		A21: -h4,
		A22: h2 - h3,
		B1:  1 - h2 - h3,
		B2:  h4,
	}
}
