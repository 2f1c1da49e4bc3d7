package nn

import "math"

// Sigmoid returns 1 / (1 + e^-x).
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// SigmoidPrime returns the sigmoid derivative in terms of the sigmoid's own
// output o, that is o * (1 - o).
func SigmoidPrime(o float64) float64 {
	return o * (1.0 - o)
}

// activate applies Sigmoid to every element of v in place.
func activate(v []float64) {
	for i, x := range v {
		v[i] = Sigmoid(x)
	}
}
