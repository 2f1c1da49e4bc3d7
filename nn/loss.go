package nn

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"digitnet/tensor"
)

// OutputError returns -(target - actual) for every output neuron.
func OutputError(target, actual []float64) ([]float64, error) {
	if len(target) != len(actual) {
		return nil, errors.Wrapf(tensor.ErrShapeMismatch, "target has %d values, output has %d", len(target), len(actual))
	}
	e := make([]float64, len(actual))
	floats.SubTo(e, actual, target)
	return e, nil
}

// SquaredError returns the sum of squared differences between target and
// actual.
func SquaredError(target, actual []float64) (float64, error) {
	if len(target) != len(actual) {
		return 0, errors.Wrapf(tensor.ErrShapeMismatch, "target has %d values, output has %d", len(target), len(actual))
	}
	d := floats.Distance(target, actual, 2)
	return d * d, nil
}
