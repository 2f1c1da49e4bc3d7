// Package tensor holds the dense linear-algebra kernels behind the network:
// matrix-vector products, serial or split across workers, and transposition.
// Matrices are gonum *mat.Dense values; vectors are plain []float64.
package tensor

import (
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"digitnet/utils"
)

var (
	// ErrShapeMismatch is returned when operand dimensions are incompatible.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrEmptyInput is returned when a matrix or vector has no elements.
	ErrEmptyInput = errors.New("empty input")
)

func isEmpty(m *mat.Dense) bool {
	return m == nil || m.IsEmpty()
}

// Transpose returns a freshly allocated transpose of m.
func Transpose(m *mat.Dense) (*mat.Dense, error) {
	if isEmpty(m) {
		return nil, errors.Wrap(ErrEmptyInput, "transposing matrix")
	}
	return mat.DenseCopyOf(m.T()), nil
}

// Transpose is the instrumented form of the package-level Transpose.
func (k *Kernel) Transpose(m *mat.Dense) (*mat.Dense, error) {
	defer utils.Track(k.Recorder, "tensor.Transpose", time.Now())
	return Transpose(m)
}

// SameShape reports whether a and b have identical dimensions.
func SameShape(a, b mat.Matrix) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	return ar == br && ac == bc
}
