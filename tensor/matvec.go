package tensor

import (
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"digitnet/parallel"
	"digitnet/utils"
)

// Kernel computes matrix-vector products.
//
// With Workers == 0 the product is computed on the calling goroutine. With
// Workers > 0 the rows are split into Workers contiguous ranges and handed to
// Runner (parallel.Spawn when nil). Both modes accumulate each row in the same
// order, so their results are bit-identical.
//
// Recorder, when set, receives the duration of every call.
type Kernel struct {
	Workers  int
	Runner   parallel.Runner
	Recorder utils.Recorder
}

// MulVec returns m·v.
func (k *Kernel) MulVec(m *mat.Dense, v []float64) ([]float64, error) {
	defer utils.Track(k.Recorder, "tensor.MulVec", time.Now())

	if k.Workers <= 0 {
		return MulVecSerial(m, v)
	}

	runner := k.Runner
	if runner == nil {
		runner = parallel.Spawn{}
	}
	return mulVecParallel(m, v, k.Workers, runner)
}

// MulVecSerial returns m·v computed on the calling goroutine.
func MulVecSerial(m *mat.Dense, v []float64) ([]float64, error) {
	if err := checkMulVec(m, v); err != nil {
		return nil, err
	}

	rows, _ := m.Dims()
	out := make([]float64, rows)
	mulRows(out, m, v, parallel.Range{Start: 0, End: rows})

	return out, nil
}

// MulVecParallel returns m·v with the rows split across workers goroutines
// that are started for this call only.
func MulVecParallel(m *mat.Dense, v []float64, workers int) ([]float64, error) {
	return mulVecParallel(m, v, workers, parallel.Spawn{})
}

func mulVecParallel(m *mat.Dense, v []float64, workers int, runner parallel.Runner) ([]float64, error) {
	if err := checkMulVec(m, v); err != nil {
		return nil, err
	}

	rows, _ := m.Dims()
	out := make([]float64, rows)

	// each range writes only out[r.Start:r.End]
	runner.Run(parallel.Partition(rows, workers), func(r parallel.Range) {
		mulRows(out, m, v, r)
	})

	return out, nil
}

// mulRows fills out[i] for i in r with the dot product of row i and v,
// summing columns left to right.
func mulRows(out []float64, m *mat.Dense, v []float64, r parallel.Range) {
	for i := r.Start; i < r.End; i++ {
		row := m.RawRowView(i)
		sum := 0.0
		for j, w := range row {
			sum += w * v[j]
		}
		out[i] = sum
	}
}

func checkMulVec(m *mat.Dense, v []float64) error {
	if isEmpty(m) || len(v) == 0 {
		return errors.Wrap(ErrEmptyInput, "multiplying matrix by vector")
	}
	rows, cols := m.Dims()
	if cols != len(v) {
		return errors.Wrapf(ErrShapeMismatch, "matrix %dx%d cannot multiply vector of length %d", rows, cols, len(v))
	}
	return nil
}
