package nn

import (
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Initializer creates the starting weights of one layer transition.
type Initializer interface {
	Init(rows, cols int) *mat.Dense
}

// Uniform draws every weight independently from [Min, Max].
//
// Each Init call draws from its own source, seeded Seed, Seed+1, ... in call
// order. New restarts that sequence, so networks built from the same
// non-zero Seed get identical weights even when the Uniform value is reused.
// A zero Seed is replaced by the clock each time the sequence restarts.
// Seed itself is never modified.
type Uniform struct {
	Min, Max float64
	Seed     uint64

	next uint64
}

// DefaultUniform is the initializer used when a Config names none.
func DefaultUniform() *Uniform {
	return &Uniform{Min: -1, Max: 1}
}

// Init implements Initializer.
func (u *Uniform) Init(rows, cols int) *mat.Dense {
	dist := distuv.Uniform{
		Min: u.Min,
		Max: u.Max,
		Src: nextSource(u.Seed, &u.next),
	}
	return mat.NewDense(rows, cols, sample(dist.Rand, rows*cols))
}

func (u *Uniform) restart() { u.next = 0 }

// nextSource returns a source for the counter *next and advances it, so
// transitions of equal shape do not receive identical weights. A zero
// counter starts over from seed.
func nextSource(seed uint64, next *uint64) rand.Source {
	if *next == 0 {
		*next = seed
		if *next == 0 {
			*next = uint64(time.Now().UnixNano())
		}
	}
	src := rand.NewSource(*next)
	*next++
	return src
}

// Normal draws weights from a normal distribution with mean zero and
// standard deviation 1/sqrt(fan-in). Seed behaves as in Uniform.
type Normal struct {
	Seed uint64

	next uint64
}

func (n *Normal) restart() { n.next = 0 }

// Init implements Initializer.
func (n *Normal) Init(rows, cols int) *mat.Dense {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: 1 / math.Sqrt(float64(cols)),
		Src:   nextSource(n.Seed, &n.next),
	}
	return mat.NewDense(rows, cols, sample(dist.Rand, rows*cols))
}

func sample(draw func() float64, size int) []float64 {
	data := make([]float64, size)
	for i := range data {
		data[i] = draw()
	}
	return data
}
