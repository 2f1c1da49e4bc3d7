// Package nn implements a fully-connected sigmoid network trained one example
// at a time by backpropagation of the squared error.
package nn

import (
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"digitnet/parallel"
	"digitnet/tensor"
	"digitnet/utils"
)

// ErrInvalidConfig is returned by New for a non-positive learning rate or a
// negative worker count.
var ErrInvalidConfig = errors.New("invalid network config")

// Config describes a network to build.
type Config struct {
	// Layers holds the neuron count of every layer, input first, output last.
	Layers       []int
	LearningRate float64
	// Workers is the number of goroutines each matrix-vector product is
	// split across; 0 computes products on the calling goroutine.
	Workers int

	Initializer Initializer     // DefaultUniform() when nil
	Runner      parallel.Runner // parallel.Spawn{} when nil
	Recorder    utils.Recorder  // instrumentation is off when nil
}

// Network is a multilayer perceptron. weights[i] maps layer i to layer i+1
// and has shape (layers[i+1], layers[i]).
//
// A Network is not safe for concurrent use.
type Network struct {
	layers       []int
	learningRate float64
	weights      []*mat.Dense
	kernel       *tensor.Kernel
	recorder     utils.Recorder
}

// New validates c and returns a network with freshly initialized weights.
func New(c Config) (*Network, error) {
	if len(c.Layers) < 2 {
		return nil, errors.Wrapf(tensor.ErrShapeMismatch, "network needs at least 2 layers, got %d", len(c.Layers))
	}
	for i, n := range c.Layers {
		if n <= 0 {
			return nil, errors.Wrapf(tensor.ErrEmptyInput, "layer %d has %d neurons", i, n)
		}
	}
	if c.LearningRate <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "learning rate %v", c.LearningRate)
	}
	if c.Workers < 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "worker count %d", c.Workers)
	}

	initializer := c.Initializer
	if initializer == nil {
		initializer = DefaultUniform()
	}
	if r, ok := initializer.(interface{ restart() }); ok {
		r.restart()
	}

	net := &Network{
		layers:       append([]int(nil), c.Layers...),
		learningRate: c.LearningRate,
		weights:      make([]*mat.Dense, len(c.Layers)-1),
		kernel: &tensor.Kernel{
			Workers:  c.Workers,
			Runner:   c.Runner,
			Recorder: c.Recorder,
		},
		recorder: c.Recorder,
	}
	for i := range net.weights {
		net.weights[i] = initializer.Init(c.Layers[i+1], c.Layers[i])
	}

	return net, nil
}

// Layers returns a copy of the layer sizes.
func (net *Network) Layers() []int {
	return append([]int(nil), net.layers...)
}

// LearningRate returns the gradient descent step size.
func (net *Network) LearningRate() float64 {
	return net.learningRate
}

// Workers returns the number of goroutines used per matrix-vector product.
func (net *Network) Workers() int {
	return net.kernel.Workers
}

// Weights returns deep copies of the weight matrices.
func (net *Network) Weights() []*mat.Dense {
	out := make([]*mat.Dense, len(net.weights))
	for i, w := range net.weights {
		out[i] = mat.DenseCopyOf(w)
	}
	return out
}

// SetWeights replaces all weight matrices with copies of ws. Every matrix must
// have the shape of the one it replaces; on error nothing is changed.
func (net *Network) SetWeights(ws []*mat.Dense) error {
	if len(ws) != len(net.weights) {
		return errors.Wrapf(tensor.ErrShapeMismatch, "got %d weight matrices, network has %d", len(ws), len(net.weights))
	}
	for i, w := range ws {
		if w == nil || w.IsEmpty() {
			return errors.Wrapf(tensor.ErrEmptyInput, "weight matrix %d", i)
		}
		if !tensor.SameShape(w, net.weights[i]) {
			r, c := w.Dims()
			return errors.Wrapf(tensor.ErrShapeMismatch, "weight matrix %d is %dx%d, want %dx%d",
				i, r, c, net.layers[i+1], net.layers[i])
		}
	}
	for i, w := range ws {
		net.weights[i] = mat.DenseCopyOf(w)
	}
	return nil
}

func (net *Network) lastIndex() int {
	return len(net.layers) - 1
}

func (net *Network) checkInput(input []float64) error {
	if len(input) == 0 {
		return errors.Wrap(tensor.ErrEmptyInput, "input vector")
	}
	if len(input) != net.layers[0] {
		return errors.Wrapf(tensor.ErrShapeMismatch, "input has %d values, input layer has %d neurons", len(input), net.layers[0])
	}
	return nil
}

// feedForward returns the activations of every layer; outputs[0] is input
// itself and outputs[len(layers)-1] is the prediction.
func (net *Network) feedForward(input []float64) ([][]float64, error) {
	outputs := make([][]float64, len(net.layers))
	outputs[0] = input

	for i, w := range net.weights {
		pre, err := net.kernel.MulVec(w, outputs[i])
		if err != nil {
			return nil, errors.Wrapf(err, "feeding forward layer %d", i+1)
		}
		activate(pre)
		outputs[i+1] = pre
	}

	return outputs, nil
}

// Query returns the output layer activations for input without changing the
// network.
func (net *Network) Query(input []float64) ([]float64, error) {
	defer utils.Track(net.recorder, "nn.Query", time.Now())

	if err := net.checkInput(input); err != nil {
		return nil, errors.Wrap(err, "querying network")
	}
	outputs, err := net.feedForward(input)
	if err != nil {
		return nil, errors.Wrap(err, "querying network")
	}
	return outputs[net.lastIndex()], nil
}

// Predict returns the index of the strongest output neuron for input.
func (net *Network) Predict(input []float64) (int, error) {
	out, err := net.Query(input)
	if err != nil {
		return 0, err
	}
	return floats.MaxIdx(out), nil
}

// Train runs one forward and backward pass for a single example and updates
// the weights by gradient descent. The weights are left untouched when an
// error is returned.
func (net *Network) Train(input, target []float64) error {
	defer utils.Track(net.recorder, "nn.Train", time.Now())

	if err := net.checkInput(input); err != nil {
		return errors.Wrap(err, "training network")
	}
	if len(target) != net.layers[net.lastIndex()] {
		return errors.Wrapf(tensor.ErrShapeMismatch, "training network: target has %d values, output layer has %d neurons",
			len(target), net.layers[net.lastIndex()])
	}

	outputs, err := net.feedForward(input)
	if err != nil {
		return errors.Wrap(err, "training network")
	}

	updated, err := net.backpropagate(outputs, target)
	if err != nil {
		return errors.Wrap(err, "training network")
	}
	copy(net.weights, updated)

	return nil
}

// backpropagate walks the transitions from last to first and returns the
// updated weight matrices. The error passed to layer i-1 is computed with
// the weights of layer i as they were before this step's update.
func (net *Network) backpropagate(outputs [][]float64, target []float64) ([]*mat.Dense, error) {
	defer utils.Track(net.recorder, "nn.backpropagate", time.Now())

	errs, err := OutputError(target, outputs[net.lastIndex()])
	if err != nil {
		return nil, err
	}

	updated := make([]*mat.Dense, len(net.weights))
	for i := len(net.weights) - 1; i >= 0; i-- {
		w := net.weights[i]
		outJ, outK := outputs[i], outputs[i+1]

		var nextErrs []float64
		if i > 0 {
			wT, err := net.kernel.Transpose(w)
			if err != nil {
				return nil, errors.Wrapf(err, "propagating error to layer %d", i)
			}
			nextErrs, err = net.kernel.MulVec(wT, errs)
			if err != nil {
				return nil, errors.Wrapf(err, "propagating error to layer %d", i)
			}
		}

		updated[i], err = net.updateWeights(w, errs, outJ, outK)
		if err != nil {
			return nil, errors.Wrapf(err, "updating weights of transition %d", i)
		}
		errs = nextErrs
	}

	return updated, nil
}

// updateWeights returns a new matrix holding
//
//	w[k][j] - lr * errs[k] * outK[k] * (1 - outK[k]) * outJ[j]
//
// for every weight connecting neuron j of the previous layer to neuron k.
func (net *Network) updateWeights(w *mat.Dense, errs, outJ, outK []float64) (*mat.Dense, error) {
	defer utils.Track(net.recorder, "nn.updateWeights", time.Now())

	if w == nil || w.IsEmpty() || len(errs) == 0 || len(outJ) == 0 || len(outK) == 0 {
		return nil, tensor.ErrEmptyInput
	}
	rows, cols := w.Dims()
	if len(errs) != rows || len(outK) != rows || len(outJ) != cols {
		return nil, errors.Wrapf(tensor.ErrShapeMismatch, "weights %dx%d, error %d, output_k %d, output_j %d",
			rows, cols, len(errs), len(outK), len(outJ))
	}

	out := mat.NewDense(rows, cols, nil)
	for k := 0; k < rows; k++ {
		grad := errs[k] * SigmoidPrime(outK[k])
		src, dst := w.RawRowView(k), out.RawRowView(k)
		for j, wkj := range src {
			dst[j] = wkj - net.learningRate*grad*outJ[j]
		}
	}

	return out, nil
}
