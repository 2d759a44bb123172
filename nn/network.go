package nn

import (
	"math"
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"github.com/renjuzero/engine/game"
)

// layer is a fully connected affine transform plus, for trunk layers, a
// ReLU. Its width knobs (K/SharedLayers/FC) come from Config, which
// dualnet.Config originally sized but never backed with weights (see
// DESIGN.md).
type layer struct {
	W      []float32 // In*Out, row-major: W[i*Out+j]
	B      []float32 // Out
	In, Out int
}

func newLayer(in, out int, r *rand.Rand) layer {
	l := layer{W: make([]float32, in*out), B: make([]float32, out), In: in, Out: out}
	scale := float32(math.Sqrt(2.0 / float64(in)))
	for i := range l.W {
		l.W[i] = float32(r.NormFloat64()) * scale
	}
	return l
}

func (l layer) forward(x []float32) []float32 {
	out := make([]float32, l.Out)
	copy(out, l.B)
	for i := 0; i < l.In; i++ {
		xi := x[i]
		if xi == 0 {
			continue
		}
		row := l.W[i*l.Out : (i+1)*l.Out]
		for j, w := range row {
			out[j] += xi * w
		}
	}
	return out
}

func relu(x []float32) []float32 {
	out := make([]float32, len(x))
	for i, v := range x {
		if v > 0 {
			out[i] = v
		}
	}
	return out
}

// Network is a small dual-headed (policy, value) feedforward network over
// the board encoding produced by Encode. It fills the New/Init/Infer/Train
// role dualnet.Dual was meant to play but, unlike dualnet, actually holds
// weights: dualnet shipped only the Config struct with no network body, so
// this is originated fresh, following the rest of the corpus' pattern of
// gorgonia.org/tensor-backed evaluators (see DESIGN.md).
type Network struct {
	Conf       Config
	Trunk      []layer
	PolicyHead layer
	ValueHead  layer
}

// New builds a freshly initialized network for conf.
func New(conf Config) (*Network, error) {
	if !conf.IsValid() {
		return nil, errors.New("nn: invalid config")
	}
	r := rand.New(rand.NewSource(1))
	inputDim := conf.Features * conf.Height * conf.Width

	n := &Network{Conf: conf}
	prev := inputDim
	for i := 0; i < conf.SharedLayers; i++ {
		width := conf.FC
		if i == 0 {
			width = conf.K
		}
		n.Trunk = append(n.Trunk, newLayer(prev, width, r))
		prev = width
	}
	n.PolicyHead = newLayer(prev, conf.ActionSpace, r)
	n.ValueHead = newLayer(prev, 1, r)
	return n, nil
}

// Init exists for parity with callers that expect a separate init step
// after construction (agogo.New called a.NN.Init()); New already leaves
// the network ready to use.
func (n *Network) Init() error { return nil }

// forward runs the shared trunk and returns the hidden activations used by
// both heads, alongside the raw policy logits and the tanh-squashed value.
func (n *Network) forward(x []float32) (hidden []float32, policyLogits []float32, value float32) {
	hidden = x
	for _, l := range n.Trunk {
		hidden = relu(l.forward(hidden))
	}
	policyLogits = n.PolicyHead.forward(hidden)
	v := n.ValueHead.forward(hidden)
	value = math32.Tanh(v[0])
	return hidden, policyLogits, value
}

func softmax(logits []float32) []float32 {
	out := make([]float32, len(logits))
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}
	var sum float32
	for i, v := range logits {
		e := math32.Exp(v - max)
		out[i] = e
		sum += e
	}
	if sum <= 0 {
		uniform := 1 / float32(len(out))
		for i := range out {
			out[i] = uniform
		}
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// Infer implements mcts.Inferencer: it encodes pos and runs the forward
// pass, returning a normalized policy and a value from the side to move's
// perspective.
func (n *Network) Infer(pos *game.Position) (policy []float32, value float32) {
	x := Encode(pos, n.Conf)
	_, logits, v := n.forward(x)
	return softmax(logits), v
}
