package nn

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
	"gorgonia.org/vecf32"
)

// Batch is the wire format between self-play example collection and
// training: dense tensors shaped (batchSize*batches, ...), exactly as
// agogo.go's prepareExamples built Xs/Policies/Values, generalized from a
// fixed chess board shape to Conf.Features x Conf.Height x Conf.Width.
type Batch struct {
	Xs       *tensor.Dense // (n, Features, Height, Width)
	Policies *tensor.Dense // (n, ActionSpace)
	Values   *tensor.Dense // (n,)
	N        int
}

// NewBatch packs boards/policies/values (already flattened per-example, in
// the layout Encode/Network produce) into the tensor.Dense triple Train
// consumes.
func NewBatch(conf Config, boards, policies []float32, values []float32) (*Batch, error) {
	n := len(values)
	if n == 0 {
		return nil, errors.New("nn: empty batch")
	}
	exampleSize := conf.Features * conf.Height * conf.Width
	if len(boards) != n*exampleSize {
		return nil, errors.Errorf("nn: boards length %d does not match %d examples of size %d", len(boards), n, exampleSize)
	}
	if len(policies) != n*conf.ActionSpace {
		return nil, errors.Errorf("nn: policies length %d does not match %d examples of size %d", len(policies), n, conf.ActionSpace)
	}
	return &Batch{
		Xs:       tensor.New(tensor.WithBacking(boards), tensor.WithShape(n, conf.Features, conf.Height, conf.Width)),
		Policies: tensor.New(tensor.WithBacking(policies), tensor.WithShape(n, conf.ActionSpace)),
		Values:   tensor.New(tensor.WithBacking(values), tensor.WithShape(n)),
		N:        n,
	}, nil
}

// Train runs nniters epochs of per-example gradient descent over batch,
// matching the dual.Train(nn, Xs, Policies, Values, batches, nniters) call
// site agogo.go's LearnAZ used, but with an actual implementation: softmax
// cross-entropy on the policy head, MSE on the value head, backpropagated
// through the shared trunk by hand (the corpus
// carries gorgonia.org/tensor, not the full gorgonia.org/gorgonia autodiff
// engine, so the gradient is computed directly on the raw float32 backing
// slices rather than through a computation graph).
func Train(n *Network, batch *Batch, lr float32, nniters int) error {
	xsBacking, ok := batch.Xs.Data().([]float32)
	if !ok {
		return errors.New("nn: Xs tensor is not backed by []float32")
	}
	policiesBacking, ok := batch.Policies.Data().([]float32)
	if !ok {
		return errors.New("nn: Policies tensor is not backed by []float32")
	}
	valuesBacking, ok := batch.Values.Data().([]float32)
	if !ok {
		return errors.New("nn: Values tensor is not backed by []float32")
	}

	exampleSize := n.Conf.Features * n.Conf.Height * n.Conf.Width
	for iter := 0; iter < nniters; iter++ {
		for i := 0; i < batch.N; i++ {
			x := xsBacking[i*exampleSize : (i+1)*exampleSize]
			target := policiesBacking[i*n.Conf.ActionSpace : (i+1)*n.Conf.ActionSpace]
			value := valuesBacking[i]
			n.step(x, target, value, lr)
		}
	}
	return nil
}

// step runs one forward/backward pass over a single example and applies
// the resulting gradient in place.
func (n *Network) step(x, targetPolicy []float32, targetValue, lr float32) {
	activations := make([][]float32, len(n.Trunk)+1)
	activations[0] = x
	cur := x
	for i, l := range n.Trunk {
		cur = relu(l.forward(cur))
		activations[i+1] = cur
	}
	hidden := cur

	policyLogits := n.PolicyHead.forward(hidden)
	policy := softmax(policyLogits)
	valueRaw := n.ValueHead.forward(hidden)
	value := math32.Tanh(valueRaw[0])

	// dL/dlogits for softmax + cross entropy is (policy - target).
	dPolicyLogits := make([]float32, len(policy))
	for i := range policy {
		dPolicyLogits[i] = policy[i] - targetPolicy[i]
	}
	// dL/dvalueRaw for (value-target)^2 through tanh.
	dValue := 2 * (value - targetValue) * (1 - value*value)

	dHiddenFromPolicy := backpropLayer(&n.PolicyHead, hidden, dPolicyLogits, lr)
	dHiddenFromValue := backpropLayer(&n.ValueHead, hidden, []float32{dValue}, lr)

	dHidden := make([]float32, len(hidden))
	for i := range dHidden {
		dHidden[i] = dHiddenFromPolicy[i] + dHiddenFromValue[i]
	}

	for i := len(n.Trunk) - 1; i >= 0; i-- {
		out := activations[i+1]
		for j, v := range out {
			if v <= 0 {
				dHidden[j] = 0
			}
		}
		dHidden = backpropLayer(&n.Trunk[i], activations[i], dHidden, lr)
	}
}

// backpropLayer applies the gradient dOut (dL/dOutput) to l's weights and
// biases in place, scaled by lr, and returns dL/dInput for the caller to
// continue the chain rule into the previous layer. The bias update is a
// plain elementwise scale-and-subtract, so it runs through vecf32 rather
// than a hand-written loop like the per-row weight update below (which
// fuses the scale into the same pass that also accumulates dIn).
func backpropLayer(l *layer, input, dOut []float32, lr float32) []float32 {
	dIn := make([]float32, l.In)
	for i := 0; i < l.In; i++ {
		xi := input[i]
		row := l.W[i*l.Out : (i+1)*l.Out]
		var acc float32
		for j, w := range row {
			acc += w * dOut[j]
			row[j] -= lr * dOut[j] * xi
		}
		dIn[i] = acc
	}
	scaledGrad := make([]float32, len(dOut))
	copy(scaledGrad, dOut)
	vecf32.Scale(scaledGrad, lr)
	vecf32.Sub(l.B, scaledGrad)
	return dIn
}
