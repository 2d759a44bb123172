// Package nn implements the neural network evaluator: board encoding, a
// small dual-headed (policy+value) network, batched inference, and
// supervised training from self-play examples (grounded on dualnet.Config
// and agogo.go's prepareExamples/Train wiring, spec.md §4.8).
package nn

// Config configures the network's shape, adapted from dualnet.Config (same
// field set). The encoder's rule one-hot plane block is sized by the
// numRulePlanes constant, not by a field.
type Config struct {
	K            int  `json:"k"`             // width of the first trunk layer
	SharedLayers int  `json:"shared_layers"` // number of fully connected trunk layers
	FC           int  `json:"fc"`            // trunk hidden width
	BatchSize    int  `json:"batch_size"`
	Width        int  `json:"width"`
	Height       int  `json:"height"`
	Features     int  `json:"features"`
	ActionSpace  int  `json:"action_space"`
	FwdOnly      bool `json:"fwd_only"`
}

// numBasePlanes and numRulePlanes are the encoder's fixed plane block sizes
// (see encode.go): cross/circle/empty/side-to-move/last-move, then one plane per
// game.Rule value.
const (
	numBasePlanes = 5
	numRulePlanes = 5
	minFeatures   = numBasePlanes + numRulePlanes
)

// DefaultConf returns AlphaZero-typical sizing for an m x n board with the
// given policy output size, mirroring dualnet.DefaultConf.
func DefaultConf(m, n, actionSpace int) Config {
	k := round((m * n) / 3)
	return Config{
		K:            k,
		SharedLayers: 2,
		FC:           2 * k,
		BatchSize:    256,
		Width:        n,
		Height:       m,
		Features:     18,
		ActionSpace:  actionSpace,
	}
}

// IsValid reports whether conf can build a Network.
func (conf Config) IsValid() bool {
	return conf.K >= 1 &&
		conf.ActionSpace >= 3 &&
		conf.SharedLayers >= 1 &&
		conf.FC > 1 &&
		conf.BatchSize >= 1 &&
		conf.Features >= minFeatures
}

// round rounds a to the nearest power of two, breaking ties toward the
// larger one, exactly as dualnet.round did.
func round(a int) int {
	n := a - 1
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++

	lt := n / 2
	if (a - lt) < (n - a) {
		return lt
	}
	return n
}
