package nn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renjuzero/engine/game"
)

func testConfig() Config {
	return Config{K: 8, SharedLayers: 1, FC: 16, BatchSize: 4, Width: 5, Height: 5, Features: 10, ActionSpace: 25}
}

func testPosition(t *testing.T) *game.Position {
	t.Helper()
	cfg := game.Config{Rule: game.Renju, Rows: 5, Cols: 5}
	z := game.NewZobrist(cfg.Rows, cfg.Cols)
	pos := game.NewPosition(cfg, z)
	pos.Apply(game.NewMove(2, 2, game.Cross))
	return pos
}

func TestEncodeShape(t *testing.T) {
	conf := testConfig()
	pos := testPosition(t)
	x := Encode(pos, conf)
	require.Len(t, x, conf.Features*conf.Height*conf.Width)

	planeSize := conf.Height * conf.Width
	crossPlane := x[0:planeSize]
	assert.Equal(t, float32(1), crossPlane[2*conf.Width+2])

	ruleBase := numBasePlanes * planeSize
	renjuPlane := x[ruleBase+int(game.Renju)*planeSize : ruleBase+(int(game.Renju)+1)*planeSize]
	for _, v := range renjuPlane {
		assert.Equal(t, float32(1), v)
	}
}

func TestNetworkInferNormalizesPolicy(t *testing.T) {
	conf := testConfig()
	net, err := New(conf)
	require.NoError(t, err)

	pos := testPosition(t)
	policy, value := net.Infer(pos)
	require.Len(t, policy, conf.ActionSpace)

	var sum float32
	for _, p := range policy {
		assert.GreaterOrEqual(t, p, float32(0))
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-3)
	assert.GreaterOrEqual(t, value, float32(-1))
	assert.LessOrEqual(t, value, float32(1))
}

func TestInvalidConfigRejected(t *testing.T) {
	conf := testConfig()
	conf.Features = 1 // below minFeatures
	_, err := New(conf)
	assert.Error(t, err)
}

func TestTrainReducesValueError(t *testing.T) {
	conf := testConfig()
	net, err := New(conf)
	require.NoError(t, err)

	pos := testPosition(t)
	board := Encode(pos, conf)
	policy := make([]float32, conf.ActionSpace)
	policy[0] = 1
	values := []float32{1}

	batch, err := NewBatch(conf, board, policy, values)
	require.NoError(t, err)

	_, _, before := net.forward(board)

	require.NoError(t, Train(net, batch, 0.1, 50))

	_, _, after := net.forward(board)
	assert.Less(t, (1-after)*(1-after), (1-before)*(1-before))
}

func TestEvaluatorBatchesRequests(t *testing.T) {
	conf := testConfig()
	net, err := New(conf)
	require.NoError(t, err)

	ev := NewEvaluator(net, 4, 5*time.Millisecond)
	defer ev.Close()

	pos := testPosition(t)
	policy, _ := ev.Infer(pos)
	assert.Len(t, policy, conf.ActionSpace)
}
