package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renjuzero/engine/game"
)

func smallTrainOptions() Options {
	o := DefaultOptions(game.Freestyle, 5, 5)
	o.MCTS.NumSimulation = 8
	o.NNConf.K = 4
	o.NNConf.FC = 8
	o.NNConf.SharedLayers = 1
	o.TableSize = 1 << 10
	return o
}

func TestSelfPlayProducesExamples(t *testing.T) {
	trainer, err := NewTrainer(smallTrainOptions())
	require.NoError(t, err)

	examples, err := trainer.SelfPlay(4)
	require.NoError(t, err)
	require.NotEmpty(t, examples)
	for _, ex := range examples {
		assert.GreaterOrEqual(t, ex.Value, float32(-1))
		assert.LessOrEqual(t, ex.Value, float32(1))
	}
}

func TestTrainerSaveAndLoad(t *testing.T) {
	trainer, err := NewTrainer(smallTrainOptions())
	require.NoError(t, err)

	require.NoError(t, trainer.Train(1, 4, 2, 0.05))

	dir := filepath.Join(t.TempDir(), "model")
	require.NoError(t, trainer.Save(dir))

	loaded, err := LoadTrainer(dir)
	require.NoError(t, err)
	assert.Equal(t, trainer.opts.Game, loaded.opts.Game)
}
