package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renjuzero/engine/game"
)

func testOptions() Options {
	o := DefaultOptions(game.Freestyle, 7, 7)
	o.MoveTime = 200 * time.Millisecond
	o.MCTS.NumSimulation = 32
	o.NNConf.FC = 16
	o.NNConf.K = 8
	return o
}

func TestControllerBestMoveSearch(t *testing.T) {
	ctrl, err := New(testOptions())
	require.NoError(t, err)

	require.NoError(t, ctrl.StartSearch(BestMove))
	require.NoError(t, ctrl.StopSearch())
	assert.True(t, ctrl.IsSearchFinished())

	summary, err := ctrl.GetSummary()
	require.NoError(t, err)
	assert.False(t, summary.Move.IsNull())
}

func TestControllerRejectsSetPositionWhileRunning(t *testing.T) {
	ctrl, err := New(testOptions())
	require.NoError(t, err)

	require.NoError(t, ctrl.StartSearch(Ponder))
	err = ctrl.SetPosition(nil)
	assert.Error(t, err)
	require.NoError(t, ctrl.StopSearch())
}

func TestOptionsValidateRejectsZeroWorkers(t *testing.T) {
	o := testOptions()
	o.Workers = 0
	assert.Error(t, o.Validate())
}
