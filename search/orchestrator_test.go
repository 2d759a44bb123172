package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renjuzero/engine/calc"
	"github.com/renjuzero/engine/game"
	"github.com/renjuzero/engine/mcts"
	"github.com/renjuzero/engine/tt"
)

type uniformInferencer struct{}

func (uniformInferencer) Infer(pos *game.Position) (policy []float32, value float32) {
	n := pos.Config.ActionSpace()
	policy = make([]float32, n)
	for i := range policy {
		policy[i] = 1 / float32(n)
	}
	return policy, 0
}

func newSessionPosition(t *testing.T) (*game.Position, *calc.Calculator) {
	t.Helper()
	cfg := game.Config{Rule: game.Freestyle, Rows: 7, Cols: 7}
	z := game.NewZobrist(cfg.Rows, cfg.Cols)
	pos := game.NewPosition(cfg, z)
	c := calc.NewCalculator(cfg)
	return pos, c
}

func TestSessionRunReturnsLegalMove(t *testing.T) {
	pos, c := newSessionPosition(t)
	table := tt.NewTable(4, 1<<14)
	conf := mcts.DefaultConfig()
	orch := New(table, uniformInferencer{}, conf)

	session := orch.NewSession(pos, c)
	move := session.Run(StopCondition{MaxSimulations: 32, MaxTime: time.Second})
	require.False(t, move.IsNull())
	assert.True(t, pos.Check(move))
}

func TestSessionAdvanceRootAppliesMove(t *testing.T) {
	pos, c := newSessionPosition(t)
	table := tt.NewTable(4, 1<<14)
	conf := mcts.DefaultConfig()
	orch := New(table, uniformInferencer{}, conf)

	session := orch.NewSession(pos, c)
	move := session.Run(StopCondition{MaxSimulations: 16})
	session.AdvanceRoot(move)

	assert.Equal(t, move, pos.LastMove())
}
