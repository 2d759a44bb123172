package tt

import (
	"testing"

	"github.com/renjuzero/engine/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScorePackUnpack(t *testing.T) {
	s := New(Win, -7)
	assert.True(t, s.IsWin())
	assert.Equal(t, 7, s.Distance())

	back := FromRaw(s.Raw())
	assert.Equal(t, s, back)
}

func TestScoreInvertUpWinBecomesLoss(t *testing.T) {
	win := WinIn(3)
	lost := InvertUp(win)
	assert.True(t, lost.IsLoss())
	assert.Equal(t, 4, lost.Distance())
}

func TestScoreNegateUnknown(t *testing.T) {
	s := FromEval(150)
	neg := s.Negate()
	assert.True(t, neg.IsUnproven())
	assert.Equal(t, -150, neg.Eval())
}

func TestTableInsertSeekRoundTrip(t *testing.T) {
	table := NewTable(4, 64)
	h := game.Hash128{Low: 0xABCD, High: 0x1234}
	data := Data{Bound: BoundExact, Depth: 5, Score: WinIn(2), BestMove: game.NewMove(3, 3, game.Cross)}
	table.Insert(h, data)

	got := table.Seek(h)
	require.Equal(t, BoundExact, got.Bound)
	assert.Equal(t, 5, got.Depth)
	assert.Equal(t, data.BestMove, got.BestMove)
	assert.True(t, got.Score.IsWin())
}

func TestTableSeekMissReturnsBoundNone(t *testing.T) {
	table := NewTable(4, 64)
	got := table.Seek(game.Hash128{Low: 1, High: 2})
	assert.Equal(t, BoundNone, got.Bound)
}

func TestTableLoadFactorIncreasesAfterInsert(t *testing.T) {
	table := NewTable(2, 16)
	before := table.LoadFactor(false)
	table.Insert(game.Hash128{Low: 7, High: 9}, Data{Bound: BoundLower, Depth: 1})
	after := table.LoadFactor(false)
	assert.Greater(t, after, before)
}
