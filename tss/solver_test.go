package tss

import (
	"testing"

	"github.com/renjuzero/engine/calc"
	"github.com/renjuzero/engine/game"
	"github.com/renjuzero/engine/tt"
	"github.com/stretchr/testify/assert"
)

func TestSolverFindsImmediateWin(t *testing.T) {
	cfg := game.Config{Rule: game.Freestyle, Rows: 15, Cols: 15}
	c := calc.NewCalculator(cfg)
	b := game.NewBoard(15, 15)
	for _, col := range []int{5, 6, 7, 8} {
		b.Set(7, col, game.Cross)
	}
	c.SetBoard(b)

	z := game.NewZobrist(15, 15)
	table := tt.NewTable(4, 256)
	solver := NewSolver(cfg, table, z)

	hash := z.Hash(b, game.Cross)
	score := solver.Solve(c, hash, game.Cross, Recursive, 4)
	assert.True(t, score.IsWin())
}

func TestSolverDoesNotClaimWinWithoutThreat(t *testing.T) {
	cfg := game.Config{Rule: game.Freestyle, Rows: 15, Cols: 15}
	c := calc.NewCalculator(cfg)
	b := game.NewBoard(15, 15)
	c.SetBoard(b)

	z := game.NewZobrist(15, 15)
	table := tt.NewTable(4, 256)
	solver := NewSolver(cfg, table, z)

	hash := z.Hash(b, game.Cross)
	score := solver.Solve(c, hash, game.Cross, Recursive, 4)
	assert.False(t, score.IsWin())
	assert.False(t, score.IsLoss())
}

func TestActionListSortDescending(t *testing.T) {
	l := ActionList{}
	l.Add(Action{Score: 10})
	l.Add(Action{Score: 90})
	l.Add(Action{Score: 50})
	l.SortDescending()
	assert.Equal(t, 90, l.At(0).Score)
	assert.Equal(t, 50, l.At(1).Score)
	assert.Equal(t, 10, l.At(2).Score)
}
