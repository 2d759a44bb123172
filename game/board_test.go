package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardStringRoundTrip(t *testing.T) {
	b := NewBoard(5, 5)
	b.Set(2, 2, Cross)
	b.Set(2, 3, Circle)

	s := b.String()
	got, err := FromString(s, 5, 5)
	require.NoError(t, err)
	assert.True(t, b.Eq(got))
}

func TestGetOutcomeFreestyleWin(t *testing.T) {
	cfg := Config{Rule: Freestyle, Rows: 15, Cols: 15}
	b := NewBoard(15, 15)
	for _, c := range []int{5, 6, 7, 8, 9} {
		b.Set(7, c, Cross)
	}
	last := NewMove(7, 9, Cross)
	assert.Equal(t, CrossWin, GetOutcome(cfg, b, last))
}

func TestGetOutcomeCaro5BlockedFive(t *testing.T) {
	cfg := Config{Rule: Caro5, Rows: 15, Cols: 15}
	b := NewBoard(15, 15)
	for c := 3; c <= 7; c++ {
		b.Set(6, c, Cross)
	}
	b.Set(6, 2, Circle)
	b.Set(6, 8, Circle)
	last := NewMove(6, 7, Cross)
	assert.Equal(t, Unknown, GetOutcome(cfg, b, last))

	cfgFree := Config{Rule: Freestyle, Rows: 15, Cols: 15}
	assert.Equal(t, CrossWin, GetOutcome(cfgFree, b, last))
}

func TestGetOutcomeDraw(t *testing.T) {
	cfg := Config{Rule: Freestyle, Rows: 2, Cols: 2}
	b := NewBoard(2, 2)
	b.Set(0, 0, Cross)
	b.Set(0, 1, Circle)
	b.Set(1, 0, Circle)
	b.Set(1, 1, Cross)
	assert.Equal(t, Draw, GetOutcome(cfg, b, NewMove(1, 1, Cross)))
}

func TestRenjuOverlineForbidden(t *testing.T) {
	cfg := Config{Rule: Renju, Rows: 15, Cols: 15}
	b := NewBoard(15, 15)
	for c := 3; c <= 8; c++ {
		b.Set(5, c, Cross)
	}
	last := NewMove(5, 8, Cross)
	assert.Equal(t, CircleWin, GetOutcome(cfg, b, last))
}

func TestZobristRoundTrip(t *testing.T) {
	z := NewZobrist(8, 8)
	b := NewBoard(8, 8)
	moves := []Move{NewMove(0, 0, Cross), NewMove(0, 1, Circle), NewMove(1, 1, Cross)}
	h := z.Hash(b, Cross)
	for _, m := range moves {
		b.Set(m.Row(), m.Col(), m.Sign())
		h = z.UpdateHash(h, m)
	}
	want := z.Hash(b, b.SignToMove())
	assert.Equal(t, want, h)
}

func TestPositionApplyUndo(t *testing.T) {
	z := NewZobrist(9, 9)
	p := NewPosition(Config{Rule: Freestyle, Rows: 9, Cols: 9}, z)
	start := p.Clone()

	m := NewMove(4, 4, Cross)
	require.True(t, p.Check(m))
	p.Apply(m)
	assert.Equal(t, Circle, p.Turn())

	p.UndoLastMove()
	assert.True(t, p.Eq(start))
	assert.Equal(t, start.Hash(), p.Hash())
}
