package calc

import (
	"testing"

	"github.com/renjuzero/engine/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculatorTracksOpenFour(t *testing.T) {
	cfg := game.Config{Rule: game.Freestyle, Rows: 15, Cols: 15}
	c := NewCalculator(cfg)
	b := game.NewBoard(15, 15)
	for _, col := range []int{5, 6, 7} {
		b.Set(7, col, game.Cross)
	}
	c.SetBoard(b)

	threat := c.ThreatAt(game.Cross, 7, 4)
	assert.Equal(t, "open_4", threat.String())
}

func TestCalculatorIncrementalMatchesSetBoard(t *testing.T) {
	cfg := game.Config{Rule: game.Freestyle, Rows: 9, Cols: 9}
	c := NewCalculator(cfg)

	moves := []game.Move{
		game.NewMove(4, 4, game.Cross),
		game.NewMove(4, 5, game.Circle),
		game.NewMove(5, 4, game.Cross),
		game.NewMove(3, 5, game.Circle),
	}
	b := game.NewBoard(9, 9)
	c.SetBoard(b)
	for _, m := range moves {
		c.AddMove(m)
		b.Set(m.Row(), m.Col(), m.Sign())
	}

	fresh := NewCalculator(cfg)
	fresh.SetBoard(b)

	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			if b.At(row, col) != game.None {
				continue
			}
			require.Equal(t, fresh.ThreatAt(game.Cross, row, col), c.ThreatAt(game.Cross, row, col), "row=%d col=%d", row, col)
			require.Equal(t, fresh.ThreatAt(game.Circle, row, col), c.ThreatAt(game.Circle, row, col), "row=%d col=%d", row, col)
		}
	}
}

func TestCalculatorUndoRestoresState(t *testing.T) {
	cfg := game.Config{Rule: game.Freestyle, Rows: 9, Cols: 9}
	c := NewCalculator(cfg)
	c.SetBoard(game.NewBoard(9, 9))

	before := c.ThreatAt(game.Cross, 4, 4)
	m := game.NewMove(4, 5, game.Cross)
	c.AddMove(m)
	c.UndoMove(m)
	after := c.ThreatAt(game.Cross, 4, 4)
	assert.Equal(t, before, after)
}

func TestRenjuForbiddenDoubleThree(t *testing.T) {
	cfg := game.Config{Rule: game.Renju, Rows: 15, Cols: 15}
	c := NewCalculator(cfg)
	b := game.NewBoard(15, 15)
	// two open threes crossing at (7,7) once Cross plays there.
	b.Set(7, 5, game.Cross)
	b.Set(7, 6, game.Cross)
	b.Set(5, 7, game.Cross)
	b.Set(6, 7, game.Cross)
	c.SetBoard(b)

	assert.True(t, c.IsForbidden(game.Cross, 7, 7))
	assert.False(t, c.IsForbidden(game.Circle, 7, 7))
}

func TestThreatHistogramHasAnyFour(t *testing.T) {
	h := NewThreatHistogram()
	assert.False(t, h.HasAnyFour())
	loc := Location{Row: 1, Col: 1}
	h.Add(5, loc) // pattern.ThreatFork4x3 ordinal, see pattern package
	assert.True(t, h.HasAnyFour())
	h.Remove(5, loc)
	assert.False(t, h.HasAnyFour())
}
