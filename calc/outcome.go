package calc

import "github.com/renjuzero/engine/game"

// CheckMove reports whether sign may legally play at (row, col): the square
// must be empty and, under Renju, the move must not be a forbidden fork or
// overline for Cross. This combines game.Position.Check's structural
// legality with the pattern-based restriction game.Board alone cannot
// decide (spec.md Renju "forbidden moves").
func (c *Calculator) CheckMove(sign game.Sign, row, col int) bool {
	if !c.board.InBounds(row, col) || c.board.At(row, col) != game.None {
		return false
	}
	return !c.IsForbidden(sign, row, col)
}

// Outcome classifies the game after lastMove, combining game.GetOutcome's
// line-scan with the Renju fork check: an overline is already resolved by
// GetOutcome, but a move that completes a five while also being a forbidden
// double-three/double-four never reaches this state, since CheckMove would
// have rejected it before it was played.
func (c *Calculator) Outcome(cfg game.Config, lastMove game.Move) game.Outcome {
	return game.GetOutcome(cfg, c.board, lastMove)
}
