package game

import "github.com/pkg/errors"

// Config describes a game instance: the rule variant, board dimensions and
// the move count after which an unfinished game is scored a draw.
type Config struct {
	Rule      Rule
	Rows      int
	Cols      int
	DrawAfter int // 0 means "only draw when the board is full"
}

// MaxBoardDim bounds board size as noted in spec.md §1 (boards up to 20x20).
const MaxBoardDim = 20

// DefaultConfig returns a 15x15 freestyle configuration, the most common
// default for this family of engines.
func DefaultConfig() Config {
	return Config{Rule: Freestyle, Rows: 15, Cols: 15}
}

// Validate checks the structural invariants of a Config.
func (c Config) Validate() error {
	if c.Rows <= 0 || c.Cols <= 0 {
		return errors.Errorf("game: invalid board size %dx%d", c.Rows, c.Cols)
	}
	if c.Rows > MaxBoardDim || c.Cols > MaxBoardDim {
		return errors.Errorf("game: board size %dx%d exceeds maximum %d", c.Rows, c.Cols, MaxBoardDim)
	}
	switch c.Rule {
	case Freestyle, Standard, Renju, Caro5, Caro6:
	default:
		return errors.Errorf("game: unknown rule %v", c.Rule)
	}
	return nil
}

// ActionSpace is the number of distinct board squares, and therefore the
// size of the neural network's policy output and the MCTS edge index space.
func (c Config) ActionSpace() int { return c.Rows * c.Cols }

// IndexOf maps a move to its flat policy-vector index, row-major.
func (c Config) IndexOf(move Move) int { return move.Row()*c.Cols + move.Col() }

// MoveFromIndex is IndexOf's inverse, reattaching the sign to move.
func (c Config) MoveFromIndex(index int, sign Sign) Move {
	return NewMove(index/c.Cols, index%c.Cols, sign)
}
