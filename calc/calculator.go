package calc

import (
	"github.com/renjuzero/engine/game"
	"github.com/renjuzero/engine/pattern"
)

// perSquare holds everything the calculator tracks for one board square.
type perSquare struct {
	typesForCross  [4]pattern.Type
	typesForCircle [4]pattern.Type
	defForCross    [4]uint16
	defForCircle   [4]uint16
	threatCross    pattern.Threat
	threatCircle   pattern.Threat
}

// Calculator maintains, for one live board, the pattern classification and
// aggregated threat at every empty square, for both colours, updated
// incrementally as moves are played and undone (grounded on
// PatternCalculator::addMove/undoMove in original_source).
type Calculator struct {
	config game.Config
	table  *pattern.Table
	board  game.Board

	squares []perSquare

	crossThreats  *ThreatHistogram
	circleThreats *ThreatHistogram
}

// NewCalculator builds a calculator for the given config, lazily building
// (or reusing the cached) pattern.Table for config.Rule.
func NewCalculator(cfg game.Config) *Calculator {
	return &Calculator{
		config:        cfg,
		table:         pattern.ForRule(cfg.Rule),
		board:         game.NewBoard(cfg.Rows, cfg.Cols),
		squares:       make([]perSquare, cfg.Rows*cfg.Cols),
		crossThreats:  NewThreatHistogram(),
		circleThreats: NewThreatHistogram(),
	}
}

func (c *Calculator) idx(row, col int) int { return row*c.config.Cols + col }

// Clone returns an independent copy sharing the same (immutable, cached)
// pattern.Table but with its own board and threat histograms, so a search
// worker can explore a branch without disturbing another worker's view of
// the same position.
func (c *Calculator) Clone() *Calculator {
	squares := make([]perSquare, len(c.squares))
	copy(squares, c.squares)
	return &Calculator{
		config:        c.config,
		table:         c.table,
		board:         c.board.Clone(),
		squares:       squares,
		crossThreats:  c.crossThreats.Clone(),
		circleThreats: c.circleThreats.Clone(),
	}
}

// SetBoard replaces the tracked board and recomputes every square from
// scratch (PatternCalculator::setBoard).
func (c *Calculator) SetBoard(b game.Board) {
	c.board = b.Clone()
	c.crossThreats.Clear()
	c.circleThreats.Clear()
	for i := range c.squares {
		c.squares[i] = perSquare{}
	}
	for row := 0; row < c.config.Rows; row++ {
		for col := 0; col < c.config.Cols; col++ {
			if c.board.At(row, col) == game.None {
				c.recomputeSquare(row, col)
			}
		}
	}
}

// SignAt returns the sign currently occupying (row, col).
func (c *Calculator) SignAt(row, col int) game.Sign { return c.board.At(row, col) }

// PatternAt returns the four directional pattern classifications that sign
// would obtain by playing at the (currently empty) square (row, col).
func (c *Calculator) PatternAt(sign game.Sign, row, col int) [4]pattern.Type {
	sq := c.squares[c.idx(row, col)]
	if sign == game.Cross {
		return sq.typesForCross
	}
	return sq.typesForCircle
}

// ThreatAt returns the aggregated threat that sign would obtain by playing
// at the (currently empty) square (row, col).
func (c *Calculator) ThreatAt(sign game.Sign, row, col int) pattern.Threat {
	sq := c.squares[c.idx(row, col)]
	if sign == game.Cross {
		return sq.threatCross
	}
	return sq.threatCircle
}

// ThreatHistogram returns the live threat histogram for sign.
func (c *Calculator) ThreatHistogram(sign game.Sign) *ThreatHistogram {
	if sign == game.Cross {
		return c.crossThreats
	}
	return c.circleThreats
}

// DefensiveMoves returns, for the pattern sign holds in direction dir at
// (row, col), the bitmask (relative to the window) of squares the opponent
// must occupy to neutralise it.
func (c *Calculator) DefensiveMoves(sign game.Sign, row, col int, dir pattern.Direction) uint16 {
	sq := c.squares[c.idx(row, col)]
	if sign == game.Cross {
		return sq.defForCross[dir]
	}
	return sq.defForCircle[dir]
}

// IsForbidden reports whether sign playing at (row, col) is a forbidden
// move under the calculator's rule (Renju fork/overline restriction on
// Cross only; always false otherwise).
func (c *Calculator) IsForbidden(sign game.Sign, row, col int) bool {
	return pattern.IsForbiddenFork(c.ThreatAt(sign, row, col), c.config.Rule, sign)
}

// AddMove plays move on the tracked board and incrementally refreshes the
// pattern/threat data for every empty square whose classification could
// have changed: those within one window's radius of move along each of the
// four lines through it (PatternCalculator::addMove + update_neighborhood).
func (c *Calculator) AddMove(move game.Move) {
	row, col := move.Row(), move.Col()
	c.clearSquareThreats(row, col)
	c.board.Set(row, col, move.Sign())
	c.squares[c.idx(row, col)] = perSquare{}
	c.refreshNeighborhood(row, col)
}

// UndoMove removes move from the tracked board and refreshes affected
// squares the same way AddMove does.
func (c *Calculator) UndoMove(move game.Move) {
	row, col := move.Row(), move.Col()
	c.board.Set(row, col, game.None)
	c.recomputeSquare(row, col)
	c.refreshNeighborhood(row, col)
}

// refreshNeighborhood recomputes every empty square reachable within the
// table's half-window radius from (row, col) along each of the four lines.
func (c *Calculator) refreshNeighborhood(row, col int) {
	radius := c.table.Mid
	for _, dir := range pattern.Directions {
		for offset := -radius; offset <= radius; offset++ {
			if offset == 0 {
				continue
			}
			r, cc := row+offset*dir.DR, col+offset*dir.DC
			if !c.board.InBounds(r, cc) || c.board.At(r, cc) != game.None {
				continue
			}
			c.recomputeSquare(r, cc)
		}
	}
}

// clearSquareThreats removes (row, col)'s current threat bucket membership
// before the square stops being empty.
func (c *Calculator) clearSquareThreats(row, col int) {
	sq := c.squares[c.idx(row, col)]
	c.crossThreats.Remove(sq.threatCross, Location{row, col})
	c.circleThreats.Remove(sq.threatCircle, Location{row, col})
}

// recomputeSquare reclassifies the four directional windows through the
// (empty) square (row, col) for both colours, updating the threat
// histograms to match.
func (c *Calculator) recomputeSquare(row, col int) {
	loc := Location{row, col}
	old := c.squares[c.idx(row, col)]
	c.crossThreats.Remove(old.threatCross, loc)
	c.circleThreats.Remove(old.threatCircle, loc)

	var sq perSquare
	length := c.table.Len
	half := c.table.Mid
	for d, dir := range pattern.Directions {
		window := make([]game.Sign, length)
		for i := -half; i <= half; i++ {
			window[i+half] = c.board.At(row+i*dir.DR, col+i*dir.DC)
		}
		window[half] = game.None
		enc := c.table.Encode(window)
		entry := c.table.Lookup(enc)
		sq.typesForCross[d] = entry.ForCross
		sq.typesForCircle[d] = entry.ForCircle
		sq.defForCross[d] = entry.DefCross
		sq.defForCircle[d] = entry.DefCircle
	}
	sq.threatCross = pattern.Aggregate(c.genuineCrossTypes(row, col, sq), c.config.Rule)
	sq.threatCircle = pattern.Aggregate(sq.typesForCircle, c.config.Rule)

	c.squares[c.idx(row, col)] = sq
	c.crossThreats.Add(sq.threatCross, loc)
	c.circleThreats.Add(sq.threatCircle, loc)
}

// genuineCrossTypes re-derives Cross's four directional types before they
// are folded into a threat, running the Renju open-three re-check whenever
// two or more directions classify OPEN_3 (a lone open three can never be
// part of a forbidden fork, so the expensive re-check is skipped unless a
// double-three is even possible). Only Circle's defensive response can
// neutralise a genuine open three, so the promotion squares are checked
// against the current (pre-move) board with Cross hypothetically placed at
// (row, col) (original_source rules.cpp isForbidden, the OPEN_3 branch).
func (c *Calculator) genuineCrossTypes(row, col int, sq perSquare) [4]pattern.Type {
	if c.config.Rule != game.Renju {
		return sq.typesForCross
	}
	open3 := 0
	for _, t := range sq.typesForCross {
		if t == pattern.Open3 {
			open3++
		}
	}
	if open3 < 2 {
		return sq.typesForCross
	}

	types := sq.typesForCross
	c.board.Set(row, col, game.Cross)
	for d := pattern.Direction(0); d < 4; d++ {
		if types[d] != pattern.Open3 {
			continue
		}
		if !c.isGenuineOpenThree(row, col, d, sq.defForCross[d]) {
			types[d] = pattern.None
		}
	}
	c.board.Set(row, col, game.None)
	return types
}

// isGenuineOpenThree reports whether, with Cross already placed at
// (row, col), at least one of direction dir's promotion squares (the
// defensive-move mask computed for the window before the move was placed)
// turns the three into an actual four-in-a-row that is not itself a
// forbidden move for Cross (original_source rules.cpp isForbidden's OPEN_3
// re-check: is_straight_four plus a recursive isForbidden).
func (c *Calculator) isGenuineOpenThree(row, col int, dir pattern.Direction, defense uint16) bool {
	step := pattern.Directions[dir]
	half := c.table.Mid
	for i := -half; i <= half; i++ {
		if defense&(1<<uint(i+half)) == 0 {
			continue
		}
		x, y := row+i*step.DR, col+i*step.DC
		if !c.board.InBounds(x, y) || c.board.At(x, y) != game.None {
			continue
		}
		if c.isStraightFour(x, y, dir) && !c.isForbiddenAt(x, y) {
			return true
		}
	}
	return false
}

// isStraightFour reports whether Cross, hypothetically placed at
// (row, col), is part of a run of four consecutive Cross stones somewhere
// within one window's radius along dir — the literal "XXXX" scan that
// distinguishes a real straight four from, say, a move that only completes
// an overline (original_source rules.cpp is_straight_four).
func (c *Calculator) isStraightFour(row, col int, dir pattern.Direction) bool {
	step := pattern.Directions[dir]
	half := c.table.Mid
	cells := make([]game.Sign, 2*half+1)
	for i := -half; i <= half; i++ {
		r, cc := row+i*step.DR, col+i*step.DC
		if r == row && cc == col {
			cells[i+half] = game.Cross
			continue
		}
		cells[i+half] = c.board.At(r, cc)
	}
	for start := 0; start+4 <= len(cells); start++ {
		all := true
		for k := 0; k < 4; k++ {
			if cells[start+k] != game.Cross {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// classifyWindow returns the pattern.Entry either colour would see playing
// at the (empty) square (row, col) along dir, read directly off the live
// board rather than the calculator's incremental per-square cache: the
// recursive forbidden-move re-check reasons about hypothetical board
// states (a Cross stone placed mid-check) the cache never materialises.
func (c *Calculator) classifyWindow(row, col int, dir pattern.Direction) pattern.Entry {
	step := pattern.Directions[dir]
	half := c.table.Mid
	window := make([]game.Sign, c.table.Len)
	for i := -half; i <= half; i++ {
		window[i+half] = c.board.At(row+i*step.DR, col+i*step.DC)
	}
	window[half] = game.None
	return c.table.Lookup(c.table.Encode(window))
}

// isForbiddenAt re-derives, directly off the live board, whether placing
// Cross at the (empty) square (row, col) would itself be a forbidden Renju
// move. It is the recursive half of isGenuineOpenThree: a promotion square
// only redeems an open three if playing there is not itself forbidden
// (original_source rules.cpp isForbidden).
func (c *Calculator) isForbiddenAt(row, col int) bool {
	var types [4]pattern.Type
	var defense [4]uint16
	for d := pattern.Direction(0); d < 4; d++ {
		entry := c.classifyWindow(row, col, d)
		types[d] = entry.ForCross
		defense[d] = entry.DefCross
	}

	open3 := 0
	for _, t := range types {
		if t == pattern.Open3 {
			open3++
		}
	}
	if open3 >= 2 {
		c.board.Set(row, col, game.Cross)
		for d := pattern.Direction(0); d < 4; d++ {
			if types[d] != pattern.Open3 {
				continue
			}
			if !c.isGenuineOpenThree(row, col, d, defense[d]) {
				types[d] = pattern.None
			}
		}
		c.board.Set(row, col, game.None)
	}

	threat := pattern.Aggregate(types, game.Renju)
	return threat == pattern.ThreatOverline || threat == pattern.ThreatFork4x4 || threat == pattern.ThreatFork3x3
}
