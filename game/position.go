package game

// Position is a mutable game state: a board, the rule Config it plays under,
// a Zobrist key maintained incrementally, and the move history needed to
// undo/redo moves cheaply, the way chess.Chess tracked a move history
// pointer (game/chess.go in the original) instead of re-deriving state
// from scratch on every undo.
type Position struct {
	Config Config
	Zobrist *Zobrist

	board   Board
	hash    Hash128
	history []Move
	ptr     int // index one past the last applied move
}

// NewPosition creates an empty position for the given config, sharing the
// Zobrist table `z` (which the caller builds once per board shape and
// reuses across positions and search threads).
func NewPosition(cfg Config, z *Zobrist) *Position {
	b := NewBoard(cfg.Rows, cfg.Cols)
	return &Position{
		Config:  cfg,
		Zobrist: z,
		board:   b,
		hash:    z.Hash(b, Cross),
		history: make([]Move, 0, cfg.Rows*cfg.Cols),
	}
}

// Board returns the current board.
func (p *Position) Board() Board { return p.board }

// Hash returns the current 128-bit Zobrist hash, including side to move.
func (p *Position) Hash() Hash128 { return p.hash }

// Turn returns the sign to move next.
func (p *Position) Turn() Sign { return p.board.SignToMove() }

// MoveNumber returns the count of moves applied so far.
func (p *Position) MoveNumber() int { return p.ptr }

// LastMove returns the most recently applied move, or NullMove at the start.
func (p *Position) LastMove() Move {
	if p.ptr == 0 {
		return NullMove
	}
	return p.history[p.ptr-1]
}

// Check reports whether placing move is legal: in bounds, the square is
// empty, the sign matches whose turn it is, and (for Renju) the move is not
// forbidden. Forbidden-move checking needs the pattern calculator and is
// layered on by calc.Calculator.IsForbidden; Check here only verifies the
// structural legality that Position can decide on its own.
func (p *Position) Check(move Move) bool {
	if !p.board.InBounds(move.Row(), move.Col()) {
		return false
	}
	if p.board.At(move.Row(), move.Col()) != None {
		return false
	}
	return move.Sign() == p.Turn()
}

// Apply plays move, truncating any redo history beyond the current pointer
// (mirrors Chess.Apply's semantics of overwriting the tail of `history`
// once new moves diverge from a previously explored line).
func (p *Position) Apply(move Move) {
	p.board.Set(move.Row(), move.Col(), move.Sign())
	p.hash = p.Zobrist.UpdateHash(p.hash, move)
	if p.ptr < len(p.history) {
		p.history = p.history[:p.ptr]
	}
	p.history = append(p.history, move)
	p.ptr++
}

// UndoLastMove removes the most recent move and restores the board/hash.
func (p *Position) UndoLastMove() {
	if p.ptr == 0 {
		return
	}
	p.ptr--
	move := p.history[p.ptr]
	p.board.Set(move.Row(), move.Col(), None)
	p.hash = p.Zobrist.UpdateHash(p.hash, move)
}

// Fwd re-applies the move at the current pointer without touching the redo
// tail, used when replaying a previously undone line (mirrors Chess.Fwd).
func (p *Position) Fwd() {
	if p.ptr >= len(p.history) {
		return
	}
	move := p.history[p.ptr]
	p.board.Set(move.Row(), move.Col(), move.Sign())
	p.hash = p.Zobrist.UpdateHash(p.hash, move)
	p.ptr++
}

// Reset empties the board and history.
func (p *Position) Reset() {
	p.board = NewBoard(p.Config.Rows, p.Config.Cols)
	p.hash = p.Zobrist.Hash(p.board, Cross)
	p.history = p.history[:0]
	p.ptr = 0
}

// Clone returns an independent deep copy sharing the same Zobrist table.
func (p *Position) Clone() *Position {
	history := make([]Move, len(p.history))
	copy(history, p.history)
	return &Position{
		Config:  p.Config,
		Zobrist: p.Zobrist,
		board:   p.board.Clone(),
		hash:    p.hash,
		history: history,
		ptr:     p.ptr,
	}
}

// Eq compares boards and side to move, ignoring history shape (two
// positions reached via different move orders are equal if the board is).
func (p *Position) Eq(other *Position) bool {
	return p.board.Eq(other.board) && p.Turn() == other.Turn()
}

// Ended reports whether the game has finished, and per which outcome.
func (p *Position) Ended() (bool, Outcome) {
	outcome := GetOutcome(p.Config, p.board, p.LastMove())
	return outcome != Unknown, outcome
}
