package tss

import (
	"github.com/renjuzero/engine/calc"
	"github.com/renjuzero/engine/game"
	"github.com/renjuzero/engine/pattern"
	"github.com/renjuzero/engine/tt"
)

// Mode selects how much work the solver does before giving up with an
// unproven result (spec.md TssMode: BASIC/STATIC/RECURSIVE).
type Mode int

const (
	// Basic only checks whether the position is already a terminal state.
	Basic Mode = iota
	// Static runs one ply of forcing-move generation without recursing.
	Static
	// Recursive runs the full iterative-deepening VCF/VCT search.
	Recursive
)

// Solver proves wins and losses within the threat space: sequences of
// four-threats (VCF) and, when widened, open-three threats (VCT), rather
// than searching the whole move tree (grounded on ThreatSpaceSearch.hpp).
type Solver struct {
	Config       game.Config
	MaxPositions int

	zobrist          *game.Zobrist
	stack            ActionStack
	table            *tt.Table
	positionsVisited int
}

// NewSolver builds a solver sharing `table` for transposition lookups and
// `zobrist` for incremental hash maintenance across calls (callers
// typically share both across the whole search tree).
func NewSolver(cfg game.Config, table *tt.Table, zobrist *game.Zobrist) *Solver {
	return &Solver{Config: cfg, MaxPositions: 100000, table: table, zobrist: zobrist}
}

// Solve attempts to prove the outcome of `c`'s current position for `toMove`
// to depth `maxDepth` plies, under `mode`. It returns an UNKNOWN score if
// neither a win nor a loss could be proven within the position or depth
// budget. Under Recursive, depth is walked up one ply at a time: each
// iteration shares the transposition table with the last, so the previous
// iteration's best move is already sitting at the front of the next one's
// action list by the time recursiveSolve probes the hash (spec.md §4.6
// "iterative-deepening alpha-beta").
func (s *Solver) Solve(c *calc.Calculator, hash game.Hash128, toMove game.Sign, mode Mode, maxDepth int) tt.Score {
	s.positionsVisited = 0
	if mode == Basic {
		return s.evaluateTerminal(c, toMove)
	}
	if mode == Static {
		return s.recursiveSolve(c, hash, toMove, 1, tt.MinusInfinity(), tt.PlusInfinity())
	}

	score := tt.New(tt.Unknown, 0)
	for depth := 1; depth <= maxDepth; depth++ {
		score = s.recursiveSolve(c, hash, toMove, depth, tt.MinusInfinity(), tt.PlusInfinity())
		if score.IsProven() || s.positionsVisited > s.MaxPositions {
			break
		}
	}
	return score
}

// evaluateTerminal checks only whether toMove already has a winning move
// available or is already lost to an unstoppable threat, without recursing.
func (s *Solver) evaluateTerminal(c *calc.Calculator, toMove game.Sign) tt.Score {
	if len(c.ThreatHistogram(toMove).Get(pattern.ThreatFive)) > 0 {
		return tt.WinIn(1)
	}
	if len(c.ThreatHistogram(game.Invert(toMove)).Get(pattern.ThreatFive)) > 1 {
		// the opponent threatens two fives at once: unstoppable.
		return tt.LossIn(1)
	}
	return tt.New(tt.Unknown, 0)
}

// evaluate is the depth-0 static leaf score (spec.md §4.6 step 3): a
// pattern-feature linear combination, weighting toMove's threats by
// threatScore and subtracting the opponent's, the same ordering weights
// GenerateForcing already uses to rank candidate moves.
func evaluate(c *calc.Calculator, toMove game.Sign) tt.Score {
	return tt.FromEval(threatBalance(c, toMove) - threatBalance(c, game.Invert(toMove)))
}

func threatBalance(c *calc.Calculator, sign game.Sign) int {
	hist := c.ThreatHistogram(sign)
	total := 0
	for _, t := range []pattern.Threat{
		pattern.ThreatFive, pattern.ThreatOpen4, pattern.ThreatFork4x4,
		pattern.ThreatFork4x3, pattern.ThreatHalfOpen4, pattern.ThreatFork3x3,
		pattern.ThreatOpen3, pattern.ThreatHalfOpen3,
	} {
		total += threatScore(t) * len(hist.Get(t))
	}
	return total
}

// recursiveSolve is the alpha-beta VCF/VCT search: toMove must either play a
// move that wins outright, or a forcing four/open-three move that keeps the
// initiative, or it gives up the position as unproven. When toMove's threat
// leaves the opponent a single square that blocks a five, that square is
// the opponent's only reply; otherwise the opponent searches its own threes
// and fours the same way.
func (s *Solver) recursiveSolve(c *calc.Calculator, hash game.Hash128, toMove game.Sign, depthRemaining int, alpha, beta tt.Score) tt.Score {
	s.positionsVisited++
	if s.positionsVisited > s.MaxPositions || depthRemaining <= 0 {
		return evaluate(c, toMove)
	}

	cached := s.table.Seek(hash)
	if cached.Bound == tt.BoundExact && (cached.Score.IsProven() || cached.Depth >= depthRemaining) {
		// a proven score holds at any depth; a merely-evaluated exact score
		// only cuts if it was computed searching at least as deep as this
		// call would (spec.md §4.6 step 1, "a depth->= d bounded score").
		return cached.Score
	}

	if len(c.ThreatHistogram(toMove).Get(pattern.ThreatFive)) > 0 {
		return tt.WinIn(1)
	}

	defend := ActionList{}
	DefendingMoves(c, toMove, &defend)
	if defend.Len() > 1 {
		// the opponent threatens two fives at once: unstoppable.
		return tt.LossIn(1)
	}

	actions := ActionList{}
	if defend.Len() == 1 {
		actions.Add(defend.At(0))
	} else {
		GenerateThreesAndFours(c, toMove, &actions)
		if cached.Bound != tt.BoundNone && !cached.BestMove.IsNull() {
			actions.MoveToFront(cached.BestMove)
		}
	}

	best := tt.MinusInfinity()
	var bestMove game.Move
	for i := 0; i < actions.Len(); i++ {
		action := actions.At(i)
		move := action.Move
		if c.IsForbidden(move.Sign(), move.Row(), move.Col()) {
			continue
		}

		var childScore tt.Score
		if action.Wins {
			// drawn from the attacker's five bucket: playing it wins outright.
			childScore = tt.WinIn(1)
		} else {
			c.AddMove(move)
			newHash := s.zobrist.UpdateHash(hash, move)
			opponentScore := s.recursiveSolve(c, newHash, game.Invert(toMove), depthRemaining-1, tt.InvertUp(beta), tt.InvertUp(alpha))
			childScore = tt.InvertUp(opponentScore)
			c.UndoMove(move)
		}

		if childScore.Raw() > best.Raw() {
			best = childScore
			bestMove = move
		}
		if best.Raw() >= beta.Raw() {
			break
		}
		if best.Raw() > alpha.Raw() {
			alpha = best
		}
	}

	if actions.Len() == 0 {
		best = tt.New(tt.Unknown, 0)
	}

	bound := tt.BoundExact
	if best.Raw() <= alpha.Raw() {
		bound = tt.BoundUpper
	} else if best.Raw() >= beta.Raw() {
		bound = tt.BoundLower
	}
	s.table.Insert(hash, tt.Data{Bound: bound, Depth: depthRemaining, Score: best, BestMove: bestMove})
	return best
}
