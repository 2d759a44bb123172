package mcts

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/chewxy/math32"
	"github.com/renjuzero/engine/calc"
	"github.com/renjuzero/engine/game"
	"github.com/renjuzero/engine/tss"
	"github.com/renjuzero/engine/tt"
)

/*
Here lies the majority of the MCTS search code, while node.go and tree.go
handle the data structure. Grounded on mcts/search.go's pipeline
(select/expand/simulate/backpropagate), generalized from notnil/chess to
game.Position/calc.Calculator, and extended per spec.md §4.9: before falling
back to the neural network's value head, expandAndSimulate first asks
tss.Solver for a cheap VCF proof. A proof found this way is recorded on
that node (Node.SetProven), which selection then uses to force or skip the
edge; proofs are not propagated to the node's ancestors.
*/

// Result is a NaN-tagged float32 used to signal "no result yet" without an
// extra bool return, matching search.go's Result type.
type Result float32

const noResultBits = 0x7FE00000

func noResult() Result { return Result(math32.Float32frombits(noResultBits)) }

func isNullResult(r Result) bool {
	return math32.Float32bits(float32(r)) == noResultBits
}

// searchState is one worker's view of an in-flight search: its own cloned
// position and pattern calculator (so concurrent workers never contend on
// the same Calculator mutation), and a private tss.Solver sharing only the
// read-mostly transposition table and Zobrist keys with its siblings.
type searchState struct {
	tree   *Tree
	pos    *game.Position
	calc   *calc.Calculator
	solver *tss.Solver

	depth, maxDepth int
}

// Search runs Config.NumSimulation playouts (bounded by Config.Timeout, if
// set) spread across runtime.NumCPU() workers, then returns the move with
// the most visits at the root, matching Search()'s general shape (spawn
// workers, run until budget/timeout, pick the most-robust child) but
// driven by an explicit simulation counter rather than an
// unconditional channel pump.
func (t *Tree) Search(pos *game.Position, c *calc.Calculator) game.Move {
	t.ensureRoot(pos, c)
	t.sampleRootNoise()

	budget := t.Config.NumSimulation
	if budget <= 0 {
		budget = 1
	}

	workers := runtime.NumCPU()
	if workers > budget {
		workers = budget
	}
	if workers < 1 {
		workers = 1
	}

	var iterations int32
	ctx := context.Background()
	var cancel context.CancelFunc
	if t.Config.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, t.Config.Timeout)
		defer cancel()
	}

	maxDepth := t.Config.MaxDepth
	if maxDepth <= 0 {
		maxDepth = pos.Config.Rows * pos.Config.Cols
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker := &searchState{
				tree:     t,
				maxDepth: maxDepth,
			}
			for {
				if ctx.Err() != nil {
					return
				}
				if atomic.AddInt32(&iterations, 1) > int32(budget) {
					return
				}
				worker.depth = 0
				worker.pos = pos.Clone()
				worker.calc = c.Clone()
				worker.solver = t.newSolver(pos)
				worker.pipeline(t.root)
			}
		}()
	}
	wg.Wait()

	return t.bestMove(pos)
}

// ensureRoot allocates the root node (if needed) and expands it once so it
// always has at least a prior distribution before the first selection.
func (t *Tree) ensureRoot(pos *game.Position, c *calc.Calculator) {
	if t.root.IsValid() {
		return
	}
	t.root = t.alloc()
	s := &searchState{tree: t, solver: t.newSolver(pos)}
	_, _ = s.expandAndSimulate(t.root, pos.Clone(), c.Clone())
}

// newSolver builds a tss.Solver sharing the tree's transposition table and
// the position's Zobrist keys, bounded by the tree's per-expansion node
// budget (spec.md §4.9's "per-task node budget derived from the global
// tuning parameter").
func (t *Tree) newSolver(pos *game.Position) *tss.Solver {
	s := tss.NewSolver(pos.Config, t.table, pos.Zobrist)
	if t.Config.TSSNodeBudget > 0 {
		s.MaxPositions = t.Config.TSSNodeBudget
	}
	return s
}

// tssDepth returns the configured TSS search depth, defaulting to a single
// static ply if unset.
func (t *Tree) tssDepth() int {
	if t.Config.TSSDepth > 0 {
		return t.Config.TSSDepth
	}
	return 1
}

// pipeline is the recursive select/expand/simulate/backpropagate step.
// Because of the recursion, the classic 4-phase pipeline is folded into:
// EXPAND+SIMULATE at the current node, then SELECT+RECURSE into a child,
// then BACKPROPAGATE the result on the way back up (grounded on
// search.go's pipeline, same re-ordering rationale).
func (s *searchState) pipeline(n Naughty) (retVal Result) {
	retVal = noResult()
	s.depth++
	defer func() { s.depth-- }()
	if s.depth > s.maxDepth {
		return
	}

	node := s.tree.NodeFromNaughty(n)
	if ended, outcome := s.pos.Ended(); ended {
		if outcome == game.Draw {
			node.Update(0)
			return 0
		}
		// the move that just ended the game was played by the side that is
		// no longer to move: a win for this node's mover and a loss for
		// s.pos.Turn().
		node.Update(1)
		return -1
	}

	if !node.HasChildren() {
		value, ok := s.expandAndSimulate(n, s.pos, s.calc)
		if ok {
			// value is from the side to move's perspective, the opposite of
			// this node's mover.
			node.Update(-value)
			return Result(value)
		}
		return
	}

	next := s.tree.selectorFor()(s.tree, n, s.tree.Config.PUCT)
	child := s.tree.NodeFromNaughty(next)
	move := child.Move()
	if !s.pos.Check(move) || s.calc.IsForbidden(move.Sign(), move.Row(), move.Col()) {
		child.Prune()
		return
	}

	s.pos.Apply(move)
	s.calc.AddMove(move)
	retVal = s.pipeline(next)
	s.calc.UndoMove(move)
	s.pos.UndoLastMove()

	if !isNullResult(retVal) {
		node.Update(float32(retVal))
	}
	return -retVal
}

func provenToValue(pv tt.ProvenValue) float32 {
	switch pv {
	case tt.Win:
		return 1
	case tt.Loss:
		return -1
	default:
		return 0
	}
}

// expandAndSimulate is the EXPAND+SIMULATE phase: it first tries a cheap
// threat-space proof (spec.md §4.9's "solve before search" ordering) and,
// failing that, asks the neural network for a policy/value pair and
// allocates one child per legal move.
func (s *searchState) expandAndSimulate(n Naughty, pos *game.Position, c *calc.Calculator) (value float32, ok bool) {
	node := s.tree.NodeFromNaughty(n)

	var forcing tss.ActionList
	proven := false
	if s.solver != nil {
		depth := s.tree.tssDepth()
		mode := tss.Static
		if depth > 1 {
			mode = tss.Recursive
		}
		score := s.solver.Solve(c, pos.Hash(), pos.Turn(), mode, depth)
		if score.IsProven() {
			proven = true
			node.SetProven(score.ProvenValue())
			value = provenToValue(score.ProvenValue())
			if score.ProvenValue() == tt.Win {
				tss.GenerateForcing(c, pos.Turn(), &forcing)
			}
		}
	}

	policy, v := s.tree.nn.Infer(pos)
	if !proven {
		value = v
	}
	cfg := pos.Config
	board := pos.Board()

	forcedBonus := make(map[game.Move]bool, forcing.Len())
	for i := 0; i < forcing.Len(); i++ {
		if a := forcing.At(i); a.Wins {
			forcedBonus[a.Move] = true
		}
	}

	// When the opponent can complete a five or make an open four next move
	// (tss.MustDefend), expansion must not wander: the only moves worth a
	// child are the ones that answer that threat (spec.md must_defend),
	// unless the side to move has a proven winning five of its own.
	mustDefend := len(forcedBonus) == 0 && tss.MustDefend(c, pos.Turn())
	var defensive map[game.Move]bool
	if mustDefend {
		var squares tss.ActionList
		tss.DefensiveSquares(c, pos.Turn(), &squares)
		defensive = make(map[game.Move]bool, squares.Len())
		for i := 0; i < squares.Len(); i++ {
			defensive[squares.At(i).Move] = true
		}
	}

	type cand struct {
		move  game.Move
		prior float32
	}
	var legal []cand
	var sum float32
	for row := 0; row < cfg.Rows; row++ {
		for col := 0; col < cfg.Cols; col++ {
			if board.At(row, col) != game.None {
				continue
			}
			move := game.NewMove(row, col, pos.Turn())
			if mustDefend && !defensive[move] {
				continue
			}
			if c.IsForbidden(move.Sign(), row, col) {
				continue
			}
			p := policy[cfg.IndexOf(move)]
			if forcedBonus[move] {
				// a move the threat-space solver proved wins outright is
				// given an overwhelming prior so PUCT converges onto it
				// without needing many simulations to discover it blindly.
				p += 1.0
			}
			legal = append(legal, cand{move, p})
			sum += p
		}
	}
	if len(legal) == 0 {
		node.SetHasChild(true)
		return value, true
	}
	if sum > math32.SmallestNonzeroFloat32 {
		for i := range legal {
			legal[i].prior /= sum
		}
	} else {
		uniform := 1 / float32(len(legal))
		for i := range legal {
			legal[i].prior = uniform
		}
	}

	for _, l := range legal {
		child := s.tree.New(l.move, l.prior)
		s.tree.AddChild(n, child)
	}
	node.SetHasChild(true)
	return value, true
}

// bestMove returns the root's move with the most visits, or, below
// Config.RandomCount, a visit-proportional random sample (spec.md §4.7's
// opening-move exploration policy), matching bestMove's use of
// randomizeChildren/sampleChild before falling back to the top node.
func (t *Tree) bestMove(pos *game.Position) game.Move {
	children := append([]Naughty(nil), t.Children(t.root)...)
	if len(children) == 0 {
		policy, _ := t.nn.Infer(pos)
		idx := argmax(policy)
		return pos.Config.MoveFromIndex(idx, pos.Turn())
	}

	sort.Slice(children, func(i, j int) bool {
		return t.NodeFromNaughty(children[i]).Visits() > t.NodeFromNaughty(children[j]).Visits()
	})

	if pos.MoveNumber() < t.Config.RandomCount && t.Config.RandomTemperature > 0 {
		// sampleChild indexes the tree's own child order, not the sorted copy
		kids := t.Children(t.root)
		if idx := t.sampleChild(); idx >= 0 && idx < len(kids) {
			return t.NodeFromNaughty(kids[idx]).Move()
		}
	}
	return t.NodeFromNaughty(children[0]).Move()
}

// AdvanceRoot moves the root forward to the child that played `move`,
// freeing every sibling subtree so their statistics are discarded but the
// surviving line keeps its accumulated visits (grounded on the
// updateRoot/cleanup pair). It returns false, leaving the tree untouched,
// if no such child exists, so the caller can fall back to Tree.Reset.
func (t *Tree) AdvanceRoot(move game.Move) bool {
	if !t.root.IsValid() {
		return false
	}
	next := t.findChild(t.root, move)
	if next == nilNode {
		return false
	}
	oldRoot := t.root
	t.cleanup(oldRoot, next)
	t.Lock()
	t.root = next
	t.Unlock()
	t.free(oldRoot)
	return true
}
