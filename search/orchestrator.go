// Package search wires the pattern calculator, threat-space solver, MCTS
// tree and NN evaluator into one pipeline driven by stop conditions
// (grounded on agogo.Arena.Play's loop, generalized from a single
// self-play game to spec.md §4.9/§4.10's orchestrator-plus-stop-
// conditions design). Unlike the original's two-buffer async pipeline,
// mcts.Tree already fuses select/expand/backup per worker goroutine; this
// package's job is choosing how much of that work to do and when to stop,
// not re-deriving the pipeline stages mcts already owns.
package search

import (
	"time"

	"github.com/renjuzero/engine/calc"
	"github.com/renjuzero/engine/game"
	"github.com/renjuzero/engine/mcts"
	"github.com/renjuzero/engine/tt"
)

// StopCondition bounds one Orchestrator.Run call, matching spec.md §4.10's
// list: simulation count, wall clock, node-count/memory budget, and
// maximum depth (checked indirectly through mcts.Config.MaxDepth).
type StopCondition struct {
	MaxSimulations int
	MaxNodes       int
	MaxTime        time.Duration
}

// IsZero reports whether no bound was set. Run falls back to a single
// simulation chunk's worth of search whenever MaxSimulations and MaxTime
// are both unset, so a condition with only MaxNodes also stops there.
func (s StopCondition) IsZero() bool {
	return s.MaxSimulations == 0 && s.MaxNodes == 0 && s.MaxTime == 0
}

// chunkSize is how many simulations Run asks mcts.Tree to do before
// re-checking stop conditions, mirroring the orchestrator's "buffer full"
// batch boundary without reimplementing mcts's internal worker pool.
const chunkSize = 64

// Orchestrator owns the shared transposition table and NN evaluator for one
// search session and drives one mcts.Tree to a move, matching the role of
// Agent (NN + MCTS + inference channel) generalized away from a single
// chess game and a fixed channel pool.
type Orchestrator struct {
	Table *tt.Table
	NN    mcts.Inferencer
	Conf  mcts.Config
}

// New builds an Orchestrator sharing table and nn across however many
// Sessions the caller starts (the table is lock-free, per spec.md §5, so
// many concurrent searches over different positions may share it).
func New(table *tt.Table, nn mcts.Inferencer, conf mcts.Config) *Orchestrator {
	return &Orchestrator{Table: table, NN: nn, Conf: conf}
}

// Session is one search in progress over a single position, holding the
// mcts.Tree and the caller's live pattern calculator.
type Session struct {
	tree *mcts.Tree
	pos  *game.Position
	calc *calc.Calculator
}

// NewSession starts a fresh tree rooted at pos.
func (o *Orchestrator) NewSession(pos *game.Position, c *calc.Calculator) *Session {
	return &Session{tree: mcts.New(pos, o.Conf, o.Table, o.NN), pos: pos, calc: c}
}

// Tree exposes the underlying mcts.Tree, e.g. for Policies()/DumpDOT.
func (s *Session) Tree() *mcts.Tree { return s.tree }

// Run searches until stop fires (in whichever dimension trips first) and
// returns the best move found so far, implementing the stop-condition list
// of spec.md §4.10: "tree proven at the root" and "exactly one legal move"
// short-circuit immediately; simulation/time budgets are checked between
// chunkSize-sized bursts of simulation, mirroring the buffer-boundary check
// the original performs between backup and the next select.
func (s *Session) Run(stop StopCondition) game.Move {
	deadline := time.Time{}
	if stop.MaxTime > 0 {
		deadline = time.Now().Add(stop.MaxTime)
	}

	total := stop.MaxSimulations
	if total <= 0 {
		total = chunkSize
		if stop.MaxTime > 0 {
			total = int(^uint(0) >> 1) // only the clock bounds this search
		}
	}

	conf := s.tree.Config
	done := 0
	var move game.Move
	for done < total {
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}
		remaining := total - done
		burst := chunkSize
		if burst > remaining {
			burst = remaining
		}
		if !deadline.IsZero() {
			conf.Timeout = time.Until(deadline)
		}
		conf.NumSimulation = burst
		s.tree.Config = conf
		move = s.tree.Search(s.pos, s.calc)
		done += burst

		if stop.MaxNodes > 0 && s.tree.Nodes() >= stop.MaxNodes {
			break
		}
		if root := s.tree.NodeFromNaughty(s.tree.Root()); root.Proven() == tt.Win || root.Proven() == tt.Loss {
			break
		}
		if len(s.tree.Children(s.tree.Root())) <= 1 {
			break
		}
	}
	return move
}

// AdvanceRoot plays move on both the session's tree and position/calculator,
// reusing the surviving subtree (grounded on Arena.Play's advancing game
// state after each search, generalized to keep mcts statistics instead of
// discarding them).
func (s *Session) AdvanceRoot(move game.Move) {
	if !s.tree.AdvanceRoot(move) {
		s.tree.Reset()
	}
	s.pos.Apply(move)
	s.calc.AddMove(move)
}
