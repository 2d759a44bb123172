package engine

import (
	"bytes"
	"context"
	"log"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/renjuzero/engine/calc"
	"github.com/renjuzero/engine/game"
	"github.com/renjuzero/engine/nn"
	"github.com/renjuzero/engine/search"
	"github.com/renjuzero/engine/tt"
)

// Goal is the game-phase the controller searches toward, spec.md §6's
// START_SEARCH {bestmove, swap2, ponder}. The protocol collaborator decides
// which goal a given command maps to; the controller only needs to know how
// much time to allocate and whether to stop on its own.
type Goal int

const (
	// BestMove searches for Options.MoveTime then returns the best move.
	BestMove Goal = iota
	// Ponder searches until StopSearch is called, with no time bound.
	Ponder
	// Swap2 is a best-move search flagged separately so a driver can apply
	// opening-specific move selection on top of the returned policy; the
	// swap2 protocol itself is the protocol package's concern (spec.md §6).
	Swap2
)

// Summary is the information a driver needs after a search: the move to
// play, its visit count (confidence), and the full root policy, matching
// the fields spec.md §6's getSummary exposes (root Edge list collapsed to
// what a UCI/Gomocup-style driver actually reports).
type Summary struct {
	Move    game.Move
	Visits  uint32
	Policy  []float32
}

// Controller owns the shared resources of one search session — the
// transposition table, the network/evaluator, and the live position — and
// exposes the setPosition/startSearch/stopSearch/isSearchFinished/
// getSummary contract of spec.md §6, matching the role the agogo.AZ/Arena
// pair played for training, now repurposed for single-move analysis.
type Controller struct {
	opts Options
	table *tt.Table
	net   *nn.Network
	orch  *search.Orchestrator

	logger *log.Logger
	buf    bytes.Buffer

	mu       sync.Mutex
	pos      *game.Position
	calc     *calc.Calculator
	session  *search.Session
	zobrist  *game.Zobrist
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
	lastMove game.Move
	panics   error // accumulated via go-multierror across search goroutines
}

// New builds a Controller from validated options.
func New(opts Options) (*Controller, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	net, err := nn.New(opts.NNConf)
	if err != nil {
		return nil, errors.WithMessage(err, "engine: building network")
	}
	tableWays, tableSize := opts.TableWays, opts.TableSize
	if tableWays < 1 {
		tableWays = 4
	}
	if tableSize < 1 {
		tableSize = 1 << 16
	}
	table := tt.NewTable(tableWays, tableSize)

	c := &Controller{
		opts:  opts,
		table: table,
		net:   net,
		orch:  search.New(table, net, opts.MCTS),
	}
	c.logger = log.New(&c.buf, "", log.Ltime)
	if err := c.SetPosition(nil); err != nil {
		return nil, err
	}
	return c, nil
}

// SetNetwork swaps in a network trained elsewhere (e.g. by Trainer), for
// loading a checkpoint into a live Controller, matching AZ.Load replacing
// CurrentAgent.NN in place.
func (c *Controller) SetNetwork(net *nn.Network) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return errors.New("engine: cannot swap network while a search is running")
	}
	c.net = net
	c.orch = search.New(c.table, net, c.opts.MCTS)
	c.session = c.orch.NewSession(c.pos, c.calc)
	return nil
}

// SetPosition resets the controller to a fresh position under Options.Game
// and replays moves in order, matching spec.md §6's
// "setPosition(moves | board+signToMove)".
func (c *Controller) SetPosition(moves []game.Move) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return errors.New("engine: cannot set position while a search is running")
	}
	c.zobrist = game.NewZobrist(c.opts.Game.Rows, c.opts.Game.Cols)
	c.pos = game.NewPosition(c.opts.Game, c.zobrist)
	c.calc = calc.NewCalculator(c.opts.Game)
	for _, m := range moves {
		if !c.pos.Check(m) {
			return errors.Errorf("engine: illegal move %v in setPosition", m)
		}
		c.pos.Apply(m)
		c.calc.AddMove(m)
	}
	c.session = c.orch.NewSession(c.pos, c.calc)
	c.logger.Printf("position set, %d moves replayed", len(moves))
	return nil
}

// StartSearch begins an asynchronous search toward goal and returns
// immediately; call StopSearch or wait on IsSearchFinished before reading
// GetSummary (spec.md §6's startSearch/isSearchFinished pair).
func (c *Controller) StartSearch(goal Goal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return errors.New("engine: search already running")
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.running = true
	c.done = make(chan struct{})

	session := c.session
	moveTime := c.opts.MoveTime
	logger := c.logger

	go func() {
		defer close(c.done)
		defer func() {
			if r := recover(); r != nil {
				c.mu.Lock()
				c.panics = multierror.Append(c.panics, errors.Errorf("engine: search worker panicked: %v", r))
				c.running = false
				c.mu.Unlock()
			}
		}()
		var move game.Move
		switch goal {
		case Ponder:
			for ctx.Err() == nil {
				move = session.Run(search.StopCondition{MaxSimulations: 512})
			}
		default:
			move = session.Run(search.StopCondition{MaxTime: moveTime})
		}
		c.mu.Lock()
		c.lastMove = move
		c.running = false
		c.mu.Unlock()
		logger.Printf("search finished, best move %v", move)
	}()
	return nil
}

// StopSearch cancels a running Ponder search and waits for the search
// goroutine to finish. A BestMove or Swap2 search does not watch the
// cancellation and runs until its MoveTime budget is spent, so StopSearch
// waits for that. It always returns nil; panics recovered from the search
// goroutine are reported by Close.
func (c *Controller) StopSearch() error {
	c.mu.Lock()
	cancel := c.cancel
	done := c.done
	c.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	if done != nil {
		<-done
	}
	return nil
}

// IsSearchFinished reports whether the last StartSearch call has returned.
func (c *Controller) IsSearchFinished() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.running
}

// GetSummary returns the move chosen by the last completed search, plus the
// root's current visit count and policy, safe to call both mid-search (for
// info output) and after completion.
func (c *Controller) GetSummary() (Summary, error) {
	c.mu.Lock()
	session := c.session
	lastMove := c.lastMove
	c.mu.Unlock()

	policy, err := session.Tree().Policies()
	if err != nil {
		return Summary{Move: lastMove}, err
	}
	root := session.Tree().NodeFromNaughty(session.Tree().Root())
	return Summary{Move: lastMove, Visits: root.Visits(), Policy: policy}, nil
}

// Log returns the controller's diagnostic log buffer as a string, matching
// Arena.Log.
func (c *Controller) Log() string { return c.buf.String() }

// Close releases the controller's resources and reports any panic recovered
// from a search worker since the last call, matching Agent.Close's
// aggregation of per-inferer shutdown errors with go-multierror (agent.go),
// generalized from closing inference channels to surfacing worker panics
// recovered at the search-goroutine boundary (spec.md §7).
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	errs := c.panics
	c.panics = nil
	if errs == nil {
		return nil
	}
	return errs
}
