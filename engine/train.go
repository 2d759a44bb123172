package engine

import (
	"encoding/gob"
	"encoding/json"
	"io/ioutil"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/renjuzero/engine/calc"
	"github.com/renjuzero/engine/game"
	"github.com/renjuzero/engine/nn"
	"github.com/renjuzero/engine/search"
	"github.com/renjuzero/engine/tt"
)

const (
	metaFile  = "meta.json"
	modelFile = "checkpoint.model"
)

// Example is one self-play training sample: the encoded board, the root's
// visit-count policy, and the game's eventual outcome from that position's
// side to move, matching agogo.Example's shape (datatypes.go).
type Example struct {
	Board  []float32
	Policy []float32
	Value  float32
}

// Trainer runs self-play games and trains a Network from the resulting
// examples, grounded on agogo.Arena.Play (the self-play loop) and
// agogo.AZ.LearnAZ/SaveAZ/Load (the training/persistence loop), generalized
// from a single chess game played between two Agents to one engine playing
// itself over a gomoku-family position.
type Trainer struct {
	opts  Options
	table *tt.Table
	net   *nn.Network
	orch  *search.Orchestrator
}

// NewTrainer builds a Trainer from validated options.
func NewTrainer(opts Options) (*Trainer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	net, err := nn.New(opts.NNConf)
	if err != nil {
		return nil, errors.WithMessage(err, "engine: building network")
	}
	table := tt.NewTable(opts.TableWays, opts.TableSize)
	return &Trainer{
		opts:  opts,
		table: table,
		net:   net,
		orch:  search.New(table, net, opts.MCTS),
	}, nil
}

// Network exposes the trainer's network, e.g. to hand to a Controller once
// training has converged.
func (t *Trainer) Network() *nn.Network { return t.net }

// SelfPlay plays one game of the engine against itself, recording an
// Example per move. Arena.Play stored the moving player's colour as a
// stand-in Value and backfilled it to +-1/0 once the winner was known
// (arena.go); this does the same with the side to move's Sign.
func (t *Trainer) SelfPlay(simsPerMove int) ([]Example, error) {
	z := game.NewZobrist(t.opts.Game.Rows, t.opts.Game.Cols)
	pos := game.NewPosition(t.opts.Game, z)
	c := calc.NewCalculator(t.opts.Game)
	session := t.orch.NewSession(pos, c)

	var recorded []pendingExample

	for {
		ended, outcome := pos.Ended()
		if ended {
			return backfill(recorded, outcome), nil
		}
		move := session.Run(search.StopCondition{MaxSimulations: simsPerMove})
		if move.IsNull() {
			return backfill(recorded, game.Draw), nil
		}
		policy, err := session.Tree().Policies()
		if err != nil {
			return nil, err
		}
		recorded = append(recorded, pendingExample{
			board:  nn.Encode(pos, t.opts.NNConf),
			policy: policy,
			mover:  pos.Turn(),
		})
		session.AdvanceRoot(move)
	}
}

// pendingExample is one move's encoded board and search policy, recorded
// before the game's outcome is known; backfill fills in its Value once the
// winner is decided.
type pendingExample struct {
	board  []float32
	policy []float32
	mover  game.Sign
}

func backfill(recorded []pendingExample, outcome game.Outcome) []Example {
	examples := make([]Example, len(recorded))
	winner := outcome.WinnerSign()
	for i, r := range recorded {
		var v float32
		switch {
		case winner == game.None:
			v = 0
		case r.mover == winner:
			v = 1
		default:
			v = -1
		}
		examples[i] = Example{Board: r.board, Policy: r.policy, Value: v}
	}
	return examples
}

// Train runs one epoch of self-play-then-train, matching agogo.AZ.LearnAZ's
// outer loop shape (self-play for `episodes` games, then a supervised pass
// over however many examples resulted).
func (t *Trainer) Train(episodes, simsPerMove, nniters int, lr float32) error {
	var examples []Example
	for e := 0; e < episodes; e++ {
		exs, err := t.SelfPlay(simsPerMove)
		if err != nil {
			return errors.WithMessage(err, "engine: self-play episode failed")
		}
		examples = append(examples, exs...)
	}
	if len(examples) == 0 {
		return errors.New("engine: no training examples produced")
	}
	shuffle(examples)

	exampleSize := t.opts.NNConf.Features * t.opts.NNConf.Height * t.opts.NNConf.Width
	boards := make([]float32, 0, len(examples)*exampleSize)
	policies := make([]float32, 0, len(examples)*t.opts.NNConf.ActionSpace)
	values := make([]float32, 0, len(examples))
	for _, ex := range examples {
		boards = append(boards, ex.Board...)
		policies = append(policies, ex.Policy...)
		values = append(values, ex.Value)
	}

	batch, err := nn.NewBatch(t.opts.NNConf, boards, policies, values)
	if err != nil {
		return err
	}
	return nn.Train(t.net, batch, lr, nniters)
}

func shuffle(examples []Example) {
	r := rand.New(rand.NewSource(1))
	for i := range examples {
		j := r.Intn(i + 1)
		examples[i], examples[j] = examples[j], examples[i]
	}
}

// Save writes the trainer's options and network to dirName, matching
// agogo.AZ.SaveAZ's meta.json + gob-encoded checkpoint pair.
func (t *Trainer) Save(dirName string) error {
	if err := os.MkdirAll(dirName, 0755); err != nil {
		return errors.WithStack(err)
	}
	metaBytes, err := json.MarshalIndent(t.opts, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	if err := ioutil.WriteFile(filepath.Join(dirName, metaFile), metaBytes, 0644); err != nil {
		return errors.WithStack(err)
	}

	f, err := os.OpenFile(filepath.Join(dirName, modelFile), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()
	return errors.WithStack(gob.NewEncoder(f).Encode(t.net))
}

// LoadTrainer reads a checkpoint previously written by Trainer.Save.
func LoadTrainer(dirName string) (*Trainer, error) {
	metaBytes, err := ioutil.ReadFile(filepath.Join(dirName, metaFile))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var opts Options
	if err := json.Unmarshal(metaBytes, &opts); err != nil {
		return nil, errors.WithStack(err)
	}
	trainer, err := NewTrainer(opts)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(dirName, modelFile))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()
	if err := gob.NewDecoder(f).Decode(trainer.net); err != nil {
		return nil, errors.WithStack(err)
	}
	return trainer, nil
}
