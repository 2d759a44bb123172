// Package engine is the top-level controller: it owns the worker pool, the
// shared transposition table and NN evaluator, and the game-phase goals a
// driver selects (best move, swap2 opening, pondering), matching spec.md
// §4.10's "controller above the thread set" (grounded on agogo.AZ/Arena,
// generalized from self-play training to live search).
package engine

import (
	"encoding/json"
	"io/ioutil"
	"time"

	"github.com/pkg/errors"
	"github.com/renjuzero/engine/game"
	"github.com/renjuzero/engine/mcts"
	"github.com/renjuzero/engine/nn"
)

// Options configures a Controller, mirroring the JSON-serializable shape of
// agogo.MetaData (NNConf + MCTSConf) plus the knobs spec.md §4.10/§6
// assigns to the controller rather than the tree: worker count and the
// game-phase time allocation.
type Options struct {
	Game    game.Config `json:"game"`
	NNConf  nn.Config   `json:"nn_conf"`
	MCTS    mcts.Config `json:"mcts_conf"`
	Workers int         `json:"workers"`

	MoveTime  time.Duration `json:"move_time"`
	MaxDepth  int           `json:"max_depth"`
	TableWays int           `json:"table_ways"`
	TableSize int           `json:"table_size"`
}

// DefaultOptions returns sane defaults for an m x n board under rule r.
func DefaultOptions(rule game.Rule, rows, cols int) Options {
	cfg := game.Config{Rule: rule, Rows: rows, Cols: cols}
	return Options{
		Game:      cfg,
		NNConf:    nn.DefaultConf(rows, cols, cfg.ActionSpace()),
		MCTS:      mcts.DefaultConfig(),
		Workers:   1,
		MoveTime:  5 * time.Second,
		TableWays: 4,
		TableSize: 1 << 20,
	}
}

// Validate checks the structural invariants Controller relies on.
func (o Options) Validate() error {
	if err := o.Game.Validate(); err != nil {
		return errors.WithMessage(err, "engine: invalid game config")
	}
	if !o.NNConf.IsValid() {
		return errors.New("engine: invalid nn config")
	}
	if !o.MCTS.IsValid() {
		return errors.New("engine: invalid mcts config")
	}
	if o.Workers < 1 {
		return errors.New("engine: workers must be >= 1")
	}
	return nil
}

// SaveOptions writes o as indented JSON, matching SaveAZ/metaFile's use of
// encoding/json for MetaData.
func SaveOptions(path string, o Options) error {
	b, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(ioutil.WriteFile(path, b, 0644))
}

// LoadOptions reads options previously written by SaveOptions.
func LoadOptions(path string) (Options, error) {
	var o Options
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return o, errors.WithStack(err)
	}
	if err := json.Unmarshal(b, &o); err != nil {
		return o, errors.WithStack(err)
	}
	return o, nil
}
