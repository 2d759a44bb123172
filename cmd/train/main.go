// Command train runs self-play episodes and a supervised pass over the
// resulting examples, then checkpoints the network, matching the shape of
// cmd/train (agogo.AZ.LearnAZ + SaveAZ) but for a gomoku-family engine
// instead of chess, and without the HDFS upload step: that was
// deployment-pipeline plumbing specific to the original training
// infrastructure, not part of this engine's domain (see DESIGN.md).
package main

import (
	"flag"
	"log"

	"github.com/renjuzero/engine/engine"
	"github.com/renjuzero/engine/game"
)

var (
	rule      = flag.String("rule", "freestyle", "freestyle|standard|renju|caro5|caro6")
	rows      = flag.Int("rows", 9, "board rows")
	cols      = flag.Int("cols", 9, "board cols")
	iters     = flag.Int("iters", 1, "number of self-play/train epochs")
	episodes  = flag.Int("episodes", 5, "self-play games per epoch")
	sims      = flag.Int("sims", 50, "MCTS simulations per move during self-play")
	nniters   = flag.Int("nn_iters", 5, "gradient steps per example per epoch")
	lr        = flag.Float64("lr", 0.01, "learning rate")
	modelPath = flag.String("model_path", "checkpoint", "directory to save the trained model to")
)

func parseRule(s string) game.Rule {
	switch s {
	case "standard":
		return game.Standard
	case "renju":
		return game.Renju
	case "caro5":
		return game.Caro5
	case "caro6":
		return game.Caro6
	default:
		return game.Freestyle
	}
}

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime)

	opts := engine.DefaultOptions(parseRule(*rule), *rows, *cols)
	opts.MCTS.NumSimulation = *sims

	trainer, err := engine.NewTrainer(opts)
	if err != nil {
		log.Fatalf("train: %+v", err)
	}

	for epoch := 0; epoch < *iters; epoch++ {
		log.Printf("epoch %d", epoch)
		if err := trainer.Train(*episodes, *sims, *nniters, float32(*lr)); err != nil {
			log.Fatalf("train: epoch %d: %+v", epoch, err)
		}
	}

	log.Printf("saving model to %s", *modelPath)
	if err := trainer.Save(*modelPath); err != nil {
		log.Fatalf("train: saving model: %+v", err)
	}
	log.Print("done")
}
