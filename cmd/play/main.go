// Command play is an interactive driver over a Controller: it reads
// protocol.Message lines from stdin and prints BEST_MOVE/INFO/ERROR
// responses, matching spec.md §6's external interface shape while keeping
// the actual Gomocup wire syntax (an explicit Non-goal, spec.md §1) out of
// the core (grounded on cmd/infer, generalized from an interactive chess
// REPL to the protocol.Parse line format).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/renjuzero/engine/engine"
	"github.com/renjuzero/engine/game"
	"github.com/renjuzero/engine/protocol"
)

var (
	rule     = flag.String("rule", "freestyle", "freestyle|standard|renju|caro5|caro6")
	rows     = flag.Int("rows", 15, "board rows")
	cols     = flag.Int("cols", 15, "board cols")
	moveTime = flag.Duration("move_time", 5*time.Second, "time budget per search")
	modelDir = flag.String("model_dir", "", "trained model directory; empty uses a fresh network")
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

	opts := engine.DefaultOptions(parseRule(*rule), *rows, *cols)
	opts.MoveTime = *moveTime

	ctrl, err := engine.New(opts)
	if err != nil {
		log.Fatalf("play: %+v", err)
	}
	if *modelDir != "" {
		trainer, err := engine.LoadTrainer(*modelDir)
		if err != nil {
			log.Fatalf("play: loading model: %+v", err)
		}
		if err := ctrl.SetNetwork(trainer.Network()); err != nil {
			log.Fatalf("play: loading model: %+v", err)
		}
	}

	var moves []game.Move
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		msg := protocol.Parse(scanner.Text())
		switch msg.Type {
		case protocol.SetPosition:
			moves = msg.Moves
			if err := ctrl.SetPosition(moves); err != nil {
				fmt.Printf("ERROR %v\n", err)
				continue
			}
			fmt.Println("INFO position set")
		case protocol.StartSearch:
			goal := engine.BestMove
			switch msg.Goal {
			case protocol.GoalPonder:
				goal = engine.Ponder
			case protocol.GoalSwap2:
				goal = engine.Swap2
			}
			if err := ctrl.StartSearch(goal); err != nil {
				fmt.Printf("ERROR %v\n", err)
				continue
			}
			if goal != engine.Ponder {
				if err := ctrl.StopSearch(); err != nil {
					fmt.Printf("ERROR %v\n", err)
					continue
				}
				summary, err := ctrl.GetSummary()
				if err != nil {
					fmt.Printf("ERROR %v\n", err)
					continue
				}
				fmt.Printf("BEST_MOVE %s\n", protocol.FormatBestMove(summary.Move))
			}
		case protocol.StopSearch:
			if err := ctrl.StopSearch(); err != nil {
				fmt.Printf("ERROR %v\n", err)
			}
		case protocol.ExitProgram:
			_ = ctrl.StopSearch()
			return
		case protocol.ErrorMessage:
			fmt.Printf("ERROR %s\n", msg.Text)
		case protocol.UnknownCommand:
			fmt.Printf("UNKNOWN_COMMAND %s\n", msg.Text)
		}
	}
}
