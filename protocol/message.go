// Package protocol defines the typed message vocabulary between a driver
// (GUI or tournament manager) and the search engine, and a minimal
// line-oriented parser for interactive use (spec.md §6). The full Gomocup
// wire syntax and tournament dispatcher are an explicit Non-goal (spec.md
// §1); this package only gives the core something to emit/consume so
// cmd/play can drive a Controller without hard-coding text parsing inline.
package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/renjuzero/engine/game"
)

// Type is a message kind, matching spec.md §6's enumerated set.
type Type int

const (
	SetPosition Type = iota
	StartSearch
	StopSearch
	BestMove
	InfoMessage
	ErrorMessage
	PlainString
	UnknownCommand
	ExitProgram
)

// SearchGoal distinguishes the three START_SEARCH variants spec.md names.
type SearchGoal int

const (
	GoalBestMove SearchGoal = iota
	GoalSwap2
	GoalPonder
)

// Message is one parsed line or one engine-to-driver event.
type Message struct {
	Type  Type
	Moves []game.Move // SetPosition payload
	Goal  SearchGoal  // StartSearch payload
	Move  game.Move   // BestMove payload
	Text  string      // Info/Error/PlainString/UnknownCommand payload
}

// Parse reads one line of the minimal subset this package supports:
//
//	POSITION <r0>,<c0>,<sign0> <r1>,<c1>,<sign1> ...
//	GO bestmove|swap2|ponder
//	STOP
//	QUIT
//
// A blank line becomes an empty PlainString message; any other command
// becomes an UnknownCommand message, matching spec.md §7's
// "protocol errors surfaced as ERROR or UNKNOWN_COMMAND, never interpreted
// by the core".
func Parse(line string) Message {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Message{Type: PlainString, Text: ""}
	}
	switch strings.ToUpper(fields[0]) {
	case "POSITION":
		moves, err := parseMoves(fields[1:])
		if err != nil {
			return Message{Type: ErrorMessage, Text: err.Error()}
		}
		return Message{Type: SetPosition, Moves: moves}
	case "GO":
		goal := GoalBestMove
		if len(fields) > 1 {
			switch strings.ToLower(fields[1]) {
			case "swap2":
				goal = GoalSwap2
			case "ponder":
				goal = GoalPonder
			}
		}
		return Message{Type: StartSearch, Goal: goal}
	case "STOP":
		return Message{Type: StopSearch}
	case "QUIT":
		return Message{Type: ExitProgram}
	default:
		return Message{Type: UnknownCommand, Text: line}
	}
}

func parseMoves(tokens []string) ([]game.Move, error) {
	moves := make([]game.Move, 0, len(tokens))
	for _, tok := range tokens {
		parts := strings.Split(tok, ",")
		if len(parts) != 3 {
			return nil, errors.Errorf("protocol: malformed move token %q", tok)
		}
		row, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, errors.Wrapf(err, "protocol: bad row in %q", tok)
		}
		col, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, errors.Wrapf(err, "protocol: bad col in %q", tok)
		}
		sign, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, errors.Wrapf(err, "protocol: bad sign in %q", tok)
		}
		moves = append(moves, game.NewMove(row, col, game.Sign(sign)))
	}
	return moves, nil
}

// FormatBestMove renders a BEST_MOVE message the way a driver expects to
// read it back: one line, "row,col".
func FormatBestMove(m game.Move) string {
	return fmt.Sprintf("%d,%d", m.Row(), m.Col())
}
