package tss

import (
	"github.com/renjuzero/engine/calc"
	"github.com/renjuzero/engine/game"
	"github.com/renjuzero/engine/pattern"
)

// threatScore orders candidate moves by how forcing their resulting threat
// is, strongest first: a five wins outright, then an open four, the 4x4 and
// 4x3 forks, a plain four, a 3x3 fork and an open three.
func threatScore(t pattern.Threat) int {
	switch t {
	case pattern.ThreatFive:
		return 100
	case pattern.ThreatOpen4:
		return 90
	case pattern.ThreatFork4x4:
		return 80
	case pattern.ThreatFork4x3:
		return 70
	case pattern.ThreatHalfOpen4:
		return 60
	case pattern.ThreatFork3x3:
		return 50
	case pattern.ThreatOpen3:
		return 40
	default:
		return 0
	}
}

func moveAt(sign game.Sign, loc calc.Location) game.Move {
	return game.NewMove(loc.Row, loc.Col, sign)
}

// GenerateForcing fills `out` with attacker's own four-or-better threats
// (moves that either win immediately or force the defender to respond),
// ordered strongest first. This is the move generator's THREATS mode: only
// squares already tracked in attacker's threat histogram as four-level or
// five are considered, the way ThreatGenerator restricts itself to forcing
// moves during a VCF search rather than the full empty-square list.
func GenerateForcing(c *calc.Calculator, attacker game.Sign, out *ActionList) {
	hist := c.ThreatHistogram(attacker)
	for _, t := range []pattern.Threat{
		pattern.ThreatFive,
		pattern.ThreatOpen4,
		pattern.ThreatFork4x4,
		pattern.ThreatFork4x3,
		pattern.ThreatHalfOpen4,
	} {
		for _, loc := range hist.Get(t) {
			out.Add(Action{Move: moveAt(attacker, loc), Score: threatScore(t), Wins: t == pattern.ThreatFive})
		}
	}
	out.SortDescending()
}

// GenerateThreesAndFours additionally includes open-three and 3x3-fork
// moves, widening the search from pure VCF to a VCT-style attempt (the move
// generator's REDUCED/OPTIMAL modes, which also open new lines of attack
// rather than only extend existing fours).
func GenerateThreesAndFours(c *calc.Calculator, attacker game.Sign, out *ActionList) {
	GenerateForcing(c, attacker, out)
	hist := c.ThreatHistogram(attacker)
	for _, loc := range hist.Get(pattern.ThreatFork3x3) {
		out.Add(Action{Move: moveAt(attacker, loc), Score: threatScore(pattern.ThreatFork3x3)})
	}
	for _, loc := range hist.Get(pattern.ThreatOpen3) {
		out.Add(Action{Move: moveAt(attacker, loc), Score: threatScore(pattern.ThreatOpen3)})
	}
	out.SortDescending()
}

// DefendingMoves returns the squares attacker must consider to stop
// defender's live four-or-better threats: exactly defender's ThreatFive
// bucket, since those are the squares that would let defender win next move.
func DefendingMoves(c *calc.Calculator, attacker game.Sign, out *ActionList) {
	defender := game.Invert(attacker)
	hist := c.ThreatHistogram(defender)
	for _, loc := range hist.Get(pattern.ThreatFive) {
		out.Add(Action{Move: moveAt(attacker, loc), Score: threatScore(pattern.ThreatFive)})
	}
}

// MustDefend reports whether toMove's opponent has a square that completes
// a five or one that makes an open four: a threat toMove cannot ignore
// without losing,
// setting the must_defend condition that restricts move generation to the
// squares DefensiveSquares returns.
func MustDefend(c *calc.Calculator, toMove game.Sign) bool {
	hist := c.ThreatHistogram(game.Invert(toMove))
	return len(hist.Get(pattern.ThreatFive)) > 0 || len(hist.Get(pattern.ThreatOpen4)) > 0
}

// DefensiveSquares fills out with the squares toMove must consider while
// must_defend holds: the opponent's ThreatFive bucket, which would let it
// complete a five next move, and its ThreatOpen4 bucket, which would let it
// make an open four that can no longer be stopped. This widens DefendingMoves' narrower five-only set (which
// exists to detect an unstoppable double-five inside the VCF solver) to the
// full must_defend move set spec.md's expansion step restricts itself to.
func DefensiveSquares(c *calc.Calculator, toMove game.Sign, out *ActionList) {
	defender := game.Invert(toMove)
	hist := c.ThreatHistogram(defender)
	for _, t := range []pattern.Threat{pattern.ThreatFive, pattern.ThreatOpen4} {
		for _, loc := range hist.Get(t) {
			out.Add(Action{Move: moveAt(toMove, loc), Score: threatScore(t)})
		}
	}
	out.SortDescending()
}
