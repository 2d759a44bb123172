package pattern

import "github.com/renjuzero/engine/game"

// isFourType reports whether typ represents some kind of four-in-a-row
// threat (one move from FIVE), counted towards fork detection.
func isFourType(typ Type) bool {
	return typ == HalfOpen4 || typ == Open4 || typ == Double4
}

// Aggregate combines the four directional Types seen by one colour playing
// at a square into a single Threat, the way PatternCalculator folds its four
// line classifications into one per-square, per-colour threat level
// (original_source PatternCalculator::getThreat). Forks (two independent
// threats along different lines) are detected here rather than per-direction,
// since a fork only exists across directions. A double four along one line
// scores as an open four; under Renju any two fours count as a 4x4 fork,
// even when one of them is open.
func Aggregate(types [4]Type, rule game.Rule) Threat {
	var fives, overlines, open4s, fours, open3s int
	best := None
	for _, t := range types {
		if t == Five {
			fives++
		}
		if t == Overline {
			overlines++
		}
		if t == Open4 || t == Double4 {
			open4s++
		}
		if isFourType(t) {
			fours++
		}
		if t == Open3 {
			open3s++
		}
		if t > best {
			best = t
		}
	}

	switch {
	case fives > 0:
		return ThreatFive
	case overlines > 0:
		return ThreatOverline
	case fours >= 2 && rule == game.Renju:
		return ThreatFork4x4
	case open4s > 0:
		return ThreatOpen4
	case fours >= 2:
		return ThreatFork4x4
	case fours >= 1 && open3s >= 1:
		return ThreatFork4x3
	case open3s >= 2:
		return ThreatFork3x3
	}

	switch best {
	case HalfOpen4, Double4:
		return ThreatHalfOpen4
	case Open3:
		return ThreatOpen3
	case HalfOpen3:
		return ThreatHalfOpen3
	default:
		return ThreatNone
	}
}

// IsForbiddenFork reports whether, for the Cross player under the Renju
// rule, threat amounts to a forbidden double-three or double-four fork.
// Renju forbids Cross (black) from creating two open threes, two fours, or
// an overline in one move; Circle (white) is exempt (spec.md "Renju ...
// forbidden moves", original_source RenjuRules).
func IsForbiddenFork(threat Threat, rule game.Rule, sign game.Sign) bool {
	if rule != game.Renju || sign != game.Cross {
		return false
	}
	switch threat {
	case ThreatFork3x3, ThreatFork4x4, ThreatOverline:
		return true
	default:
		return false
	}
}
