package pattern

import (
	"sync"

	"github.com/renjuzero/engine/game"
)

// Entry is the precomputed classification of one line window encoding:
// the PatternType seen by each colour, the bitmask of window offsets whose
// own classification may need recomputation when the centre changes, and
// the defensive-move masks for each colour (spec.md §3 "Pattern table").
type Entry struct {
	ForCross   Type
	ForCircle  Type
	UpdateMask uint16
	DefCross   uint16 // squares Circle must occupy to stop Cross's pattern
	DefCircle  uint16 // squares Cross must occupy to stop Circle's pattern
}

// Table is a pure, rule-parameterised lookup from window encoding to Entry.
// It is built once and never mutated (spec.md §4.1).
type Table struct {
	Rule    game.Rule
	Len     int
	Mid     int
	entries []Entry
}

// Lookup returns the Entry for an already-encoded window.
func (t *Table) Lookup(enc uint32) Entry { return t.entries[enc] }

// Encode packs a window of t.Len signs (centre must be game.None) into its
// table index.
func (t *Table) Encode(w []game.Sign) uint32 { return encode(window(w)) }

// isOpenCell reports whether `s`, as an end-of-run cell, counts as "open"
// under rule: always true for an empty square; additionally true for the
// off-board border under the Caro rules, whose looser definition of an
// open shape does not let the board edge count as a block (spec.md §4.1,
// "conditioned ... by [_|]... in CARO").
func isOpenCell(s game.Sign, rule game.Rule) bool {
	if s == game.None {
		return true
	}
	if s == game.Illegal && (rule == game.Caro5 || rule == game.Caro6) {
		return true
	}
	return false
}

// Build constructs the pattern table for one rule variant by enumerating
// every window encoding with an empty centre (spec.md §4.1: "Construction
// enumerates all 4^L encodings, filters valid ones ... and classifies").
func Build(rule game.Rule) *Table {
	length := rule.WindowLength()
	mid := length / 2

	size := 1
	for i := 0; i < length; i++ {
		size *= 4
	}
	entries := make([]Entry, size)

	nonCenter := length - 1
	positions := make([]int, 0, nonCenter)
	for i := 0; i < length; i++ {
		if i != mid {
			positions = append(positions, i)
		}
	}

	w := make(window, length)
	counter := make([]int, nonCenter)
	for {
		w[mid] = game.None
		for j, pos := range positions {
			w[pos] = game.Sign(counter[j])
		}

		enc := encode(w)
		crossRes := classifyOneForRule(w, mid, game.Cross, rule)
		circleRes := classifyOneForRule(w, mid, game.Circle, rule)
		entries[enc] = Entry{
			ForCross:   crossRes.typ,
			ForCircle:  circleRes.typ,
			UpdateMask: updateMaskFor(w, mid),
			DefCross:   bitsFrom(crossRes.defense),
			DefCircle:  bitsFrom(circleRes.defense),
		}

		pos := 0
		for pos < nonCenter {
			counter[pos]++
			if counter[pos] < 4 {
				break
			}
			counter[pos] = 0
			pos++
		}
		if pos == nonCenter {
			break
		}
	}

	return &Table{Rule: rule, Len: length, Mid: mid, entries: entries}
}

var (
	tableCacheMu sync.Mutex
	tableCache   = map[game.Rule]*Table{}
)

// ForRule returns the process-wide table for rule, building and caching it
// on first use (spec.md §9, "OnceCell-style statics keyed by rule variant").
func ForRule(rule game.Rule) *Table {
	tableCacheMu.Lock()
	defer tableCacheMu.Unlock()
	if t, ok := tableCache[rule]; ok {
		return t
	}
	t := Build(rule)
	tableCache[rule] = t
	return t
}
