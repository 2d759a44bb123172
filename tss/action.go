// Package tss implements a threat-space (forced-win) alpha-beta search:
// given a position, it tries to prove a win or loss by only ever
// considering moves that create or answer an immediate threat, rather than
// exploring the full move tree (grounded on
// original_source/include/alphagomoku/search/alpha_beta/ThreatSpaceSearch.hpp
// and ActionList.hpp).
package tss

import "github.com/renjuzero/engine/game"

// Action is one candidate move considered by the solver, carrying the
// threat score used to order it and whether playing it wins outright.
type Action struct {
	Move  game.Move
	Score int
	Wins  bool
}

// ActionList is a small, reusable slice of Action, avoiding a fresh
// allocation per recursion level the way the original's stack-allocated
// ActionList does (here backed by a pooled slice instead of a raw buffer).
type ActionList struct {
	items []Action
}

func (l *ActionList) Add(a Action) { l.items = append(l.items, a) }
func (l *ActionList) Len() int     { return len(l.items) }
func (l *ActionList) At(i int) Action { return l.items[i] }
func (l *ActionList) Reset()       { l.items = l.items[:0] }

// MoveToFront moves the first action matching move to the head of the
// list, leaving relative order of the rest unchanged; it is a no-op if move
// is not present. Used to place the transposition table's hash-best move
// ahead of the score-sorted order on the next iterative-deepening pass
// (spec.md §4.6 step 4, "on the first iteration move the hash-best move to
// front").
func (l *ActionList) MoveToFront(move game.Move) {
	for i, a := range l.items {
		if a.Move == move {
			copy(l.items[1:i+1], l.items[:i])
			l.items[0] = a
			return
		}
	}
}

// SortDescending orders actions by score, strongest threat first, the
// simple move-ordering heuristic that makes alpha-beta cutoffs effective.
func (l *ActionList) SortDescending() {
	items := l.items
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && items[j].Score > items[j-1].Score; j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

// ActionStack hands out ActionList values for each recursion depth,
// reusing backing arrays across calls instead of allocating one ActionList
// per stack frame (mirrors the original's single contiguous action_stack).
type ActionStack struct {
	lists []ActionList
}

// Get returns the ActionList for recursion depth `depth`, growing the
// stack and clearing the list if needed.
func (s *ActionStack) Get(depth int) *ActionList {
	for len(s.lists) <= depth {
		s.lists = append(s.lists, ActionList{})
	}
	s.lists[depth].Reset()
	return &s.lists[depth]
}
