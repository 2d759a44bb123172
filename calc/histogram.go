// Package calc maintains, for a live game.Board, the incrementally updated
// per-square pattern classification and threat aggregation that the search
// packages query instead of rescanning lines themselves (grounded on
// original_source/include/alphagomoku/solver/PatternCalculator.hpp).
package calc

import "github.com/renjuzero/engine/pattern"

// ThreatHistogram buckets every empty square currently carrying a threat,
// by threat type, so callers like the threat-space solver can enumerate
// "all current fours" in O(1) instead of scanning the board (mirrors
// PatternCalculator::ThreatHistogram).
type ThreatHistogram struct {
	buckets [pattern.NumThreatTypes][]Location
	index   map[Location]int // index within its current bucket, for O(1) remove
}

// Location is a board square.
type Location struct {
	Row, Col int
}

// NewThreatHistogram returns an empty histogram.
func NewThreatHistogram() *ThreatHistogram {
	return &ThreatHistogram{index: make(map[Location]int)}
}

// Get returns the squares currently carrying threat t.
func (h *ThreatHistogram) Get(t pattern.Threat) []Location {
	return h.buckets[t]
}

// Add records that loc now carries threat t. t == ThreatNone is a no-op,
// matching the original's choice not to track the empty case.
func (h *ThreatHistogram) Add(t pattern.Threat, loc Location) {
	if t == pattern.ThreatNone {
		return
	}
	h.index[loc] = len(h.buckets[t])
	h.buckets[t] = append(h.buckets[t], loc)
}

// Remove undoes a prior Add of the same (t, loc) pair.
func (h *ThreatHistogram) Remove(t pattern.Threat, loc Location) {
	if t == pattern.ThreatNone {
		return
	}
	bucket := h.buckets[t]
	i, ok := h.index[loc]
	if !ok || i >= len(bucket) || bucket[i] != loc {
		return
	}
	last := len(bucket) - 1
	bucket[i] = bucket[last]
	h.index[bucket[i]] = i
	h.buckets[t] = bucket[:last]
	delete(h.index, loc)
}

// HasAnyFour reports whether any square currently carries a four-level
// threat (half-open four, either fork, or open four): the condition the
// threat-space search uses to know a forced sequence is still alive.
func (h *ThreatHistogram) HasAnyFour() bool {
	return len(h.buckets[pattern.ThreatHalfOpen4]) > 0 ||
		len(h.buckets[pattern.ThreatFork4x3]) > 0 ||
		len(h.buckets[pattern.ThreatFork4x4]) > 0 ||
		len(h.buckets[pattern.ThreatOpen4]) > 0
}

// Clone returns an independent copy of the histogram.
func (h *ThreatHistogram) Clone() *ThreatHistogram {
	c := NewThreatHistogram()
	for t := range h.buckets {
		if len(h.buckets[t]) == 0 {
			continue
		}
		c.buckets[t] = append([]Location(nil), h.buckets[t]...)
	}
	for k, v := range h.index {
		c.index[k] = v
	}
	return c
}

// Clear empties every bucket.
func (h *ThreatHistogram) Clear() {
	for i := range h.buckets {
		h.buckets[i] = h.buckets[i][:0]
	}
	for k := range h.index {
		delete(h.index, k)
	}
}
