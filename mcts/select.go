package mcts

import (
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/renjuzero/engine/tt"
)

// Selector picks which child of parent a search worker descends into next.
// Select (PUCT) is the default; the rest of this family trade exploration
// shape for simplicity or for matching a specific published algorithm, so
// a caller benchmarking root-move quality can swap one in via
// Config.SelectorKind without touching the search pipeline.
type Selector func(t *Tree, parent Naughty, cpuct float32) Naughty

// SelectorKind names one member of the Selector family, stored in Config so
// it travels with the rest of a Tree's search settings.
type SelectorKind int

const (
	SelectorPUCT SelectorKind = iota
	SelectorNoisyPUCT
	SelectorUCT
	SelectorSequentialHalving
	SelectorMaxVisit
	SelectorMaxQ
	SelectorBestEdge
	SelectorBalanced
)

// selectorFor resolves a Tree's configured SelectorKind to the function
// that implements it, defaulting to PUCT for the zero value.
func (t *Tree) selectorFor() Selector {
	switch t.Config.SelectorKind {
	case SelectorNoisyPUCT:
		return SelectNoisyPUCT
	case SelectorUCT:
		return SelectUCT
	case SelectorSequentialHalving:
		return SelectSequentialHalving
	case SelectorMaxVisit:
		return SelectMaxVisit
	case SelectorMaxQ:
		return SelectMaxQ
	case SelectorBestEdge:
		return SelectBestEdge
	case SelectorBalanced:
		return SelectBalanced
	default:
		return Select
	}
}

// activeChildren returns parent's children with their proven status already
// resolved: an immediate winning reply is returned alone (selection should
// take it unconditionally), proven-losing replies for the child's own mover
// are dropped, and the rest are handed back for the caller's formula.
func activeChildren(t *Tree, parent Naughty) (forced Naughty, rest []Naughty) {
	forced = nilNode
	for _, kid := range t.Children(parent) {
		child := t.NodeFromNaughty(kid)
		if !child.IsActive() {
			continue
		}
		if child.Proven() == tt.Win {
			continue
		}
		if child.Proven() == tt.Loss {
			return kid, nil
		}
		rest = append(rest, kid)
	}
	return forced, rest
}

// SelectNoisyPUCT is PUCT with a small amount of uniform noise folded into
// the exploration term, spreading simulations across near-tied children
// instead of always breaking ties the same way once Q(s,a) estimates are
// still unreliable (few visits at the root).
func SelectNoisyPUCT(t *Tree, parent Naughty, cpuct float32) Naughty {
	forced, children := activeChildren(t, parent)
	if forced != nilNode {
		return forced
	}
	var parentVisits uint32
	for _, kid := range children {
		parentVisits += t.NodeFromNaughty(kid).Visits()
	}
	numerator := math32.Sqrt(float32(parentVisits))

	best := nilNode
	bestValue := math32.Inf(-1)
	for _, kid := range children {
		child := t.NodeFromNaughty(kid)
		visits := child.Visits()
		qsa := float32(0)
		if visits > 0 {
			qsa = child.QSA()
		}
		noise := 1 + 0.1*(float32(rand.Float64())-0.5)
		puct := cpuct * child.PSA() * noise * numerator / (1.0 + float32(visits))
		usa := qsa + puct
		if usa > bestValue {
			bestValue = usa
			best = kid
		}
	}
	if best == nilNode {
		return mostVisitedChild(t, t.Children(parent))
	}
	return best
}

// SelectUCT is the classic UCB1 formula over win-rate rather than a policy
// prior, for comparing PUCT's AlphaZero-style exploration against the
// non-NN-guided baseline it was built to beat.
//
//	U(s,a) = Q(s,a) + c * sqrt(ln(parentVisits + 1) / visits)
func SelectUCT(t *Tree, parent Naughty, c float32) Naughty {
	forced, children := activeChildren(t, parent)
	if forced != nilNode {
		return forced
	}
	var parentVisits uint32
	for _, kid := range children {
		parentVisits += t.NodeFromNaughty(kid).Visits()
	}
	logParent := math32.Log(float32(parentVisits) + 1)

	best := nilNode
	bestValue := math32.Inf(-1)
	for _, kid := range children {
		child := t.NodeFromNaughty(kid)
		visits := child.Visits()
		if visits == 0 {
			return kid // unvisited children are explored before any formula applies
		}
		uct := child.QSA() + c*math32.Sqrt(logParent/float32(visits))
		if uct > bestValue {
			bestValue = uct
			best = kid
		}
	}
	if best == nilNode {
		return mostVisitedChild(t, t.Children(parent))
	}
	return best
}

// SelectSequentialHalving allocates simulations round-robin across the
// least-visited active children. When every active child has the same
// visit count, it ranks them by mean value and descends into the best one.
// No elimination is remembered between calls: a child that ranked in the
// weaker half is visited again as soon as it is among the least visited.
func SelectSequentialHalving(t *Tree, parent Naughty, _ float32) Naughty {
	forced, children := activeChildren(t, parent)
	if forced != nilNode {
		return forced
	}
	if len(children) == 0 {
		return mostVisitedChild(t, t.Children(parent))
	}
	minVisits := ^uint32(0)
	for _, kid := range children {
		if v := t.NodeFromNaughty(kid).Visits(); v < minVisits {
			minVisits = v
		}
	}
	var survivors []Naughty
	for _, kid := range children {
		if t.NodeFromNaughty(kid).Visits() == minVisits {
			survivors = append(survivors, kid)
		}
	}
	if len(survivors) > 1 && minVisits > 0 && len(survivors) == len(children) {
		half := (len(survivors) + 1) / 2
		type scored struct {
			kid Naughty
			q   float32
		}
		ranked := make([]scored, len(survivors))
		for i, kid := range survivors {
			ranked[i] = scored{kid, t.NodeFromNaughty(kid).QSA()}
		}
		for i := 1; i < len(ranked); i++ {
			for j := i; j > 0 && ranked[j].q > ranked[j-1].q; j-- {
				ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
			}
		}
		survivors = survivors[:0]
		for i := 0; i < half; i++ {
			survivors = append(survivors, ranked[i].kid)
		}
	}
	return survivors[0]
}

// SelectMaxVisit always descends into the most-visited child, the
// "commit to what's already being explored" strategy useful once a search
// is deep enough that reopening an under-explored line costs more than it
// is likely to gain.
func SelectMaxVisit(t *Tree, parent Naughty, _ float32) Naughty {
	forced, children := activeChildren(t, parent)
	if forced != nilNode {
		return forced
	}
	best := nilNode
	var bestVisits uint32
	for _, kid := range children {
		if v := t.NodeFromNaughty(kid).Visits(); best == nilNode || v > bestVisits {
			best, bestVisits = kid, v
		}
	}
	if best == nilNode {
		return mostVisitedChild(t, t.Children(parent))
	}
	return best
}

// SelectMaxQ descends into an unvisited child if there is one, and
// otherwise into the child with the highest current Q(s,a), with visit
// counts playing no other part; useful as a greedy baseline when
// comparing against the exploration-aware strategies above.
func SelectMaxQ(t *Tree, parent Naughty, _ float32) Naughty {
	forced, children := activeChildren(t, parent)
	if forced != nilNode {
		return forced
	}
	best := nilNode
	bestQ := math32.Inf(-1)
	for _, kid := range children {
		child := t.NodeFromNaughty(kid)
		if child.Visits() == 0 {
			return kid
		}
		if q := child.QSA(); q > bestQ {
			bestQ, best = q, kid
		}
	}
	if best == nilNode {
		return mostVisitedChild(t, t.Children(parent))
	}
	return best
}

// SelectBestEdge combines visit count and value into one rank: it picks the
// highest-Q child among those within one standard "visit unit" of the most
// visited child, robust-child selection applied during simulation rather
// than only at the final move decision.
func SelectBestEdge(t *Tree, parent Naughty, _ float32) Naughty {
	forced, children := activeChildren(t, parent)
	if forced != nilNode {
		return forced
	}
	if len(children) == 0 {
		return mostVisitedChild(t, t.Children(parent))
	}
	var maxVisits uint32
	for _, kid := range children {
		if v := t.NodeFromNaughty(kid).Visits(); v > maxVisits {
			maxVisits = v
		}
	}
	threshold := maxVisits
	if threshold > 0 {
		threshold--
	}
	best := nilNode
	bestQ := math32.Inf(-1)
	for _, kid := range children {
		child := t.NodeFromNaughty(kid)
		if child.Visits() < threshold {
			continue
		}
		if q := child.QSA(); q > bestQ {
			bestQ, best = q, kid
		}
	}
	if best == nilNode {
		best = children[0]
	}
	return best
}

// SelectBalanced alternates between PUCT and least-visited selection
// every other call (tracked via the parent node's own visit parity),
// spending half the simulation budget exploiting the current policy and
// half spreading visits evenly across untested replies.
func SelectBalanced(t *Tree, parent Naughty, cpuct float32) Naughty {
	if t.NodeFromNaughty(parent).Visits()%2 == 0 {
		return Select(t, parent, cpuct)
	}
	forced, children := activeChildren(t, parent)
	if forced != nilNode {
		return forced
	}
	best := nilNode
	var bestVisits uint32
	for _, kid := range children {
		if v := t.NodeFromNaughty(kid).Visits(); best == nilNode || v < bestVisits {
			best, bestVisits = kid, v
		}
	}
	if best == nilNode {
		return mostVisitedChild(t, t.Children(parent))
	}
	return best
}
