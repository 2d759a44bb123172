package mcts

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/chewxy/math32"
	"github.com/renjuzero/engine/game"
	"github.com/renjuzero/engine/tt"
	"gonum.org/v1/gonum/mat"
)

// Status is a Node's allocation state (grounded on mcts/node.go's Status
// enum).
type Status uint32

const (
	Invalid Status = iota
	Active
	Pruned
)

// String implements fmt.Stringer.
func (a Status) String() string {
	switch a {
	case Invalid:
		return "Invalid"
	case Active:
		return "Active"
	case Pruned:
		return "Pruned"
	}
	return "UNKNOWN STATUS"
}

// Node is one edge-plus-statistics slot in Tree.nodes, addressed by its
// Naughty index rather than a pointer (grounded on mcts/node.go's Node
// struct). Unlike the chess-only node it's grounded on, a Node here also
// carries a tt.ProvenValue: once a line is proven by tss.Solver or a
// terminal position, the edge can be pruned from PUCT selection without
// further simulation (spec.md §4.8, proven-score propagation).
type Node struct {
	lock sync.Mutex

	move        game.Move // move that produced this node, NullMove for the root
	visits      uint32    // N(s,a)
	status      uint32
	qsa         float32 // Q(s,a), running mean value from this node's own mover's perspective
	psa         float32 // P(s,a), prior from the policy head
	hasChildren bool
	proven      uint32 // tt.ProvenValue, atomic

	welford *mat.Dense // 1x2 [mean, M2], Welford's running variance accumulator

	id Naughty
}

// Format implements fmt.Formatter for debug logging.
func (n *Node) Format(s fmt.State, c rune) {
	fmt.Fprintf(s, "{NodeID: %v, Move: %v, Q(s,a) %v, P(s,a) %v, Visits %v, Status: %v, Proven: %v}",
		n.id, n.Move(), n.QSA(), n.PSA(), n.Visits(), Status(atomic.LoadUint32(&n.status)), n.Proven())
}

// Move returns the move that produced this node.
func (n *Node) Move() game.Move {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.move
}

// QSA returns Q(s,a).
func (n *Node) QSA() float32 {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.qsa
}

// PSA returns P(s,a).
func (n *Node) PSA() float32 {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.psa
}

// Visits returns N(s,a).
func (n *Node) Visits() uint32 { return atomic.LoadUint32(&n.visits) }

// Proven returns the proven outcome backed up into this node, or
// tt.Unknown if the subtree has not been proven.
func (n *Node) Proven() tt.ProvenValue { return tt.ProvenValue(atomic.LoadUint32(&n.proven)) }

// SetProven records a proof result for the side to move at this node (the
// opponent of the node's own mover).
func (n *Node) SetProven(pv tt.ProvenValue) { atomic.StoreUint32(&n.proven, uint32(pv)) }

// Update folds one simulation or backed-up result `value`, from this node's
// own mover's perspective, into the running mean. It is an alias for
// UpdateValue kept for callers that only care about the mean.
func (n *Node) Update(value float32) {
	n.UpdateValue(value)
}

// UpdateValue is Update plus Welford's online algorithm for the running
// variance of this edge's backed-up values (spec.md §4.7 backup), so a
// caller comparing edges by more than Q(s,a) alone (e.g. a UCB-style bound
// that widens with uncertainty) has a variance estimate to draw on without
// re-scanning the node's history.
func (n *Node) UpdateValue(value float32) {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.qsa = (float32(n.visits)*n.qsa + value) / float32(n.visits+1)
	n.visits++
	n.welfordStep(float64(value))
}

// welfordStep updates the 1x2 [mean, M2] accumulator with one new sample,
// following Welford's algorithm; the pair lives in a gonum/mat.Dense rather
// than two bare float64s so the update is one matrix read-modify-write.
// Caller must hold n.lock.
func (n *Node) welfordStep(v float64) {
	if n.welford == nil {
		n.welford = mat.NewDense(1, 2, []float64{0, 0})
	}
	count := float64(n.visits)
	mean := n.welford.At(0, 0)
	m2 := n.welford.At(0, 1)
	delta := v - mean
	mean += delta / count
	delta2 := v - mean
	m2 += delta * delta2
	n.welford.Set(0, 0, mean)
	n.welford.Set(0, 1, m2)
}

// Variance returns the sample variance of this edge's backed-up values, or
// 0 with fewer than two visits.
func (n *Node) Variance() float32 {
	n.lock.Lock()
	defer n.lock.Unlock()
	if n.welford == nil || n.visits < 2 {
		return 0
	}
	return float32(n.welford.At(0, 1) / float64(n.visits-1))
}

// Activate marks a freshly allocated node live.
func (n *Node) Activate() {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.status = uint32(Active)
}

// Prune marks this edge as no longer worth selecting, e.g. because it is a
// proven loss for its own mover.
func (n *Node) Prune() {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.status = uint32(Pruned)
}

// Invalidate marks the slot free for reuse.
func (n *Node) Invalidate() {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.status = uint32(Invalid)
}

// IsValid reports whether the slot is allocated (active or pruned).
func (n *Node) IsValid() bool {
	n.lock.Lock()
	defer n.lock.Unlock()
	return Status(n.status) != Invalid
}

// IsActive reports whether the node is selectable.
func (n *Node) IsActive() bool {
	n.lock.Lock()
	defer n.lock.Unlock()
	return Status(n.status) == Active
}

// IsPruned reports whether the node has been pruned.
func (n *Node) IsPruned() bool {
	n.lock.Lock()
	defer n.lock.Unlock()
	return Status(n.status) == Pruned
}

// HasChildren reports whether this node has been expanded.
func (n *Node) HasChildren() bool {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.hasChildren
}

// SetHasChild marks the node expanded.
func (n *Node) SetHasChild(f bool) {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.hasChildren = f
}

func (n *Node) reset(id Naughty) {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.move = game.NullMove
	n.visits = 0
	n.status = uint32(Active)
	n.qsa = 0
	n.psa = 0
	n.hasChildren = false
	n.welford = nil
	n.id = id
	atomic.StoreUint32(&n.proven, uint32(tt.Unknown))
}

// Select runs the PUCT formula (AlphaZero-style) over a node's children,
// returning the Naughty of the strongest edge, the way Node.Select walked
// tree.Children(n.id) (grounded on mcts/node.go's Select, generalized to
// take the tree and cpuct explicitly instead of reaching through an
// embedded pointer). It is the default Selector; see select.go for the
// rest of the pluggable family.
//
//	U(s,a) = Q(s,a) + cpuct * P(s,a) * sqrt(parentVisits) / (1+visits)
//
// A child already proven a win for its own mover is a proven loss for us
// and is skipped; a child proven a loss for its own mover is an immediate
// win for us and is always preferred.
func Select(t *Tree, parent Naughty, cpuct float32) Naughty {
	children := t.Children(parent)
	var parentVisits uint32
	for _, kid := range children {
		child := t.NodeFromNaughty(kid)
		if child.IsValid() {
			parentVisits += child.Visits()
		}
	}

	best := nilNode
	bestValue := math32.Inf(-1)
	numerator := math32.Sqrt(float32(parentVisits))

	for _, kid := range children {
		child := t.NodeFromNaughty(kid)
		if !child.IsActive() {
			continue
		}
		if child.Proven() == tt.Win {
			continue // a win for the child's mover is a loss for us
		}
		if child.Proven() == tt.Loss {
			return kid // an immediate win for us, take it unconditionally
		}

		qsa := float32(0)
		visits := child.Visits()
		if visits > 0 {
			qsa = child.QSA()
		}
		puct := cpuct * child.PSA() * numerator / (1.0 + float32(visits))
		usa := qsa + puct
		if usa > bestValue {
			bestValue = usa
			best = kid
		}
	}

	if best == nilNode {
		// every active child is a proven win for its own mover, i.e. every
		// reply loses for us: fall back to the most-visited doomed child
		// rather than refusing to move (spec.md §4.7, "skipped unless all
		// edges are proven LOSS").
		return mostVisitedChild(t, children)
	}
	return best
}

// mostVisitedChild returns the active child with the most visits. If no
// child is active (every edge pruned), it falls back to the first child in
// the list rather than returning nothing: Select must always hand the
// caller a move to try.
func mostVisitedChild(t *Tree, children []Naughty) Naughty {
	best := nilNode
	var bestVisits uint32
	for _, kid := range children {
		child := t.NodeFromNaughty(kid)
		if !child.IsActive() {
			continue
		}
		if best == nilNode || child.Visits() > bestVisits {
			best = kid
			bestVisits = child.Visits()
		}
	}
	if best == nilNode && len(children) > 0 {
		return children[0]
	}
	return best
}

// countChildren counts every child of n plus, recursively, the descendants
// of its active children.
func (t *Tree) countChildren(n Naughty) (retVal int) {
	for _, kid := range t.Children(n) {
		child := t.NodeFromNaughty(kid)
		if child.IsActive() {
			retVal += t.countChildren(kid)
		}
		retVal++
	}
	return
}

// findChild returns the first child of n playing `move`, or nilNode.
func (t *Tree) findChild(n Naughty, move game.Move) Naughty {
	for _, kid := range t.Children(n) {
		if t.NodeFromNaughty(kid).Move() == move {
			return kid
		}
	}
	return nilNode
}
