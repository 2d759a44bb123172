package mcts

import (
	"fmt"
	"sync"
	"time"

	"github.com/chewxy/math32"
	"github.com/renjuzero/engine/game"
	"github.com/renjuzero/engine/tt"
	distrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"
)

// Config configures a Tree's search (grounded on mcts/tree.go's Config).
// The original New() referenced a dirichletParam constant that was never
// defined anywhere in the source tree it came from; here the Dirichlet
// concentration and its exploration weight are explicit fields instead of
// a hidden constant.
type Config struct {
	// PUCT is the exploration constant in the PUCT selection formula.
	PUCT float32

	RandomCount       int // below this move number, root moves are sampled, not argmaxed
	RandomTemperature float32
	MaxDepth          int
	NumSimulation     int
	Timeout           time.Duration // wall-clock budget per Search call; 0 means NumSimulation governs alone

	DirichletAlpha   float64 // concentration parameter for root noise, 0 disables it
	DirichletEpsilon float32 // weight given to noise when mixed into root priors

	SelectorKind SelectorKind // which Selector drives descent; zero value is PUCT

	TSSDepth      int // max plies the recursive VCF/VCT solver searches per expansion before giving up unproven
	TSSNodeBudget int // cap on positions the solver visits per expansion call
}

// DefaultConfig returns AlphaZero-typical defaults.
func DefaultConfig() Config {
	return Config{
		PUCT:              1.0,
		RandomTemperature: 1.0,
		NumSimulation:     800,
		DirichletAlpha:    0.15,
		DirichletEpsilon:  0.25,
		TSSDepth:          12,
		TSSNodeBudget:     5000,
	}
}

// IsValid reports whether c can drive a search.
func (c Config) IsValid() bool {
	return c.RandomTemperature > 0 && c.NumSimulation > 0
}

// Inferencer is the neural network: given a position, it returns a policy
// over every board square plus a scalar value estimate from the side to
// move's perspective (spec.md §5). mcts only depends on this interface, not
// on package nn, so it can be unit tested with a stub.
type Inferencer interface {
	Infer(pos *game.Position) (policy []float32, value float32)
}

// Tree is an arena-backed MCTS search tree over a single game.Position
// (grounded on mcts/tree.go's MCTS struct, generalized from notnil/chess's
// game.State to game.Position/calc.Calculator and from a fixed action
// space to Position.Config.ActionSpace()). Renamed from MCTS to Tree
// since, unlike chess, one process may hold several trees rooted at
// different positions concurrently (spec.md §4.9 search workers).
type Tree struct {
	sync.RWMutex
	Config

	nn    Inferencer
	table *tt.Table
	rnd   *distrand.Rand

	pos *game.Position

	nodes    []Node
	children [][]Naughty
	freelist []Naughty

	root Naughty

	dirichlet *distmv.Dirichlet
}

// New builds an empty tree rooted at `pos`, sharing `table` for
// transposition lookups across the whole search and `nn` for policy/value
// evaluation.
func New(pos *game.Position, conf Config, table *tt.Table, nn Inferencer) *Tree {
	t := &Tree{
		Config:   conf,
		nn:       nn,
		table:    table,
		rnd:      distrand.New(distrand.NewSource(1)),
		pos:      pos,
		nodes:    make([]Node, 0, 12288),
		children: make([][]Naughty, 0, 12288),
		root:     nilNode,
	}
	if conf.DirichletAlpha > 0 && conf.DirichletEpsilon > 0 {
		actionSpace := pos.Config.ActionSpace()
		alpha := make([]float64, actionSpace)
		for i := range alpha {
			alpha[i] = conf.DirichletAlpha
		}
		t.dirichlet = distmv.NewDirichlet(alpha, distrand.NewSource(1))
	}
	return t
}

// Position returns the position this tree is rooted at.
func (t *Tree) Position() *game.Position { return t.pos }

// node is the unsynchronized accessor, used once the caller already holds
// the tree lock or a per-node lock makes the access safe.
func (t *Tree) node(n Naughty) *Node { return &t.nodes[int(n)] }

// NodeFromNaughty is the exported, lock-guarded accessor other packages use.
func (t *Tree) NodeFromNaughty(n Naughty) *Node {
	t.RLock()
	defer t.RUnlock()
	return &t.nodes[int(n)]
}

// Root returns the current root index, nilNode before the first Search call.
func (t *Tree) Root() Naughty { return t.root }

// Nodes reports the number of allocated node slots.
func (t *Tree) Nodes() int {
	t.RLock()
	defer t.RUnlock()
	return len(t.nodes)
}

// New allocates a fresh child node for `move` with prior `score`, matching
// MCTS.New's signature and one-visit initialization.
func (t *Tree) New(move game.Move, score float32) (retVal Naughty) {
	n := t.alloc()
	node := t.NodeFromNaughty(n)
	node.lock.Lock()
	node.move = move
	node.visits = 1
	node.status = uint32(Active)
	node.qsa = 0
	node.psa = score
	node.lock.Unlock()
	return n
}

// alloc tries to get a node from the free list, falling back to growing the
// arena, as MCTS.alloc did.
func (t *Tree) alloc() Naughty {
	t.Lock()
	defer t.Unlock()
	l := len(t.freelist)
	if l == 0 {
		id := Naughty(len(t.nodes))
		t.nodes = append(t.nodes, Node{id: id, status: uint32(Active), proven: uint32(tt.Unknown)})
		t.children = append(t.children, make([]Naughty, 0, t.pos.Config.ActionSpace()))
		return id
	}
	id := t.freelist[l-1]
	t.freelist = t.freelist[:l-1]
	return id
}

// free returns n's slot to the freelist and resets its stats.
func (t *Tree) free(n Naughty) {
	t.Lock()
	t.children[int(n)] = t.children[int(n)][:0]
	t.freelist = append(t.freelist, n)
	t.Unlock()
	t.nodes[int(n)].reset(n)
}

// AddChild links `child` under `parent`, the way Node.AddChild mutated
// tree.children directly.
func (t *Tree) AddChild(parent, child Naughty) {
	t.Lock()
	t.children[parent] = append(t.children[parent], child)
	t.Unlock()
}

// Children returns the child list of n.
func (t *Tree) Children(n Naughty) []Naughty {
	t.RLock()
	defer t.RUnlock()
	return t.children[n]
}

// cleanup discards every child of oldRoot except newRoot and its subtree,
// reusing the cleanup/cleanChildren approach for moving the root forward
// after a real move is played.
func (t *Tree) cleanup(oldRoot, newRoot Naughty) {
	for _, kid := range t.Children(oldRoot) {
		if kid != newRoot {
			t.node(kid).Invalidate()
			t.cleanChildren(kid)
			t.free(kid)
		}
	}
	t.Lock()
	t.children[oldRoot] = t.children[oldRoot][:0]
	t.children[oldRoot] = append(t.children[oldRoot], newRoot)
	t.Unlock()
}

func (t *Tree) cleanChildren(root Naughty) {
	for _, kid := range t.Children(root) {
		t.node(kid).Invalidate()
		t.cleanChildren(kid)
		t.free(kid)
	}
	t.Lock()
	t.children[root] = t.children[root][:0]
	t.Unlock()
}

// sampleChild samples one of root's children proportionally to
// visits^(1/temperature), the exploratory opening-move policy (spec.md §4.7
// RandomCount/RandomTemperature), grounded on MCTS.sampleChild.
func (t *Tree) sampleChild() int {
	var denominator float32
	children := t.Children(t.root)
	for _, kid := range children {
		child := t.NodeFromNaughty(kid)
		if child.IsValid() {
			denominator += math32.Pow(float32(child.Visits()), 1/t.Config.RandomTemperature)
		}
	}

	var accum float32
	accumVector := make([]float32, 0, len(children))
	for _, kid := range children {
		child := t.NodeFromNaughty(kid)
		accum += math32.Pow(float32(child.Visits()), 1/t.Config.RandomTemperature) / denominator
		accumVector = append(accumVector, accum)
	}

	rnd := t.rnd.Float32()
	var index int
	for i, a := range accumVector {
		if rnd < a {
			index = i
			break
		}
	}
	return index
}

// sampleRootNoise mixes Dirichlet noise into the root's children's priors,
// the AlphaZero exploration trick (grounded on tree.go's use of
// gonum/stat/distmv plus golang.org/x/exp/rand for the same purpose).
func (t *Tree) sampleRootNoise() {
	if t.dirichlet == nil {
		return
	}
	children := t.Children(t.root)
	if len(children) == 0 {
		return
	}
	noise := t.dirichlet.Rand(nil)

	for i, kid := range children {
		n := t.node(kid)
		n.lock.Lock()
		n.psa = (1-t.DirichletEpsilon)*n.psa + t.DirichletEpsilon*float32(noise[i%len(noise)])
		n.lock.Unlock()
	}
}

// Policies returns the root's children as a full-board policy vector,
// proportional to visit counts, the training target format (spec.md §5.3).
func (t *Tree) Policies() ([]float32, error) {
	if !t.root.IsValid() {
		return nil, fmt.Errorf("mcts: empty tree, no root")
	}
	policy := make([]float32, t.pos.Config.ActionSpace())
	var total float32
	for _, kid := range t.Children(t.root) {
		child := t.NodeFromNaughty(kid)
		total += float32(child.Visits())
	}
	if total == 0 {
		return policy, nil
	}
	for _, kid := range t.Children(t.root) {
		child := t.NodeFromNaughty(kid)
		policy[t.pos.Config.IndexOf(child.Move())] = float32(child.Visits()) / total
	}
	return policy, nil
}

// Reset discards the whole tree, the way MCTS.Reset recycled every node
// onto the freelist before dropping the backing arrays.
func (t *Tree) Reset() {
	t.Lock()
	defer t.Unlock()
	t.freelist = t.freelist[:0]
	t.nodes = t.nodes[:0]
	for i := range t.children {
		t.children[i] = t.children[i][:0]
	}
	t.children = t.children[:0]
	t.root = nilNode
}
