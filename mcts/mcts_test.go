package mcts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renjuzero/engine/calc"
	"github.com/renjuzero/engine/game"
	"github.com/renjuzero/engine/tt"
)

type uniformInferencer struct{}

func (uniformInferencer) Infer(pos *game.Position) (policy []float32, value float32) {
	n := pos.Config.ActionSpace()
	policy = make([]float32, n)
	for i := range policy {
		policy[i] = 1 / float32(n)
	}
	return policy, 0
}

func newTestPosition(t *testing.T) (*game.Position, *calc.Calculator, game.Config) {
	t.Helper()
	cfg := game.Config{Rule: game.Freestyle, Rows: 9, Cols: 9}
	z := game.NewZobrist(cfg.Rows, cfg.Cols)
	pos := game.NewPosition(cfg, z)
	c := calc.NewCalculator(cfg)
	return pos, c, cfg
}

func applyBoth(pos *game.Position, c *calc.Calculator, moves ...game.Move) {
	for _, m := range moves {
		pos.Apply(m)
		c.AddMove(m)
	}
}

func TestTreeAllocAndChildren(t *testing.T) {
	pos, c, _ := newTestPosition(t)
	table := tt.NewTable(4, 1024)
	tree := New(pos, DefaultConfig(), table, uniformInferencer{})

	root := tree.alloc()
	tree.root = root
	a := tree.New(game.NewMove(4, 4, game.Cross), 0.5)
	b := tree.New(game.NewMove(4, 5, game.Cross), 0.3)
	tree.AddChild(root, a)
	tree.AddChild(root, b)

	kids := tree.Children(root)
	require.Len(t, kids, 2)
	assert.Equal(t, game.NewMove(4, 4, game.Cross), tree.NodeFromNaughty(kids[0]).Move())
	_ = c
}

func TestSelectPrefersProvenLoss(t *testing.T) {
	pos, c, _ := newTestPosition(t)
	table := tt.NewTable(4, 1024)
	tree := New(pos, DefaultConfig(), table, uniformInferencer{})

	root := tree.alloc()
	tree.root = root
	losing := tree.New(game.NewMove(0, 0, game.Cross), 0.1)
	winning := tree.New(game.NewMove(0, 1, game.Cross), 0.1)
	tree.AddChild(root, losing)
	tree.AddChild(root, winning)

	tree.NodeFromNaughty(winning).SetProven(tt.Loss) // a loss for the child's own mover: a win for us
	got := Select(tree, root, tree.Config.PUCT)
	assert.Equal(t, winning, got)
	_ = c
}

func TestSearchFindsImmediateWin(t *testing.T) {
	pos, c, _ := newTestPosition(t)
	// XXXX with both ends open on row 4: Cross to move wins by playing either end.
	applyBoth(pos, c,
		game.NewMove(4, 2, game.Cross), game.NewMove(0, 0, game.Circle),
		game.NewMove(4, 3, game.Cross), game.NewMove(1, 0, game.Circle),
		game.NewMove(4, 4, game.Cross), game.NewMove(2, 0, game.Circle),
		game.NewMove(4, 5, game.Cross), game.NewMove(3, 0, game.Circle),
	)

	table := tt.NewTable(4, 1 << 16)
	conf := DefaultConfig()
	conf.NumSimulation = 32
	tree := New(pos, conf, table, uniformInferencer{})

	move := tree.Search(pos, c)
	require.False(t, move.IsNull())
	assert.Equal(t, game.Cross, move.Sign())
	assert.True(t, move.Row() == 4 && (move.Col() == 1 || move.Col() == 6))
}

func TestPoliciesSumToOne(t *testing.T) {
	pos, c, _ := newTestPosition(t)
	table := tt.NewTable(4, 1024)
	conf := DefaultConfig()
	conf.NumSimulation = 16
	tree := New(pos, conf, table, uniformInferencer{})

	tree.Search(pos, c)
	policy, err := tree.Policies()
	require.NoError(t, err)

	var sum float32
	for _, p := range policy {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-3)
}

func TestNodeVarianceTracksSpread(t *testing.T) {
	pos, _, _ := newTestPosition(t)
	table := tt.NewTable(4, 1024)
	tree := New(pos, DefaultConfig(), table, uniformInferencer{})
	root := tree.alloc()
	node := tree.NodeFromNaughty(root)

	assert.Equal(t, float32(0), node.Variance())
	node.UpdateValue(1)
	node.UpdateValue(-1)
	node.UpdateValue(1)
	node.UpdateValue(-1)
	assert.InDelta(t, float32(1.333), node.Variance(), 0.01)
}

func TestAdvanceRootReusesSubtree(t *testing.T) {
	pos, c, _ := newTestPosition(t)
	table := tt.NewTable(4, 1024)
	conf := DefaultConfig()
	conf.NumSimulation = 8
	tree := New(pos, conf, table, uniformInferencer{})

	move := tree.Search(pos, c)
	require.False(t, move.IsNull())

	ok := tree.AdvanceRoot(move)
	require.True(t, ok)
	assert.Equal(t, move, tree.NodeFromNaughty(tree.Root()).Move())
}
