package mcts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renjuzero/engine/game"
	"github.com/renjuzero/engine/tt"
)

func buildTwoChildTree(t *testing.T) (*Tree, Naughty, Naughty, Naughty) {
	t.Helper()
	pos, _, _ := newTestPosition(t)
	table := tt.NewTable(4, 1024)
	tree := New(pos, DefaultConfig(), table, uniformInferencer{})

	root := tree.alloc()
	tree.root = root
	a := tree.New(game.NewMove(4, 4, game.Cross), 0.6)
	b := tree.New(game.NewMove(4, 5, game.Cross), 0.4)
	tree.AddChild(root, a)
	tree.AddChild(root, b)
	return tree, root, a, b
}

func TestSelectorsPreferProvenLoss(t *testing.T) {
	selectors := []Selector{
		Select, SelectNoisyPUCT, SelectUCT, SelectSequentialHalving,
		SelectMaxVisit, SelectMaxQ, SelectBestEdge, SelectBalanced,
	}
	for _, sel := range selectors {
		tree, root, _, b := buildTwoChildTree(t)
		tree.NodeFromNaughty(b).SetProven(tt.Loss)
		got := sel(tree, root, tree.Config.PUCT)
		assert.Equal(t, b, got)
	}
}

func TestSelectMaxVisitPicksMostVisited(t *testing.T) {
	tree, root, a, b := buildTwoChildTree(t)
	tree.NodeFromNaughty(a).Update(0.1)
	tree.NodeFromNaughty(a).Update(0.1)
	tree.NodeFromNaughty(b).Update(0.1)

	got := SelectMaxVisit(tree, root, 0)
	assert.Equal(t, a, got)
}

func TestSelectorForDefaultsToPUCT(t *testing.T) {
	pos, _, cfg := newTestPosition(t)
	_ = cfg
	table := tt.NewTable(4, 1024)
	tree := New(pos, DefaultConfig(), table, uniformInferencer{})
	require.NotNil(t, tree.selectorFor())
}
