// Package mcts implements a Monte Carlo tree search over gomoku-family
// positions: an arena of Node/edge slots addressed by index rather than
// pointer (grounded on naughty.go/node.go/tree.go's node arena), selected
// with a pluggable Selector (PUCT by default), with values backed up along
// each simulated path and threat-space proofs recorded on the node where
// they are found; proofs are not propagated to ancestors (spec.md §4.7,
// §4.8).
package mcts

// Naughty is an index into Tree.nodes, used instead of a *Node pointer so
// the arena can be stored as a flat, cache-friendly slice.
type Naughty int32

const nilNode Naughty = -1

// IsValid reports whether n addresses an allocated node.
func (n Naughty) IsValid() bool { return n >= 0 }
