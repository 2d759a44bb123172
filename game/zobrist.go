package game

import (
	"math/rand"
)

// Hash128 is a 128-bit Zobrist hash: the low 64 bits index the shared hash
// table's buckets, the high 64 bits verify the entry, per spec.md §4.3/§4.4.
type Hash128 struct {
	Low, High uint64
}

// XOR returns the bitwise XOR of two hashes.
func (h Hash128) XOR(o Hash128) Hash128 {
	return Hash128{Low: h.Low ^ o.Low, High: h.High ^ o.High}
}

// Zobrist is a process-wide, immutable-after-construction table of random
// 128-bit keys, one per (row, col, sign), plus a side-to-move key. It is
// built once per board shape and then only ever read.
type Zobrist struct {
	rows, cols int
	keys       [][3]Hash128 // index: row*cols+col, sign in {Cross, Circle, Illegal} -> 0,1,2 (None contributes nothing)
	sideToMove Hash128
}

// NewZobrist builds a deterministic-seeded key table for a board of the
// given dimensions. The seed is fixed so that two processes agree on the
// same hash space; only the relative XOR structure matters for correctness.
func NewZobrist(rows, cols int) *Zobrist {
	r := rand.New(rand.NewSource(0x9E3779B97F4A7C15))
	z := &Zobrist{rows: rows, cols: cols, keys: make([][3]Hash128, rows*cols)}
	for i := range z.keys {
		for s := 0; s < 3; s++ {
			z.keys[i][s] = Hash128{Low: r.Uint64(), High: r.Uint64()}
		}
	}
	z.sideToMove = Hash128{Low: r.Uint64(), High: r.Uint64()}
	return z
}

func signSlot(s Sign) (int, bool) {
	switch s {
	case Cross:
		return 0, true
	case Circle:
		return 1, true
	case Illegal:
		return 2, true
	default:
		return 0, false
	}
}

// KeyFor returns the key contribution of placing sign at (row, col).
func (z *Zobrist) KeyFor(row, col int, sign Sign) Hash128 {
	slot, ok := signSlot(sign)
	if !ok {
		return Hash128{}
	}
	return z.keys[row*z.cols+col][slot]
}

// UpdateHash XORs the key for `move` into h, toggling its presence, and
// flips the side-to-move key, since every move passes the turn.
func (z *Zobrist) UpdateHash(h Hash128, move Move) Hash128 {
	return h.XOR(z.KeyFor(move.Row(), move.Col(), move.Sign())).XOR(z.sideToMove)
}

// SideToMoveKey returns the key folded in whenever it's Circle's turn,
// distinguishing positions that differ only in whose move it is.
func (z *Zobrist) SideToMoveKey() Hash128 { return z.sideToMove }

// Hash folds an entire board (plus side to move) into one 128-bit key.
// Testable property (spec.md §8, invariant 3): this equals Zobrist(empty)
// with every move that produced the board applied through UpdateHash, in
// any order.
func (z *Zobrist) Hash(b Board, sideToMove Sign) Hash128 {
	h := Hash128{}
	for r := 0; r < b.Rows(); r++ {
		for c := 0; c < b.Cols(); c++ {
			if s := b.At(r, c); s == Cross || s == Circle {
				h = h.XOR(z.KeyFor(r, c, s))
			}
		}
	}
	if sideToMove == Circle {
		h = h.XOR(z.sideToMove)
	}
	return h
}
