package tt

import (
	"sync/atomic"

	"github.com/renjuzero/engine/game"
)

// Data is the payload stored per position: a packed Score plus the bound it
// represents, the search depth it was computed at, the best move found, and
// two solver hint bits, matching SharedTableData's field layout exactly
// (generation and key are managed internally by Table, not by callers).
type Data struct {
	MustDefend    bool
	HasInitiative bool
	Bound         Bound
	Depth         int
	Score         Score
	BestMove      game.Move
	generation    uint8
}

func (d Data) pack(gen uint8) uint64 {
	var v uint64
	if d.MustDefend {
		v |= 1
	}
	if d.HasInitiative {
		v |= 1 << 1
	}
	v |= uint64(d.Bound) << 2
	v |= uint64(gen&0xF) << 4
	v |= uint64(uint8(128+clamp(d.Depth, -128, 127))) << 8
	v |= uint64(d.Score.Raw()) << 16
	v |= uint64(uint16(d.BestMove)) << 32
	return v
}

func unpack(v uint64) Data {
	return Data{
		MustDefend:    v&1 != 0,
		HasInitiative: (v>>1)&1 != 0,
		Bound:         Bound((v >> 2) & 3),
		generation:    uint8((v >> 4) & 0xF),
		Depth:         int((v>>8)&0xFF) - 128,
		Score:         FromRaw(uint16((v >> 16) & 0xFFFF)),
		BestMove:      game.Move(uint16((v >> 32) & 0xFFFF)),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// keyMask selects the 16 high bits of the low hash word that get folded
// into an entry's key, the same bits SharedTableData::mask picks out.
const keyMask = 0xFFFF000000000000

// entry is one bucket slot: the stored key XOR-folded with the value word,
// so a torn concurrent write (key updated, value not yet, or vice versa)
// is detected by key_matches failing rather than by a lock (grounded on
// SharedHashTable::Entry's XOR trick for lock-free snapshot reads).
type entry struct {
	key   uint64
	value uint64
}

func (e entry) getKey() uint64   { return e.key ^ e.value }
func (e entry) getValue() uint64 { return e.value }

func (e entry) keyMatches(h game.Hash128) bool {
	return e.getKey() == h.High && (e.getValue()&keyMask) == (h.Low&keyMask)
}

func newEntry(h game.Hash128, value uint64) entry {
	return entry{key: h.High ^ value, value: value}
}

// Table is a fixed-arity (N ways per bucket), power-of-two-sized shared
// hash table keyed by 128-bit Zobrist hash. Reads and writes are atomic
// per-word but not mutually exclusive across the (key, value) pair; replaced
// entries are detected via the XOR-fold rather than a lock, the way the
// original SharedHashTable avoids a mutex on the hot path.
type Table struct {
	ways       int
	mask       uint64
	buckets    []uint64 // key words, ways per logical bucket, interleaved
	values     []uint64
	generation uint32
}

// NewTable allocates a table with `ways` entries per bucket and at least
// `initialSize` buckets, rounded up to a power of two.
func NewTable(ways int, initialSize int) *Table {
	size := roundToPowerOf2(initialSize)
	t := &Table{
		ways:    ways,
		mask:    uint64(size - 1),
		buckets: make([]uint64, size*ways),
		values:  make([]uint64, size*ways),
	}
	return t
}

func roundToPowerOf2(n int) int {
	if n < 1 {
		n = 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func (t *Table) slot(h game.Hash128, way int) int {
	bucket := int(h.Low & t.mask)
	return bucket*t.ways + way
}

// withHashBits folds the hash's own top 16 low-word bits into the packed
// value's top 16 bits, the slot set_generation_and_key reserves for the key
// (so key verification only needs the XOR-folded high word plus this).
func withHashBits(packed uint64, h game.Hash128) uint64 {
	return (packed &^ keyMask) | (h.Low & keyMask)
}

// readEntry loads both words of a slot independently, each atomically, so a
// concurrent writer can never produce a torn single word; a torn (key,
// value) *pair* is instead caught by keyMatches failing on the XOR fold.
func (t *Table) readEntry(idx int) entry {
	return entry{
		key:   atomic.LoadUint64(&t.buckets[idx]),
		value: atomic.LoadUint64(&t.values[idx]),
	}
}

func (t *Table) writeEntry(idx int, e entry) {
	atomic.StoreUint64(&t.buckets[idx], e.key)
	atomic.StoreUint64(&t.values[idx], e.value)
}

// IncreaseGeneration advances the aging counter used to prefer fresh
// entries over stale ones when both have equal depth.
func (t *Table) IncreaseGeneration() {
	t.generation = (t.generation + 1) % 16
}

// Seek returns the stored Data for hash, or the zero value (BoundNone) if
// absent.
func (t *Table) Seek(h game.Hash128) Data {
	for way := 0; way < t.ways; way++ {
		e := t.readEntry(t.slot(h, way))
		if e.keyMatches(h) {
			return unpack(e.getValue())
		}
	}
	return Data{}
}

// Insert stores data under hash. When data is proven or exact and a way
// already holds the same position, that way is overwritten in place;
// otherwise the least valuable way in the bucket (shallowest, oldest
// generation) is evicted, mirroring SharedHashTable::insert.
func (t *Table) Insert(h game.Hash128, data Data) {
	packed := withHashBits(data.pack(uint8(t.generation)), h)
	newE := newEntry(h, packed)

	if data.Score.IsProven() || data.Bound == BoundExact {
		for way := 0; way < t.ways; way++ {
			idx := t.slot(h, way)
			if t.readEntry(idx).keyMatches(h) {
				t.writeEntry(idx, newE)
				return
			}
		}
	}

	victim := t.slot(h, 0)
	victimValue := valueOf(unpack(t.readEntry(victim).getValue()), t.generation)
	for way := 1; way < t.ways; way++ {
		idx := t.slot(h, way)
		v := valueOf(unpack(t.readEntry(idx).getValue()), t.generation)
		if v < victimValue {
			victim, victimValue = idx, v
		}
	}
	t.writeEntry(victim, newE)
}

func valueOf(d Data, baseGeneration uint32) int {
	return d.Depth - int(baseGeneration-uint32(d.generation))
}

// LoadFactor returns the fraction of occupied slots. When approximate is
// true only a representative head slice of the table is sampled, trading
// accuracy for speed on very large tables (spec.md "loadFactor
// (approximate)").
func (t *Table) LoadFactor(approximate bool) float64 {
	n := len(t.buckets)
	if approximate {
		sample := n >> 10
		if sample < 1024 {
			sample = 1024
		}
		if sample > n {
			sample = n
		}
		n = sample
	}
	occupied := 0
	for i := 0; i < n; i++ {
		if unpack(atomic.LoadUint64(&t.values[i])).Bound != BoundNone {
			occupied++
		}
	}
	return float64(occupied) / float64(n)
}

// Clear resets every slot to empty.
func (t *Table) Clear() {
	for i := range t.buckets {
		atomic.StoreUint64(&t.buckets[i], 0)
		atomic.StoreUint64(&t.values[i], 0)
	}
}
