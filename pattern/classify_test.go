package pattern

import (
	"testing"

	"github.com/renjuzero/engine/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	w := window{game.Cross, game.None, game.Circle, game.Illegal, game.Cross}
	enc := encode(w)
	got := decode(enc, len(w))
	assert.Equal(t, w, got)
}

func TestClassifyOpenFour(t *testing.T) {
	w := window{game.None, game.Cross, game.Cross, game.None, game.Cross, game.None, game.None}
	res := classifyOneForRule(w, 3, game.Cross, game.Freestyle)
	assert.Equal(t, Open4, res.typ)
}

func TestClassifyOpenThree(t *testing.T) {
	w := window{game.None, game.None, game.Cross, game.None, game.Cross, game.None, game.None}
	res := classifyOneForRule(w, 3, game.Cross, game.Freestyle)
	assert.Equal(t, Open3, res.typ)
}

func TestClassifyFive(t *testing.T) {
	w := window{game.Cross, game.Cross, game.None, game.Cross, game.Cross, game.None, game.None}
	res := classifyOneForRule(w, 2, game.Cross, game.Freestyle)
	assert.Equal(t, Five, res.typ)
}

func TestClassifyOverline(t *testing.T) {
	w := window{game.Cross, game.Cross, game.Cross, game.None, game.Cross, game.Cross, game.None}
	res := classifyOneForRule(w, 3, game.Cross, game.Renju)
	assert.Equal(t, Overline, res.typ)
}

func TestCaroBorderCountsAsOpen(t *testing.T) {
	w := window{game.Illegal, game.Cross, game.Cross, game.None, game.None, game.None, game.None}
	freeRes := classifyOneForRule(w, 3, game.Cross, game.Freestyle)
	caroRes := classifyOneForRule(w, 3, game.Cross, game.Caro5)
	assert.NotEqual(t, Open3, freeRes.typ)
	assert.Equal(t, Open3, caroRes.typ)
}

func TestTableBuildAndLookupAgreesWithClassifyOne(t *testing.T) {
	table := Build(game.Freestyle)
	require.Equal(t, game.Freestyle.WindowLength(), table.Len)

	w := window{game.None, game.Cross, game.Cross, game.Cross, game.None, game.None, game.None, game.None, game.None}
	require.Len(t, w, table.Len)
	enc := table.Encode(w)
	entry := table.Lookup(enc)

	want := classifyOneForRule(w, table.Mid, game.Cross, game.Freestyle)
	assert.Equal(t, want.typ, entry.ForCross)
}

func TestForRuleCaches(t *testing.T) {
	a := ForRule(game.Standard)
	b := ForRule(game.Standard)
	assert.Same(t, a, b)
}

func TestAggregateFork(t *testing.T) {
	threat := Aggregate([4]Type{Open3, Open3, None, None}, game.Renju)
	assert.Equal(t, ThreatFork3x3, threat)
	assert.True(t, IsForbiddenFork(threat, game.Renju, game.Cross))
	assert.False(t, IsForbiddenFork(threat, game.Renju, game.Circle))
}

func TestAggregateDoubleFour(t *testing.T) {
	threat := Aggregate([4]Type{Open4, HalfOpen4, None, None}, game.Renju)
	assert.Equal(t, ThreatFork4x4, threat)
}
