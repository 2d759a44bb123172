package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renjuzero/engine/game"
)

func TestParsePosition(t *testing.T) {
	msg := Parse("POSITION 3,3,1 3,4,2")
	require.Equal(t, SetPosition, msg.Type)
	require.Len(t, msg.Moves, 2)
	assert.Equal(t, game.NewMove(3, 3, game.Cross), msg.Moves[0])
	assert.Equal(t, game.NewMove(3, 4, game.Circle), msg.Moves[1])
}

func TestParseGoVariants(t *testing.T) {
	assert.Equal(t, GoalBestMove, Parse("GO").Goal)
	assert.Equal(t, GoalSwap2, Parse("GO swap2").Goal)
	assert.Equal(t, GoalPonder, Parse("GO ponder").Goal)
}

func TestParseUnknownCommand(t *testing.T) {
	msg := Parse("FROBNICATE")
	assert.Equal(t, UnknownCommand, msg.Type)
}

func TestParseMalformedPositionIsError(t *testing.T) {
	msg := Parse("POSITION not-a-move")
	assert.Equal(t, ErrorMessage, msg.Type)
}

func TestFormatBestMove(t *testing.T) {
	assert.Equal(t, "4,5", FormatBestMove(game.NewMove(4, 5, game.Cross)))
}
