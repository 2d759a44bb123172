package game

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPNGProducesDecodableImage(t *testing.T) {
	b := NewBoard(9, 9)
	b.Set(4, 4, Cross)
	b.Set(4, 5, Circle)
	last := NewMove(4, 5, Circle)

	var buf bytes.Buffer
	require.NoError(t, RenderPNG(&buf, b, last))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 9*cellPx, img.Bounds().Dx())
	assert.Equal(t, 9*cellPx, img.Bounds().Dy())
}

func TestRenderPNGWithoutLastMove(t *testing.T) {
	b := NewBoard(5, 5)
	var buf bytes.Buffer
	require.NoError(t, RenderPNG(&buf, b, NullMove))
	assert.NotEmpty(t, buf.Bytes())
}
