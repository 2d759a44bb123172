package game

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/golang/freetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	cellPx   = 32
	stoneRad = 13
)

var (
	gridColor  = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	crossColor = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	circleFill = color.RGBA{R: 250, G: 250, B: 250, A: 255}
	labelColor = color.RGBA{R: 200, G: 30, B: 30, A: 255}
)

// RenderPNG rasterizes board to a PNG written to w: a ruled grid, stones as
// filled circles (Cross black, Circle white with a black outline), and the
// square played by lastMove marked with an "x" via TrueType text
// (freetype against the Go font shipped by golang.org/x/image). It is a
// debug helper, not a production renderer.
func RenderPNG(w io.Writer, b Board, lastMove Move) error {
	width := b.Cols() * cellPx
	height := b.Rows() * cellPx
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	drawGrid(img, b.Rows(), b.Cols())

	for row := 0; row < b.Rows(); row++ {
		for col := 0; col < b.Cols(); col++ {
			switch b.At(row, col) {
			case Cross:
				drawStone(img, row, col, crossColor, true)
			case Circle:
				drawStone(img, row, col, circleFill, false)
			}
		}
	}

	if !lastMove.IsNull() {
		if err := labelSquare(img, lastMove.Row(), lastMove.Col()); err != nil {
			return err
		}
	}

	return png.Encode(w, img)
}

func drawGrid(img *image.RGBA, rows, cols int) {
	for row := 0; row <= rows; row++ {
		y := row * cellPx
		if y >= img.Bounds().Dy() {
			y = img.Bounds().Dy() - 1
		}
		for x := 0; x < img.Bounds().Dx(); x++ {
			img.Set(x, y, gridColor)
		}
	}
	for col := 0; col <= cols; col++ {
		x := col * cellPx
		if x >= img.Bounds().Dx() {
			x = img.Bounds().Dx() - 1
		}
		for y := 0; y < img.Bounds().Dy(); y++ {
			img.Set(x, y, gridColor)
		}
	}
}

func drawStone(img *image.RGBA, row, col int, fill color.RGBA, filled bool) {
	cx := col*cellPx + cellPx/2
	cy := row*cellPx + cellPx/2
	for dy := -stoneRad; dy <= stoneRad; dy++ {
		for dx := -stoneRad; dx <= stoneRad; dx++ {
			if dx*dx+dy*dy > stoneRad*stoneRad {
				continue
			}
			ring := dx*dx+dy*dy > (stoneRad-2)*(stoneRad-2)
			c := fill
			if !filled && ring {
				c = crossColor // outline of an unfilled stone
			}
			img.Set(cx+dx, cy+dy, c)
		}
	}
}

func labelSquare(img *image.RGBA, row, col int) error {
	f, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return errors.WithMessage(err, "game: parsing embedded font")
	}
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(f)
	ctx.SetFontSize(18)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.NewUniform(labelColor))

	pt := freetype.Pt(col*cellPx+cellPx/4, row*cellPx+cellPx*3/4)
	_, err = ctx.DrawString("x", pt)
	if err != nil {
		return errors.WithMessage(err, "game: drawing last-move label")
	}
	return nil
}
