package nn

import "github.com/renjuzero/engine/game"

// Encode turns a position into the network's input planes, flattened
// row-major as (plane, row, col) to match the tensor shape Train expects
// (spec.md §4.8's "raw board + sign-to-move or a precomputed bitset of
// per-square features"). Planes beyond the ones this function fills stay
// zero, the way a trained net would simply learn to ignore unused capacity.
func Encode(pos *game.Position, conf Config) []float32 {
	rows, cols := conf.Height, conf.Width
	planeSize := rows * cols
	out := make([]float32, conf.Features*planeSize)

	board := pos.Board()
	toMove := pos.Turn()
	last := pos.LastMove()

	crossPlane := out[0*planeSize : 1*planeSize]
	circlePlane := out[1*planeSize : 2*planeSize]
	emptyPlane := out[2*planeSize : 3*planeSize]
	sideToMovePlane := out[3*planeSize : 4*planeSize]
	lastMovePlane := out[4*planeSize : 5*planeSize]

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			idx := r*cols + c
			switch board.At(r, c) {
			case game.Cross:
				crossPlane[idx] = 1
			case game.Circle:
				circlePlane[idx] = 1
			default:
				emptyPlane[idx] = 1
			}
		}
	}
	if toMove == game.Cross {
		for i := range sideToMovePlane {
			sideToMovePlane[i] = 1
		}
	}
	if !last.IsNull() && board.InBounds(last.Row(), last.Col()) {
		lastMovePlane[last.Row()*cols+last.Col()] = 1
	}

	ruleBase := numBasePlanes * planeSize
	rulePlane := out[ruleBase+int(pos.Config.Rule)*planeSize : ruleBase+(int(pos.Config.Rule)+1)*planeSize]
	for i := range rulePlane {
		rulePlane[i] = 1
	}

	return out
}
