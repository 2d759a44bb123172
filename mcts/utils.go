package mcts

import "github.com/chewxy/math32"

// argmax returns the index of the largest value in a, used as the
// degenerate one-ply fallback when a position's root could not be expanded
// at all (grounded on utils.go's argmax, used the same way in search.go's
// Search() when the root ends up with no children).
func argmax(a []float32) int {
	var retVal int
	max := math32.Inf(-1)
	for i := range a {
		if a[i] > max {
			max = a[i]
			retVal = i
		}
	}
	return retVal
}
