package pattern

import "github.com/renjuzero/engine/game"

// window is a line of signs with the centre (index mid) always game.None:
// patterns are only ever evaluated at empty squares (spec.md §4.2).
type window []game.Sign

func encode(w window) uint32 {
	var enc uint32
	for i, s := range w {
		enc |= uint32(s) << uint(2*i)
	}
	return enc
}

func decode(enc uint32, length int) window {
	w := make(window, length)
	for i := range w {
		w[i] = game.Sign((enc >> uint(2*i)) & 3)
	}
	return w
}

// classified is the result of classifying one window from one colour's
// perspective: the resulting Type, and the offsets (relative to the window,
// not the board) of the squares the opponent must occupy to stop this
// pattern from promoting to FIVE or OPEN_4 (spec.md §4.1 "defensiveMoves").
type classified struct {
	typ     Type
	defense []int
}

// classifyOneForRule evaluates the effect of `own` playing at the window's
// centre, under the openness conventions of `rule`.
func classifyOneForRule(w window, mid int, own game.Sign, rule game.Rule) classified {
	n := len(w)

	line := make(window, n)
	copy(line, w)
	line[mid] = own

	lo, hi := mid, mid
	for lo-1 >= 0 && line[lo-1] == own {
		lo--
	}
	for hi+1 < n && line[hi+1] == own {
		hi++
	}
	runLen := hi - lo + 1

	leftOpen := lo-1 >= 0 && isOpenCell(line[lo-1], rule)
	rightOpen := hi+1 < n && isOpenCell(line[hi+1], rule)

	switch {
	case runLen >= 6 && (rule == game.Standard || (rule == game.Renju && own == game.Cross)):
		return classified{typ: Overline}
	case runLen >= 5:
		return classified{typ: Five}
	case runLen == 4:
		result := classified{}
		switch {
		case leftOpen && rightOpen:
			result = classified{typ: Open4, defense: []int{lo - 1, hi + 1}}
		case leftOpen:
			result = classified{typ: HalfOpen4, defense: []int{lo - 1}}
		case rightOpen:
			result = classified{typ: HalfOpen4, defense: []int{hi + 1}}
		default:
			return classified{typ: None}
		}
		if hasSecondaryFour(line, own, lo, hi) {
			result.typ = Double4
		}
		return result
	case runLen == 3:
		switch {
		case leftOpen && rightOpen:
			extLeftOpen := lo-2 >= 0 && line[lo-2] == game.None
			extRightOpen := hi+2 < n && line[hi+2] == game.None
			if extLeftOpen || extRightOpen {
				return classified{typ: Open3, defense: []int{lo - 1, hi + 1}}
			}
			return classified{typ: HalfOpen3, defense: []int{lo - 1, hi + 1}}
		case leftOpen:
			return classified{typ: HalfOpen3, defense: []int{lo - 1}}
		case rightOpen:
			return classified{typ: HalfOpen3, defense: []int{hi + 1}}
		default:
			return classified{typ: None}
		}
	default:
		return classified{typ: None}
	}
}

// hasSecondaryFour reports whether, outside [excludeLo, excludeHi], the line
// already contains an independent run of `own` of length >= 4. This is how
// Double4 ("broken four" / two simultaneous four-threats along one line) is
// detected: the move at the centre both completes its own four and the
// window happens to carry another, unrelated one.
func hasSecondaryFour(line window, own game.Sign, excludeLo, excludeHi int) bool {
	n := len(line)
	i := 0
	for i < n {
		if i >= excludeLo && i <= excludeHi {
			i++
			continue
		}
		if line[i] != own {
			i++
			continue
		}
		j := i
		for j+1 < n && line[j+1] == own && !(j+1 >= excludeLo && j+1 <= excludeHi) {
			j++
		}
		if j-i+1 >= 4 {
			return true
		}
		i = j + 1
	}
	return false
}

// updateMaskFor returns the bitmask of window offsets (excluding mid) whose
// own classification could change when the centre's sign changes: every
// empty square within line-of-sight, conservatively.
func updateMaskFor(w window, mid int) uint16 {
	var mask uint16
	for i, s := range w {
		if i != mid && s == game.None {
			mask |= 1 << uint(i)
		}
	}
	return mask
}

func bitsFrom(offsets []int) uint16 {
	var mask uint16
	for _, o := range offsets {
		mask |= 1 << uint(o)
	}
	return mask
}
