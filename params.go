package countmin

import "math"

// MaxWidth is the largest supported table width. Widths are masked
// against 32-bit hashes, so a row must not exceed 2^31 counters.
const MaxWidth = 1 << 30

// EstimateDimensions derives the table dimensions that satisfy the
// standard Count-Min accuracy guarantee: for a key with true frequency
// f and total inserted mass N, the estimate is at most f + epsilon*N
// with probability at least 1-delta.
//
// width is ceil(e/epsilon) rounded up to the next power of two;
// depth is ceil(ln(1/delta)), at least 1. Both parameters must lie
// strictly between 0 and 1.
func EstimateDimensions(epsilon, delta float64) (width, depth int, err error) {
	if !(epsilon > 0 && epsilon < 1) {
		return 0, 0, errParam("epsilon", epsilon)
	}
	if !(delta > 0 && delta < 1) {
		return 0, 0, errParam("delta", delta)
	}

	cols := math.Ceil(math.E / epsilon)
	if cols > MaxWidth {
		return 0, 0, errParam("epsilon", epsilon)
	}
	width = nextPowerOf2(int(cols))
	depth = int(math.Ceil(math.Log(1 / delta)))
	if depth < 1 {
		depth = 1
	}
	return width, depth, nil
}

// ErrorBounds is the inverse of EstimateDimensions: it reports the
// accuracy guarantee a table of the given dimensions provides.
// epsilon is e/width, delta is exp(-depth).
func ErrorBounds(width, depth int) (epsilon, delta float64) {
	if width <= 0 || depth <= 0 {
		return 0, 0
	}
	return math.E / float64(width), math.Exp(-float64(depth))
}

// nextPowerOf2 returns the smallest power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
