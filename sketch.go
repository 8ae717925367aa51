package countmin

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDimension is returned when a sketch is constructed
	// with a non-positive or oversized width or depth.
	ErrInvalidDimension = errors.New("countmin: invalid dimension")

	// ErrInvalidParameter is returned when epsilon or delta falls
	// outside the open interval (0, 1).
	ErrInvalidParameter = errors.New("countmin: parameter out of range")

	// ErrDimensionMismatch is returned by Merge when the two sketches
	// do not share the same width and depth.
	ErrDimensionMismatch = errors.New("countmin: dimension mismatch")
)

func errParam(name string, v float64) error {
	return fmt.Errorf("%w: %s must be in (0, 1), got %v", ErrInvalidParameter, name, v)
}

// Sketch is a non-thread-safe Count-Min frequency sketch. It estimates
// how many times each key has been observed using memory independent
// of the number of distinct keys: estimates never undercount, and
// overcounts are bounded per the epsilon/delta guarantee described in
// EstimateDimensions.
//
// The counter table is depth rows of width uint32 counters, stored
// row-major. width is always a power of two so that row indexing is a
// mask of the 32-bit row hash rather than a modulo. Counters wrap
// silently at 2^32; callers that may exceed that mass per cell should
// size the sketch accordingly.
type Sketch struct {
	width   int
	depth   int
	mask    uint32   // width - 1
	table   []uint32 // depth rows of width counters, row-major
	seeds   []uint32 // one per row: 0..depth-1
	scratch []uint32 // reused hash output buffer
	total   uint64   // sum of all applied counts
}

// New creates a sketch sized for the given accuracy targets: estimates
// exceed the true count by more than epsilon*TotalCount with
// probability at most delta. Both parameters must lie strictly between
// 0 and 1.
func New(epsilon, delta float64, opts ...Option) (*Sketch, error) {
	cfg := applyOptions(opts)

	width, depth, err := EstimateDimensions(epsilon, delta)
	if err != nil {
		return nil, err
	}

	cfg.emit(Event{
		Kind:    EventDimensionsEstimated,
		Width:   width,
		Depth:   depth,
		Epsilon: epsilon,
		Delta:   delta,
	})

	return newSketch(width, depth), nil
}

// NewWithDimensions creates a sketch with explicit dimensions. width
// is rounded up to the next power of two if necessary; the adjustment
// is reported through the diagnostics sink, not as an error.
func NewWithDimensions(width, depth int, opts ...Option) (*Sketch, error) {
	cfg := applyOptions(opts)

	if width <= 0 || depth <= 0 {
		return nil, fmt.Errorf("%w: width=%d depth=%d", ErrInvalidDimension, width, depth)
	}
	if width > MaxWidth {
		return nil, fmt.Errorf("%w: width %d exceeds %d", ErrInvalidDimension, width, MaxWidth)
	}

	normalized := nextPowerOf2(width)
	if normalized != width {
		cfg.emit(Event{
			Kind:           EventWidthAdjusted,
			RequestedWidth: width,
			Width:          normalized,
			Depth:          depth,
		})
	}

	return newSketch(normalized, depth), nil
}

// newSketch assumes width is already a validated power of two.
func newSketch(width, depth int) *Sketch {
	seeds := make([]uint32, depth)
	for i := range seeds {
		seeds[i] = uint32(i)
	}
	return &Sketch{
		width:   width,
		depth:   depth,
		mask:    uint32(width - 1),
		table:   make([]uint32, width*depth),
		seeds:   seeds,
		scratch: make([]uint32, depth),
	}
}

// Add records one observation of key.
func (s *Sketch) Add(key []byte) {
	s.AddN(key, 1)
}

// AddN records count observations of key. Non-positive counts are a
// no-op: the sketch only ever accumulates.
func (s *Sketch) AddN(key []byte, count int) {
	if count <= 0 {
		return
	}
	fillHashes(key, s.seeds, s.scratch)
	s.bump(uint32(count))
	s.total += uint64(count)
}

// AddString records one observation of a string key without allocating.
func (s *Sketch) AddString(key string) {
	s.AddStringN(key, 1)
}

// AddStringN records count observations of a string key without
// allocating. Non-positive counts are a no-op.
func (s *Sketch) AddStringN(key string, count int) {
	if count <= 0 {
		return
	}
	fillHashesString(key, s.seeds, s.scratch)
	s.bump(uint32(count))
	s.total += uint64(count)
}

// Query returns the estimated number of observations of key: the
// minimum of the key's counters across all rows. The result is never
// less than the true count; it may exceed it due to collisions.
func (s *Sketch) Query(key []byte) uint32 {
	fillHashes(key, s.seeds, s.scratch)
	return s.minAcross()
}

// QueryString is Query for string keys, without allocating.
func (s *Sketch) QueryString(key string) uint32 {
	fillHashesString(key, s.seeds, s.scratch)
	return s.minAcross()
}

// bump adds c to one counter per row, indexed by the hashes already in
// the scratch buffer. depth 5 is the common sizing (delta=0.01), so it
// gets an unrolled path; behavior is identical to the generic loop.
func (s *Sketch) bump(c uint32) {
	h, t, m, w := s.scratch, s.table, s.mask, s.width
	if s.depth == 5 {
		t[int(h[0]&m)] += c
		t[int(h[1]&m)+w] += c
		t[int(h[2]&m)+2*w] += c
		t[int(h[3]&m)+3*w] += c
		t[int(h[4]&m)+4*w] += c
		return
	}
	for i := 0; i < s.depth; i++ {
		t[int(h[i]&m)+i*w] += c
	}
}

// minAcross returns the minimum counter across rows for the hashes in
// the scratch buffer. Same depth-5 unrolled/generic split as bump.
func (s *Sketch) minAcross() uint32 {
	h, t, m, w := s.scratch, s.table, s.mask, s.width
	if s.depth == 5 {
		min := t[int(h[0]&m)]
		if v := t[int(h[1]&m)+w]; v < min {
			min = v
		}
		if v := t[int(h[2]&m)+2*w]; v < min {
			min = v
		}
		if v := t[int(h[3]&m)+3*w]; v < min {
			min = v
		}
		if v := t[int(h[4]&m)+4*w]; v < min {
			min = v
		}
		return min
	}
	min := t[int(h[0]&m)]
	for i := 1; i < s.depth; i++ {
		if v := t[int(h[i]&m)+i*w]; v < min {
			min = v
		}
	}
	return min
}

// Merge adds every counter of other into s. Both sketches must share
// the same width and depth; other is left unchanged. Merging sketches
// built over sub-streams yields the same table as applying all updates
// to one sketch, modulo counter wraparound.
func (s *Sketch) Merge(other *Sketch) error {
	if other.width != s.width || other.depth != s.depth {
		return fmt.Errorf("%w: %dx%d vs %dx%d",
			ErrDimensionMismatch, s.width, s.depth, other.width, other.depth)
	}
	for i, c := range other.table {
		s.table[i] += c
	}
	s.total += other.total
	return nil
}

// Clear resets every counter to zero in place. Width, depth and seeds
// are unchanged, so the sketch can be reused immediately.
func (s *Sketch) Clear() {
	clear(s.table)
	s.total = 0
}

// Width returns the number of counters per row (a power of two).
func (s *Sketch) Width() int {
	return s.width
}

// Depth returns the number of rows (independent hash functions).
func (s *Sketch) Depth() int {
	return s.depth
}

// TotalCount returns the sum of all counts applied via Add/AddN and
// Merge since construction or the last Clear.
func (s *Sketch) TotalCount() uint64 {
	return s.total
}

// ErrorBounds reports the accuracy guarantee of this sketch's
// dimensions: queries exceed the true count by more than
// epsilon*TotalCount with probability at most delta.
func (s *Sketch) ErrorBounds() (epsilon, delta float64) {
	return ErrorBounds(s.width, s.depth)
}
