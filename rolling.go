package countmin

import (
	"fmt"
	"sync"
	"time"
)

// Rolling counts events in time-based buckets, each backed by its own
// sketch, and answers per-key rate queries over a sliding window.
// Observations always land in the current bucket; when the current
// bucket's interval elapses, a new bucket starts, and once the
// configured number of buckets exists the oldest one is cleared and
// recycled as the new current bucket.
//
// Rolling serializes access internally, so unlike Sketch it is safe
// for concurrent use.
type Rolling struct {
	width    int
	depth    int
	interval time.Duration // duration covered by each bucket
	max      int           // maximum number of buckets

	mu      sync.Mutex
	clock   func() time.Time // overridable in tests
	buckets []rollingBucket  // oldest first; last is current
}

type rollingBucket struct {
	sketch *Sketch
	start  time.Time
}

// NewRolling creates a rolling counter whose buckets each cover
// interval and whose window retains at most buckets of them. The
// per-bucket sketches are sized from epsilon and delta as in New.
func NewRolling(epsilon, delta float64, interval time.Duration, buckets int) (*Rolling, error) {
	width, depth, err := EstimateDimensions(epsilon, delta)
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive, got %v", ErrInvalidDimension, interval)
	}
	if buckets <= 0 {
		return nil, fmt.Errorf("%w: buckets must be positive, got %d", ErrInvalidDimension, buckets)
	}
	return &Rolling{
		width:    width,
		depth:    depth,
		interval: interval,
		max:      buckets,
		clock:    time.Now,
	}, nil
}

// Observe records count observations of key in the current bucket.
// Non-positive counts are a no-op.
func (r *Rolling) Observe(key []byte, count int) {
	if count <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current(r.clock()).AddN(key, count)
}

// Rate returns the estimated observations per second of key over the
// trailing window. If the window (or the retained data) covers less
// than a second, 0 is returned. The estimate inherits the sketch
// overcount bound and never undercounts the retained buckets.
func (r *Rolling) Rate(key []byte, window time.Duration) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock()
	from := now.Add(-window)

	var (
		total   float64
		covered time.Duration
	)
	for _, b := range r.buckets {
		end := b.start.Add(r.interval)
		if end.After(now) {
			end = now
		}
		if !end.After(from) || !end.After(b.start) {
			continue
		}

		n := float64(b.sketch.Query(key))
		d := end.Sub(b.start)
		if b.start.Before(from) {
			// Window starts inside this bucket: assume a uniform
			// spread and scale the count to the covered fraction.
			part := end.Sub(from)
			n *= float64(part) / float64(d)
			d = part
		}
		total += n
		covered += d
	}

	if covered < time.Second {
		return 0
	}
	return total / covered.Seconds()
}

// Total returns the unscaled sum of key's estimates across every
// bucket that overlaps the trailing window.
func (r *Rolling) Total(key []byte, window time.Duration) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock()
	from := now.Add(-window)

	var total uint64
	for _, b := range r.buckets {
		if !b.start.Add(r.interval).After(from) {
			continue
		}
		total += uint64(b.sketch.Query(key))
	}
	return total
}

// current returns the bucket covering now, rotating the ring as
// needed. Callers must hold r.mu.
func (r *Rolling) current(now time.Time) *Sketch {
	n := len(r.buckets)
	if n > 0 && now.Sub(r.buckets[n-1].start) < r.interval {
		return r.buckets[n-1].sketch
	}

	if n < r.max {
		r.buckets = append(r.buckets, rollingBucket{
			sketch: newSketch(r.width, r.depth),
			start:  now,
		})
		return r.buckets[n].sketch
	}

	// Ring is full: recycle the oldest bucket as the new current one.
	oldest := r.buckets[0]
	oldest.sketch.Clear()
	oldest.start = now
	copy(r.buckets, r.buckets[1:])
	r.buckets[n-1] = oldest
	return oldest.sketch
}
