// Package countmin provides a Count-Min Sketch for approximate
// frequency counting over streams.
//
// A Count-Min Sketch estimates how many times each key has been
// observed using memory that is independent of the number of distinct
// keys. It trades exactness for space: an estimate is never below the
// true count, and the overcount is bounded with a tunable
// probabilistic guarantee.
//
// # Architecture
//
// The sketch is a flat table of depth rows, each holding width uint32
// counters. Every update hashes the key once per row with a seeded
// 32-bit FNV-1a function (the row index is the seed, XORed into the
// offset basis) and increments one counter per row; a query returns
// the minimum of the same counters. Width is always a power of two so
// row indexing is a bitmask of the hash rather than a modulo, and the
// per-call hash outputs go into a reused scratch buffer, keeping the
// hot path allocation-free.
//
// Incremental seeds are a deliberate speed/quality trade-off: rows are
// decorrelated by cheap XOR seeding of a single base hash rather than
// by independently keyed hash functions.
//
// # Choosing Parameters
//
// Use [New] with an error factor epsilon and a failure probability
// delta, both strictly between 0 and 1:
//
//	// Estimates within 1% of the total mass, 99% of the time
//	s, err := countmin.New(0.01, 0.01)
//
// For a key with true frequency f and total inserted mass N, the
// estimate is at most f + epsilon*N with probability at least
// 1-delta. Width grows as e/epsilon and depth as ln(1/delta), so
// tighter guarantees cost memory and per-operation hashing.
// [NewWithDimensions] gives explicit control over the table instead.
//
// # Merging
//
// Equal-dimension sketches merge by element-wise counter addition,
// which is commutative and associative: merging sketches built over
// sub-streams yields the same table as counting the combined stream
// on one sketch. This is the only supported cross-instance operation.
//
// # Serialization
//
// Three equivalent forms are provided: [Sketch.Snapshot] (a structured
// record of width, depth and the row-major table), JSON via
// [Sketch.MarshalJSON] and [UnmarshalJSON], and a compact versioned
// binary encoding via [Sketch.MarshalBinary] and [UnmarshalBinary].
// Hash seeds are regenerated from depth on restore, so query behavior
// survives a round trip exactly.
//
// # Thread Safety
//
// [Sketch] is NOT safe for concurrent use: updates and queries share
// the table and a scratch hash buffer, so overlapping calls must be
// serialized externally (one sketch per worker, or a mutex around the
// instance). [Rolling] wraps its sketches in a mutex and is safe for
// concurrent use.
//
// # Counter Overflow
//
// Counters are 32-bit and wrap silently at 2^32. Overflow is not
// guarded; size the sketch so that no single cell can accumulate that
// much mass if wraparound matters to you.
//
// # Companions
//
// [TopK] tracks the k most frequent keys on top of a sketch, and
// [Rolling] answers per-key rate queries over a sliding time window
// using a ring of bucketed sketches.
//
// # References
//
//   - Cormode, Muthukrishnan: "An Improved Data Stream Summary: The
//     Count-Min Sketch and its Applications"
//     https://dsf.berkeley.edu/cs286/papers/countmin-latin2004.pdf
//   - https://en.wikipedia.org/wiki/Count%E2%80%93min_sketch
package countmin
