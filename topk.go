package countmin

import (
	"container/heap"
	"fmt"
	"sort"
)

// ItemCount is an item together with its estimated observation count.
type ItemCount struct {
	Item  string
	Count uint32
}

// TopK tracks the k most frequently observed string keys using a
// sketch for frequency estimates and a min-heap of the current
// heaviest items. Memory is O(sketch) + O(k) regardless of the number
// of distinct keys.
//
// Like Sketch, a TopK is not safe for concurrent use.
type TopK struct {
	k      int
	sketch *Sketch
	heap   topHeap
}

// NewTopK creates a tracker for the k heaviest keys, backed by a
// sketch sized for the given accuracy targets. Counts reported for the
// tracked items inherit the sketch's overestimation bound.
func NewTopK(k int, epsilon, delta float64, opts ...Option) (*TopK, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrInvalidDimension, k)
	}
	sketch, err := New(epsilon, delta, opts...)
	if err != nil {
		return nil, err
	}
	return &TopK{
		k:      k,
		sketch: sketch,
		heap: topHeap{
			entries: make([]topEntry, 0, k),
			index:   make(map[string]int, k),
		},
	}, nil
}

// Add records one observation of item.
func (t *TopK) Add(item string) {
	t.AddN(item, 1)
}

// AddN records count observations of item and updates the tracked set:
// the item either refreshes its tracked count, fills a free slot, or
// evicts the current minimum if its estimate is now higher.
// Non-positive counts are a no-op.
func (t *TopK) AddN(item string, count int) {
	if count <= 0 {
		return
	}
	t.sketch.AddStringN(item, count)
	est := t.sketch.QueryString(item)

	if pos, ok := t.heap.index[item]; ok {
		t.heap.entries[pos].count = est
		heap.Fix(&t.heap, pos)
		return
	}
	if len(t.heap.entries) < t.k {
		heap.Push(&t.heap, topEntry{item: item, count: est})
		return
	}
	if est > t.heap.entries[0].count {
		evicted := t.heap.entries[0].item
		delete(t.heap.index, evicted)
		t.heap.entries[0] = topEntry{item: item, count: est}
		t.heap.index[item] = 0
		heap.Fix(&t.heap, 0)
	}
}

// Count returns the sketch's estimate for item, tracked or not.
func (t *TopK) Count(item string) uint32 {
	return t.sketch.QueryString(item)
}

// Top returns the tracked items ordered by descending count, ties
// broken by item for determinism. The slice is owned by the caller.
func (t *TopK) Top() []ItemCount {
	out := make([]ItemCount, len(t.heap.entries))
	for i, e := range t.heap.entries {
		out[i] = ItemCount{Item: e.item, Count: e.count}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Item < out[j].Item
	})
	return out
}

// K returns the maximum number of tracked items.
func (t *TopK) K() int {
	return t.k
}

// Sketch returns the underlying frequency sketch.
func (t *TopK) Sketch() *Sketch {
	return t.sketch
}

type topEntry struct {
	item  string
	count uint32
}

// topHeap is a min-heap on count with a back-pointer index so tracked
// items can be refreshed in place.
type topHeap struct {
	entries []topEntry
	index   map[string]int
}

func (h *topHeap) Len() int { return len(h.entries) }

func (h *topHeap) Less(i, j int) bool { return h.entries[i].count < h.entries[j].count }

func (h *topHeap) Swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
	h.index[h.entries[i].item] = i
	h.index[h.entries[j].item] = j
}

func (h *topHeap) Push(x any) {
	e := x.(topEntry)
	h.index[e.item] = len(h.entries)
	h.entries = append(h.entries, e)
}

func (h *topHeap) Pop() any {
	e := h.entries[len(h.entries)-1]
	h.entries = h.entries[:len(h.entries)-1]
	delete(h.index, e.item)
	return e
}
