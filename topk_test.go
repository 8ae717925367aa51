package countmin

import (
	"errors"
	"fmt"
	"testing"
)

func TestTopKBasic(t *testing.T) {
	tk, err := NewTopK(3, 0.001, 0.01)
	if err != nil {
		t.Fatalf("NewTopK failed: %v", err)
	}

	tk.AddN("apple", 50)
	tk.AddN("banana", 30)
	tk.AddN("cherry", 20)
	tk.AddN("durian", 5)

	top := tk.Top()
	if len(top) != 3 {
		t.Fatalf("expected 3 tracked items, got %d", len(top))
	}
	want := []ItemCount{
		{Item: "apple", Count: 50},
		{Item: "banana", Count: 30},
		{Item: "cherry", Count: 20},
	}
	for i, w := range want {
		if top[i] != w {
			t.Errorf("top[%d] = %+v, want %+v", i, top[i], w)
		}
	}
}

func TestTopKEviction(t *testing.T) {
	tk, err := NewTopK(2, 0.001, 0.01)
	if err != nil {
		t.Fatalf("NewTopK failed: %v", err)
	}

	tk.AddN("cold", 1)
	tk.AddN("warm", 10)
	// "hot" overtakes "cold" and must evict it
	tk.AddN("hot", 100)

	top := tk.Top()
	if len(top) != 2 {
		t.Fatalf("expected 2 tracked items, got %d", len(top))
	}
	if top[0].Item != "hot" || top[1].Item != "warm" {
		t.Errorf("expected [hot warm], got [%s %s]", top[0].Item, top[1].Item)
	}

	// The evicted key is still counted by the sketch
	if got := tk.Count("cold"); got < 1 {
		t.Errorf("expected sketch estimate >= 1 for evicted key, got %d", got)
	}
}

func TestTopKIncrementalUpdates(t *testing.T) {
	tk, err := NewTopK(5, 0.001, 0.01)
	if err != nil {
		t.Fatalf("NewTopK failed: %v", err)
	}

	// 20 keys, key i observed 10*(i+1) times, one observation at a time
	for round := 0; round < 200; round++ {
		for i := 0; i < 20; i++ {
			if round < 10*(i+1) {
				tk.Add(fmt.Sprintf("key-%d", i))
			}
		}
	}

	top := tk.Top()
	if len(top) != 5 {
		t.Fatalf("expected 5 tracked items, got %d", len(top))
	}
	for rank, ic := range top {
		wantItem := fmt.Sprintf("key-%d", 19-rank)
		wantCount := uint32(10 * (20 - rank))
		if ic.Item != wantItem {
			t.Errorf("rank %d: got %q, want %q", rank, ic.Item, wantItem)
		}
		if ic.Count < wantCount {
			t.Errorf("rank %d: count %d undercounts true %d", rank, ic.Count, wantCount)
		}
	}
}

func TestTopKNonPositiveCounts(t *testing.T) {
	tk, err := NewTopK(3, 0.001, 0.01)
	if err != nil {
		t.Fatalf("NewTopK failed: %v", err)
	}

	tk.AddN("apple", 5)
	tk.AddN("apple", 0)
	tk.AddN("apple", -7)
	tk.AddN("ghost", 0)

	if got := tk.Count("apple"); got != 5 {
		t.Errorf("expected apple count 5, got %d", got)
	}
	top := tk.Top()
	if len(top) != 1 {
		t.Errorf("expected only apple tracked, got %d items", len(top))
	}
}

func TestTopKInvalid(t *testing.T) {
	if _, err := NewTopK(0, 0.01, 0.01); !errors.Is(err, ErrInvalidDimension) {
		t.Errorf("expected ErrInvalidDimension for k=0, got %v", err)
	}
	if _, err := NewTopK(-3, 0.01, 0.01); !errors.Is(err, ErrInvalidDimension) {
		t.Errorf("expected ErrInvalidDimension for k=-3, got %v", err)
	}
	if _, err := NewTopK(5, 0, 0.01); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for epsilon=0, got %v", err)
	}
}

func TestTopKAccessors(t *testing.T) {
	tk, err := NewTopK(7, 0.01, 0.01)
	if err != nil {
		t.Fatalf("NewTopK failed: %v", err)
	}
	if tk.K() != 7 {
		t.Errorf("K() = %d, want 7", tk.K())
	}
	if tk.Sketch() == nil || tk.Sketch().Depth() != 5 {
		t.Errorf("unexpected backing sketch: %+v", tk.Sketch())
	}
}
