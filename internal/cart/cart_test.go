package cart

import (
	"sync"
	"testing"

	"matka/internal/models"
)

func TestAddFiltersNonPositivePoints(t *testing.T) {
	c := New()
	if n := c.Add([]Entry{{Number: "5", Points: "0"}}, "single-digit", "Single Digit", "single"); n != 0 {
		t.Fatalf("added %d, want 0", n)
	}
	if c.Count() != 0 {
		t.Fatalf("cart should stay empty")
	}
	if n := c.Add([]Entry{{Number: "5", Points: "-3"}, {Number: "5", Points: "abc"}}, "single-digit", "Single Digit", "single"); n != 0 {
		t.Fatalf("added %d, want 0", n)
	}
}

func TestAddBatch(t *testing.T) {
	c := New()
	n := c.Add([]Entry{
		{Number: "5", Points: "10"},
		{Number: "7", Points: "20", Session: "close"},
	}, "single-digit", "Single Digit", "single")
	if n != 2 {
		t.Fatalf("added %d, want 2", n)
	}
	if c.Total() != 30 || c.Count() != 2 {
		t.Fatalf("total=%d count=%d, want 30/2", c.Total(), c.Count())
	}
	snap := c.Snapshot()
	if snap.Items[0].Number != "5" || snap.Items[1].Number != "7" {
		t.Fatalf("insertion order lost: %+v", snap.Items)
	}
	if snap.Items[0].Session != models.SessionOpen || snap.Items[1].Session != models.SessionClose {
		t.Fatalf("sessions not normalized: %+v", snap.Items)
	}
	if snap.Items[0].ID == "" || snap.Items[0].ID == snap.Items[1].ID {
		t.Fatalf("ids must be unique and non-empty")
	}
}

func TestAddRejectsInvalidNumbers(t *testing.T) {
	c := New()
	n := c.Add([]Entry{
		{Number: " 550 ", Points: "10"},
		{Number: "551", Points: "10"},
		{Number: "721", Points: "10"},
	}, "double-pana", "Double Pana", "panna")
	if n != 1 {
		t.Fatalf("added %d, want 1", n)
	}
	if got := c.Snapshot().Items[0].Number; got != "550" {
		t.Fatalf("number not trimmed: %q", got)
	}
}

func TestRemoveAndClear(t *testing.T) {
	c := New()
	c.Add([]Entry{{Number: "1", Points: "5"}, {Number: "2", Points: "7"}}, "single-digit", "Single Digit", "single")
	id := c.Snapshot().Items[0].ID
	if !c.Remove(id) {
		t.Fatalf("remove should find the item")
	}
	if c.Remove(id) {
		t.Fatalf("second remove should be a no-op")
	}
	if c.Total() != 7 || c.Count() != 1 {
		t.Fatalf("total=%d count=%d after remove", c.Total(), c.Count())
	}
	c.Clear()
	if c.Total() != 0 || c.Count() != 0 {
		t.Fatalf("clear left total=%d count=%d", c.Total(), c.Count())
	}
}

func TestRemoveAllKeepsNewerItems(t *testing.T) {
	c := New()
	c.Add([]Entry{{Number: "1", Points: "5"}, {Number: "2", Points: "7"}}, "single-digit", "Single Digit", "single")
	submitted := c.Snapshot()
	c.Add([]Entry{{Number: "3", Points: "9"}}, "single-digit", "Single Digit", "single")
	ids := make([]string, 0, len(submitted.Items))
	for _, it := range submitted.Items {
		ids = append(ids, it.ID)
	}
	c.RemoveAll(ids)
	snap := c.Snapshot()
	if snap.Count != 1 || snap.Items[0].Number != "3" || snap.Total != 9 {
		t.Fatalf("unexpected cart after RemoveAll: %+v", snap)
	}
}

func TestConcurrentAddsKeepTotalsConsistent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add([]Entry{{Number: "4", Points: "2"}, {Number: "6", Points: "3"}}, "single-digit", "Single Digit", "single")
		}()
	}
	wg.Wait()
	snap := c.Snapshot()
	var sum int64
	for _, it := range snap.Items {
		sum += it.Points
	}
	if snap.Count != 100 || snap.Total != 250 || sum != snap.Total {
		t.Fatalf("count=%d total=%d sum=%d", snap.Count, snap.Total, sum)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a := r.Get("u1")
	if r.Get("u1") != a {
		t.Fatalf("registry should return the same cart")
	}
	r.Drop("u1")
	if r.Get("u1") == a {
		t.Fatalf("dropped cart should be replaced")
	}
}
