package settings

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"matka/internal/markettime"
	"matka/internal/submit"
)

func testLimits() Limits {
	return Limits{
		SidebarMin: 200, SidebarMax: 480,
		CartMin: 280, CartMax: 640,
		DefaultLanguage: "en",
		Languages:       map[string]bool{"en": true, "hi": true},
	}
}

func newTestStore(listeners ...Listener) (*Store, *MemoryKV) {
	kv := NewMemoryKV()
	s := NewStore(kv, testLimits(), listeners...)
	s.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, markettime.IST) }
	return s, kv
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestLoadDefaults(t *testing.T) {
	s, _ := newTestStore()
	st, err := s.Load(context.Background(), "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if st.SidebarWidth != 200 || st.CartWidth != 280 || st.Language != "en" || st.Balance != nil {
		t.Fatalf("defaults = %+v", st)
	}
}

func TestUpdateClampsAndPersists(t *testing.T) {
	var notified []Settings
	s, _ := newTestStore(func(owner string, st Settings) { notified = append(notified, st) })
	ctx := context.Background()
	st, err := s.Update(ctx, "u1", Patch{
		SidebarWidth: intPtr(9000),
		CartWidth:    intPtr(10),
		Language:     strPtr("fr"),
		BetDate:      strPtr("2026-03-16"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if st.SidebarWidth != 480 || st.CartWidth != 280 || st.Language != "en" || st.BetDate != "2026-03-16" {
		t.Fatalf("normalized = %+v", st)
	}
	if len(notified) != 1 {
		t.Fatalf("listeners called %d times", len(notified))
	}
	again, _ := s.Load(ctx, "u1")
	if again.BetDate != "2026-03-16" || again.SidebarWidth != 480 {
		t.Fatalf("reloaded = %+v", again)
	}
	st, _ = s.Update(ctx, "u1", Patch{Language: strPtr("hi")})
	if st.Language != "hi" || st.BetDate != "2026-03-16" {
		t.Fatalf("partial patch clobbered fields: %+v", st)
	}
}

func TestPastOrBadBetDateIsForgotten(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()
	st, _ := s.Update(ctx, "u1", Patch{BetDate: strPtr("2026-03-13")})
	if st.BetDate != "" {
		t.Fatalf("past date kept: %q", st.BetDate)
	}
	st, _ = s.Update(ctx, "u1", Patch{BetDate: strPtr("14/03/2026")})
	if st.BetDate != "" {
		t.Fatalf("malformed date kept: %q", st.BetDate)
	}
}

func TestCorruptValueFallsBackToDefaults(t *testing.T) {
	s, kv := newTestStore()
	_ = kv.Set(context.Background(), settingsKey("u1"), "{not json")
	st, err := s.Load(context.Background(), "u1")
	if err != nil || st.Language != "en" {
		t.Fatalf("load corrupt = %+v, %v", st, err)
	}
}

func TestPlacedUpdatesBalanceCache(t *testing.T) {
	var pushed Settings
	s, _ := newTestStore(func(owner string, st Settings) { pushed = st })
	ctx := context.Background()
	bal := decimal.NewFromInt(420)
	s.Placed(ctx, submit.Receipt{ActorID: "b1", Bookie: true, NewBalance: &bal})
	got := s.CachedBalance(ctx, "b1", true)
	if got == nil || !got.Equal(bal) {
		t.Fatalf("bookie balance = %v", got)
	}
	if s.CachedBalance(ctx, "b1", false) != nil {
		t.Fatalf("player balance should be untouched")
	}
	if pushed.BookieBalance == nil {
		t.Fatalf("listener did not see the balance")
	}
	s.Placed(ctx, submit.Receipt{ActorID: "u2"})
	if s.CachedBalance(ctx, "u2", false) != nil {
		t.Fatalf("receipt without balance should not write")
	}
}

type slowKV struct {
	*MemoryKV
}

func (k slowKV) Get(ctx context.Context, key string) (string, error) {
	time.Sleep(time.Millisecond)
	return k.MemoryKV.Get(ctx, key)
}

func TestConcurrentWritesKeepBothFields(t *testing.T) {
	s := NewStore(slowKV{NewMemoryKV()}, testLimits())
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		var wg sync.WaitGroup
		wg.Add(2)
		bal := decimal.NewFromInt(int64(100 + i))
		go func() {
			defer wg.Done()
			_, _ = s.Update(ctx, "u1", Patch{SidebarWidth: intPtr(300 + i)})
		}()
		go func() {
			defer wg.Done()
			_, _ = s.SetBalance(ctx, "u1", false, bal)
		}()
		wg.Wait()
		st, err := s.Load(ctx, "u1")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if st.Balance == nil || !st.Balance.Equal(bal) || st.SidebarWidth != 300+i {
			t.Fatalf("round %d: balance=%v sidebar=%d", i, st.Balance, st.SidebarWidth)
		}
	}
}
