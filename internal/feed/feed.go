// Package feed keeps the latest markets and payout rates in memory. It polls
// the backend on an interval, refreshes on demand, and resets at the start
// of each IST trading day. The last fetch wins; data is read-mostly.
package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"matka/internal/logger"
	"matka/internal/markettime"
	"matka/internal/models"
)

const (
	EventMarkets     = "markets"
	EventMarketReset = "market_reset"
	EventRates       = "rates"

	snapshotKey = "feed:markets"
	snapshotTTL = 10 * time.Minute
)

type Source interface {
	ListMarkets(ctx context.Context) ([]models.Market, error)
	CurrentRates(ctx context.Context) (*models.Rates, error)
}

// Notifier receives feed events for push to connected panels.
type Notifier func(event string, data interface{})

type Snapshot struct {
	Markets   []models.Market
	Rates     *models.Rates
	FetchedAt time.Time
}

type Feed struct {
	mu        sync.RWMutex
	markets   []models.Market
	rates     *models.Rates
	fetchedAt time.Time

	source       Source
	redis        *redis.Client
	notify       Notifier
	pollInterval time.Duration
	ratesEvery   time.Duration
	refreshCh    chan struct{}
	log          *logger.Entry
}

func New(source Source, rdb *redis.Client, pollInterval, ratesEvery time.Duration, notify Notifier) *Feed {
	if notify == nil {
		notify = func(string, interface{}) {}
	}
	return &Feed{
		source:       source,
		redis:        rdb,
		notify:       notify,
		pollInterval: pollInterval,
		ratesEvery:   ratesEvery,
		refreshCh:    make(chan struct{}, 1),
		log:          logger.GetLogger().WithComponent("feed"),
	}
}

func (f *Feed) Snapshot() Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	markets := make([]models.Market, len(f.markets))
	copy(markets, f.markets)
	return Snapshot{Markets: markets, Rates: f.rates, FetchedAt: f.fetchedAt}
}

func (f *Feed) Market(id string) (models.Market, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, m := range f.markets {
		if m.ID == id {
			return m, true
		}
	}
	return models.Market{}, false
}

func (f *Feed) Rates() *models.Rates {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.rates
}

// Refresh asks the poll loop for an immediate market fetch. Requests made
// while one is pending collapse into it.
func (f *Feed) Refresh() {
	select {
	case f.refreshCh <- struct{}{}:
	default:
	}
}

// Reset drops the day's markets and refetches.
func (f *Feed) Reset() {
	f.mu.Lock()
	f.markets = nil
	f.fetchedAt = time.Time{}
	f.mu.Unlock()
	if f.redis != nil {
		_ = f.redis.Del(context.Background(), snapshotKey).Err()
	}
	f.log.Info("market reset")
	f.notify(EventMarketReset, map[string]interface{}{"date": markettime.Today(time.Now())})
	f.Refresh()
}

func (f *Feed) PollMarkets(ctx context.Context) error {
	markets, err := f.source.ListMarkets(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	f.mu.Lock()
	f.markets = markets
	f.fetchedAt = now
	f.mu.Unlock()
	f.saveSnapshot(ctx, markets)
	f.notify(EventMarkets, map[string]interface{}{"count": len(markets), "fetched_at": now.UnixMilli()})
	return nil
}

func (f *Feed) PollRates(ctx context.Context) error {
	rates, err := f.source.CurrentRates(ctx)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.rates = rates
	f.mu.Unlock()
	f.notify(EventRates, rates)
	return nil
}

func (f *Feed) saveSnapshot(ctx context.Context, markets []models.Market) {
	if f.redis == nil {
		return
	}
	raw, err := json.Marshal(markets)
	if err != nil {
		return
	}
	if err := f.redis.Set(ctx, snapshotKey, raw, snapshotTTL).Err(); err != nil {
		f.log.WithError(err).Warn("snapshot save failed")
	}
}

// Warm seeds markets from the Redis snapshot so a restart serves data before
// the first poll completes.
func (f *Feed) Warm(ctx context.Context) {
	if f.redis == nil {
		return
	}
	raw, err := f.redis.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		return
	}
	var markets []models.Market
	if err := json.Unmarshal(raw, &markets); err != nil {
		return
	}
	f.mu.Lock()
	if f.markets == nil {
		f.markets = markets
	}
	f.mu.Unlock()
}

// Run polls until ctx ends. Errors are logged and the previous data kept.
func (f *Feed) Run(ctx context.Context) {
	f.Warm(ctx)
	f.pollMarkets(ctx)
	f.pollRates(ctx)
	marketTicker := time.NewTicker(f.pollInterval)
	defer marketTicker.Stop()
	ratesTicker := time.NewTicker(f.ratesEvery)
	defer ratesTicker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-marketTicker.C:
			f.pollMarkets(ctx)
		case <-f.refreshCh:
			f.pollMarkets(ctx)
		case <-ratesTicker.C:
			f.pollRates(ctx)
		}
	}
}

func (f *Feed) pollMarkets(ctx context.Context) {
	if err := f.PollMarkets(ctx); err != nil {
		f.log.WithError(err).Warn("market poll failed")
	}
}

func (f *Feed) pollRates(ctx context.Context) {
	if err := f.PollRates(ctx); err != nil {
		f.log.WithError(err).Warn("rates poll failed")
	}
}

// ScheduleReset registers Reset on a cron expression evaluated in IST.
func (f *Feed) ScheduleReset(expr string) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(markettime.IST))
	if _, err := c.AddFunc(expr, f.Reset); err != nil {
		return nil, err
	}
	return c, nil
}
