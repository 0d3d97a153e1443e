package handlers

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"matka/internal/markettime"
	"matka/internal/submit"
)

const placementTTL = 72 * time.Hour

// countPlacement tallies confirmed points per market and IST day. Counters
// live in memory and are flushed to Redis every second.
func (s *Server) countPlacement(_ context.Context, r submit.Receipt) {
	key := placementKey(markettime.Today(r.PlacedAt), r.Payload.MarketID)
	val, _ := s.placeCounters.LoadOrStore(key, &atomic.Int64{})
	val.(*atomic.Int64).Add(r.Total)
}

// StartPlacementFlusher runs until ctx ends.
func (s *Server) StartPlacementFlusher(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.flushPlacements()
				return
			case <-ticker.C:
				s.flushPlacements()
			}
		}
	}()
}

func (s *Server) flushPlacements() {
	if s == nil || s.Redis == nil {
		return
	}
	ctx := context.Background()
	pipe := s.Redis.Pipeline()
	has := false
	s.placeCounters.Range(func(key, value any) bool {
		redisKey, ok := key.(string)
		if !ok {
			return true
		}
		counter, ok := value.(*atomic.Int64)
		if !ok {
			return true
		}
		n := counter.Swap(0)
		if n <= 0 {
			return true
		}
		has = true
		pipe.IncrBy(ctx, redisKey, n)
		pipe.Expire(ctx, redisKey, placementTTL)
		return true
	})
	if has {
		if _, err := pipe.Exec(ctx); err != nil {
			s.log.WithError(err).Warn("placement flush failed")
		}
	}
}

// PlacementStats reports points placed per market on an IST date, including
// counts not yet flushed.
func (s *Server) PlacementStats(c *gin.Context) {
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		date = markettime.Today(s.now())
	}
	ctx := c.Request.Context()
	snap := s.Feed.Snapshot()
	out := make(map[string]int64, len(snap.Markets))
	for _, m := range snap.Markets {
		key := placementKey(date, m.ID)
		var total int64
		if val, ok := s.placeCounters.Load(key); ok {
			total = val.(*atomic.Int64).Load()
		}
		if s.Redis != nil {
			n, err := s.Redis.Get(ctx, key).Int64()
			if err == nil {
				total += n
			}
		}
		out[m.ID] = total
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "points": out, "online": s.Hub.OnlineCount()})
}
