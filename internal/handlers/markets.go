package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"matka/internal/bidform"
	"matka/internal/markettime"
	"matka/internal/models"
	"matka/internal/submit"
)

type marketView struct {
	models.Market
	Status    models.MarketStatus `json:"status"`
	Session   markettime.Session  `json:"session"`
	OpensIn   *int64              `json:"opensIn,omitempty"`  // seconds
	ClosesIn  *int64              `json:"closesIn,omitempty"` // seconds
	GameTypes []string            `json:"gameTypes"`
}

func seconds(d time.Duration, ok bool) *int64 {
	if !ok {
		return nil
	}
	v := int64(d / time.Second)
	return &v
}

func (s *Server) viewMarket(m models.Market, now time.Time) marketView {
	v := marketView{
		Market:    m,
		Status:    markettime.Status(m, now),
		Session:   markettime.GetMarketSession(m, now),
		OpensIn:   seconds(markettime.GetTimeUntilOpen(m, now)),
		ClosesIn:  seconds(markettime.GetTimeUntilClose(m, now)),
		GameTypes: []string{},
	}
	for _, gt := range s.Catalog.Available(m, now) {
		v.GameTypes = append(v.GameTypes, gt.Key)
	}
	return v
}

func (s *Server) ListMarkets(c *gin.Context) {
	snap := s.Feed.Snapshot()
	now := s.now()
	views := make([]marketView, 0, len(snap.Markets))
	for _, m := range snap.Markets {
		if m.IsActive != nil && !*m.IsActive {
			continue
		}
		views = append(views, s.viewMarket(m, now))
	}
	var fetchedAt int64
	if !snap.FetchedAt.IsZero() {
		fetchedAt = snap.FetchedAt.UnixMilli()
	}
	c.JSON(http.StatusOK, gin.H{
		"markets":     views,
		"fetched_at":  fetchedAt,
		"server_time": now.UnixMilli(),
	})
}

func (s *Server) RefreshMarkets(c *gin.Context) {
	s.Feed.Refresh()
	c.JSON(http.StatusAccepted, gin.H{"status": "refreshing"})
}

// biddable resolves what a user may add to a market right now. A bet date in
// the future opens every game type and both sessions.
func (s *Server) biddable(ctx context.Context, userID, marketID string) (models.Market, []bidform.GameType, []models.Session, error) {
	marketID = strings.TrimSpace(marketID)
	if marketID == "" {
		return models.Market{}, nil, nil, submit.ErrNoMarket
	}
	m, ok := s.Feed.Market(marketID)
	if !ok || (m.IsActive != nil && !*m.IsActive) {
		return models.Market{}, nil, nil, errUnknownMarket
	}
	now := s.now()
	if st, err := s.Settings.Load(ctx, userID); err == nil && markettime.IsFutureDate(st.BetDate, now) {
		return m, s.Catalog.All(), []models.Session{models.SessionOpen, models.SessionClose}, nil
	}
	return m, s.Catalog.Available(m, now), bidform.Sessions(m, now), nil
}

func (s *Server) ListGameTypes(c *gin.Context) {
	marketID := c.Query("market_id")
	if marketID == "" {
		c.JSON(http.StatusOK, gin.H{"game_types": s.Catalog.All()})
		return
	}
	_, types, sessions, err := s.biddable(c.Request.Context(), claimsFrom(c).UserID, marketID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if types == nil {
		types = []bidform.GameType{}
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	c.JSON(http.StatusOK, gin.H{"game_types": types, "sessions": sessions})
}
