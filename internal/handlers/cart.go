package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"matka/internal/bidform"
	"matka/internal/markettime"
	"matka/internal/submit"
)

type addItemsRequest struct {
	MarketID string               `json:"market_id"`
	GameType string               `json:"game_type"`
	Entries  []bidform.RawEntry   `json:"entries"`
	Bulk     *bidform.BulkRequest `json:"bulk"`
}

type submitRequest struct {
	MarketID      string `json:"market_id"`
	UserID        string `json:"user_id"` // bookie only
	ScheduledDate string `json:"scheduled_date"`
}

func (s *Server) GetCart(c *gin.Context) {
	claims := claimsFrom(c)
	c.JSON(http.StatusOK, gin.H{
		"cart":      s.Carts.Get(cartKey(claims.UserID)).Snapshot(),
		"in_flight": s.Submitter.InFlight(cartKey(claims.UserID)),
	})
}

// AddItems validates a bid form and appends the valid rows in one batch.
// Invalid rows are dropped and counted; nothing added is a warning, not an
// error.
func (s *Server) AddItems(c *gin.Context) {
	claims := claimsFrom(c)
	var req addItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	gt, err := s.Catalog.Get(req.GameType)
	if err != nil {
		s.writeError(c, err)
		return
	}
	_, types, sessions, err := s.biddable(c.Request.Context(), claims.UserID, req.MarketID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if len(sessions) == 0 {
		s.writeError(c, errMarketClosed)
		return
	}
	if !containsType(types, gt.Key) {
		s.writeError(c, errGameTypeClosed)
		return
	}
	raws := req.Entries
	if req.Bulk != nil {
		expanded, err := bidform.ExpandBulk(gt, *req.Bulk)
		if err != nil {
			s.writeError(c, err)
			return
		}
		raws = append(raws, expanded...)
	}
	if len(raws) == 0 {
		s.writeError(c, errNoEntries)
		return
	}
	entries, rejected := bidform.Prepare(gt, raws, sessions)
	crt := s.Carts.Get(cartKey(claims.UserID))
	added := crt.Add(entries, gt.Key, gt.Label, gt.BetType)
	rejected += len(entries) - added
	resp := gin.H{"added": added, "rejected": rejected, "cart": crt.Snapshot()}
	if added == 0 {
		resp["warning"] = "no valid entries to add"
	}
	c.JSON(http.StatusOK, resp)
}

func containsType(types []bidform.GameType, key string) bool {
	for _, gt := range types {
		if gt.Key == key {
			return true
		}
	}
	return false
}

func (s *Server) RemoveItem(c *gin.Context) {
	claims := claimsFrom(c)
	crt := s.Carts.Get(cartKey(claims.UserID))
	if !crt.Remove(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": crt.Snapshot()})
}

func (s *Server) ClearCart(c *gin.Context) {
	claims := claimsFrom(c)
	crt := s.Carts.Get(cartKey(claims.UserID))
	crt.Clear()
	c.JSON(http.StatusOK, gin.H{"cart": crt.Snapshot()})
}

// ReviewCart shows the wallet before and after placing the cart.
func (s *Server) ReviewCart(c *gin.Context) {
	claims := claimsFrom(c)
	review := s.Submitter.Review(submit.Request{
		CartKey: cartKey(claims.UserID),
		Balance: s.knownBalance(c.Request.Context(), claims),
	})
	c.JSON(http.StatusOK, review)
}

func (s *Server) SubmitCart(c *gin.Context) {
	s.submit(c, false)
}

func (s *Server) BookieSubmitCart(c *gin.Context) {
	s.submit(c, true)
}

func (s *Server) submit(c *gin.Context, bookie bool) {
	claims := claimsFrom(c)
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	ctx := c.Request.Context()
	date := strings.TrimSpace(req.ScheduledDate)
	if date == "" {
		if st, err := s.Settings.Load(ctx, claims.UserID); err == nil {
			date = st.BetDate
		}
	}
	sreq := submit.Request{
		CartKey:       cartKey(claims.UserID),
		ActorID:       claims.UserID,
		Bookie:        bookie,
		MarketID:      strings.TrimSpace(req.MarketID),
		ScheduledDate: date,
		Balance:       s.knownBalance(ctx, claims),
	}
	if bookie {
		sreq.PlayerID = strings.TrimSpace(req.UserID)
	}
	receipt, err := s.Submitter.Submit(ctx, sreq)
	if err != nil {
		s.writeError(c, err)
		return
	}
	resp := gin.H{
		"status":  "placed",
		"count":   receipt.Count,
		"total":   receipt.Total,
		"payload": receipt.Payload,
		"cart":    s.Carts.Get(cartKey(claims.UserID)).Snapshot(),
	}
	if receipt.NewBalance != nil {
		resp["new_balance"] = receipt.NewBalance
	}
	if date != "" && !markettime.IsFutureDate(date, s.now()) {
		resp["scheduled_date_ignored"] = true
	}
	c.JSON(http.StatusOK, resp)
}
