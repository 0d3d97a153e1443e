package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"matka/internal/logger"
	"matka/internal/markettime"
	"matka/internal/models"
	"matka/internal/settlement"
)

const historyLimit = 200

type historyRow struct {
	TransactionID string                `json:"transactionId"`
	MarketID      string                `json:"marketId"`
	MarketName    string                `json:"marketName,omitempty"`
	BetType       string                `json:"betType"`
	BetNumber     string                `json:"betNumber"`
	Amount        int64                 `json:"amount"`
	Session       string                `json:"session"`
	PlacedAt      time.Time             `json:"placedAt"`
	BetDate       string                `json:"betDate"`
	Prediction    settlement.Prediction `json:"prediction"`
}

// History lists the bets for an IST date with the predicted outcome. A bet
// belongs to its scheduled date when it has one, else to the day it was
// placed. Predictions are advisory; missing results or rates leave them
// pending.
func (s *Server) History(c *gin.Context) {
	claims := claimsFrom(c)
	ctx := c.Request.Context()
	now := s.now()
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		date = markettime.Today(now)
	}
	if _, err := time.ParseInLocation("2006-01-02", date, markettime.IST); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	userID := ""
	if claims.IsBookie() {
		userID = strings.TrimSpace(c.Query("user_id"))
	}
	txs, err := s.API.Transactions(ctx, userID, historyLimit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	results, err := s.API.ResultHistory(ctx, date)
	if err != nil {
		s.log.WithError(err).WithFields(logger.Fields{"date": date}).Warn("result history unavailable")
	}
	byMarket := make(map[string]models.MarketResult, len(results))
	for _, r := range results {
		byMarket[r.MarketID] = r
	}
	rates := s.Feed.Rates()

	rows := make([]historyRow, 0)
	for _, tx := range txs {
		bet := tx.Bet
		if bet == nil {
			continue
		}
		if betDate(*bet) != date {
			continue
		}
		var result *models.MarketResult
		if r, ok := byMarket[bet.MarketID]; ok {
			result = &r
		}
		rows = append(rows, historyRow{
			TransactionID: tx.ID,
			MarketID:      bet.MarketID,
			MarketName:    bet.MarketName,
			BetType:       bet.BetType,
			BetNumber:     bet.BetNumber,
			Amount:        bet.Amount,
			Session:       bet.BetOn,
			PlacedAt:      bet.CreatedAt,
			BetDate:       date,
			Prediction: settlement.Predict(settlement.Bet{
				BetType:   bet.BetType,
				BetNumber: bet.BetNumber,
				Amount:    bet.Amount,
				Session:   bet.BetOn,
			}, result, rates),
		})
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "bets": rows})
}

func betDate(bet models.BetRecord) string {
	if d := strings.TrimSpace(bet.ScheduledDate); d != "" {
		if t, err := time.ParseInLocation("2006-01-02", d, markettime.IST); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return markettime.Today(bet.CreatedAt)
}
