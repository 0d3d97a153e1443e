package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const walletTxLimit = 20

// GetWallet reads the balance straight from the backend, refreshes the
// cached copy and returns the latest transactions. A bookie may pass
// user_id to look at one of their players.
func (s *Server) GetWallet(c *gin.Context) {
	claims := claimsFrom(c)
	ctx := c.Request.Context()
	userID := ""
	if claims.IsBookie() {
		userID = strings.TrimSpace(c.Query("user_id"))
	}
	balance, err := s.API.Balance(ctx, userID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if userID == "" {
		if _, err := s.Settings.SetBalance(ctx, claims.UserID, claims.IsBookie(), balance); err != nil {
			s.log.WithError(err).Warn("balance cache update failed")
		}
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit <= 0 || limit > historyLimit {
		limit = walletTxLimit
	}
	txs, err := s.API.Transactions(ctx, userID, limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance, "transactions": txs})
}

func maskKeep(s string, head, tail int) string {
	if s == "" {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= head+tail {
		return s
	}
	masked := make([]rune, 0, len(runes))
	masked = append(masked, runes[:head]...)
	for i := 0; i < len(runes)-head-tail; i++ {
		masked = append(masked, '*')
	}
	masked = append(masked, runes[len(runes)-tail:]...)
	return string(masked)
}
