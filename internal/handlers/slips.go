package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"matka/internal/journal"
)

func (s *Server) ListSlips(c *gin.Context) {
	if s.Journal == nil {
		c.JSON(http.StatusOK, gin.H{"slips": []journal.Slip{}})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	slips, err := s.Journal.List(c.Request.Context(), claimsFrom(c).UserID, limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slips": slips})
}
