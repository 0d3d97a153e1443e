package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"matka/internal/settings"
)

func (s *Server) GetSettings(c *gin.Context) {
	st, err := s.Settings.Load(c.Request.Context(), claimsFrom(c).UserID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// UpdateSettings applies a partial update. Out-of-range values are clamped,
// not rejected.
func (s *Server) UpdateSettings(c *gin.Context) {
	var patch settings.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	st, err := s.Settings.Update(c.Request.Context(), claimsFrom(c).UserID, patch)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
