package handlers

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"matka/internal/models"
)

type playerView struct {
	models.Player
	Online bool `json:"online"`
}

// ListPlayers returns the bookie's players, active first, with presence and
// masked phone numbers.
func (s *Server) ListPlayers(c *gin.Context) {
	players, err := s.API.ListUsers(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	views := make([]playerView, 0, len(players))
	for _, p := range players {
		if q != "" && !strings.Contains(strings.ToLower(p.Username), q) && !strings.Contains(p.Phone, q) {
			continue
		}
		p.Phone = maskKeep(p.Phone, 2, 3)
		views = append(views, playerView{Player: p, Online: s.Hub.IsOnline(p.ID)})
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].IsActive && !views[j].IsActive
	})
	c.JSON(http.StatusOK, gin.H{"players": views})
}
