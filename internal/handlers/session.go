package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"matka/internal/auth"
	"matka/internal/backend"
	"matka/internal/logger"
)

type sessionRequest struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	APIToken string `json:"api_token"`
}

// CreateSession exchanges a backend token for a panel token. The backend
// token is checked with a heartbeat and must belong to user_id; bookie
// sessions also need the X-Bookie-Token key.
func (s *Server) CreateSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	req.APIToken = strings.TrimSpace(req.APIToken)
	if req.UserID == "" || req.APIToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and api_token are required"})
		return
	}
	role, err := auth.ParseRole(strings.TrimSpace(req.Role))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if role == auth.RoleBookie {
		key := strings.TrimSpace(c.GetHeader("X-Bookie-Token"))
		if s.Cfg.BookieToken == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.Cfg.BookieToken)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid bookie key"})
			return
		}
	}
	ctx := backend.WithToken(c.Request.Context(), req.APIToken)
	if err := s.API.Heartbeat(ctx); err != nil {
		if errors.Is(err, backend.ErrSuspended) {
			c.JSON(http.StatusForbidden, gin.H{"error": "account suspended"})
			return
		}
		s.writeError(c, err)
		return
	}
	me, err := s.API.Me(ctx)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if me.ID != req.UserID {
		s.log.WithFields(logger.Fields{"user_id": req.UserID, "token_user": me.ID}).Warn("session user mismatch")
		c.JSON(http.StatusForbidden, gin.H{"error": "token does not belong to user"})
		return
	}
	token, err := s.SignToken(req.UserID, role, req.APIToken)
	if err != nil {
		s.log.WithError(err).Error("session save failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
		return
	}
	st, _ := s.Settings.Load(ctx, req.UserID)
	s.log.WithFields(logger.Fields{"user_id": req.UserID, "role": role}).Info("session created")
	c.JSON(http.StatusOK, gin.H{"token": token, "role": role, "settings": st})
}

func (s *Server) DeleteSession(c *gin.Context) {
	claims := claimsFrom(c)
	s.revokeSession(claims.UserID)
	s.Carts.Drop(cartKey(claims.UserID))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Heartbeat proxies the panel's keep-alive. Suspension logs the user out.
func (s *Server) Heartbeat(c *gin.Context) {
	claims := claimsFrom(c)
	err := s.heartbeat(c.Request.Context(), claims)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "server_time": s.now().UnixMilli()})
		return
	}
	if errors.Is(err, backend.ErrSuspended) {
		c.JSON(http.StatusForbidden, gin.H{"error": "account suspended", "logout": true})
		return
	}
	s.writeError(c, err)
}
