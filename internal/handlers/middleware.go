package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"matka/internal/auth"
	"matka/internal/backend"
	"matka/internal/logger"
)

const claimsKey = "claims"

func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := getBearerToken(c.Request)
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		claims, err := auth.ParseToken(s.JWTSecret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if err := s.validateSession(claims.UserID, claims.SessionID); err != nil {
			status := http.StatusUnauthorized
			if err != errInvalidSession {
				status = http.StatusServiceUnavailable
			}
			c.AbortWithStatusJSON(status, gin.H{"error": "session invalid"})
			return
		}
		if claims.APIToken != "" {
			c.Request = c.Request.WithContext(backend.WithToken(c.Request.Context(), claims.APIToken))
		}
		c.Set(claimsKey, claims)
		c.Set("uid", claims.UserID)
		c.Next()
	}
}

// BookieRequired must run after AuthRequired.
func (s *Server) BookieRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil || !claims.IsBookie() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "bookie required"})
			return
		}
		c.Next()
	}
}

func claimsFrom(c *gin.Context) *auth.Claims {
	val, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := val.(*auth.Claims)
	return claims
}

// RequestLogger logs one line per request with its status and latency.
func RequestLogger() gin.HandlerFunc {
	log := logger.GetLogger().WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		entry := log.WithFields(logger.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		})
		if uid, ok := c.Get("uid"); ok {
			entry = entry.WithFields(logger.Fields{"user_id": uid})
		}
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request")
		case status >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}
