package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"matka/internal/auth"
	"matka/internal/backend"
	"matka/internal/logger"
	"matka/internal/markettime"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// HandleWS upgrades an authenticated panel to the push channel. While it is
// connected the server sends heartbeats upstream on the panel's behalf.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = getBearerToken(r)
	}
	claims, err := auth.ParseToken(s.JWTSecret, token)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if err := s.validateSession(claims.UserID, claims.SessionID); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := NewWSClient(claims.UserID, conn)
	s.Hub.Register(client)

	ctx, cancel := context.WithCancel(context.Background())
	if claims.APIToken != "" {
		ctx = backend.WithToken(ctx, claims.APIToken)
	}
	defer func() {
		cancel()
		s.Hub.Unregister(client)
		_ = conn.Close()
		close(client.SendCh)
	}()

	go client.WritePump()
	go s.heartbeatLoop(ctx, claims)

	now := s.now()
	st, _ := s.Settings.Load(ctx, claims.UserID)
	client.Send(mustJSON(WSMessage{
		Type: "hello",
		Data: map[string]interface{}{
			"server_time": now.UnixMilli(),
			"today":       markettime.Today(now),
			"user": map[string]interface{}{
				"id":   claims.UserID,
				"role": claims.Role,
			},
			"settings": st,
		},
	}))

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var inbound struct {
			Type string `json:"type"`
			Ts   int64  `json:"ts"`
			Seq  int64  `json:"seq"`
		}
		if err := json.Unmarshal(msg, &inbound); err != nil {
			continue
		}
		switch inbound.Type {
		case "ping":
			client.Send(mustJSON(WSMessage{
				Type: "pong",
				Data: map[string]interface{}{
					"ts":          inbound.Ts,
					"seq":         inbound.Seq,
					"server_time": time.Now().UnixMilli(),
				},
			}))
		case "cart":
			client.Send(mustJSON(WSMessage{
				Type: "cart",
				Data: s.Carts.Get(cartKey(claims.UserID)).Snapshot(),
			}))
		}
	}
}

func (s *Server) heartbeatLoop(ctx context.Context, claims *auth.Claims) {
	ticker := time.NewTicker(s.Cfg.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.heartbeat(ctx, claims); errors.Is(err, backend.ErrSuspended) {
				return
			}
		}
	}
}

// heartbeat pings the backend for claims. A suspended account is logged out
// everywhere; any other failure is left for the next beat.
func (s *Server) heartbeat(ctx context.Context, claims *auth.Claims) error {
	err := s.API.Heartbeat(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, backend.ErrSuspended) {
		s.forceLogout(claims.UserID, "suspended")
		return err
	}
	s.log.WithError(err).WithFields(logger.Fields{"user_id": claims.UserID}).Debug("heartbeat failed")
	return err
}
