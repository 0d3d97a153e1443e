package handlers

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"matka/internal/auth"
	"matka/internal/bidform"
	"matka/internal/cart"
	"matka/internal/config"
	"matka/internal/feed"
	"matka/internal/journal"
	"matka/internal/logger"
	"matka/internal/models"
	"matka/internal/settings"
	"matka/internal/submit"
)

const sessionTTL = 7 * 24 * time.Hour

// Backend is the slice of the betting API the routes call.
type Backend interface {
	submit.Placer
	feed.Source
	ListUsers(ctx context.Context) ([]models.Player, error)
	Heartbeat(ctx context.Context) error
	Me(ctx context.Context) (models.Player, error)
	Balance(ctx context.Context, userID string) (decimal.Decimal, error)
	Transactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error)
	ResultHistory(ctx context.Context, date string) ([]models.MarketResult, error)
}

type Server struct {
	Cfg       config.Config
	Redis     *redis.Client
	API       Backend
	JWTSecret []byte
	Catalog   *bidform.Catalog
	Carts     *cart.Registry
	Submitter *submit.Submitter
	Settings  *settings.Store
	Journal   *journal.Journal
	Feed      *feed.Feed
	Hub       *Hub

	placeCounters sync.Map
	now           func() time.Time
	log           *logger.Entry
}

// NewServer wires the panel services. rdb and db may be nil: settings then
// live in memory, sessions are not checked and no journal is written.
func NewServer(cfg config.Config, rdb *redis.Client, db *sql.DB, api Backend) *Server {
	srv := &Server{
		Cfg:       cfg,
		Redis:     rdb,
		API:       api,
		JWTSecret: []byte(cfg.JWTSecret),
		Catalog:   bidform.Default(),
		Carts:     cart.NewRegistry(),
		Hub:       NewHub(),
		now:       time.Now,
		log:       logger.GetLogger().WithComponent("handlers"),
	}
	var kv settings.KV = settings.NewMemoryKV()
	if rdb != nil {
		kv = settings.RedisKV{Client: rdb}
	}
	srv.Settings = settings.NewStore(kv, settings.Limits{
		SidebarMin:      cfg.SidebarMinWidth,
		SidebarMax:      cfg.SidebarMaxWidth,
		CartMin:         cfg.CartMinWidth,
		CartMax:         cfg.CartMaxWidth,
		DefaultLanguage: cfg.DefaultLanguage,
		Languages:       cfg.Languages,
	}, srv.pushSettings)
	if cfg.JournalEnabled && db != nil {
		srv.Journal = journal.New(db)
	}
	sinks := []submit.Sink{srv.Settings, submit.SinkFunc(srv.countPlacement)}
	if srv.Journal != nil {
		sinks = append(sinks, srv.Journal)
	}
	srv.Submitter = submit.NewSubmitter(api, srv.Carts, sinks...)
	srv.Feed = feed.New(api, rdb, cfg.MarketPollInterval, cfg.RatesPollInterval, srv.broadcast)
	return srv
}

func (s *Server) SignToken(userID string, role auth.Role, apiToken string) (string, error) {
	sessionID := newSessionID()
	if err := s.saveSession(userID, sessionID, sessionTTL); err != nil {
		return "", err
	}
	return auth.GenerateToken(s.JWTSecret, userID, role, sessionID, apiToken, sessionTTL)
}

func (s *Server) saveSession(userID, sessionID string, ttl time.Duration) error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.Set(context.Background(), sessionKey(userID), sessionID, ttl).Err()
}

func (s *Server) validateSession(userID, sessionID string) error {
	if s.Redis == nil {
		return nil
	}
	val, err := s.Redis.Get(context.Background(), sessionKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return errInvalidSession
		}
		return err
	}
	if val != sessionID {
		return errInvalidSession
	}
	return nil
}

func (s *Server) revokeSession(userID string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(context.Background(), sessionKey(userID)).Err(); err != nil {
		s.log.WithError(err).WithFields(logger.Fields{"user_id": userID}).Warn("session revoke failed")
	}
}

// forceLogout ends every panel of userID: the session is revoked, the cart
// dropped and connected sockets told to log out.
func (s *Server) forceLogout(userID, reason string) {
	s.revokeSession(userID)
	s.Carts.Drop(cartKey(userID))
	s.Hub.SendToUser(userID, mustJSON(WSMessage{
		Type: "logout",
		Data: map[string]interface{}{"reason": reason},
	}))
	s.log.WithFields(logger.Fields{"user_id": userID, "reason": reason}).Warn("forced logout")
}

func (s *Server) broadcast(event string, data interface{}) {
	s.Hub.Broadcast(mustJSON(WSMessage{Type: event, Data: data}))
}

func (s *Server) pushSettings(owner string, st settings.Settings) {
	s.Hub.SendToUser(owner, mustJSON(WSMessage{Type: "settings", Data: st}))
	if st.Balance != nil || st.BookieBalance != nil {
		s.Hub.SendToUser(owner, mustJSON(WSMessage{
			Type: "balance",
			Data: map[string]interface{}{
				"balance":       st.Balance,
				"bookieBalance": st.BookieBalance,
			},
		}))
	}
}

// knownBalance is the wallet a submission draws from: the cached value, or
// a fresh read from the backend. Nil when neither is available.
func (s *Server) knownBalance(ctx context.Context, claims *auth.Claims) *decimal.Decimal {
	if bal := s.Settings.CachedBalance(ctx, claims.UserID, claims.IsBookie()); bal != nil {
		return bal
	}
	bal, err := s.API.Balance(ctx, "")
	if err != nil {
		s.log.WithError(err).WithFields(logger.Fields{"user_id": claims.UserID}).Debug("balance unavailable")
		return nil
	}
	if _, err := s.Settings.SetBalance(ctx, claims.UserID, claims.IsBookie(), bal); err != nil {
		s.log.WithError(err).Warn("balance cache update failed")
	}
	return &bal
}
