// Package submit turns a cart into a bet placement call. The cart is only
// emptied after the backend confirms; any failure leaves it for a retry.
package submit

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"matka/internal/backend"
	"matka/internal/cart"
	"matka/internal/logger"
	"matka/internal/markettime"
	"matka/internal/models"
)

var (
	ErrNoMarket            = errors.New("select a market first")
	ErrNoPlayer            = errors.New("select a player first")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrSubmitInFlight      = errors.New("a submission is already in progress")
)

type Placer interface {
	PlaceBets(ctx context.Context, payload models.BetPlacementPayload) (backend.PlaceResult, error)
	PlaceForPlayer(ctx context.Context, payload models.BetPlacementPayload) (backend.PlaceResult, error)
}

// Sink observes confirmed placements (balance cache, journal, push).
type Sink interface {
	Placed(ctx context.Context, r Receipt)
}

type SinkFunc func(ctx context.Context, r Receipt)

func (f SinkFunc) Placed(ctx context.Context, r Receipt) { f(ctx, r) }

type Request struct {
	CartKey       string
	ActorID       string // logged-in player or bookie
	PlayerID      string // bookie only: the player being bet for
	Bookie        bool
	MarketID      string
	ScheduledDate string
	// Balance is the wallet the bets draw from, when known locally.
	Balance *decimal.Decimal
}

type Receipt struct {
	ActorID    string
	PlayerID   string
	Bookie     bool
	Payload    models.BetPlacementPayload
	Count      int
	Total      int64
	NewBalance *decimal.Decimal
	PlacedAt   time.Time
}

type Review struct {
	Items        []models.BetLineItem `json:"items"`
	Count        int                  `json:"count"`
	Total        int64                `json:"total"`
	WalletBefore *decimal.Decimal     `json:"walletBefore,omitempty"`
	WalletAfter  *decimal.Decimal     `json:"walletAfter,omitempty"`
	Blocked      bool                 `json:"blocked"`
}

// BuildReview projects the wallet after the cart is placed. It blocks only on
// a known balance going negative; the backend re-validates regardless.
func BuildReview(snap cart.Summary, balance *decimal.Decimal) Review {
	r := Review{Items: snap.Items, Count: snap.Count, Total: snap.Total}
	if balance != nil {
		before := *balance
		after := before.Sub(decimal.NewFromInt(snap.Total))
		r.WalletBefore = &before
		r.WalletAfter = &after
		r.Blocked = after.IsNegative()
	}
	return r
}

// BuildPayload flattens cart items. CLOSE maps to betOn "close", anything else
// to "open"; scheduledDate is kept only for dates after today in IST.
func BuildPayload(items []models.BetLineItem, marketID, userID, scheduledDate string, now time.Time) models.BetPlacementPayload {
	p := models.BetPlacementPayload{
		UserID:   userID,
		MarketID: marketID,
		Bets:     make([]models.PlacedBet, 0, len(items)),
	}
	for _, it := range items {
		betOn := "open"
		if it.Session == models.SessionClose {
			betOn = "close"
		}
		p.Bets = append(p.Bets, models.PlacedBet{
			BetType:   it.BetType,
			BetNumber: it.Number,
			Amount:    it.Points,
			BetOn:     betOn,
		})
	}
	if date := strings.TrimSpace(scheduledDate); date != "" && markettime.IsFutureDate(date, now) {
		p.ScheduledDate = date
	}
	return p
}

type Submitter struct {
	placer   Placer
	carts    *cart.Registry
	sinks    []Sink
	inFlight sync.Map // cart key -> *atomic.Bool
	now      func() time.Time
	log      *logger.Entry
}

func NewSubmitter(placer Placer, carts *cart.Registry, sinks ...Sink) *Submitter {
	return &Submitter{
		placer: placer,
		carts:  carts,
		sinks:  sinks,
		now:    time.Now,
		log:    logger.GetLogger().WithComponent("submit"),
	}
}

func (s *Submitter) flag(key string) *atomic.Bool {
	val, _ := s.inFlight.LoadOrStore(key, &atomic.Bool{})
	return val.(*atomic.Bool)
}

// InFlight reports whether key has a submission awaiting the backend.
func (s *Submitter) InFlight(key string) bool {
	return s.flag(key).Load()
}

func (s *Submitter) Review(req Request) Review {
	return BuildReview(s.carts.Get(req.CartKey).Snapshot(), req.Balance)
}

func (s *Submitter) Submit(ctx context.Context, req Request) (Receipt, error) {
	if strings.TrimSpace(req.MarketID) == "" {
		return Receipt{}, ErrNoMarket
	}
	userID := ""
	if req.Bookie {
		if strings.TrimSpace(req.PlayerID) == "" {
			return Receipt{}, ErrNoPlayer
		}
		userID = req.PlayerID
	} else if strings.TrimSpace(req.ActorID) == "" {
		return Receipt{}, ErrNoPlayer
	}
	flag := s.flag(req.CartKey)
	if !flag.CompareAndSwap(false, true) {
		return Receipt{}, ErrSubmitInFlight
	}
	defer flag.Store(false)

	c := s.carts.Get(req.CartKey)
	snap := c.Snapshot()
	if snap.Count == 0 {
		return Receipt{}, ErrEmptyCart
	}
	if BuildReview(snap, req.Balance).Blocked {
		return Receipt{}, ErrInsufficientBalance
	}

	now := s.now()
	payload := BuildPayload(snap.Items, req.MarketID, userID, req.ScheduledDate, now)
	var (
		res backend.PlaceResult
		err error
	)
	if req.Bookie {
		res, err = s.placer.PlaceForPlayer(ctx, payload)
	} else {
		res, err = s.placer.PlaceBets(ctx, payload)
	}
	if err != nil {
		s.log.WithError(err).WithFields(logger.Fields{
			"market_id": req.MarketID,
			"actor_id":  req.ActorID,
			"count":     snap.Count,
		}).Warn("bet placement failed")
		return Receipt{}, err
	}

	ids := make([]string, 0, len(snap.Items))
	for _, it := range snap.Items {
		ids = append(ids, it.ID)
	}
	c.RemoveAll(ids)

	receipt := Receipt{
		ActorID:  req.ActorID,
		PlayerID: req.PlayerID,
		Bookie:   req.Bookie,
		Payload:  payload,
		Count:    snap.Count,
		Total:    snap.Total,
		PlacedAt: now,
	}
	if bal, ok := res.Balance(); ok {
		receipt.NewBalance = &bal
	}
	for _, sink := range s.sinks {
		sink.Placed(ctx, receipt)
	}
	s.log.WithFields(logger.Fields{
		"market_id": req.MarketID,
		"actor_id":  req.ActorID,
		"player_id": req.PlayerID,
		"count":     receipt.Count,
		"total":     receipt.Total,
	}).Info("bets placed")
	return receipt, nil
}
