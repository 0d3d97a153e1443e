// Package settings persists per-user panel preferences and the cached wallet
// balance. Values are loaded once per request and saved on change; every save
// is announced to listeners so other open panels resync.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"matka/internal/logger"
	"matka/internal/markettime"
	"matka/internal/submit"
)

var ErrNotFound = errors.New("settings not found")

type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, val string) error
}

type RedisKV struct {
	Client *redis.Client
}

func (r RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	return val, err
}

func (r RedisKV) Set(ctx context.Context, key, val string) error {
	return r.Client.Set(ctx, key, val, 0).Err()
}

type MemoryKV struct {
	mu   sync.Mutex
	vals map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{vals: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.vals[key]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

func (m *MemoryKV) Set(_ context.Context, key, val string) error {
	m.mu.Lock()
	m.vals[key] = val
	m.mu.Unlock()
	return nil
}

type Settings struct {
	SidebarWidth  int              `json:"sidebarWidth"`
	CartWidth     int              `json:"cartWidth"`
	Language      string           `json:"language"`
	BetDate       string           `json:"betDate,omitempty"`
	Balance       *decimal.Decimal `json:"balance,omitempty"`
	BookieBalance *decimal.Decimal `json:"bookieBalance,omitempty"`
	UpdatedAt     int64            `json:"updatedAt"`
}

// Patch carries the fields a client may change; nil means untouched.
type Patch struct {
	SidebarWidth *int    `json:"sidebarWidth"`
	CartWidth    *int    `json:"cartWidth"`
	Language     *string `json:"language"`
	BetDate      *string `json:"betDate"`
}

type Limits struct {
	SidebarMin, SidebarMax int
	CartMin, CartMax       int
	DefaultLanguage        string
	Languages              map[string]bool
}

type Listener func(owner string, s Settings)

type Store struct {
	kv        KV
	limits    Limits
	listeners []Listener
	locks     sync.Map // owner -> *sync.Mutex
	now       func() time.Time
	log       *logger.Entry
}

func NewStore(kv KV, limits Limits, listeners ...Listener) *Store {
	return &Store{
		kv:        kv,
		limits:    limits,
		listeners: listeners,
		now:       time.Now,
		log:       logger.GetLogger().WithComponent("settings"),
	}
}

func settingsKey(owner string) string {
	return "settings:uid:" + owner
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (s *Store) defaults() Settings {
	return Settings{
		SidebarWidth: s.limits.SidebarMin,
		CartWidth:    s.limits.CartMin,
		Language:     s.limits.DefaultLanguage,
	}
}

// normalize clamps widths, falls back to the default language and forgets
// bet dates that are malformed or already behind us.
func (s *Store) normalize(st Settings) Settings {
	st.SidebarWidth = clamp(st.SidebarWidth, s.limits.SidebarMin, s.limits.SidebarMax)
	st.CartWidth = clamp(st.CartWidth, s.limits.CartMin, s.limits.CartMax)
	if !s.limits.Languages[st.Language] {
		st.Language = s.limits.DefaultLanguage
	}
	if st.BetDate != "" {
		if _, err := time.ParseInLocation("2006-01-02", st.BetDate, markettime.IST); err != nil || st.BetDate < markettime.Today(s.now()) {
			st.BetDate = ""
		}
	}
	return st
}

func (s *Store) Load(ctx context.Context, owner string) (Settings, error) {
	raw, err := s.kv.Get(ctx, settingsKey(owner))
	if errors.Is(err, ErrNotFound) {
		return s.defaults(), nil
	}
	if err != nil {
		return s.defaults(), fmt.Errorf("load settings: %w", err)
	}
	st := s.defaults()
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		s.log.WithError(err).WithFields(logger.Fields{"owner": owner}).Warn("discarding corrupt settings")
		return s.defaults(), nil
	}
	return s.normalize(st), nil
}

func (s *Store) lock(owner string) func() {
	val, _ := s.locks.LoadOrStore(owner, &sync.Mutex{})
	mu := val.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// modify applies fn to owner's settings under the owner's lock, so a
// preference change and a balance update cannot overwrite each other.
func (s *Store) modify(ctx context.Context, owner string, fn func(*Settings)) (Settings, error) {
	unlock := s.lock(owner)
	st, err := s.Load(ctx, owner)
	if err != nil {
		unlock()
		return st, err
	}
	fn(&st)
	st = s.normalize(st)
	st.UpdatedAt = s.now().UnixMilli()
	raw, err := json.Marshal(st)
	if err == nil {
		if err = s.kv.Set(ctx, settingsKey(owner), string(raw)); err != nil {
			err = fmt.Errorf("save settings: %w", err)
		}
	}
	unlock()
	if err != nil {
		return st, err
	}
	for _, l := range s.listeners {
		l(owner, st)
	}
	return st, nil
}

func (s *Store) Update(ctx context.Context, owner string, p Patch) (Settings, error) {
	return s.modify(ctx, owner, func(st *Settings) {
		if p.SidebarWidth != nil {
			st.SidebarWidth = *p.SidebarWidth
		}
		if p.CartWidth != nil {
			st.CartWidth = *p.CartWidth
		}
		if p.Language != nil {
			st.Language = strings.TrimSpace(*p.Language)
		}
		if p.BetDate != nil {
			st.BetDate = strings.TrimSpace(*p.BetDate)
		}
	})
}

// SetBalance caches the wallet reported by the backend for owner.
func (s *Store) SetBalance(ctx context.Context, owner string, bookie bool, bal decimal.Decimal) (Settings, error) {
	return s.modify(ctx, owner, func(st *Settings) {
		if bookie {
			st.BookieBalance = &bal
		} else {
			st.Balance = &bal
		}
	})
}

// Placed applies the balance from a confirmed submission.
func (s *Store) Placed(ctx context.Context, r submit.Receipt) {
	if r.NewBalance == nil {
		return
	}
	if _, err := s.SetBalance(ctx, r.ActorID, r.Bookie, *r.NewBalance); err != nil {
		s.log.WithError(err).WithFields(logger.Fields{"owner": r.ActorID}).Warn("balance cache update failed")
	}
}

// CachedBalance is the last known wallet for owner, if any.
func (s *Store) CachedBalance(ctx context.Context, owner string, bookie bool) *decimal.Decimal {
	st, err := s.Load(ctx, owner)
	if err != nil {
		return nil
	}
	if bookie {
		return st.BookieBalance
	}
	return st.Balance
}
