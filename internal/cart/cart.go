package cart

import (
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"matka/internal/models"
	"matka/internal/panarules"
)

// Entry is one validated form row on its way into the cart.
type Entry struct {
	Number  string `json:"number"`
	Points  string `json:"points"`
	Session string `json:"session"`
}

type Summary struct {
	Items []models.BetLineItem `json:"items"`
	Count int                  `json:"count"`
	Total int64                `json:"total"`
}

// Cart is an ordered, memory-only list of pending bets. Every mutation holds
// the lock for its whole batch so an add never interleaves with a clear.
type Cart struct {
	mu    sync.Mutex
	items []models.BetLineItem
	total int64
}

func New() *Cart {
	return &Cart{}
}

func normalizeSession(s string) models.Session {
	if strings.EqualFold(strings.TrimSpace(s), string(models.SessionClose)) {
		return models.SessionClose
	}
	return models.SessionOpen
}

// Add appends every entry with positive points and a number valid for
// betType, in one step. It returns how many were added.
func (c *Cart) Add(entries []Entry, gameType, gameTypeLabel, betType string) int {
	batch := make([]models.BetLineItem, 0, len(entries))
	var batchTotal int64
	for _, e := range entries {
		points, err := strconv.ParseInt(strings.TrimSpace(e.Points), 10, 64)
		if err != nil || points <= 0 {
			continue
		}
		number := strings.TrimSpace(e.Number)
		if !panarules.ValidFor(betType, number) {
			continue
		}
		batch = append(batch, models.BetLineItem{
			ID:            uuid.NewString(),
			GameType:      gameType,
			GameTypeLabel: gameTypeLabel,
			BetType:       betType,
			Number:        number,
			Points:        points,
			Session:       normalizeSession(e.Session),
		})
		batchTotal += points
	}
	if len(batch) == 0 {
		return 0
	}
	c.mu.Lock()
	c.items = append(c.items, batch...)
	c.total += batchTotal
	c.mu.Unlock()
	return len(batch)
}

func (c *Cart) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, item := range c.items {
		if item.ID == id {
			c.total -= item.Points
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveAll drops the listed ids and keeps anything added since they were read.
func (c *Cart) RemoveAll(ids []string) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0]
	for _, item := range c.items {
		if drop[item.ID] {
			c.total -= item.Points
			continue
		}
		kept = append(kept, item)
	}
	for i := len(kept); i < len(c.items); i++ {
		c.items[i] = models.BetLineItem{}
	}
	c.items = kept
}

func (c *Cart) Clear() {
	c.mu.Lock()
	c.items = nil
	c.total = 0
	c.mu.Unlock()
}

func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cart) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

func (c *Cart) Snapshot() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]models.BetLineItem, len(c.items))
	copy(items, c.items)
	return Summary{Items: items, Count: len(items), Total: c.total}
}

// Registry holds one cart per betting session key. A bookie has a single
// cart and picks the player when submitting.
type Registry struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewRegistry() *Registry {
	return &Registry{carts: make(map[string]*Cart)}
}

func (r *Registry) Get(key string) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[key]
	if !ok {
		c = New()
		r.carts[key] = c
	}
	return c
}

func (r *Registry) Drop(key string) {
	r.mu.Lock()
	delete(r.carts, key)
	r.mu.Unlock()
}
