// Package marketdata holds the latest point-in-time market snapshot per symbol.
package marketdata

import (
	"errors"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aristath/prefill/internal/domain"
)

// ErrInvalidSnapshot rejects a snapshot without a symbol or with negative prices
var ErrInvalidSnapshot = errors.New("invalid market snapshot")

// Cache is a thread-safe symbol to snapshot map. Readers always get a copy.
type Cache struct {
	mu        sync.RWMutex
	snapshots map[string]domain.MarketSnapshot
	now       func() time.Time
}

// NewCache creates an empty snapshot cache
func NewCache() *Cache {
	return &Cache{
		snapshots: make(map[string]domain.MarketSnapshot),
		now:       time.Now,
	}
}

// Put stores s as the latest snapshot for its symbol. Missing derived fields
// (last price, spread) are filled from bid and ask.
func (c *Cache) Put(s domain.MarketSnapshot) error {
	s.Symbol = strings.ToUpper(strings.TrimSpace(s.Symbol))
	if s.Symbol == "" || s.LastPrice < 0 || s.Bid < 0 || s.Ask < 0 || s.VolatilityPct < 0 {
		return ErrInvalidSnapshot
	}
	if s.LastPrice == 0 && s.Bid > 0 && s.Ask > 0 {
		s.LastPrice = (s.Bid + s.Ask) / 2
	}
	if s.SpreadBps == 0 && s.Ask > s.Bid && s.Bid > 0 && s.LastPrice > 0 {
		s.SpreadBps = math.Round((s.Ask-s.Bid)/s.LastPrice*10000*10) / 10
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = c.now()
	}
	s.MinutesToClose = copyInt(s.MinutesToClose)

	c.mu.Lock()
	c.snapshots[s.Symbol] = s
	c.mu.Unlock()
	return nil
}

// Get returns a copy of the snapshot for symbol
func (c *Cache) Get(symbol string) (domain.MarketSnapshot, bool) {
	c.mu.RLock()
	s, ok := c.snapshots[strings.ToUpper(strings.TrimSpace(symbol))]
	c.mu.RUnlock()
	if !ok {
		return domain.MarketSnapshot{}, false
	}
	s.MinutesToClose = copyInt(s.MinutesToClose)
	return s, true
}

// All returns a copy of every snapshot ordered by symbol
func (c *Cache) All() []domain.MarketSnapshot {
	c.mu.RLock()
	out := make([]domain.MarketSnapshot, 0, len(c.snapshots))
	for _, s := range c.snapshots {
		s.MinutesToClose = copyInt(s.MinutesToClose)
		out = append(out, s)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Len returns the number of cached symbols
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snapshots)
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
