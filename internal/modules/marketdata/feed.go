package marketdata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
	"nhooyr.io/websocket"

	"github.com/aristath/prefill/internal/domain"
)

const (
	dialTimeout       = 30 * time.Second
	readLimit         = 1 << 20
	maxReconnectDelay = 2 * time.Minute
)

// Feed subscribes to an external market data WebSocket and writes every
// snapshot it receives into a Cache. Text frames carry JSON, binary frames
// carry msgpack; either may hold one snapshot or an array of them.
type Feed struct {
	url   string
	cache *Cache
	log   zerolog.Logger

	newBackOff func() backoff.BackOff
}

// NewFeed creates a feed client for url
func NewFeed(url string, cache *Cache, log zerolog.Logger) *Feed {
	return &Feed{
		url:   url,
		cache: cache,
		log:   log.With().Str("component", "market_feed").Logger(),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.MaxInterval = maxReconnectDelay
			b.MaxElapsedTime = 0
			return b
		},
	}
}

// Run connects and reads until ctx is cancelled, reconnecting with exponential
// backoff whenever the connection drops.
func (f *Feed) Run(ctx context.Context) error {
	b := backoff.WithContext(f.newBackOff(), ctx)
	err := backoff.RetryNotify(func() error {
		err := f.session(ctx, b.Reset)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return err
	}, b, func(err error, wait time.Duration) {
		f.log.Warn().Err(err).Dur("retry_in", wait).Msg("Market feed disconnected")
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// session runs one connection until it fails. connected is called once the
// handshake succeeds so the backoff restarts after a healthy session.
func (f *Feed) session(ctx context.Context, connected func()) error {
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	conn, _, err := websocket.Dial(dialCtx, f.url, nil)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to dial market feed: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	conn.SetReadLimit(readLimit)

	connected()
	f.log.Info().Str("url", f.url).Msg("Connected to market feed")

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return fmt.Errorf("market feed closed: %d", status)
			}
			return fmt.Errorf("market feed read failed: %w", err)
		}

		n, err := f.apply(msgType, data)
		if err != nil {
			f.log.Error().Err(err).Msg("Failed to handle market feed message")
			continue
		}
		f.log.Trace().Int("snapshots", n).Msg("Market feed update")
	}
}

func (f *Feed) apply(msgType websocket.MessageType, data []byte) (int, error) {
	snapshots, err := decodeSnapshots(msgType, data)
	if err != nil {
		return 0, err
	}
	applied := 0
	for _, s := range snapshots {
		if err := f.cache.Put(s); err != nil {
			f.log.Debug().Err(err).Str("symbol", s.Symbol).Msg("Skipping snapshot")
			continue
		}
		applied++
	}
	return applied, nil
}

func decodeSnapshots(msgType websocket.MessageType, data []byte) ([]domain.MarketSnapshot, error) {
	if msgType == websocket.MessageBinary {
		var list []domain.MarketSnapshot
		if err := msgpack.Unmarshal(data, &list); err == nil {
			return list, nil
		}
		var one domain.MarketSnapshot
		if err := msgpack.Unmarshal(data, &one); err != nil {
			return nil, fmt.Errorf("failed to decode msgpack snapshot: %w", err)
		}
		return []domain.MarketSnapshot{one}, nil
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []domain.MarketSnapshot
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot list: %w", err)
		}
		return list, nil
	}
	var one domain.MarketSnapshot
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return []domain.MarketSnapshot{one}, nil
}
