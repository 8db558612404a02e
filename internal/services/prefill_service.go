// Package services coordinates the stores, the market cache and the prefill
// engine for one ticket request.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/aristath/prefill/internal/domain"
	"github.com/aristath/prefill/internal/modules/audit"
	"github.com/aristath/prefill/internal/modules/prefill"
)

// ClientStore resolves client profiles
type ClientStore interface {
	GetByID(ctx context.Context, clientID string) (domain.ClientProfile, error)
}

// InstrumentStore resolves instrument reference data
type InstrumentStore interface {
	GetBySymbol(ctx context.Context, symbol string) (domain.Instrument, error)
}

// OrderHistory reads past orders
type OrderHistory interface {
	RecentForClientSymbol(ctx context.Context, clientID, symbol string, limit int) ([]domain.HistoricalOrder, error)
	FilledAlgoDistribution(ctx context.Context, symbol string, qtyLow, qtyHigh int) ([]domain.AlgoCount, error)
}

// SnapshotSource returns the latest market snapshot for a symbol
type SnapshotSource interface {
	Get(symbol string) (domain.MarketSnapshot, bool)
}

// AuditSink records returned suggestion sets
type AuditSink interface {
	Record(ctx context.Context, e audit.Entry) error
}

// Response is the engine result plus the audit id it was recorded under
type Response struct {
	prefill.Result
	PrefillID string
}

// MarshalJSON encodes the result body with prefill_id alongside
func (r Response) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		prefill.Body
		PrefillID string `json:"prefill_id,omitempty"`
	}{r.Result.Body(), r.PrefillID})
}

// PrefillService performs every lookup for a ticket, then runs the engine.
// The engine is swapped atomically when the rule configuration changes.
type PrefillService struct {
	engine atomic.Pointer[prefill.Engine]

	clients     ClientStore
	instruments InstrumentStore
	history     OrderHistory
	market      SnapshotSource
	audit       AuditSink

	now        func() time.Time
	newBackOff func() backoff.BackOff
	log        zerolog.Logger
}

// NewPrefillService creates the service. audit may be nil.
func NewPrefillService(
	engine *prefill.Engine,
	clients ClientStore,
	instruments InstrumentStore,
	history OrderHistory,
	market SnapshotSource,
	auditSink AuditSink,
	log zerolog.Logger,
) *PrefillService {
	s := &PrefillService{
		clients:     clients,
		instruments: instruments,
		history:     history,
		market:      market,
		audit:       auditSink,
		now:         time.Now,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 50 * time.Millisecond
			b.MaxInterval = 500 * time.Millisecond
			b.MaxElapsedTime = 2 * time.Second
			return b
		},
		log: log.With().Str("service", "prefill").Logger(),
	}
	s.engine.Store(engine)
	return s
}

// Engine returns the engine currently serving requests
func (s *PrefillService) Engine() *prefill.Engine {
	return s.engine.Load()
}

// SetRules rebuilds the engine from rules with the current session hours.
// In-flight requests finish on the engine they started with.
func (s *PrefillService) SetRules(rules prefill.Rules) error {
	next, err := prefill.NewEngine(rules, s.Engine().Hours())
	if err != nil {
		return fmt.Errorf("failed to rebuild prefill engine: %w", err)
	}
	s.engine.Store(next)
	s.log.Info().Msg("Prefill engine rebuilt with new rules")
	return nil
}

// Compute resolves the ticket context and returns the suggestion set.
// Unknown client or instrument is returned as domain.ErrClientNotFound or
// domain.ErrInstrumentNotFound; history lookups degrade to no history.
func (s *PrefillService) Compute(ctx context.Context, order domain.OrderContext) (Response, error) {
	order.Symbol = strings.ToUpper(strings.TrimSpace(order.Symbol))
	order.ClientID = strings.TrimSpace(order.ClientID)
	if err := order.Validate(); err != nil {
		return Response{}, err
	}

	eng := s.Engine()
	rules := eng.Rules()

	var client domain.ClientProfile
	err := s.retry(ctx, "client", func() (err error) {
		client, err = s.clients.GetByID(ctx, order.ClientID)
		return err
	})
	if err != nil {
		return Response{}, err
	}

	var instrument domain.Instrument
	err = s.retry(ctx, "instrument", func() (err error) {
		instrument, err = s.instruments.GetBySymbol(ctx, order.Symbol)
		return err
	})
	if err != nil {
		return Response{}, err
	}

	var history []domain.HistoricalOrder
	err = s.retry(ctx, "history", func() (err error) {
		history, err = s.history.RecentForClientSymbol(ctx, order.ClientID, order.Symbol, int(rules.Historical.QueryLimit))
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return Response{}, ctx.Err()
		}
		s.log.Warn().Err(err).Str("client_id", order.ClientID).Str("symbol", order.Symbol).Msg("Order history unavailable, continuing without it")
		history = nil
	}

	qtyLow, qtyHigh := prefill.QuantityBand(eng.SizingQuantity(order, instrument, history), rules.CrossClient)
	var cross []domain.AlgoCount
	err = s.retry(ctx, "cross_client", func() (err error) {
		cross, err = s.history.FilledAlgoDistribution(ctx, order.Symbol, qtyLow, qtyHigh)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return Response{}, ctx.Err()
		}
		s.log.Warn().Err(err).Str("symbol", order.Symbol).Msg("Cross-client distribution unavailable, continuing without it")
		cross = nil
	}

	snapshot, ok := s.market.Get(order.Symbol)
	if !ok {
		s.log.Debug().Str("symbol", order.Symbol).Msg("No market snapshot, using defaults")
		snapshot = domain.MarketSnapshot{Symbol: order.Symbol}
	}

	now := s.now()
	res := eng.Compute(prefill.Input{
		Order:       order,
		Client:      client,
		Instrument:  instrument,
		Market:      snapshot,
		History:     history,
		CrossClient: cross,
		Now:         now,
	})

	resp := Response{Result: res}
	resp.PrefillID = s.record(ctx, order, res, now)

	s.log.Info().
		Str("client_id", order.ClientID).
		Str("symbol", order.Symbol).
		Int("urgency", res.Urgency).
		Str("scenario", res.ScenarioTag).
		Int("history", len(history)).
		Msg("Prefill computed")
	return resp, nil
}

// record writes the audit entry and returns its id, or "" when it could not be stored
func (s *PrefillService) record(ctx context.Context, order domain.OrderContext, res prefill.Result, now time.Time) string {
	if s.audit == nil {
		return ""
	}
	entry, err := audit.NewEntry(order, res, now)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to build audit entry")
		return ""
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.log.Error().Err(err).Str("prefill_id", entry.ID).Msg("Failed to record audit entry")
		return ""
	}
	return entry.ID
}

// retry runs op with exponential backoff. Not-found errors and context
// cancellation are permanent.
func (s *PrefillService) retry(ctx context.Context, what string, op func() error) error {
	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if isPermanent(err) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(s.newBackOff(), ctx), func(err error, wait time.Duration) {
		s.log.Warn().Err(err).Str("lookup", what).Int("attempt", attempt).Dur("retry_in", wait).Msg("Lookup failed, retrying")
	})
}

func isPermanent(err error) bool {
	return errors.Is(err, domain.ErrClientNotFound) ||
		errors.Is(err, domain.ErrInstrumentNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
