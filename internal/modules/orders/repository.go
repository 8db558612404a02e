// Package orders reads and appends the historical order store.
package orders

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/prefill/internal/domain"
)

// MinHistoryLimit is the smallest history window a lookup will use
const MinHistoryLimit = 10

// Repository handles historical order queries against prefill.db
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new order history repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "orders").Logger(),
	}
}

const orderColumns = `id, client_id, symbol, direction, quantity, algo_type, order_type, tif,
	aggression_level, get_done, status, volatility, spread_bps, created_at`

// RecentForClientSymbol returns the client's most recent orders for symbol,
// newest first. A limit below MinHistoryLimit is raised to it.
func (r *Repository) RecentForClientSymbol(ctx context.Context, clientID, symbol string, limit int) ([]domain.HistoricalOrder, error) {
	if limit < MinHistoryLimit {
		limit = MinHistoryLimit
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE client_id = ? AND symbol = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, clientID, strings.ToUpper(symbol), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query order history: %w", err)
	}
	defer rows.Close()

	var out []domain.HistoricalOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order history: %w", err)
	}
	return out, nil
}

func scanOrder(rows *sql.Rows) (domain.HistoricalOrder, error) {
	var o domain.HistoricalOrder
	var direction, algo, orderType, tif, aggression string
	var getDone int
	var createdAt int64
	err := rows.Scan(&o.ID, &o.ClientID, &o.Symbol, &direction, &o.Quantity, &algo, &orderType, &tif,
		&aggression, &getDone, &o.Status, &o.VolatilityPct, &o.SpreadBps, &createdAt)
	if err != nil {
		return o, fmt.Errorf("failed to scan order: %w", err)
	}
	o.Direction = domain.Direction(direction)
	if a, ok := domain.ParseAlgoType(algo); ok {
		o.AlgoType = a
	} else {
		o.AlgoType = domain.AlgoNone
	}
	o.OrderType = domain.OrderType(orderType)
	o.TIF = domain.TimeInForce(tif)
	o.Aggression = domain.ParseAggression(aggression)
	o.GetDone = getDone != 0
	o.CreatedAt = time.Unix(createdAt, 0).UTC()
	return o, nil
}

// FilledAlgoDistribution counts filled orders for symbol across all clients
// whose quantity lies in [qtyLow, qtyHigh], grouped by algo type.
func (r *Repository) FilledAlgoDistribution(ctx context.Context, symbol string, qtyLow, qtyHigh int) ([]domain.AlgoCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT algo_type, COUNT(*) AS cnt
		FROM orders
		WHERE symbol = ?
		  AND quantity BETWEEN ? AND ?
		  AND status = ?
		GROUP BY algo_type
		ORDER BY cnt DESC, algo_type
	`, strings.ToUpper(symbol), qtyLow, qtyHigh, domain.StatusFilled)
	if err != nil {
		return nil, fmt.Errorf("failed to query algo distribution: %w", err)
	}
	defer rows.Close()

	var out []domain.AlgoCount
	for rows.Next() {
		var algo string
		var c domain.AlgoCount
		if err := rows.Scan(&algo, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan algo distribution: %w", err)
		}
		if a, ok := domain.ParseAlgoType(algo); ok {
			c.AlgoType = a
		} else {
			c.AlgoType = domain.AlgoNone
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Record appends an order to the history and returns its id
func (r *Repository) Record(ctx context.Context, o domain.HistoricalOrder) (int64, error) {
	algo := o.AlgoType
	if algo == "" {
		algo = domain.AlgoNone
	}
	status := o.Status
	if status == "" {
		status = domain.StatusFilled
	}
	createdAt := o.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	getDone := 0
	if o.GetDone {
		getDone = 1
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (client_id, symbol, direction, quantity, algo_type, order_type, tif,
			aggression_level, get_done, status, volatility, spread_bps, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ClientID, strings.ToUpper(o.Symbol), string(o.Direction), o.Quantity, string(algo),
		string(o.OrderType), string(o.TIF), o.Aggression.String(), getDone, status,
		o.VolatilityPct, o.SpreadBps, createdAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to record order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read order id: %w", err)
	}
	r.log.Debug().Int64("order_id", id).Str("client_id", o.ClientID).Str("symbol", o.Symbol).Msg("Recorded order")
	return id, nil
}
