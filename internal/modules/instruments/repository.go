// Package instruments reads static instrument reference data.
package instruments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/prefill/internal/domain"
)

// Repository handles instrument lookups against prefill.db
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new instrument repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "instruments").Logger(),
	}
}

// GetBySymbol returns the reference data for symbol. Symbols are matched
// case-insensitively.
func (r *Repository) GetBySymbol(ctx context.Context, symbol string) (domain.Instrument, error) {
	var inst domain.Instrument
	var restricted, shortRestricted int
	err := r.db.QueryRowContext(ctx, `
		SELECT symbol, name, sector, adv, tick_size, restricted, short_sell_restricted
		FROM instruments
		WHERE symbol = ?
	`, strings.ToUpper(strings.TrimSpace(symbol))).Scan(
		&inst.Symbol, &inst.Name, &inst.Sector, &inst.ADV, &inst.TickSize, &restricted, &shortRestricted,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Instrument{}, fmt.Errorf("%w: %s", domain.ErrInstrumentNotFound, symbol)
	}
	if err != nil {
		return domain.Instrument{}, fmt.Errorf("failed to get instrument %s: %w", symbol, err)
	}
	inst.Restricted = restricted != 0
	inst.ShortSellRestricted = shortRestricted != 0
	return inst, nil
}

// List returns every instrument ordered by symbol
func (r *Repository) List(ctx context.Context) ([]domain.Instrument, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT symbol, name, sector, adv, tick_size, restricted, short_sell_restricted
		FROM instruments
		ORDER BY symbol
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list instruments: %w", err)
	}
	defer rows.Close()

	list := []domain.Instrument{}
	for rows.Next() {
		var inst domain.Instrument
		var restricted, shortRestricted int
		if err := rows.Scan(&inst.Symbol, &inst.Name, &inst.Sector, &inst.ADV, &inst.TickSize, &restricted, &shortRestricted); err != nil {
			return nil, fmt.Errorf("failed to scan instrument: %w", err)
		}
		inst.Restricted = restricted != 0
		inst.ShortSellRestricted = shortRestricted != 0
		list = append(list, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list instruments: %w", err)
	}
	return list, nil
}

// Upsert inserts or replaces an instrument
func (r *Repository) Upsert(ctx context.Context, inst domain.Instrument) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO instruments (symbol, name, sector, adv, tick_size, restricted, short_sell_restricted)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			name = excluded.name,
			sector = excluded.sector,
			adv = excluded.adv,
			tick_size = excluded.tick_size,
			restricted = excluded.restricted,
			short_sell_restricted = excluded.short_sell_restricted
	`, strings.ToUpper(inst.Symbol), inst.Name, inst.Sector, inst.ADV, inst.TickSize,
		boolToInt(inst.Restricted), boolToInt(inst.ShortSellRestricted))
	if err != nil {
		return fmt.Errorf("failed to upsert instrument %s: %w", inst.Symbol, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
