// Package rules persists the tunable prefill engine thresholds and rebuilds the
// engine configuration from them.
package rules

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/prefill/internal/database"
	"github.com/aristath/prefill/internal/modules/prefill"
)

// Repository handles rule_config database operations.
// Each row is one prefill.Param keyed "category.name"; rows override the
// compiled and file-based defaults when the engine is built.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new rule config repository.
//
// Parameters:
//   - db: Database connection to prefill.db
//   - log: Structured logger
//
// Returns:
//   - *Repository: Initialized repository instance
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "rule_config").Logger(),
	}
}

// Seed inserts a row for every parameter of base that has none yet.
// Existing rows are left untouched so admin edits survive restarts.
//
// Returns:
//   - int: Number of rows inserted
//   - error: Error if database operation fails
func (r *Repository) Seed(ctx context.Context, base prefill.Rules) (int, error) {
	inserted := 0
	err := database.WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		inserted, err = seedTx(ctx, tx, base)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to seed rule config: %w", err)
	}
	if inserted > 0 {
		r.log.Info().Int("inserted", inserted).Msg("Seeded rule config")
	}
	return inserted, nil
}

func seedTx(ctx context.Context, tx *sql.Tx, base prefill.Rules) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO rule_config (key, category, label, value, display_order, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	now := time.Now().Unix()
	for _, p := range base.Params() {
		res, err := stmt.ExecContext(ctx, p.Key, p.Category, p.Label, p.Value, p.Order, now)
		if err != nil {
			return 0, fmt.Errorf("failed to seed %s: %w", p.Key, err)
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}
	return inserted, nil
}

// GetAll returns every row ordered by category and display order
func (r *Repository) GetAll(ctx context.Context) ([]prefill.Param, error) {
	return r.query(ctx, `
		SELECT key, category, label, value, display_order
		FROM rule_config
		ORDER BY category, display_order, key
	`)
}

// GetByCategory returns the rows of one category. An unknown category yields
// an empty slice.
func (r *Repository) GetByCategory(ctx context.Context, category string) ([]prefill.Param, error) {
	return r.query(ctx, `
		SELECT key, category, label, value, display_order
		FROM rule_config
		WHERE category = ?
		ORDER BY display_order, key
	`, category)
}

func (r *Repository) query(ctx context.Context, q string, args ...interface{}) ([]prefill.Param, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rule config: %w", err)
	}
	defer rows.Close()

	params := []prefill.Param{}
	for rows.Next() {
		var p prefill.Param
		if err := rows.Scan(&p.Key, &p.Category, &p.Label, &p.Value, &p.Order); err != nil {
			return nil, fmt.Errorf("failed to scan rule config: %w", err)
		}
		params = append(params, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rule config: %w", err)
	}
	return params, nil
}

// Categories lists the distinct categories in alphabetical order
func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT category FROM rule_config ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Overrides returns the stored values keyed by rule key
func (r *Repository) Overrides(ctx context.Context) (map[string]float64, error) {
	params, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	values := make(map[string]float64, len(params))
	for _, p := range params {
		values[p.Key] = p.Value
	}
	return values, nil
}

// UpdateMany writes values in one transaction. Keys without a row are skipped.
//
// Returns:
//   - int: Number of rows updated
//   - error: Error if database operation fails
func (r *Repository) UpdateMany(ctx context.Context, values map[string]float64) (int, error) {
	updated := 0
	now := time.Now().Unix()
	err := database.WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		for key, value := range values {
			res, err := tx.ExecContext(ctx,
				"UPDATE rule_config SET value = ?, updated_at = ? WHERE key = ?",
				value, now, key,
			)
			if err != nil {
				return fmt.Errorf("failed to update %s: %w", key, err)
			}
			n, _ := res.RowsAffected()
			updated += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	r.log.Info().Int("updated", updated).Msg("Updated rule config")
	return updated, nil
}

// ResetToDefaults replaces every row with the values of base
func (r *Repository) ResetToDefaults(ctx context.Context, base prefill.Rules) error {
	err := database.WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM rule_config"); err != nil {
			return err
		}
		_, err := seedTx(ctx, tx, base)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to reset rule config: %w", err)
	}
	r.log.Info().Msg("Reset rule config to defaults")
	return nil
}

// LoadRules applies the stored rows on top of base. Rows whose key no longer
// names a parameter are logged and ignored.
func (r *Repository) LoadRules(ctx context.Context, base prefill.Rules) (prefill.Rules, error) {
	values, err := r.Overrides(ctx)
	if err != nil {
		return base, err
	}
	rules, unknown := base.WithOverrides(values)
	for _, key := range unknown {
		r.log.Warn().Str("key", key).Msg("Ignoring unknown rule config key")
	}
	return rules, nil
}
