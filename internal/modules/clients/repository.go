// Package clients reads the client registry used to personalise suggestions.
package clients

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/prefill/internal/domain"
)

// Repository handles client profile lookups against prefill.db
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new client repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "clients").Logger(),
	}
}

// GetByID returns the profile for clientID. When the stored tag is empty or
// unknown the tag is derived from the profile notes.
//
// Returns:
//   - domain.ClientProfile: The profile
//   - error: domain.ErrClientNotFound when no row exists, or a query error
func (r *Repository) GetByID(ctx context.Context, clientID string) (domain.ClientProfile, error) {
	var p domain.ClientProfile
	var tag string
	err := r.db.QueryRowContext(ctx, `
		SELECT client_id, name, tag, risk_aversion, notes
		FROM clients
		WHERE client_id = ?
	`, clientID).Scan(&p.ID, &p.Name, &tag, &p.RiskAversion, &p.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ClientProfile{}, fmt.Errorf("%w: %s", domain.ErrClientNotFound, clientID)
	}
	if err != nil {
		return domain.ClientProfile{}, fmt.Errorf("failed to get client %s: %w", clientID, err)
	}

	p.Tag = domain.ClientTag(tag)
	if !p.Tag.Valid() {
		p.Tag = ClassifyTag(p.Notes)
		r.log.Debug().Str("client_id", clientID).Str("tag", string(p.Tag)).Msg("Derived client tag from notes")
	}
	return p, nil
}

// List returns every client ordered by id, with tags resolved as in GetByID
func (r *Repository) List(ctx context.Context) ([]domain.ClientProfile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT client_id, name, tag, risk_aversion, notes
		FROM clients
		ORDER BY client_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	profiles := []domain.ClientProfile{}
	for rows.Next() {
		var p domain.ClientProfile
		var tag string
		if err := rows.Scan(&p.ID, &p.Name, &tag, &p.RiskAversion, &p.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		p.Tag = domain.ClientTag(tag)
		if !p.Tag.Valid() {
			p.Tag = ClassifyTag(p.Notes)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return profiles, nil
}

// Upsert inserts or replaces a client profile
func (r *Repository) Upsert(ctx context.Context, p domain.ClientProfile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (client_id, name, tag, risk_aversion, notes)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(client_id) DO UPDATE SET
			name = excluded.name,
			tag = excluded.tag,
			risk_aversion = excluded.risk_aversion,
			notes = excluded.notes
	`, p.ID, p.Name, string(p.Tag), p.RiskAversion, p.Notes)
	if err != nil {
		return fmt.Errorf("failed to upsert client %s: %w", p.ID, err)
	}
	return nil
}

// tagKeywords is checked in order; the first table whose pattern matches wins
var tagKeywords = []struct {
	tag     domain.ClientTag
	pattern *regexp.Regexp
}{
	{domain.TagComplianceDriven, regexp.MustCompile(`\b(?:eod|close|compliance)`)},
	{domain.TagStealth, regexp.MustCompile(`\b(?:stealth|minimi[sz]e|impact)`)},
	{domain.TagBenchmarkDriven, regexp.MustCompile(`\b(?:arrival|benchmark|block)`)},
	{domain.TagConservative, regexp.MustCompile(`\b(?:conservative|restricted)`)},
	{domain.TagSpeedDriven, regexp.MustCompile(`\b(?:high[\s-]frequency|hf|hft|proprietary)\b`)},
}

// ClassifyTag derives a client tag from free-text profile notes
func ClassifyTag(notes string) domain.ClientTag {
	lower := strings.ToLower(notes)
	for _, k := range tagKeywords {
		if k.pattern.MatchString(lower) {
			return k.tag
		}
	}
	return domain.TagNone
}
