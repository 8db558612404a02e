// Package audit keeps an append-only trail of the suggestion sets returned to
// traders. Payloads are the msgpack-encoded response body.
package audit

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/prefill/internal/domain"
	"github.com/aristath/prefill/internal/modules/prefill"
)

// ErrNotFound is returned for an unknown audit id
var ErrNotFound = errors.New("audit entry not found")

// Entry is one recorded prefill response
type Entry struct {
	ID          string    `json:"prefill_id"`
	ClientID    string    `json:"client_id"`
	Symbol      string    `json:"symbol"`
	Direction   string    `json:"direction"`
	AlgoType    string    `json:"algo_type"`
	Urgency     int       `json:"urgency_score"`
	ScenarioTag string    `json:"scenario_tag"`
	Payload     []byte    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewEntry builds an entry for res with a fresh id
func NewEntry(order domain.OrderContext, res prefill.Result, at time.Time) (Entry, error) {
	payload, err := encodeResult(res)
	if err != nil {
		return Entry{}, err
	}
	algo := ""
	if s, ok := res.Suggestions[prefill.FieldAlgoType]; ok {
		algo = fmt.Sprint(s.Value)
	}
	return Entry{
		ID:          uuid.NewString(),
		ClientID:    order.ClientID,
		Symbol:      order.Symbol,
		Direction:   string(order.Direction),
		AlgoType:    algo,
		Urgency:     res.Urgency,
		ScenarioTag: res.ScenarioTag,
		Payload:     payload,
		CreatedAt:   at,
	}, nil
}

func encodeResult(res prefill.Result) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.SetSortMapKeys(true)
	if err := enc.Encode(res.Body()); err != nil {
		return nil, fmt.Errorf("failed to encode prefill result: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode returns the recorded response as a generic document keyed like
// the JSON response
func (e Entry) Decode() (map[string]interface{}, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(e.Payload))
	dec.SetCustomStructTag("json")
	var doc map[string]interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode audit payload %s: %w", e.ID, err)
	}
	return doc, nil
}

// Repository handles prefill_audit database operations in audit.db
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new audit repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "audit").Logger(),
	}
}

// Record appends e to the trail
func (r *Repository) Record(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO prefill_audit (id, client_id, symbol, direction, algo_type, urgency, scenario_tag, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.ClientID, e.Symbol, e.Direction, e.AlgoType, e.Urgency, e.ScenarioTag, e.Payload, e.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to record audit entry %s: %w", e.ID, err)
	}
	return nil
}

// Get returns the entry with id
func (r *Repository) Get(ctx context.Context, id string) (Entry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, client_id, symbol, direction, algo_type, urgency, scenario_tag, payload, created_at
		FROM prefill_audit
		WHERE id = ?
	`, id)
	e, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, err
}

// RecentForClient returns up to limit entries for clientID, newest first
func (r *Repository) RecentForClient(ctx context.Context, clientID string, limit int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, client_id, symbol, direction, algo_type, urgency, scenario_tag, payload, created_at
		FROM prefill_audit
		WHERE client_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit trail: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEntry(scan func(dest ...interface{}) error) (Entry, error) {
	var e Entry
	var createdAt int64
	err := scan(&e.ID, &e.ClientID, &e.Symbol, &e.Direction, &e.AlgoType, &e.Urgency, &e.ScenarioTag, &e.Payload, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("failed to scan audit entry: %w", err)
	}
	e.CreatedAt = time.Unix(createdAt, 0).UTC()
	return e, nil
}
