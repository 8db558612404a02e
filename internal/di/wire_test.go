package di

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/prefill/internal/config"
	"github.com/aristath/prefill/internal/domain"
	"github.com/aristath/prefill/internal/modules/session"
	"github.com/aristath/prefill/internal/server"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir:             t.TempDir(),
		Port:                8001,
		AuditEnabled:        true,
		RulesReloadSchedule: "@every 1m",
		WALCheckSchedule:    "0 */15 * * * *",
		Session:             session.Default(),
	}
}

func wire(t *testing.T, cfg *config.Config) *Container {
	t.Helper()
	c, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestWire_BuildsContainer(t *testing.T) {
	c := wire(t, testConfig(t))

	assert.NotNil(t, c.PrefillDB)
	assert.NotNil(t, c.AuditDB)
	assert.Len(t, c.Databases(), 2)
	assert.NotNil(t, c.AuditRepo)
	assert.NotNil(t, c.PrefillService)
	assert.Nil(t, c.MarketFeed)
	assert.Len(t, c.Routes, 5)
	assert.Equal(t, []string{"check_wal_checkpoints", "reload_rules"}, c.Scheduler.Jobs())

	params, err := c.RulesService.Params(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, params)
}

func TestWire_AuditDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.AuditEnabled = false
	cfg.WALCheckSchedule = ""
	cfg.MarketFeedURL = "ws://localhost:1/snapshots"

	c := wire(t, cfg)
	assert.Nil(t, c.AuditDB)
	assert.Nil(t, c.AuditRepo)
	assert.Len(t, c.Databases(), 1)
	assert.NotNil(t, c.MarketFeed)
	assert.Equal(t, []string{"reload_rules"}, c.Scheduler.Jobs())
}

func TestWire_RulesFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.RulesFile = filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(cfg.RulesFile, []byte("urgency:\n  baseline: 40\n"), 0o644))

	c := wire(t, cfg)
	assert.Equal(t, 40.0, c.PrefillService.Engine().Rules().Urgency.Baseline)
}

func TestWire_InvalidRulesFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.RulesFile = filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(cfg.RulesFile, []byte("urgency:\n  no_such_rule: 1\n"), 0o644))

	_, err := Wire(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestWire_EndToEndPrefill(t *testing.T) {
	c := wire(t, testConfig(t))
	ctx := context.Background()

	require.NoError(t, c.ClientRepo.Upsert(ctx, domain.ClientProfile{
		ID: "C001", Name: "Acme Pension", Tag: domain.TagConservative, RiskAversion: 70,
	}))
	require.NoError(t, c.InstrumentRepo.Upsert(ctx, domain.Instrument{
		Symbol: "RELIANCE", Name: "Reliance Industries", Sector: "Energy", ADV: 5_000_000, TickSize: 0.05,
	}))
	require.NoError(t, c.MarketCache.Put(domain.MarketSnapshot{Symbol: "RELIANCE", Bid: 2500, Ask: 2501}))

	srv := server.New(server.Config{Log: zerolog.Nop(), DevMode: true, Modules: c.Routes})

	rec := httptest.NewRecorder()
	body := `{"client_id":"C001","symbol":"RELIANCE","direction":"BUY","quantity":25000}`
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/prefill", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		PrefillID    string                     `json:"prefill_id"`
		Suggestions  map[string]json.RawMessage `json:"suggestions"`
		Explanations map[string]string          `json:"explanations"`
		Confidence   map[string]float64         `json:"confidence"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.PrefillID)
	assert.Contains(t, resp.Suggestions, "algo_type")
	assert.NotEmpty(t, resp.Explanations["algo_type"])
	assert.Len(t, resp.Confidence, len(resp.Suggestions))

	entry, err := c.AuditRepo.Get(ctx, resp.PrefillID)
	require.NoError(t, err)
	assert.Equal(t, "C001", entry.ClientID)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/clients/C001", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/instruments", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "RELIANCE")

	rec = httptest.NewRecorder()
	body = `{"client_id":"NOPE","symbol":"RELIANCE","direction":"BUY"}`
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/prefill", strings.NewReader(body)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWire_RuleUpdateSwapsEngine(t *testing.T) {
	c := wire(t, testConfig(t))

	_, err := c.RulesService.Update(context.Background(), map[string]float64{"urgency.baseline": 35})
	require.NoError(t, err)
	assert.Equal(t, 35.0, c.PrefillService.Engine().Rules().Urgency.Baseline)
}
