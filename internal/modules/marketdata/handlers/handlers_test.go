package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/prefill/internal/domain"
	"github.com/aristath/prefill/internal/modules/marketdata"
)

func newTestRouter() (chi.Router, *marketdata.Cache) {
	cache := marketdata.NewCache()
	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		NewHandler(cache, zerolog.Nop()).RegisterRoutes(r)
	})
	return router, cache
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlePutSnapshots(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantStored []string
	}{
		{"single", `{"symbol":"INFY","ltp":1500,"volatility":1.2,"time_to_close":90}`, http.StatusOK, []string{"INFY"}},
		{"array", `[{"symbol":"A","ltp":1},{"symbol":"b","ltp":2}]`, http.StatusOK, []string{"A", "B"}},
		{"malformed", `{"symbol":`, http.StatusBadRequest, nil},
		{"missing symbol", `{"ltp":10}`, http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, cache := newTestRouter()
			rec := serve(router, http.MethodPost, "/api/market-data/snapshots", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			for _, sym := range tt.wantStored {
				_, ok := cache.Get(sym)
				assert.True(t, ok, sym)
			}
			if tt.wantStored == nil {
				assert.Zero(t, cache.Len())
			}
		})
	}
}

func TestHandleGetSymbol(t *testing.T) {
	router, cache := newTestRouter()
	ttc := 90
	require.NoError(t, cache.Put(domain.MarketSnapshot{Symbol: "INFY", LastPrice: 1500, MinutesToClose: &ttc}))

	rec := serve(router, http.MethodGet, "/api/market-data/infy", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var s domain.MarketSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, "INFY", s.Symbol)
	require.NotNil(t, s.MinutesToClose)
	assert.Equal(t, 90, *s.MinutesToClose)

	rec = serve(router, http.MethodGet, "/api/market-data/TCS", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetAll(t *testing.T) {
	router, cache := newTestRouter()
	require.NoError(t, cache.Put(domain.MarketSnapshot{Symbol: "B", LastPrice: 1}))
	require.NoError(t, cache.Put(domain.MarketSnapshot{Symbol: "A", LastPrice: 1}))

	rec := serve(router, http.MethodGet, "/api/market-data", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []domain.MarketSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, 2)
	assert.Equal(t, "A", all[0].Symbol)
}
