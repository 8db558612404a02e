package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/prefill/internal/database"
	testingpkg "github.com/aristath/prefill/internal/testing"
)

type pingModule struct{}

func (pingModule) RegisterRoutes(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"pong": "ok"})
	})
	r.Get("/panic", func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	})
}

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	cfg.Log = zerolog.Nop()
	cfg.DevMode = true
	s := New(cfg)
	s.system = &systemStats{
		cpuPercent: func() ([]float64, error) { return []float64{12.5}, nil },
		memPercent: func() (float64, error) { return 40, nil },
	}
	return s
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t, Config{})

	for _, path := range []string{"/health", "/api/health"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

			require.Equal(t, http.StatusOK, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "healthy", body["status"])
			assert.Equal(t, "prefill", body["service"])
		})
	}
}

func TestServer_MountsModulesUnderAPI(t *testing.T) {
	s := newTestServer(t, Config{Modules: []RouteRegistrar{pingModule{}}})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"pong":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_RecoversFromPanics(t *testing.T) {
	s := newTestServer(t, Config{Modules: []RouteRegistrar{pingModule{}}})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_RateLimit(t *testing.T) {
	tests := []struct {
		name       string
		rateLimit  float64
		burst      int
		requests   int
		wantLimits int
	}{
		{"disabled", 0, 0, 5, 0},
		{"burst exhausted", 0.001, 2, 5, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, Config{RateLimit: tt.rateLimit, RateBurst: tt.burst})

			limited := 0
			for i := 0; i < tt.requests; i++ {
				rec := httptest.NewRecorder()
				s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
				if rec.Code == http.StatusTooManyRequests {
					limited++
					assert.Equal(t, "1", rec.Header().Get("Retry-After"))
				}
			}
			assert.Equal(t, tt.wantLimits, limited)
		})
	}
}

func TestServer_CORSPreflight(t *testing.T) {
	s := newTestServer(t, Config{})

	req := httptest.NewRequest(http.MethodOptions, "/api/health", nil)
	req.Header.Set("Origin", "http://desk.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_SystemStatus(t *testing.T) {
	prefillDB := testingpkg.NewTestDB(t, "prefill")
	auditDB := testingpkg.NewTestDB(t, "audit")

	t.Run("healthy", func(t *testing.T) {
		s := newTestServer(t, Config{Databases: []*database.DB{prefillDB, auditDB}})

		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/system/status", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp SystemStatusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, 12.5, resp.CPUPercent)
		assert.Equal(t, 40.0, resp.MemoryPercent)
		assert.Positive(t, resp.Goroutines)
		require.Len(t, resp.Databases, 2)
		assert.Equal(t, "prefill", resp.Databases[0].Name)
		assert.True(t, resp.Databases[0].Healthy)
		assert.Positive(t, resp.Databases[0].PageCount)
	})

	t.Run("deep integrity check", func(t *testing.T) {
		s := newTestServer(t, Config{Databases: []*database.DB{prefillDB}})

		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/system/status?deep=true", nil))

		var resp SystemStatusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		require.Len(t, resp.Databases, 1)
		assert.True(t, resp.Databases[0].Healthy)
	})

	t.Run("sampler failures are tolerated", func(t *testing.T) {
		s := newTestServer(t, Config{})
		s.system = &systemStats{
			cpuPercent: func() ([]float64, error) { return nil, errors.New("no procfs") },
			memPercent: func() (float64, error) { return 0, errors.New("no procfs") },
		}

		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/system/status", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp SystemStatusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Zero(t, resp.CPUPercent)
		assert.Empty(t, resp.Databases)
	})

	t.Run("closed database degrades status", func(t *testing.T) {
		closed := testingpkg.NewTestDB(t, "prefill")
		require.NoError(t, closed.Close())
		s := newTestServer(t, Config{Databases: []*database.DB{closed}})

		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/system/status", nil))

		var resp SystemStatusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "degraded", resp.Status)
		require.Len(t, resp.Databases, 1)
		assert.False(t, resp.Databases[0].Healthy)
		assert.NotEmpty(t, resp.Databases[0].Error)
	})
}
