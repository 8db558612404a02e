package server

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// systemStats samples host load. The samplers are swappable for tests.
type systemStats struct {
	cpuPercent func() ([]float64, error)
	memPercent func() (float64, error)
}

func newSystemStats() *systemStats {
	return &systemStats{
		// 100ms keeps the status endpoint responsive while still giving a usable reading
		cpuPercent: func() ([]float64, error) { return cpu.Percent(100*time.Millisecond, false) },
		memPercent: func() (float64, error) {
			v, err := mem.VirtualMemory()
			if err != nil {
				return 0, err
			}
			return v.UsedPercent, nil
		},
	}
}

// DatabaseStatus reports the health of one database
type DatabaseStatus struct {
	Name         string `json:"name"`
	Healthy      bool   `json:"healthy"`
	Error        string `json:"error,omitempty"`
	SizeBytes    int64  `json:"size_bytes"`
	WALSizeBytes int64  `json:"wal_size_bytes"`
	PageCount    int64  `json:"page_count"`
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	Status        string           `json:"status"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	CPUPercent    float64          `json:"cpu_percent"`
	MemoryPercent float64          `json:"memory_percent"`
	Goroutines    int              `json:"goroutines"`
	Databases     []DatabaseStatus `json:"databases"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "prefill",
	})
}

// handleSystemStatus reports host load and database health.
// Any unhealthy database degrades the status to "degraded". ?deep=true runs a
// full integrity check instead of a ping.
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	resp := SystemStatusResponse{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		Databases:     make([]DatabaseStatus, 0, len(s.databases)),
	}

	if pct, err := s.system.cpuPercent(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to get CPU percentage")
	} else if len(pct) > 0 {
		resp.CPUPercent = pct[0]
	}
	if pct, err := s.system.memPercent(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to get memory statistics")
	} else {
		resp.MemoryPercent = pct
	}

	deep := r.URL.Query().Get("deep") == "true"
	timeout := 2 * time.Second
	if deep {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	for _, db := range s.databases {
		status := DatabaseStatus{Name: db.Name(), Healthy: true}
		check := db.QuickCheck
		if deep {
			check = db.HealthCheck
		}
		if err := check(ctx); err != nil {
			status.Healthy = false
			status.Error = err.Error()
			resp.Status = "degraded"
		} else if stats, err := db.GetStats(); err != nil {
			s.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to get database stats")
		} else {
			status.SizeBytes = stats.SizeBytes
			status.WALSizeBytes = stats.WALSizeBytes
			status.PageCount = stats.PageCount
		}
		resp.Databases = append(resp.Databases, status)
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
