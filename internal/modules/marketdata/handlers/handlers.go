// Package handlers exposes the market snapshot cache over HTTP.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/prefill/internal/domain"
	"github.com/aristath/prefill/internal/modules/marketdata"
)

const maxBodyBytes = 1 << 20

// Handler provides HTTP handlers for market data endpoints
type Handler struct {
	cache *marketdata.Cache
	log   zerolog.Logger
}

// NewHandler creates a new market data handler
func NewHandler(cache *marketdata.Cache, log zerolog.Logger) *Handler {
	return &Handler{
		cache: cache,
		log:   log.With().Str("handler", "market_data").Logger(),
	}
}

// RegisterRoutes registers the market data routes under /market-data
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/market-data", func(r chi.Router) {
		r.Get("/", h.HandleGetAll)
		r.Post("/snapshots", h.HandlePutSnapshots)
		r.Get("/{symbol}", h.HandleGetSymbol)
	})
}

// HandleGetAll handles GET /api/market-data
func (h *Handler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.cache.All())
}

// HandleGetSymbol handles GET /api/market-data/{symbol}
func (h *Handler) HandleGetSymbol(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	s, ok := h.cache.Get(symbol)
	if !ok {
		h.writeError(w, http.StatusNotFound, "Symbol '"+symbol+"' not found")
		return
	}
	h.writeJSON(w, http.StatusOK, s)
}

// HandlePutSnapshots handles POST /api/market-data/snapshots.
// The body is one snapshot object or an array of them.
func (h *Handler) HandlePutSnapshots(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var snapshots []domain.MarketSnapshot
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &snapshots)
	} else {
		var one domain.MarketSnapshot
		err = json.Unmarshal(trimmed, &one)
		snapshots = append(snapshots, one)
	}
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	for _, s := range snapshots {
		if err := h.cache.Put(s); err != nil {
			if errors.Is(err, marketdata.ErrInvalidSnapshot) {
				h.writeError(w, http.StatusBadRequest, "Invalid snapshot for '"+s.Symbol+"'")
				return
			}
			h.log.Error().Err(err).Str("symbol", s.Symbol).Msg("Failed to store snapshot")
			h.writeError(w, http.StatusInternalServerError, "Failed to store snapshot")
			return
		}
	}

	h.log.Debug().Int("count", len(snapshots)).Msg("Stored market snapshots")
	h.writeJSON(w, http.StatusOK, map[string]int{"stored": len(snapshots)})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
