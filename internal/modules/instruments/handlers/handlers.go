// Package handlers exposes instrument reference data over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/prefill/internal/domain"
)

// InstrumentReader reads instrument reference data
type InstrumentReader interface {
	List(ctx context.Context) ([]domain.Instrument, error)
	GetBySymbol(ctx context.Context, symbol string) (domain.Instrument, error)
}

// Handler provides HTTP handlers for instrument endpoints
type Handler struct {
	instruments InstrumentReader
	log         zerolog.Logger
}

// NewHandler creates a new instrument handler
func NewHandler(instruments InstrumentReader, log zerolog.Logger) *Handler {
	return &Handler{
		instruments: instruments,
		log:         log.With().Str("handler", "instruments").Logger(),
	}
}

// RegisterRoutes registers the instrument routes under /instruments
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/instruments", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Get("/{symbol}", h.HandleGet)
	})
}

// HandleList handles GET /api/instruments
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.instruments.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list instruments")
		h.writeError(w, http.StatusInternalServerError, "Failed to list instruments")
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

// HandleGet handles GET /api/instruments/{symbol}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	inst, err := h.instruments.GetBySymbol(r.Context(), symbol)
	if errors.Is(err, domain.ErrInstrumentNotFound) {
		h.writeError(w, http.StatusNotFound, "Instrument '"+symbol+"' not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get instrument")
		h.writeError(w, http.StatusInternalServerError, "Failed to get instrument")
		return
	}
	h.writeJSON(w, http.StatusOK, inst)
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
