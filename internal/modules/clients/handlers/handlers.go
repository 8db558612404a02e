// Package handlers exposes the client registry over HTTP for ticket pickers.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/prefill/internal/domain"
)

// ClientReader reads client profiles
type ClientReader interface {
	List(ctx context.Context) ([]domain.ClientProfile, error)
	GetByID(ctx context.Context, clientID string) (domain.ClientProfile, error)
}

// Handler provides HTTP handlers for client endpoints
type Handler struct {
	clients ClientReader
	log     zerolog.Logger
}

// NewHandler creates a new client handler
func NewHandler(clients ClientReader, log zerolog.Logger) *Handler {
	return &Handler{
		clients: clients,
		log:     log.With().Str("handler", "clients").Logger(),
	}
}

// RegisterRoutes registers the client routes under /clients
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/clients", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Get("/{id}", h.HandleGet)
	})
}

// HandleList handles GET /api/clients
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.clients.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list clients")
		h.writeError(w, http.StatusInternalServerError, "Failed to list clients")
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

// HandleGet handles GET /api/clients/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.clients.GetByID(r.Context(), id)
	if errors.Is(err, domain.ErrClientNotFound) {
		h.writeError(w, http.StatusNotFound, "Client '"+id+"' not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("client_id", id).Msg("Failed to get client")
		h.writeError(w, http.StatusInternalServerError, "Failed to get client")
		return
	}
	h.writeJSON(w, http.StatusOK, p)
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
