// Package handlers provides HTTP handlers for the rule engine configuration.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/prefill/internal/modules/prefill"
	"github.com/aristath/prefill/internal/modules/rules"
)

// Handler provides HTTP handlers for rule config endpoints
type Handler struct {
	service *rules.Service
	log     zerolog.Logger
}

// NewHandler creates a new rule config handler
func NewHandler(service *rules.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "rule_config").Logger(),
	}
}

// RegisterRoutes registers the rule config routes under /rule-config
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/rule-config", func(r chi.Router) {
		r.Get("/", h.HandleGetAll)
		r.Put("/", h.HandleUpdate)
		r.Get("/categories", h.HandleGetCategories)
		r.Get("/category/{category}", h.HandleGetCategory)
		r.Post("/reset", h.HandleReset)
	})
}

// UpdateRequest is the body of PUT /api/rule-config
type UpdateRequest struct {
	Updates []struct {
		Key   string   `json:"key"`
		Value *float64 `json:"value"`
	} `json:"updates"`
}

// HandleGetAll handles GET /api/rule-config
func (h *Handler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	params, err := h.service.Params(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get rule config")
		h.writeError(w, http.StatusInternalServerError, "Failed to get rule config")
		return
	}
	h.writeJSON(w, http.StatusOK, params)
}

// HandleGetCategories handles GET /api/rule-config/categories
func (h *Handler) HandleGetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get rule config categories")
		h.writeError(w, http.StatusInternalServerError, "Failed to get categories")
		return
	}
	h.writeJSON(w, http.StatusOK, categories)
}

// HandleGetCategory handles GET /api/rule-config/category/{category}
func (h *Handler) HandleGetCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	params, err := h.service.Category(r.Context(), category)
	if err != nil {
		h.log.Error().Err(err).Str("category", category).Msg("Failed to get rule config category")
		h.writeError(w, http.StatusInternalServerError, "Failed to get rule config")
		return
	}
	if len(params) == 0 {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("No configs for category '%s'", category))
		return
	}
	h.writeJSON(w, http.StatusOK, params)
}

// HandleUpdate handles PUT /api/rule-config
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Updates) == 0 {
		h.writeError(w, http.StatusBadRequest, "No updates provided")
		return
	}

	values := make(map[string]float64, len(req.Updates))
	for _, u := range req.Updates {
		if u.Key == "" || u.Value == nil {
			h.writeError(w, http.StatusBadRequest, "Each update needs a key and a value")
			return
		}
		values[u.Key] = *u.Value
	}

	count, err := h.service.Update(r.Context(), values)
	if err != nil {
		if errors.Is(err, prefill.ErrUnknownRule) || errors.Is(err, rules.ErrInvalidRules) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to update rule config")
		h.writeError(w, http.StatusInternalServerError, "Failed to update rule config")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"updated": count,
		"message": fmt.Sprintf("Updated %d configuration values", count),
	})
}

// HandleReset handles POST /api/rule-config/reset
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reset(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Failed to reset rule config")
		h.writeError(w, http.StatusInternalServerError, "Failed to reset rule config")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "All configurations reset to defaults",
	})
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
