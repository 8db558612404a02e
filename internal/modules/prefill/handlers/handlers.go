// Package handlers provides the HTTP surface of the prefill engine.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/prefill/internal/domain"
	"github.com/aristath/prefill/internal/modules/audit"
	"github.com/aristath/prefill/internal/services"
)

// Computer produces the suggestion set for a ticket
type Computer interface {
	Compute(ctx context.Context, order domain.OrderContext) (services.Response, error)
}

// AuditReader loads recorded suggestion sets
type AuditReader interface {
	Get(ctx context.Context, id string) (audit.Entry, error)
}

// Handler provides HTTP handlers for prefill endpoints
type Handler struct {
	service Computer
	audit   AuditReader
	log     zerolog.Logger
}

// NewHandler creates a new prefill handler. auditReader may be nil.
func NewHandler(service Computer, auditReader AuditReader, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		audit:   auditReader,
		log:     log.With().Str("handler", "prefill").Logger(),
	}
}

// RegisterRoutes registers the prefill routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/prefill", func(r chi.Router) {
		r.Post("/", h.HandlePrefill)
		r.Get("/audit/{id}", h.HandleGetAudit)
	})
}

// Request is the body of POST /api/prefill. Numeric fields are decoded as
// floats so fractional values can be rejected rather than truncated.
type Request struct {
	ClientID     string   `json:"client_id"`
	Symbol       string   `json:"symbol"`
	Direction    string   `json:"direction"`
	Quantity     *float64 `json:"quantity"`
	Urgency      *float64 `json:"urgency"`
	RiskAversion *float64 `json:"risk_aversion"`
	OrderNotes   string   `json:"order_notes"`
}

// OrderContext validates the request and converts it to a ticket
func (req Request) OrderContext() (domain.OrderContext, error) {
	dir, err := domain.ParseDirection(req.Direction)
	if err != nil {
		return domain.OrderContext{}, err
	}
	order := domain.OrderContext{
		ClientID:  req.ClientID,
		Symbol:    req.Symbol,
		Direction: dir,
		Notes:     req.OrderNotes,
	}
	if order.Quantity, err = wholeNumber("quantity", req.Quantity); err != nil {
		return order, err
	}
	if order.UrgencyOverride, err = wholeNumber("urgency", req.Urgency); err != nil {
		return order, err
	}
	if order.RiskAversionOverride, err = wholeNumber("risk_aversion", req.RiskAversion); err != nil {
		return order, err
	}
	return order, order.Validate()
}

var errNotInteger = errors.New("must be an integer")

func wholeNumber(name string, v *float64) (*int, error) {
	if v == nil {
		return nil, nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || *v != math.Trunc(*v) || math.Abs(*v) > math.MaxInt32 {
		return nil, fmt.Errorf("%s %w", name, errNotInteger)
	}
	n := int(*v)
	return &n, nil
}

// HandlePrefill handles POST /api/prefill
func (h *Handler) HandlePrefill(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	order, err := req.OrderContext()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Compute(r.Context(), order)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrClientNotFound), errors.Is(err, domain.ErrInstrumentNotFound):
			h.writeJSON(w, http.StatusNotFound, map[string]interface{}{
				"error":        err.Error(),
				"suggestions":  map[string]interface{}{},
				"explanations": map[string]string{},
				"confidence":   map[string]float64{},
			})
		case isValidation(err):
			h.writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.log.Error().Err(err).Str("client_id", order.ClientID).Str("symbol", order.Symbol).Msg("Prefill failed")
			h.writeError(w, http.StatusInternalServerError, "Failed to compute prefill")
		}
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// HandleGetAudit handles GET /api/prefill/audit/{id}
func (h *Handler) HandleGetAudit(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		h.writeError(w, http.StatusNotFound, "Audit trail disabled")
		return
	}
	id := chi.URLParam(r, "id")
	entry, err := h.audit.Get(r.Context(), id)
	if errors.Is(err, audit.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("prefill_id", id).Msg("Failed to load audit entry")
		h.writeError(w, http.StatusInternalServerError, "Failed to load audit entry")
		return
	}
	doc, err := entry.Decode()
	if err != nil {
		h.log.Error().Err(err).Str("prefill_id", id).Msg("Failed to decode audit entry")
		h.writeError(w, http.StatusInternalServerError, "Failed to decode audit entry")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"entry":    entry,
		"response": doc,
	})
}

func isValidation(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidDirection, domain.ErrInvalidOverride, domain.ErrInvalidQuantity,
		domain.ErrMissingClient, domain.ErrMissingSymbol,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
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
