// Package handler exposes booking over HTTP: a public creation endpoint and
// an admin schedule listing.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bookify/internal/booking/models"
	"bookify/internal/booking/service"
	shared "bookify/internal/transport/http/shared"
	dErrors "bookify/pkg/domain-errors"
)

// Service is the booking surface the handler depends on.
type Service interface {
	Create(ctx context.Context, req service.CreateRequest) (*models.Booking, error)
	List(ctx context.Context, from, to time.Time) ([]models.Booking, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the visitor-facing route. The router applies the
// rate limiter to this path.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/public/bookings", h.create)
}

// RegisterAdmin mounts the staff-facing schedule route. The caller wraps it
// in the session guard.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/bookings", h.list)
}

type createRequest struct {
	VariantID     string    `json:"variantId"`
	StaffID       string    `json:"staffId"`
	RoomID        string    `json:"roomId"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	StartTime     time.Time `json:"startTime"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	b, err := h.service.Create(r.Context(), service.CreateRequest{
		VariantID:     req.VariantID,
		StaffID:       req.StaffID,
		RoomID:        req.RoomID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		StartTime:     req.StartTime,
	})
	if err != nil {
		shared.LogError(h.logger, r, err, "booking rejected")
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, b)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	from, err := parseTimeParam(r, "from")
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	to, err := parseTimeParam(r, "to")
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}

	bookings, err := h.service.List(r.Context(), from, to)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func parseTimeParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, name+" must be RFC 3339")
	}
	return t, nil
}
