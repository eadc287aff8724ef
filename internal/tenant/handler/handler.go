package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bookify/internal/tenant/models"
	"bookify/internal/transport/http/shared"
	dErrors "bookify/pkg/domain-errors"
	"bookify/pkg/requestcontext"
)

// Service is the clinic operations the handler needs.
type Service interface {
	GetClinic(ctx context.Context, id string) (*models.Tenant, error)
	CreateClinic(ctx context.Context, subdomain, name string) (*models.Tenant, error)
	GetSettings(ctx context.Context, tenantID string) (*models.ClinicSettings, error)
	UpdateSettings(ctx context.Context, tenantID string, settings *models.ClinicSettings) (*models.ClinicSettings, error)
}

// Handler serves the clinic routes.
type Handler struct {
	logger  *slog.Logger
	clinics Service
}

func New(clinics Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, clinics: clinics}
}

// Register mounts clinic provisioning. It runs on the apex host and needs no
// resolved tenant.
func (h *Handler) Register(r chi.Router) {
	r.Post("/clinics", h.handleCreateClinic)
}

// RegisterAdmin mounts the clinic routes for authenticated staff.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/clinic", h.handleCurrentClinic)
	r.Get("/admin/clinic/settings", h.handleGetSettings)
	r.Put("/admin/clinic/settings", h.handleUpdateSettings)
}

type createClinicRequest struct {
	Subdomain string `json:"subdomain"`
	Name      string `json:"name"`
}

func (h *Handler) handleCreateClinic(w http.ResponseWriter, r *http.Request) {
	var req createClinicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	t, err := h.clinics.CreateClinic(r.Context(), req.Subdomain, req.Name)
	if err != nil {
		shared.LogError(h.logger, r, err, "clinic provisioning rejected")
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, t)
}

// handleCurrentClinic returns the clinic bound for this request. The
// middleware resolves silently; this handler is where an unresolved tenant
// becomes a structured 404, because for this route tenancy is mandatory.
func (h *Handler) handleCurrentClinic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, ok := requestcontext.TenantID(ctx)
	if !ok {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeTenantUnresolved, "unknown clinic for request"))
		return
	}

	t, err := h.clinics.GetClinic(ctx, tenantID)
	if err != nil {
		shared.LogError(h.logger, r, err, "clinic lookup failed")
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, ok := requestcontext.TenantID(ctx)
	if !ok {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeTenantUnresolved, "unknown clinic for request"))
		return
	}

	settings, err := h.clinics.GetSettings(ctx, tenantID)
	if err != nil {
		shared.LogError(h.logger, r, err, "clinic settings lookup failed")
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, settings)
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, ok := requestcontext.TenantID(ctx)
	if !ok {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeTenantUnresolved, "unknown clinic for request"))
		return
	}

	var settings models.ClinicSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	updated, err := h.clinics.UpdateSettings(ctx, tenantID, &settings)
	if err != nil {
		shared.LogError(h.logger, r, err, "clinic settings update rejected")
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, updated)
}
