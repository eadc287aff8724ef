// Package handler exposes the clinic catalog under /admin for authenticated
// clinic staff.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bookify/internal/catalog/models"
	shared "bookify/internal/transport/http/shared"
	dErrors "bookify/pkg/domain-errors"
)

// Service is the catalog surface the handler depends on.
type Service interface {
	CreateRoom(ctx context.Context, name string) (*models.Room, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
	DeleteRoom(ctx context.Context, id string) error
	CreateStaff(ctx context.Context, name string, skills []string) (*models.StaffMember, error)
	ListStaff(ctx context.Context) ([]models.StaffMember, error)
	CreateCategory(ctx context.Context, name, description string) (*models.TreatmentCategory, error)
	ListCategories(ctx context.Context) ([]models.TreatmentCategory, error)
	DeleteCategory(ctx context.Context, id string) error
	CreateTreatment(ctx context.Context, treatment *models.Treatment) (*models.Treatment, error)
	ListTreatments(ctx context.Context) ([]models.Treatment, error)
	AddVariant(ctx context.Context, treatmentID string, variant *models.TreatmentVariant) (*models.TreatmentVariant, error)
	ListVariants(ctx context.Context, treatmentID string) ([]models.TreatmentVariant, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the catalog routes. The caller is expected to wrap them in
// the session and CSRF guards.
func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/rooms", h.createRoom)
	r.Get("/admin/rooms", h.listRooms)
	r.Delete("/admin/rooms/{roomID}", h.deleteRoom)
	r.Post("/admin/staff", h.createStaff)
	r.Get("/admin/staff", h.listStaff)
	r.Post("/admin/categories", h.createCategory)
	r.Get("/admin/categories", h.listCategories)
	r.Delete("/admin/categories/{categoryID}", h.deleteCategory)
	r.Post("/admin/treatments", h.createTreatment)
	r.Get("/admin/treatments", h.listTreatments)
	r.Post("/admin/treatments/{treatmentID}/variants", h.addVariant)
	r.Get("/admin/treatments/{treatmentID}/variants", h.listVariants)
}

func (h *Handler) createRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	room, err := h.service.CreateRoom(r.Context(), req.Name)
	if err != nil {
		shared.LogError(h.logger, r, err, "create room rejected")
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, room)
}

func (h *Handler) listRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.service.ListRooms(r.Context())
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

func (h *Handler) deleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteRoom(r.Context(), chi.URLParam(r, "roomID")); err != nil {
		shared.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createStaff(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string   `json:"name"`
		Skills []string `json:"skills"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	member, err := h.service.CreateStaff(r.Context(), req.Name, req.Skills)
	if err != nil {
		shared.LogError(h.logger, r, err, "create staff member rejected")
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, member)
}

func (h *Handler) listStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := h.service.ListStaff(r.Context())
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"staff": staff})
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	category, err := h.service.CreateCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		shared.LogError(h.logger, r, err, "create category rejected")
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, category)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCategory(r.Context(), chi.URLParam(r, "categoryID")); err != nil {
		shared.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createTreatment(w http.ResponseWriter, r *http.Request) {
	var treatment models.Treatment
	if err := json.NewDecoder(r.Body).Decode(&treatment); err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	created, err := h.service.CreateTreatment(r.Context(), &treatment)
	if err != nil {
		shared.LogError(h.logger, r, err, "create treatment rejected")
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) addVariant(w http.ResponseWriter, r *http.Request) {
	var variant models.TreatmentVariant
	if err := json.NewDecoder(r.Body).Decode(&variant); err != nil {
		shared.WriteError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	created, err := h.service.AddVariant(r.Context(), chi.URLParam(r, "treatmentID"), &variant)
	if err != nil {
		shared.LogError(h.logger, r, err, "add treatment variant rejected")
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) listVariants(w http.ResponseWriter, r *http.Request) {
	variants, err := h.service.ListVariants(r.Context(), chi.URLParam(r, "treatmentID"))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"variants": variants})
}

func (h *Handler) listTreatments(w http.ResponseWriter, r *http.Request) {
	treatments, err := h.service.ListTreatments(r.Context())
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"treatments": treatments})
}
