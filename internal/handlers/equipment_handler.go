package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"filmsoc-backend/internal/middleware"
	"filmsoc-backend/internal/models"
	"filmsoc-backend/internal/repositories"
	"filmsoc-backend/internal/services"
	"filmsoc-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// maxImageUpload caps equipment photo uploads at 8 MiB
const maxImageUpload = 8 << 20

type EquipmentHandler struct {
	Service   *services.EquipmentService
	Media     *services.MediaService
	Lifecycle LifecycleManager
}

func NewEquipmentHandler(s *services.EquipmentService, media *services.MediaService, lifecycle LifecycleManager) *EquipmentHandler {
	return &EquipmentHandler{
		Service:   s,
		Media:     media,
		Lifecycle: lifecycle,
	}
}

// CreateEquipment registers a new inventory item (admin only)
func (h *EquipmentHandler) CreateEquipment(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	equipment, err := h.Service.CreateEquipment(r.Context(), &req)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.JSON(w, http.StatusCreated, equipment)
}

// GetEquipment returns the detail view with open log and pending queue
func (h *EquipmentHandler) GetEquipment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	detail, err := h.Service.GetEquipment(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "Equipment not found")
		return
	}

	utils.JSON(w, http.StatusOK, detail)
}

// ListEquipment returns inventory filtered by query params
func (h *EquipmentHandler) ListEquipment(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repositories.EquipmentFilter{
		Type:          q.Get("type"),
		Status:        q.Get("status"),
		OwnershipType: q.Get("ownership_type"),
		OwnerID:       q.Get("owner_id"),
	}

	items, err := h.Service.ListEquipment(r.Context(), filter)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, items)
}

// UpdateEquipment edits descriptive fields (admin only)
func (h *EquipmentHandler) UpdateEquipment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.UpdateEquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	equipment, err := h.Service.UpdateEquipment(r.Context(), id, &req)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, equipment)
}

// DeleteEquipment removes an item (admin only)
func (h *EquipmentHandler) DeleteEquipment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.Service.DeleteEquipment(r.Context(), id); err != nil {
		utils.Error(w, http.StatusConflict, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetStatus manually changes an equipment status through the lifecycle
// manager, e.g. flagging a broken light as maintenance
func (h *EquipmentHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	actorID, _ := middleware.GetUserIDFromContext(r.Context())

	var req models.SetEquipmentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	equipment, err := h.Lifecycle.SetStatus(r.Context(), id, req.Status, actorID, req.AssignedUserID)
	if err != nil {
		writeLifecycleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, equipment)
}

// UploadImage stores an equipment photo and saves its public URL
func (h *EquipmentHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	r.Body = http.MaxBytesReader(w, r.Body, maxImageUpload)
	contentType := r.Header.Get("Content-Type")

	url, err := h.Media.UploadEquipmentImage(r.Context(), id, contentType, r.Body)
	if err != nil {
		if errors.Is(err, services.ErrMediaDisabled) {
			utils.Error(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{"image_url": url})
}
