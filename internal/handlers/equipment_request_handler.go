package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"filmsoc-backend/internal/middleware"
	"filmsoc-backend/internal/models"
	"filmsoc-backend/internal/repositories"
	"filmsoc-backend/pkg/utils"

	"github.com/gorilla/mux"
)

// LifecycleManager is the handler-facing surface of the checkout state
// machine. Satisfied by *lifecycle.Manager.
type LifecycleManager interface {
	RequestEquipment(ctx context.Context, equipmentID string, eventID *string, requesterID, notes string) (*models.EquipmentRequest, error)
	Approve(ctx context.Context, requestID, approverID string) (*models.EquipmentRequest, error)
	Reject(ctx context.Context, requestID, approverID string) (*models.EquipmentRequest, error)
	MarkReceived(ctx context.Context, requestID, actorID string) (*models.EquipmentRequest, error)
	MarkReturned(ctx context.Context, requestID, actorID string) (*models.EquipmentRequest, error)
	SetStatus(ctx context.Context, equipmentID, newStatus, actorID, assignedUserID string) (*models.Equipment, error)
}

type EquipmentRequestHandler struct {
	Lifecycle LifecycleManager
	Repo      *repositories.EquipmentRequestRepository
}

func NewEquipmentRequestHandler(lifecycle LifecycleManager, repo *repositories.EquipmentRequestRepository) *EquipmentRequestHandler {
	return &EquipmentRequestHandler{
		Lifecycle: lifecycle,
		Repo:      repo,
	}
}

// CreateRequest files a new equipment request as the caller
func (h *EquipmentRequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := middleware.GetUserIDFromContext(r.Context())

	var req models.CreateEquipmentRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	request, err := h.Lifecycle.RequestEquipment(r.Context(), req.EquipmentID, req.EventID, requesterID, req.Notes)
	if err != nil {
		writeLifecycleError(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, request)
}

// GetRequest returns one request with names resolved
func (h *EquipmentRequestHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	request, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "Request not found")
		return
	}

	utils.JSON(w, http.StatusOK, request)
}

// ListRequests returns the caller's requests, or all for ?scope=all
// (admin), or the approval inbox for ?scope=inbox
func (h *EquipmentRequestHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserIDFromContext(r.Context())
	isAdmin, _ := middleware.GetIsAdminFromContext(r.Context())

	var (
		requests []models.EquipmentRequest
		err      error
	)

	switch r.URL.Query().Get("scope") {
	case "all":
		if !isAdmin {
			utils.Error(w, http.StatusForbidden, "Admin access required")
			return
		}
		requests, err = h.Repo.ListAll(r.Context())
	case "inbox":
		requests, err = h.Repo.ListForOwner(r.Context(), callerID)
	default:
		requests, err = h.Repo.ListByRequester(r.Context(), callerID)
	}
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, requests)
}

// Approve moves a pending request to approved
func (h *EquipmentRequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Lifecycle.Approve)
}

// Reject moves a pending request to rejected
func (h *EquipmentRequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Lifecycle.Reject)
}

func (h *EquipmentRequestHandler) decide(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, requestID, approverID string) (*models.EquipmentRequest, error)) {
	id := mux.Vars(r)["id"]
	actorID, _ := middleware.GetUserIDFromContext(r.Context())

	request, err := op(r.Context(), id, actorID)
	if err != nil {
		writeLifecycleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, request)
}

// MarkReceived records the physical handover and opens the checkout log
func (h *EquipmentRequestHandler) MarkReceived(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	actorID, _ := middleware.GetUserIDFromContext(r.Context())

	request, err := h.Lifecycle.MarkReceived(r.Context(), id, actorID)
	if err != nil {
		writeLifecycleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, request)
}

// MarkReturned closes the checkout log and frees the equipment
func (h *EquipmentRequestHandler) MarkReturned(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	actorID, _ := middleware.GetUserIDFromContext(r.Context())

	request, err := h.Lifecycle.MarkReturned(r.Context(), id, actorID)
	if err != nil {
		writeLifecycleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, request)
}
