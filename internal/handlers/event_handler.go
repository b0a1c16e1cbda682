package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"filmsoc-backend/internal/middleware"
	"filmsoc-backend/internal/models"
	"filmsoc-backend/internal/services"
	"filmsoc-backend/internal/timeutil"
	"filmsoc-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type EventHandler struct {
	Service *services.EventService
}

func NewEventHandler(s *services.EventService) *EventHandler {
	return &EventHandler{Service: s}
}

// CreateEvent files a new event proposal
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	creatorID, _ := middleware.GetUserIDFromContext(r.Context())

	var req models.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	event, err := h.Service.CreateEvent(r.Context(), creatorID, &req)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.JSON(w, http.StatusCreated, event)
}

func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	event, err := h.Service.GetEvent(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "Event not found")
		return
	}

	utils.JSON(w, http.StatusOK, event)
}

// ListEvents returns upcoming events, or a date range when ?from/?to
// are given (RFC 3339)
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("from") != "" || q.Get("to") != "" {
		from, err := time.Parse(time.RFC3339, q.Get("from"))
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid from timestamp")
			return
		}
		to, err := time.Parse(time.RFC3339, q.Get("to"))
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid to timestamp")
			return
		}

		events, err := h.Service.ListRange(r.Context(), from, to)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, events)
		return
	}

	events, err := h.Service.ListUpcoming(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, events)
}

// ListPendingApproval returns the admin approval queue
func (h *EventHandler) ListPendingApproval(w http.ResponseWriter, r *http.Request) {
	events, err := h.Service.ListPendingApproval(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, events)
}

// UpdateEvent edits an event (creator or admin)
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	callerID, _ := middleware.GetUserIDFromContext(r.Context())
	isAdmin, _ := middleware.GetIsAdminFromContext(r.Context())

	var req models.UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	event, err := h.Service.UpdateEvent(r.Context(), id, callerID, isAdmin, &req)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, event)
}

// ApproveEvent marks an event approved (admin only)
func (h *EventHandler) ApproveEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	approverID, _ := middleware.GetUserIDFromContext(r.Context())

	if err := h.Service.ApproveEvent(r.Context(), id, approverID); err != nil {
		utils.Error(w, http.StatusNotFound, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"id":          id,
		"is_approved": true,
		"approved_at": timeutil.Now(),
	})
}

// DeleteEvent removes an event (creator or admin)
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	callerID, _ := middleware.GetUserIDFromContext(r.Context())
	isAdmin, _ := middleware.GetIsAdminFromContext(r.Context())

	if err := h.Service.DeleteEvent(r.Context(), id, callerID, isAdmin); err != nil {
		utils.Error(w, http.StatusForbidden, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Join adds the caller to an event's participant list
func (h *EventHandler) Join(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	if err := h.Service.Join(r.Context(), id, userID); err != nil {
		utils.Error(w, http.StatusNotFound, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Leave removes the caller from an event's participant list
func (h *EventHandler) Leave(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	if err := h.Service.Leave(r.Context(), id, userID); err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Participants lists who has joined an event
func (h *EventHandler) Participants(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	participants, err := h.Service.Participants(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, participants)
}
