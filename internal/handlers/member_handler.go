package handlers

import (
	"encoding/json"
	"net/http"

	"filmsoc-backend/internal/middleware"
	"filmsoc-backend/internal/models"
	"filmsoc-backend/internal/services"
	"filmsoc-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type MemberHandler struct {
	Service *services.MemberService
}

func NewMemberHandler(s *services.MemberService) *MemberHandler {
	return &MemberHandler{Service: s}
}

// Me returns the authenticated member's own profile
func (h *MemberHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	member, err := h.Service.GetMember(r.Context(), userID)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "Member not found")
		return
	}

	utils.JSON(w, http.StatusOK, member)
}

func (h *MemberHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	member, err := h.Service.GetMember(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "Member not found")
		return
	}

	utils.JSON(w, http.StatusOK, member)
}

// CreateMember adds a member directly (admin only)
func (h *MemberHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	member, err := h.Service.CreateMember(r.Context(), &req)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.JSON(w, http.StatusCreated, member)
}

// ListMembers returns all members
func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.Service.ListMembers(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, members)
}

// UpdateMember edits a profile. Members may edit themselves; admins may
// edit anyone.
func (h *MemberHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	callerID, _ := middleware.GetUserIDFromContext(r.Context())
	isAdmin, _ := middleware.GetIsAdminFromContext(r.Context())

	if id != callerID && !isAdmin {
		utils.Error(w, http.StatusForbidden, "Cannot edit another member's profile")
		return
	}

	var req models.UpdateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	member, err := h.Service.UpdateMember(r.Context(), id, &req)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, member)
}

// DeleteMember removes a member (admin only, enforced by routing)
func (h *MemberHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.Service.DeleteMember(r.Context(), id); err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetAdmin grants or revokes core-team access (admin only)
func (h *MemberHandler) SetAdmin(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		IsAdmin bool `json:"is_admin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.Service.SetAdmin(r.Context(), id, req.IsAdmin); err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, map[string]bool{"is_admin": req.IsAdmin})
}
