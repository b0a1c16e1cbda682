package handlers

import (
	"encoding/json"
	"net/http"

	"filmsoc-backend/internal/middleware"
	"filmsoc-backend/internal/models"
	"filmsoc-backend/internal/services"
	"filmsoc-backend/pkg/utils"
)

type TOTPHandler struct {
	Service       *services.TOTPService
	MemberService *services.MemberService
}

func NewTOTPHandler(s *services.TOTPService, memberService *services.MemberService) *TOTPHandler {
	return &TOTPHandler{
		Service:       s,
		MemberService: memberService,
	}
}

// Setup starts 2FA enrollment and returns the QR code
func (h *TOTPHandler) Setup(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	member, err := h.MemberService.GetMember(r.Context(), userID)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "Member not found")
		return
	}

	resp, err := h.Service.GenerateSetup(r.Context(), member)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, resp)
}

// Enable verifies the first code and turns 2FA on
func (h *TOTPHandler) Enable(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req models.TOTPVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.Service.VerifyAndEnable(r.Context(), userID, req.Code); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, &models.TOTPStatus{Enabled: true})
}

// Disable turns 2FA off after re-verification
func (h *TOTPHandler) Disable(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req models.TOTPDisableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.Service.Disable(r.Context(), userID, req.Password, req.Code); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, &models.TOTPStatus{Enabled: false})
}

// Status reports whether the caller has 2FA enabled
func (h *TOTPHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	member, err := h.MemberService.GetMember(r.Context(), userID)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "Member not found")
		return
	}

	utils.JSON(w, http.StatusOK, &models.TOTPStatus{Enabled: member.TOTPEnabled})
}
