package handlers

import (
	"encoding/json"
	"net/http"

	"filmsoc-backend/internal/auth"
	"filmsoc-backend/internal/models"
	"filmsoc-backend/internal/services"
	"filmsoc-backend/pkg/utils"
)

type AuthHandler struct {
	MemberService *services.MemberService
	TOTPService   *services.TOTPService
	JWTManager    *auth.JWTManager
}

func NewAuthHandler(memberService *services.MemberService, totpService *services.TOTPService, jwtManager *auth.JWTManager) *AuthHandler {
	return &AuthHandler{
		MemberService: memberService,
		TOTPService:   totpService,
		JWTManager:    jwtManager,
	}
}

// Signup creates a new member account
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.MemberService.Signup(r.Context(), &req)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.JSON(w, http.StatusCreated, resp)
}

// Login authenticates and returns a token, or a temp token when 2FA is on
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.MemberService.Login(r.Context(), &req)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, resp)
}

// Verify2FA completes login step 2: temp token + TOTP code -> session token
func (h *AuthHandler) Verify2FA(w http.ResponseWriter, r *http.Request) {
	var req models.TOTPVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	claims, err := h.JWTManager.ValidateTempToken(req.TempToken)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "Invalid or expired temp token")
		return
	}

	if err := h.TOTPService.Verify(r.Context(), claims.UserID, req.Code); err != nil {
		utils.Error(w, http.StatusUnauthorized, err.Error())
		return
	}

	member, err := h.MemberService.GetMember(r.Context(), claims.UserID)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "Member not found")
		return
	}

	token, err := h.JWTManager.GenerateToken(member)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Token generation failed")
		return
	}

	utils.JSON(w, http.StatusOK, &models.AuthResponse{
		Token:  token,
		Member: member,
	})
}
