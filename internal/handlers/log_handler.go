package handlers

import (
	"fmt"
	"net/http"

	"filmsoc-backend/internal/middleware"
	"filmsoc-backend/internal/repositories"
	"filmsoc-backend/internal/services"
	"filmsoc-backend/internal/timeutil"
	"filmsoc-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type LogHandler struct {
	Repo    *repositories.EquipmentLogRepository
	Receipt *services.ReceiptService
}

func NewLogHandler(repo *repositories.EquipmentLogRepository, receipt *services.ReceiptService) *LogHandler {
	return &LogHandler{
		Repo:    repo,
		Receipt: receipt,
	}
}

// ListByEquipment returns the full checkout history for one item
func (h *LogHandler) ListByEquipment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	logs, err := h.Repo.ListByEquipment(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, logs)
}

// ListMine returns the caller's own checkout history
func (h *LogHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	logs, err := h.Repo.ListByUser(r.Context(), userID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, logs)
}

// ListOpen returns all outstanding checkouts (admin dashboard)
func (h *LogHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Repo.ListOpen(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, logs)
}

// ListOverdue returns open checkouts past their expected return time
func (h *LogHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Repo.ListOverdue(r.Context(), timeutil.Now())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, logs)
}

// DownloadReceipt streams the PDF checkout slip for one log
func (h *LogHandler) DownloadReceipt(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	pdf, err := h.Receipt.CheckoutReceipt(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "Log not found")
		return
	}

	name := id
	if len(name) > 8 {
		name = name[:8]
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="checkout-%s.pdf"`, name))
	w.Write(pdf)
}
