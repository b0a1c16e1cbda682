package handlers

import (
	"net/http"

	"filmsoc-backend/internal/lifecycle"
	"filmsoc-backend/pkg/utils"
)

// writeLifecycleError maps a lifecycle error to an HTTP response with
// the code exposed so the frontend can branch on it
func writeLifecycleError(w http.ResponseWriter, err error) {
	code := lifecycle.CodeOf(err)

	status := http.StatusInternalServerError
	switch code {
	case lifecycle.CodeNotFound:
		status = http.StatusNotFound
	case lifecycle.CodeInvalidTransition, lifecycle.CodeConflictingCheckout:
		status = http.StatusConflict
	case lifecycle.CodeUnauthorized:
		status = http.StatusForbidden
	case lifecycle.CodeValidation:
		status = http.StatusBadRequest
	}

	utils.JSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  string(code),
	})
}
