package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vitabu/textbook-store/internal/database"
	"github.com/vitabu/textbook-store/internal/service"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Default().Error("encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service and store errors onto the response
// taxonomy: 400 validation, 401 bad credentials, 403 forbidden, 404 not
// found, 429 throttled, 500 otherwise.
func respondServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": ve.Fields})
	case errors.Is(err, service.ErrForbidden):
		respondError(w, http.StatusForbidden, "Admin permission required")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrRateLimited):
		respondError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, database.ErrUsernameTaken):
		respondError(w, http.StatusBadRequest, "Username already taken")
	case errors.Is(err, database.ErrBookNotFound),
		errors.Is(err, database.ErrInvoiceNotFound),
		errors.Is(err, database.ErrUserNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		logger.Error("internal error", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
