package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/namerhq/namer-engine/pkg/apperrors"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// ValidationErrorResponse writes a 422 with the per-field messages.
func ValidationErrorResponse(w http.ResponseWriter, verr *apperrors.ValidationError) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	return json.NewEncoder(w).Encode(map[string]any{
		"error":   "validation_failed",
		"message": verr.Error(),
		"fields":  verr.Fields,
	})
}

// WriteServiceError maps a service-layer error onto the HTTP taxonomy:
// not-found and inaccessible shares 404, forbidden 403, validation and
// illegal transitions 422, locked shares 403 with a locked marker,
// upstream failures 502, everything else 500.
func WriteServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var verr *apperrors.ValidationError
	var writeErr error

	switch {
	case errors.As(err, &verr):
		writeErr = ValidationErrorResponse(w, verr)
	case errors.Is(err, apperrors.ErrNotFound):
		writeErr = ErrorResponse(w, http.StatusNotFound, "not_found", "Resource not found")
	case errors.Is(err, apperrors.ErrForbidden):
		writeErr = ErrorResponse(w, http.StatusForbidden, "forbidden", "You do not have access to this resource")
	case errors.Is(err, apperrors.ErrInvalidTransition):
		writeErr = ErrorResponse(w, http.StatusUnprocessableEntity, "invalid_state", "Operation is not valid in the current state")
	case errors.Is(err, apperrors.ErrCannotCancel):
		writeErr = ErrorResponse(w, http.StatusUnprocessableEntity, "cannot_cancel", "Session is already finished")
	case errors.Is(err, apperrors.ErrShareLocked):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		writeErr = json.NewEncoder(w).Encode(map[string]any{
			"error":   "password_required",
			"message": "This share requires a password",
			"locked":  true,
		})
	case errors.Is(err, apperrors.ErrShareInaccessible):
		writeErr = ErrorResponse(w, http.StatusNotFound, "not_found", "This share is no longer available")
	case errors.Is(err, apperrors.ErrUpstream):
		logger.Error("upstream failure", zap.Error(err))
		writeErr = ErrorResponse(w, http.StatusBadGateway, "upstream_error", "An upstream provider failed")
	default:
		logger.Error("internal error", zap.Error(err))
		writeErr = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}

	if writeErr != nil {
		logger.Error("Failed to write error response", zap.Error(writeErr))
	}
}
