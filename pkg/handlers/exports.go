package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/namerhq/namer-engine/pkg/auth"
	"github.com/namerhq/namer-engine/pkg/services"
)

// ExportsHandler handles export endpoints.
type ExportsHandler struct {
	exportService services.ExportService
	logger        *zap.Logger
}

// NewExportsHandler creates a new exports handler.
func NewExportsHandler(exportService services.ExportService, logger *zap.Logger) *ExportsHandler {
	return &ExportsHandler{
		exportService: exportService,
		logger:        logger,
	}
}

// RegisterRoutes registers the export routes on the given mux.
func (h *ExportsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/exports", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/exports", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("GET /api/exports/{id}/download", authMiddleware.RequireAuth(h.Download))
	mux.HandleFunc("DELETE /api/exports/{id}", authMiddleware.RequireAuth(h.Delete))
}

// Create handles POST /api/exports.
// Renders the result set to a file and stores it alongside the export row.
func (h *ExportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	var req services.CreateExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	export, err := h.exportService.Create(r.Context(), userID, req)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, export); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/exports.
func (h *ExportsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	exports, err := h.exportService.List(r.Context(), userID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"exports": exports}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Download handles GET /api/exports/{id}/download.
func (h *ExportsHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.requireUserAndID(w, r)
	if !ok {
		return
	}

	download, err := h.exportService.Download(r.Context(), userID, id)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", download.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
	if _, err := w.Write(download.Data); err != nil {
		h.logger.Error("Failed to write export response", zap.Error(err))
	}
}

// Delete handles DELETE /api/exports/{id}.
// Removes the row and the stored file as one operation.
func (h *ExportsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.requireUserAndID(w, r)
	if !ok {
		return
	}

	if err := h.exportService.Delete(r.Context(), userID, id); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"success": true}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *ExportsHandler) requireUserAndID(w http.ResponseWriter, r *http.Request) (string, uuid.UUID, bool) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return "", uuid.Nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_id", "ID must be a valid UUID"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return "", uuid.Nil, false
	}

	return userID, id, true
}
