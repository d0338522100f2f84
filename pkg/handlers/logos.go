package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/namerhq/namer-engine/pkg/auth"
	"github.com/namerhq/namer-engine/pkg/services"
	"github.com/namerhq/namer-engine/pkg/services/workqueue"
)

// customizePayload accepts either a single scheme or a list.
type customizePayload struct {
	ColorScheme  string   `json:"color_scheme,omitempty"`
	ColorSchemes []string `json:"color_schemes,omitempty"`
}

// LogosHandler handles logo generation endpoints.
type LogosHandler struct {
	logoService services.LogoService
	queue       *workqueue.Queue
	logger      *zap.Logger
}

// NewLogosHandler creates a new logos handler.
func NewLogosHandler(logoService services.LogoService, queue *workqueue.Queue, logger *zap.Logger) *LogosHandler {
	return &LogosHandler{
		logoService: logoService,
		queue:       queue,
		logger:      logger,
	}
}

// RegisterRoutes registers the logo routes on the given mux.
func (h *LogosHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/logos", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/logos", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("GET /api/logos/color-schemes", authMiddleware.RequireAuth(h.ColorSchemes))
	mux.HandleFunc("GET /api/logos/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("POST /api/logos/{id}/customize", authMiddleware.RequireAuth(h.Customize))
	mux.HandleFunc("GET /api/logos/{id}/download", authMiddleware.RequireAuth(h.Download))
	mux.HandleFunc("GET /api/logos/{id}/logos/{logoID}/file", authMiddleware.RequireAuth(h.File))
}

// Create handles POST /api/logos.
// Persists a pending batch and enqueues the render task.
func (h *LogosHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	var req services.CreateLogoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	gen, err := h.logoService.Create(r.Context(), userID, req)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	h.queue.Enqueue(services.NewLogoTask(gen.ID, h.logoService))

	if err := WriteJSON(w, http.StatusCreated, gen); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/logos/{id}.
// Returns the batch with per-logo metadata and color variants.
func (h *LogosHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.requireUserAndID(w, r, "id")
	if !ok {
		return
	}

	detail, err := h.logoService.Get(r.Context(), userID, id)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, detail); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/logos.
func (h *LogosHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	generations, err := h.logoService.List(r.Context(), userID, listLimit(r))
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"logo_generations": generations}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Customize handles POST /api/logos/{id}/customize.
func (h *LogosHandler) Customize(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.requireUserAndID(w, r, "id")
	if !ok {
		return
	}

	var payload customizePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	schemes := payload.ColorSchemes
	if payload.ColorScheme != "" {
		schemes = append(schemes, payload.ColorScheme)
	}

	result, err := h.logoService.Customize(r.Context(), userID, id, services.CustomizeRequest{ColorSchemes: schemes})
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Download handles GET /api/logos/{id}/download.
// Serves the full batch as a ZIP archive.
func (h *LogosHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.requireUserAndID(w, r, "id")
	if !ok {
		return
	}

	data, err := h.logoService.DownloadZip(r.Context(), userID, id)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "logos-"+id.String()[:8]+".zip"))
	if _, err := w.Write(data); err != nil {
		h.logger.Error("Failed to write zip response", zap.Error(err))
	}
}

// File handles GET /api/logos/{id}/logos/{logoID}/file.
// Serves one SVG, or its color variant when color_scheme is given.
func (h *LogosHandler) File(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	logoID, err := uuid.Parse(r.PathValue("logoID"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_id", "ID must be a valid UUID"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	scheme := r.URL.Query().Get("color_scheme")
	data, err := h.logoService.GetFile(r.Context(), userID, logoID, scheme)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	if _, err := w.Write(data); err != nil {
		h.logger.Error("Failed to write file response", zap.Error(err))
	}
}

// ColorSchemes handles GET /api/logos/color-schemes.
func (h *LogosHandler) ColorSchemes(w http.ResponseWriter, r *http.Request) {
	if err := WriteJSON(w, http.StatusOK, map[string]any{"color_schemes": h.logoService.ColorSchemes()}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *LogosHandler) requireUserAndID(w http.ResponseWriter, r *http.Request, param string) (string, uuid.UUID, bool) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return "", uuid.Nil, false
	}

	id, err := uuid.Parse(r.PathValue(param))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_id", "ID must be a valid UUID"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return "", uuid.Nil, false
	}

	return userID, id, true
}
