package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/namerhq/namer-engine/pkg/apperrors"
	"github.com/namerhq/namer-engine/pkg/auth"
	"github.com/namerhq/namer-engine/pkg/models"
	"github.com/namerhq/namer-engine/pkg/repositories"
)

// ProjectsHandler handles project organization endpoints. Projects are thin
// containers for sessions and logo generations, so the handler talks to the
// repository directly.
type ProjectsHandler struct {
	projectRepo repositories.ProjectRepository
	logger      *zap.Logger
}

// NewProjectsHandler creates a new projects handler.
func NewProjectsHandler(projectRepo repositories.ProjectRepository, logger *zap.Logger) *ProjectsHandler {
	return &ProjectsHandler{projectRepo: projectRepo, logger: logger}
}

// RegisterRoutes registers the project routes on the given mux.
func (h *ProjectsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/projects", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/projects", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("GET /api/projects/{id}", authMiddleware.RequireAuth(h.Get))
}

type createProjectRequest struct {
	Name string `json:"name"`
}

// Create handles POST /api/projects.
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		WriteServiceError(w, h.logger, apperrors.NewValidationError("name", "is required"))
		return
	}

	project := &models.Project{
		OwnerID: userID,
		Name:    name,
		Status:  models.ProjectActive,
	}
	if err := h.projectRepo.Create(r.Context(), project); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, project); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/projects/{id}.
func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.requireUserAndID(w, r)
	if !ok {
		return
	}

	project, err := h.projectRepo.GetByID(r.Context(), id)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	if project.OwnerID != userID {
		WriteServiceError(w, h.logger, apperrors.ErrForbidden)
		return
	}

	if err := WriteJSON(w, http.StatusOK, project); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/projects.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	projects, err := h.projectRepo.ListByOwner(r.Context(), userID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"projects": projects}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *ProjectsHandler) requireUserAndID(w http.ResponseWriter, r *http.Request) (string, uuid.UUID, bool) {
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
