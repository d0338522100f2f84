package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/namerhq/namer-engine/pkg/auth"
	"github.com/namerhq/namer-engine/pkg/repositories"
	"github.com/namerhq/namer-engine/pkg/services"
	"github.com/namerhq/namer-engine/pkg/services/workqueue"
)

// defaultListLimit caps list endpoints when no limit query param is given.
const defaultListLimit = 20

// SessionsHandler handles name-generation session endpoints.
type SessionsHandler struct {
	sessionService services.SessionService
	sessionRepo    repositories.SessionRepository
	queue          *workqueue.Queue
	logger         *zap.Logger
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(
	sessionService services.SessionService,
	sessionRepo repositories.SessionRepository,
	queue *workqueue.Queue,
	logger *zap.Logger,
) *SessionsHandler {
	return &SessionsHandler{
		sessionService: sessionService,
		sessionRepo:    sessionRepo,
		queue:          queue,
		logger:         logger,
	}
}

// RegisterRoutes registers the session routes on the given mux.
func (h *SessionsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/sessions", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/sessions", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("GET /api/sessions/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("POST /api/sessions/{id}/cancel", authMiddleware.RequireAuth(h.Cancel))
}

// Create handles POST /api/sessions.
// Persists a pending session and enqueues the background generation task.
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	var req services.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	session, err := h.sessionService.Create(r.Context(), userID, req)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	h.queue.Enqueue(services.NewSessionTask(session.ID, h.sessionService, h.sessionRepo, h.logger))

	if err := WriteJSON(w, http.StatusCreated, session); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/sessions/{id}.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.requireUserAndID(w, r)
	if !ok {
		return
	}

	session, err := h.sessionService.Get(r.Context(), userID, id)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, session); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/sessions.
func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	sessions, err := h.sessionService.List(r.Context(), userID, listLimit(r))
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"sessions": sessions}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Cancel handles POST /api/sessions/{id}/cancel.
func (h *SessionsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.requireUserAndID(w, r)
	if !ok {
		return
	}

	session, err := h.sessionService.Cancel(r.Context(), userID, id)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"success": true, "session": session}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *SessionsHandler) requireUserAndID(w http.ResponseWriter, r *http.Request) (string, uuid.UUID, bool) {
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

// listLimit parses the limit query param, falling back to the default.
func listLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > 100 {
		return defaultListLimit
	}
	return limit
}
