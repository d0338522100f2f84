package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/namerhq/namer-engine/pkg/auth"
	"github.com/namerhq/namer-engine/pkg/services"
)

// unlockSessionName is the cookie session holding unlocked share IDs.
const unlockSessionName = "namer-share-unlock"

// SharesHandler handles share issuance and public share access.
type SharesHandler struct {
	shareService services.ShareService
	cookies      sessions.Store
	logger       *zap.Logger
}

// NewSharesHandler creates a new shares handler. The cookie store keeps
// which password-protected shares a browser session has unlocked.
func NewSharesHandler(shareService services.ShareService, cookies sessions.Store, logger *zap.Logger) *SharesHandler {
	return &SharesHandler{
		shareService: shareService,
		cookies:      cookies,
		logger:       logger,
	}
}

// RegisterRoutes registers the share routes on the given mux. The /share
// routes are public; everything under /api requires auth.
func (h *SharesHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/shares", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/shares", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("DELETE /api/shares/{id}", authMiddleware.RequireAuth(h.Deactivate))

	mux.HandleFunc("GET /share/{id}", h.Access)
	mux.HandleFunc("POST /share/{id}/unlock", h.Unlock)
}

// Create handles POST /api/shares.
func (h *SharesHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	var req services.CreateShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	share, err := h.shareService.Create(r.Context(), userID, req)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, share); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/shares.
func (h *SharesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	shares, err := h.shareService.List(r.Context(), userID)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"shares": shares}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Deactivate handles DELETE /api/shares/{id}.
func (h *SharesHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserIDFromContext(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.shareService.Deactivate(r.Context(), userID, id); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"success": true}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Access handles GET /share/{id}.
// Public; no authentication. A password-protected share is served only when
// the unlock cookie covers it.
func (h *SharesHandler) Access(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	content, err := h.shareService.Access(r.Context(), id, h.isUnlocked(r, id))
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, content); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Unlock handles POST /share/{id}/unlock.
// On a correct password the share ID is recorded in the cookie session, so
// subsequent Access calls skip the password gate.
func (h *SharesHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var payload struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.shareService.Unlock(r.Context(), id, payload.Password); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	session, err := h.cookies.Get(r, unlockSessionName)
	if err != nil {
		// A corrupt cookie just means a fresh session.
		h.logger.Debug("unlock cookie reset", zap.Error(err))
	}
	session.Values[id.String()] = true
	if err := session.Save(r, w); err != nil {
		h.logger.Error("Failed to save unlock cookie", zap.Error(err))
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"success": true}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// isUnlocked reports whether the browser session already passed the
// password gate for this share.
func (h *SharesHandler) isUnlocked(r *http.Request, id uuid.UUID) bool {
	session, err := h.cookies.Get(r, unlockSessionName)
	if err != nil {
		return false
	}
	unlocked, _ := session.Values[id.String()].(bool)
	return unlocked
}

func (h *SharesHandler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_id", "ID must be a valid UUID"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}
