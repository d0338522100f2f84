package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/namerhq/namer-engine/pkg/auth"
	"github.com/namerhq/namer-engine/pkg/services"
)

// DomainsHandler handles domain availability endpoints.
type DomainsHandler struct {
	domainService services.DomainService
	logger        *zap.Logger
}

// NewDomainsHandler creates a new domains handler.
func NewDomainsHandler(domainService services.DomainService, logger *zap.Logger) *DomainsHandler {
	return &DomainsHandler{
		domainService: domainService,
		logger:        logger,
	}
}

// RegisterRoutes registers the domain routes on the given mux.
func (h *DomainsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/domains/check", authMiddleware.RequireAuth(h.Check))
}

// Check handles GET /api/domains/check?name=.
// Returns per-TLD availability for one business name, served from the
// 24-hour cache when fresh.
func (h *DomainsHandler) Check(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_name", "Query parameter 'name' is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	results, err := h.domainService.CheckName(r.Context(), name)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{
		"name":    name,
		"results": results,
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
