package handler

import (
	"log/slog"
	"net/http"

	"docuvault/internal/domain/services"
	"docuvault/internal/httputil"
)

// GrantHandler handles folder grant administration requests.
type GrantHandler struct {
	grants services.GrantService
	logger *slog.Logger
}

// NewGrantHandler creates a new grant handler.
func NewGrantHandler(grants services.GrantService, logger *slog.Logger) *GrantHandler {
	return &GrantHandler{grants: grants, logger: logger}
}

// Create handles POST /api/folders/{id}/grants.
func (h *GrantHandler) Create(w http.ResponseWriter, r *http.Request) {
	folderID, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req services.CreateGrantRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.FolderID = folderID

	grant, err := h.grants.Create(r.Context(), &req)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, grant)
}

// ListByFolder handles GET /api/folders/{id}/grants.
func (h *GrantHandler) ListByFolder(w http.ResponseWriter, r *http.Request) {
	folderID, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	grants, err := h.grants.ListByFolder(r.Context(), folderID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, grants)
}

// Revoke handles POST /api/grants/{id}/revoke.
func (h *GrantHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	grant, err := h.grants.Revoke(r.Context(), id)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, grant)
}

// Reactivate handles POST /api/grants/{id}/reactivate.
func (h *GrantHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	grant, err := h.grants.Reactivate(r.Context(), id)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, grant)
}
