package handler

import (
	"log/slog"
	"net/http"

	"inkstone/internal/domain/models"
	"inkstone/internal/httputil"
	"inkstone/internal/service"
)

// VersionHandler handles document version HTTP requests
type VersionHandler struct {
	versions *service.VersionService
	logger   *slog.Logger
}

// NewVersionHandler creates a new version handler
func NewVersionHandler(versions *service.VersionService, logger *slog.Logger) *VersionHandler {
	return &VersionHandler{versions: versions, logger: logger}
}

// List retrieves a document's version summaries, newest first
// GET /api/documents/{id}/versions
func (h *VersionHandler) List(w http.ResponseWriter, r *http.Request) {
	documentID, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	summaries, err := h.versions.List(r.Context(), httputil.GetUserID(r), documentID)
	if err != nil {
		handleError(w, err)
		return
	}

	if summaries == nil {
		summaries = []models.DocumentVersionSummary{}
	}
	httputil.RespondJSON(w, http.StatusOK, summaries)
}

// Get retrieves one version including its content snapshot
// GET /api/documents/{id}/versions/{versionId}
func (h *VersionHandler) Get(w http.ResponseWriter, r *http.Request) {
	documentID, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	versionID, ok := pathParam(w, r, "versionId")
	if !ok {
		return
	}

	version, err := h.versions.Get(r.Context(), httputil.GetUserID(r), documentID, versionID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, version)
}
