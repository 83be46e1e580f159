package handler

import (
	"log/slog"
	"net/http"

	"inkstone/internal/domain/models"
	"inkstone/internal/httputil"
	"inkstone/internal/service"
)

// TagHandler handles tag HTTP requests
type TagHandler struct {
	tags   *service.TagService
	logger *slog.Logger
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tags *service.TagService, logger *slog.Logger) *TagHandler {
	return &TagHandler{tags: tags, logger: logger}
}

// Create creates a new tag
// POST /api/tags
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTagInput
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tag, err := h.tags.Create(r.Context(), httputil.GetUserID(r), req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, tag)
}

// List retrieves all of the user's tags
// GET /api/tags
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.List(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	if tags == nil {
		tags = []models.Tag{}
	}
	httputil.RespondJSON(w, http.StatusOK, tags)
}

type updateTagRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

// Update applies a partial tag update
// PATCH /api/tags/{id}
func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	var req updateTagRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tag, err := h.tags.Patch(r.Context(), httputil.GetUserID(r), id, &models.TagPatch{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tag)
}

// Delete removes a tag and its document links
// DELETE /api/tags/{id}
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.tags.Delete(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListForDocument retrieves the tags attached to a document
// GET /api/documents/{id}/tags
func (h *TagHandler) ListForDocument(w http.ResponseWriter, r *http.Request) {
	documentID, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	tags, err := h.tags.ListForDocument(r.Context(), httputil.GetUserID(r), documentID)
	if err != nil {
		handleError(w, err)
		return
	}

	if tags == nil {
		tags = []models.Tag{}
	}
	httputil.RespondJSON(w, http.StatusOK, tags)
}

// Attach links a tag to a document; repeating the call is a no-op
// PUT /api/documents/{id}/tags/{tagId}
func (h *TagHandler) Attach(w http.ResponseWriter, r *http.Request) {
	documentID, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	tagID, ok := pathParam(w, r, "tagId")
	if !ok {
		return
	}

	if err := h.tags.Attach(r.Context(), httputil.GetUserID(r), documentID, tagID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Detach unlinks a tag from a document
// DELETE /api/documents/{id}/tags/{tagId}
func (h *TagHandler) Detach(w http.ResponseWriter, r *http.Request) {
	documentID, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	tagID, ok := pathParam(w, r, "tagId")
	if !ok {
		return
	}

	if err := h.tags.Detach(r.Context(), httputil.GetUserID(r), documentID, tagID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
