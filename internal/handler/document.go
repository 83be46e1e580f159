package handler

import (
	"log/slog"
	"net/http"

	"inkstone/internal/domain/models"
	"inkstone/internal/httputil"
	"inkstone/internal/service"
)

// DocumentHandler handles document HTTP requests
// Handlers only communicate with services, never repositories
type DocumentHandler struct {
	documents *service.DocumentService
	logger    *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documents *service.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{documents: documents, logger: logger}
}

// Create creates a new document
// POST /api/documents
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req service.CreateDocumentInput
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.documents.Create(r.Context(), userID, req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// List retrieves all of the user's documents, optionally filtered by tag
// GET /api/documents?tag_id=:id
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var (
		docs []models.Document
		err  error
	)
	if tagID := r.URL.Query().Get("tag_id"); tagID != "" {
		docs, err = h.documents.ListByTag(r.Context(), userID, tagID)
	} else {
		docs, err = h.documents.List(r.Context(), userID)
	}
	if err != nil {
		handleError(w, err)
		return
	}

	if docs == nil {
		docs = []models.Document{}
	}
	httputil.RespondJSON(w, http.StatusOK, docs)
}

// Search runs a ranked full-text query
// GET /api/documents/search?q=:query
func (h *DocumentHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	query := r.URL.Query().Get("q")

	docs, err := h.documents.Search(r.Context(), userID, query)
	if err != nil {
		handleError(w, err)
		return
	}

	if docs == nil {
		docs = []models.Document{}
	}
	httputil.RespondJSON(w, http.StatusOK, docs)
}

// Get retrieves a single document's metadata
// GET /api/documents/{id}
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	doc, err := h.documents.Get(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// updateDocumentRequest carries the PATCH body. FolderID uses tri-state
// decoding so "omitted" and "null" stay distinguishable.
type updateDocumentRequest struct {
	Title      *string                 `json:"title"`
	FolderID   httputil.OptionalString `json:"folder_id"`
	IsPinned   *bool                   `json:"is_pinned"`
	IsArchived *bool                   `json:"is_archived"`
}

// Update applies a partial metadata update
// PATCH /api/documents/{id}
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	var req updateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := &models.DocumentPatch{
		Title:      req.Title,
		FolderID:   models.OptionalRef{Present: req.FolderID.Present, Value: req.FolderID.Value},
		IsPinned:   req.IsPinned,
		IsArchived: req.IsArchived,
	}

	doc, err := h.documents.Patch(r.Context(), httputil.GetUserID(r), id, patch)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// Delete removes a document, its versions, its content file and its index
// entry
// DELETE /api/documents/{id}
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.documents.Delete(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetContent returns the document's raw content
// GET /api/documents/{id}/content
func (h *DocumentHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	content, err := h.documents.GetContent(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.DocumentContent{Content: content})
}

// UpdateContent replaces the document's content and syncs metadata,
// versions and the search index
// PUT /api/documents/{id}/content
func (h *DocumentHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	var req models.DocumentContent
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.documents.UpdateContent(r.Context(), httputil.GetUserID(r), id, req.Content)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// Snapshot takes an out-of-band snapshot if the document changed since the
// last one, skipping the interval gate. 204 when nothing was stale.
// POST /api/documents/{id}/snapshot
func (h *DocumentHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	summary, err := h.documents.SnapshotIfStale(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}
	if summary == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, summary)
}
