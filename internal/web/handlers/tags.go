package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pavelhrncir/casebook/internal/casefile"
	"github.com/pavelhrncir/casebook/internal/store"
)

// TagsHandler handles tag endpoints
type TagsHandler struct {
	store store.Gateway
}

// NewTagsHandler creates a new tags handler
func NewTagsHandler(gw store.Gateway) *TagsHandler {
	return &TagsHandler{store: gw}
}

type tagResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// List returns all tags ordered by name.
func (h *TagsHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.store.ListTags(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list tags")
		return
	}

	result := make([]tagResponse, len(tags))
	for i, t := range tags {
		result[i] = tagResponse{ID: t.ID, Name: t.Name, Color: t.Color}
	}
	respondJSON(w, http.StatusOK, result)
}

// Save creates a tag or, when an ID is given, updates it.
func (h *TagsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	tag := &casefile.Tag{ID: req.ID, Name: req.Name, Color: req.Color}
	if err := h.store.SaveTag(r.Context(), tag); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save tag")
		return
	}

	status := http.StatusCreated
	if req.ID != "" {
		status = http.StatusOK
	}
	respondJSON(w, status, tagResponse{ID: tag.ID, Name: tag.Name, Color: tag.Color})
}

// Delete removes the tag and detaches it from all cases.
func (h *TagsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteTag(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete tag")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
