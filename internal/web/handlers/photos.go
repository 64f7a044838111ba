package handlers

import (
	"encoding/json"
	"image/png"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pavelhrncir/casebook/internal/annotation"
	"github.com/pavelhrncir/casebook/internal/casefile"
	"github.com/pavelhrncir/casebook/internal/raster"
	"github.com/pavelhrncir/casebook/internal/store"
)

// PhotosHandler handles photo endpoints within a case
type PhotosHandler struct {
	store   store.Gateway
	editor  *casefile.Editor
	rasters raster.Store
}

// NewPhotosHandler creates a new photos handler
func NewPhotosHandler(gw store.Gateway, editor *casefile.Editor, rasters raster.Store) *PhotosHandler {
	return &PhotosHandler{store: gw, editor: editor, rasters: rasters}
}

// findPhoto resolves the {pid} URL parameter within the loaded case. On
// failure an error response is written and nil returned.
func findPhoto(w http.ResponseWriter, r *http.Request, c *casefile.Case) *casefile.CasePhoto {
	pid := chi.URLParam(r, "pid")
	p := c.Photo(pid)
	if p == nil {
		respondError(w, http.StatusNotFound, "photo not found")
		return nil
	}
	return p
}

// Add registers a stored raster as a new photo record at the end of the case.
func (h *PhotosHandler) Add(w http.ResponseWriter, r *http.Request) {
	c := loadCase(w, r, h.store)
	if c == nil {
		return
	}
	var req struct {
		Resource string `json:"resource"`
		Note     string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Resource == "" {
		respondError(w, http.StatusBadRequest, "resource is required")
		return
	}
	if _, _, err := h.rasters.Dimensions(r.Context(), req.Resource); err != nil {
		respondDomainError(w, err)
		return
	}

	p := casefile.NewPhoto(c.ID, req.Resource)
	p.Note = req.Note
	c.AppendPhoto(p)

	if !saveCase(w, r, h.store, c) {
		return
	}
	respondJSON(w, http.StatusCreated, photoToResponse(p))
}

// Update changes photo flags and note. All fields are optional.
func (h *PhotosHandler) Update(w http.ResponseWriter, r *http.Request) {
	c := loadCase(w, r, h.store)
	if c == nil {
		return
	}
	p := findPhoto(w, r, c)
	if p == nil {
		return
	}
	var req struct {
		Note             *string            `json:"note"`
		InExport         *bool              `json:"in_export"`
		FullPage         *bool              `json:"full_page"`
		ShowStampSummary *bool              `json:"show_stamp_summary"`
		LegendMeanings   *map[string]string `json:"legend_meanings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if req.Note != nil {
		p.Note = *req.Note
	}
	if req.InExport != nil {
		p.InExport = *req.InExport
	}
	if req.FullPage != nil {
		p.FullPage = *req.FullPage
	}
	if req.ShowStampSummary != nil {
		p.ShowStampSummary = *req.ShowStampSummary
	}
	if req.LegendMeanings != nil {
		p.LegendMeanings = *req.LegendMeanings
	}
	c.Touch()

	if !saveCase(w, r, h.store, c) {
		return
	}
	respondJSON(w, http.StatusOK, photoToResponse(p))
}

// Delete removes the photo record. The raster resource stays in the store.
func (h *PhotosHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c := loadCase(w, r, h.store)
	if c == nil {
		return
	}
	pid := chi.URLParam(r, "pid")
	if c.RemovePhoto(pid) == nil {
		respondError(w, http.StatusNotFound, "photo not found")
		return
	}

	if !saveCase(w, r, h.store, c) {
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// Reorder moves a photo directly before another one. An empty before_id
// moves it to the end.
func (h *PhotosHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	c := loadCase(w, r, h.store)
	if c == nil {
		return
	}
	var req struct {
		MovedID  string `json:"moved_id"`
		BeforeID string `json:"before_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.MovedID == "" {
		respondError(w, http.StatusBadRequest, "moved_id is required")
		return
	}

	c.ReorderPhoto(req.MovedID, req.BeforeID)

	if !saveCase(w, r, h.store, c) {
		return
	}
	respondJSON(w, http.StatusOK, caseToDetailResponse(c))
}

// Compose merges 2 to 4 selected photos into one composite record.
func (h *PhotosHandler) Compose(w http.ResponseWriter, r *http.Request) {
	c := loadCase(w, r, h.store)
	if c == nil {
		return
	}
	var req struct {
		PhotoIDs []string `json:"photo_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	comp, err := h.editor.Compose(r.Context(), c, req.PhotoIDs)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if !saveCase(w, r, h.store, c) {
		return
	}
	respondJSON(w, http.StatusCreated, photoToResponse(comp))
}

// Decompose splits a composite photo back into its source photos.
func (h *PhotosHandler) Decompose(w http.ResponseWriter, r *http.Request) {
	c := loadCase(w, r, h.store)
	if c == nil {
		return
	}
	p := findPhoto(w, r, c)
	if p == nil {
		return
	}

	restored, err := h.editor.Decompose(r.Context(), c, p.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if !saveCase(w, r, h.store, c) {
		return
	}
	result := make([]photoResponse, len(restored))
	for i, p := range restored {
		result[i] = photoToResponse(p)
	}
	respondJSON(w, http.StatusOK, result)
}

// Rotate turns the photo's raster 90 degrees clockwise together with its
// annotation layers.
func (h *PhotosHandler) Rotate(w http.ResponseWriter, r *http.Request) {
	c := loadCase(w, r, h.store)
	if c == nil {
		return
	}
	p := findPhoto(w, r, c)
	if p == nil {
		return
	}

	if err := h.editor.RotatePhoto(r.Context(), c, p.ID); err != nil {
		log.Printf("WARNING: rotate failed for photo %s: %v", sanitizeForLog(p.ID), err)
		respondDomainError(w, err)
		return
	}

	if !saveCase(w, r, h.store, c) {
		return
	}
	respondJSON(w, http.StatusOK, photoToResponse(p))
}

// SetAnnotation replaces the photo's annotation state with the posted
// payload. Older payload versions are migrated on decode.
func (h *PhotosHandler) SetAnnotation(w http.ResponseWriter, r *http.Request) {
	c := loadCase(w, r, h.store)
	if c == nil {
		return
	}
	p := findPhoto(w, r, c)
	if p == nil {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	payload, err := annotation.DecodePayload(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	p.ApplyAnnotation(payload)
	c.Touch()

	if !saveCase(w, r, h.store, c) {
		return
	}
	respondJSON(w, http.StatusOK, photoToResponse(p))
}

// Legend returns the photo's stamp summary rows.
func (h *PhotosHandler) Legend(w http.ResponseWriter, r *http.Request) {
	c := loadCase(w, r, h.store)
	if c == nil {
		return
	}
	p := findPhoto(w, r, c)
	if p == nil {
		return
	}
	entries := p.Legend()
	if entries == nil {
		entries = []annotation.LegendEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

// Preview renders the photo's raster with annotation layers drawn on top
// and returns it as PNG.
func (h *PhotosHandler) Preview(w http.ResponseWriter, r *http.Request) {
	c := loadCase(w, r, h.store)
	if c == nil {
		return
	}
	p := findPhoto(w, r, c)
	if p == nil {
		return
	}

	img, err := h.editor.Preview(r.Context(), c, p.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if err := png.Encode(w, img); err != nil {
		log.Printf("WARNING: failed to stream preview for photo %s: %v", sanitizeForLog(p.ID), err)
	}
}
