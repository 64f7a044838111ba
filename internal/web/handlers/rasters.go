package handlers

import (
	"bytes"
	"image/png"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pavelhrncir/casebook/internal/raster"
)

// Thumbnail size bounds in pixels.
const (
	minThumbSize = 32
	maxThumbSize = 4096
)

// RastersHandler serves scaled raster thumbnails
type RastersHandler struct {
	rasters raster.Store
}

// NewRastersHandler creates a new rasters handler
func NewRastersHandler(rasters raster.Store) *RastersHandler {
	return &RastersHandler{rasters: rasters}
}

// Thumbnail returns the named raster scaled to fit the requested size.
// Rasters already within the size come back as stored.
func (h *RastersHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	size, err := strconv.Atoi(chi.URLParam(r, "size"))
	if err != nil || size < minThumbSize || size > maxThumbSize {
		respondError(w, http.StatusBadRequest, "size must be between 32 and 4096")
		return
	}

	img, err := h.rasters.Load(r.Context(), name)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to encode raster")
		return
	}

	data, err := raster.ResizeImage(buf.Bytes(), size)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to scale raster")
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
