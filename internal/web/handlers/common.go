package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pavelhrncir/casebook/internal/annotation"
	"github.com/pavelhrncir/casebook/internal/casefile"
	"github.com/pavelhrncir/casebook/internal/raster"
	"github.com/pavelhrncir/casebook/internal/store"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps domain sentinels to HTTP status codes: selection
// and tag-limit violations are unprocessable, stale annotation geometry is a
// conflict, raster storage trouble is a bad gateway.
func respondDomainError(w http.ResponseWriter, err error) {
	var storageErr *casefile.StorageError
	switch {
	case errors.Is(err, casefile.ErrInvalidSelection),
		errors.Is(err, casefile.ErrNotComposite),
		errors.Is(err, casefile.ErrTagLimit):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, annotation.ErrStaleGeometry):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, raster.ErrNotFound):
		respondError(w, http.StatusNotFound, "raster not found")
	case errors.As(err, &storageErr):
		respondError(w, http.StatusBadGateway, storageErr.Error())
	default:
		respondError(w, http.StatusInternalServerError, "operation failed")
	}
}

// loadCase fetches the case addressed by the {id} URL parameter. On failure
// an error response is written and nil returned.
func loadCase(w http.ResponseWriter, r *http.Request, gw store.Gateway) *casefile.Case {
	id := chi.URLParam(r, "id")
	c, err := gw.LoadCase(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load case")
		return nil
	}
	if c == nil {
		respondError(w, http.StatusNotFound, "case not found")
		return nil
	}
	return c
}

// saveCase persists the case. On failure an error response is written and
// false returned.
func saveCase(w http.ResponseWriter, r *http.Request, gw store.Gateway, c *casefile.Case) bool {
	if err := gw.SaveCase(r.Context(), c); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save case")
		return false
	}
	return true
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
