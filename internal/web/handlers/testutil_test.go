package handlers

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/pavelhrncir/casebook/internal/casefile"
	"github.com/pavelhrncir/casebook/internal/raster"
	"github.com/pavelhrncir/casebook/internal/store/memory"
)

// newTestRasters creates a raster store backed by a temp directory
func newTestRasters(t *testing.T) *raster.DirStore {
	t.Helper()
	rs, err := raster.NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create raster store: %v", err)
	}
	return rs
}

// saveTestRaster stores a uniform image and returns its resource name
func saveTestRaster(t *testing.T, rs raster.Store, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 210, G: 180, B: 90, A: 255})
		}
	}
	name, err := rs.Save(context.Background(), img)
	if err != nil {
		t.Fatalf("failed to save test raster: %v", err)
	}
	return name
}

// seedCase stores a case with one photo per resource name and returns it
func seedCase(t *testing.T, st *memory.Store, title string, resources ...string) *casefile.Case {
	t.Helper()
	c := casefile.NewCase(title)
	for _, res := range resources {
		c.AppendPhoto(casefile.NewPhoto(c.ID, res))
	}
	if err := st.SaveCase(context.Background(), c); err != nil {
		t.Fatalf("failed to seed case: %v", err)
	}
	return c
}

// reloadCase fetches the stored state of a case after a handler ran
func reloadCase(t *testing.T, st *memory.Store, id string) *casefile.Case {
	t.Helper()
	c, err := st.LoadCase(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to reload case: %v", err)
	}
	if c == nil {
		t.Fatalf("case %s disappeared from store", id)
	}
	return c
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
