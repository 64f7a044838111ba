package handlers

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pavelhrncir/casebook/internal/annotation"
	"github.com/pavelhrncir/casebook/internal/casefile"
	"github.com/pavelhrncir/casebook/internal/raster"
	"github.com/pavelhrncir/casebook/internal/store/memory"
)

func createPhotosHandlerForTest(st *memory.Store, rs raster.Store) *PhotosHandler {
	return NewPhotosHandler(st, casefile.NewEditor(rs), rs)
}

func TestPhotosHandler_Add_Success(t *testing.T) {
	st := memory.NewStore()
	rs := newTestRasters(t)
	handler := createPhotosHandlerForTest(st, rs)

	c := seedCase(t, st, "Oprava střechy")
	name := saveTestRaster(t, rs, 64, 48)

	body := bytes.NewBufferString(`{"resource": "` + name + `", "note": "trhlina u komína"}`)
	req := httptest.NewRequest("POST", "/api/v1/cases/"+c.ID+"/photos", body)
	req.Header.Set("Content-Type", "application/json")
	req = requestWithChiParams(req, map[string]string{"id": c.ID})
	recorder := httptest.NewRecorder()

	handler.Add(recorder, req)

	assertStatusCode(t, recorder, http.StatusCreated)

	var result map[string]any
	parseJSONResponse(t, recorder, &result)
	if result["resource"] != name {
		t.Errorf("expected resource '%s', got '%v'", name, result["resource"])
	}
	if result["note"] != "trhlina u komína" {
		t.Errorf("expected note, got '%v'", result["note"])
	}
	if result["in_export"] != true {
		t.Error("expected new photo to be in export")
	}
	if result["order_index"] != float64(0) {
		t.Errorf("expected order_index 0, got %v", result["order_index"])
	}

	stored := reloadCase(t, st, c.ID)
	if len(stored.Photos) != 1 {
		t.Fatalf("expected 1 photo, got %d", len(stored.Photos))
	}
}

func TestPhotosHandler_Add_MissingResource(t *testing.T) {
	st := memory.NewStore()
	rs := newTestRasters(t)
	handler := createPhotosHandlerForTest(st, rs)
	c := seedCase(t, st, "Oprava střechy")

	body := bytes.NewBufferString(`{"note": "bez obrázku"}`)
	req := httptest.NewRequest("POST", "/api/v1/cases/"+c.ID+"/photos", body)
	req.Header.Set("Content-Type", "application/json")
	req = requestWithChiParams(req, map[string]string{"id": c.ID})
	recorder := httptest.NewRecorder()

	handler.Add(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "resource is required")
}

func TestPhotosHandler_Add_UnknownResource(t *testing.T) {
	st := memory.NewStore()
	rs := newTestRasters(t)
	handler := createPhotosHandlerForTest(st, rs)
	c := seedCase(t, st, "Oprava střechy")

	body := bytes.NewBufferString(`{"resource": "nonexistent.png"}`)
	req := httptest.NewRequest("POST", "/api/v1/cases/"+c.ID+"/photos", body)
	req.Header.Set("Content-Type", "application/json")
	req = requestWithChiParams(req, map[string]string{"id": c.ID})
	recorder := httptest.NewRecorder()

	handler.Add(recorder, req)

	assertStatusCode(t, recorder, http.StatusNotFound)
	assertJSONError(t, recorder, "raster not found")
}

func TestPhotosHandler_Update_PartialFlags(t *testing.T) {
	st := memory.NewStore()
	rs := newTestRasters(t)
	handler := createPhotosHandlerForTest(st, rs)

	c := seedCase(t, st, "Oprava střechy", "a.png")
	pid := c.SortedPhotos()[0].ID

	body := bytes.NewBufferString(`{"in_export": false, "note": "jen pro interní potřebu"}`)
	req := httptest.NewRequest("PUT", "/api/v1/cases/"+c.ID+"/photos/"+pid, body)
	req.Header.Set("Content-Type", "application/json")
	req = requestWithChiParams(req, map[string]string{"id": c.ID, "pid": pid})
	recorder := httptest.NewRecorder()

	handler.Update(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	stored := reloadCase(t, st, c.ID)
	p := stored.Photo(pid)
	if p.InExport {
		t.Error("expected in_export cleared")
	}
	if p.Note != "jen pro interní potřebu" {
		t.Errorf("expected updated note, got '%s'", p.Note)
	}
	if p.FullPage {
		t.Error("expected full_page untouched")
	}
}

func TestPhotosHandler_Update_PhotoNotFound(t *testing.T) {
	st := memory.NewStore()
	rs := newTestRasters(t)
	handler := createPhotosHandlerForTest(st, rs)
	c := seedCase(t, st, "Oprava střechy")

	body := bytes.NewBufferString(`{"note": "x"}`)
	req := httptest.NewRequest("PUT", "/api/v1/cases/"+c.ID+"/photos/missing", body)
	req.Header.Set("Content-Type", "application/json")
	req = requestWithChiParams(req, map[string]string{"id": c.ID, "pid": "missing"})
	recorder := httptest.NewRecorder()

	handler.Update(recorder, req)

	assertStatusCode(t, recorder, http.StatusNotFound)
	assertJSONError(t, recorder, "photo not found")
}

func TestPhotosHandler_Delete_RenumbersOrder(t *testing.T) {
	st := memory.NewStore()
	rs := newTestRasters(t)
	handler := createPhotosHandlerForTest(st, rs)

	c := seedCase(t, st, "Oprava střechy", "a.png", "b.png", "c.png")
	first := c.SortedPhotos()[0].ID

	req := httptest.NewRequest("DELETE", "/api/v1/cases/"+c.ID+"/photos/"+first, nil)
	req = requestWithChiParams(req, map[string]string{"id": c.ID, "pid": first})
	recorder := httptest.NewRecorder()

	handler.Delete(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	stored := reloadCase(t, st, c.ID)
	photos := stored.SortedPhotos()
	if len(photos) != 2 {
		t.Fatalf("expected 2 photos, got %d", len(photos))
	}
	for i, p := range photos {
		if p.OrderIndex != i {
			t.Errorf("expected dense order, photo %d has index %d", i, p.OrderIndex)
		}
	}
	if photos[0].Resource != "b.png" {
		t.Errorf("expected 'b.png' first, got '%s'", photos[0].Resource)
	}
}

func TestPhotosHandler_Reorder_Success(t *testing.T) {
	st := memory.NewStore()
	rs := newTestRasters(t)
	handler := createPhotosHandlerForTest(st, rs)

	c := seedCase(t, st, "Oprava střechy", "a.png", "b.png", "c.png")
	photos := c.SortedPhotos()
	moved, before := photos[2].ID, photos[0].ID

	body := bytes.NewBufferString(`{"moved_id": "` + moved + `", "before_id": "` + before + `"}`)
	req := httptest.NewRequest("PUT", "/api/v1/cases/"+c.ID+"/photos/order", body)
	req.Header.Set("Content-Type", "application/json")
	req = requestWithChiParams(req, map[string]string{"id": c.ID})
	recorder := httptest.NewRecorder()

	handler.Reorder(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	stored := reloadCase(t, st, c.ID)
	got := stored.SortedPhotos()
	if got[0].Resource != "c.png" || got[1].Resource != "a.png" || got[2].Resource != "b.png" {
		t.Errorf("unexpected order: %s, %s, %s", got[0].Resource, got[1].Resource, got[2].Resource)
	}
}

func TestPhotosHandler_Reorder_MissingMovedID(t *testing.T) {
	st := memory.NewStore()
	rs := newTestRasters(t)
	handler := createPhotosHandlerForTest(st, rs)
	c := seedCase(t, st, "Oprava střechy", "a.png")

	body := bytes.NewBufferString(`{"before_id": "x"}`)
	req := httptest.NewRequest("PUT", "/api/v1/cases/"+c.ID+"/photos/order", body)
	req.Header.Set("Content-Type", "application/json")
	req = requestWithChiParams(req, map[string]string{"id": c.ID})
	recorder := httptest.NewRecorder()

	handler.Reorder(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "moved_id is required")
}

func TestPhotosHandler_Reorder_UnknownMovedIDIsNoop(t *testing.T) {
	st := memory.NewStore()
	rs := newTestRasters(t)
	handler := createPhotosHandlerForTest(st, rs)
	c := seedCase(t, st, "Oprava střechy", "a.png", "b.png")

	body := bytes.NewBufferString(`{"moved_id": "ghost", "before_id": ""}`)
	req := httptest.NewRequest("PUT", "/api/v1/cases/"+c.ID+"/photos/order", body)
	req.Header.Set("Content-Type", "application/json")
	req = requestWithChiParams(req, map[string]string{"id": c.ID})
	recorder := httptest.NewRecorder()

	handler.Reorder(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	stored := reloadCase(t, st, c.ID)
	got := stored.SortedPhotos()
	if got[0].Resource != "a.png" || got[1].Resource != "b.png" {
		t.Errorf("expected order unchanged, got %s, %s", got[0].Resource, got[1].Resource)
	}
}

func TestPhotosHandler_Compose_Success(t *testing.T) {
	st := memory.NewStore()
	rs := newTestRasters(t)
	handler := createPhotosHandlerForTest(st, rs)

	nameA := saveTestRaster(t, rs, 64, 48)
	nameB := saveTestRaster(t, rs, 32, 32)
	c := seedCase(t, st, "Oprava střechy", nameA, nameB)
	photos := c.SortedPhotos()

	body := bytes.NewBufferString(`{"photo_ids": ["` + photos[0].ID + `", "` + photos[1].ID + `"]}`)
	req := httptest.NewRequest("POST", "/api/v1/cases/"+c.ID+"/photos/compose", body)
	req.Header.Set("Content-Type", "application/json")
	req = requestWithChiParams(req, map[string]string{"id": c.ID})
	recorder := httptest.NewRecorder()

	handler.Compose(recorder, req)

	assertStatusCode(t, recorder, http.StatusCreated)

	var result map[string]any
	parseJSONResponse(t, recorder, &result)
	if result["composite"] != true {
		t.Error("expected composite photo")
	}
	sources, _ := result["source_resources"].([]any)
	if len(sources) != 2 {
		t.Errorf("expected 2 source resources, got %d", len(sources))
	}

	// The composite raster must exist in the store.
	resource, _ := result["resource"].(string)
	if _, _, err := rs.Dimensions(context.Background(), resource); err != nil {
		t.Errorf("expected composite raster stored: %v", err)
	}

	stored := reloadCase(t, st, c.ID)
	if len(stored.Photos) != 1 {
		t.Errorf("expected selected photos replaced by composite, got %d records", len(stored.Photos))
	}
}

func TestPhotosHandler_Compose_InvalidSelection(t *testing.T) {
	st := memory.NewStore()
	rs := newTestRasters(t)
	handler := createPhotosHandlerForTest(st, rs)

	name := saveTestRaster(t, rs, 32, 32)
	c := seedCase(t, st, "Oprava střechy", name)
	pid := c.SortedPhotos()[0].ID

	body := bytes.NewBufferString(`{"photo_ids": ["` + pid + `"]}`)
	req := httptest.NewRequest("POST", "/api/v1/cases/"+c.ID+"/photos/compose", body)
	req.Header.Set("Content-Type", "application/json")
	req = requestWithChiParams(req, map[string]string{"id": c.ID})
	recorder := httptest.NewRecorder()

	handler.Compose(recorder, req)

	assertStatusCode(t, recorder, http.StatusUnprocessableEntity)
}

func TestPhotosHandler_Compose_UnknownPhoto(t *testing.T) {
	st := memory.NewStore()
	rs := newTestRasters(t)
	handler := createPhotosHandlerForTest(st, rs)
	c := seedCase(t, st, "Oprava střechy", "a.png")

	body := bytes.NewBufferString(`{"photo_ids": ["ghost-1", "ghost-2"]}`)
	req := httptest.NewRequest("POST", "/api/v1/cases/"+c.ID+"/photos/compose", body)
	req.Header.Set("Content-Type", "application/json")
	req = requestWithChiParams(req, map[string]string{"id": c.ID})
	recorder := httptest.NewRecorder()

	handler.Compose(recorder, req)

	assertStatusCode(t, recorder, http.StatusUnprocessableEntity)
}

func TestPhotosHandler_Decompose_Success(t *testing.T) {
	st := memory.NewStore()
	rs := newTestRasters(t)
	handler := createPhotosHandlerForTest(st, rs)

	nameA := saveTestRaster(t, rs, 64, 48)
	nameB := saveTestRaster(t, rs, 32, 32)
	c := seedCase(t, st, "Oprava střechy", nameA, nameB)
	photos := c.SortedPhotos()

	// Compose through the handler first.
	body := bytes.NewBufferString(`{"photo_ids": ["` + photos[0].ID + `", "` + photos[1].ID + `"]}`)
	req := httptest.NewRequest("POST", "/api/v1/cases/"+c.ID+"/photos/compose", body)
	req.Header.Set("Content-Type", "application/json")
	req = requestWithChiParams(req, map[string]string{"id": c.ID})
	recorder := httptest.NewRecorder()
	handler.Compose(recorder, req)
	assertStatusCode(t, recorder, http.StatusCreated)

	var comp map[string]any
	parseJSONResponse(t, recorder, &comp)
	compID, _ := comp["id"].(string)
	compResource, _ := comp["resource"].(string)

	req = httptest.NewRequest("POST", "/api/v1/cases/"+c.ID+"/photos/"+compID+"/decompose", nil)
	req = requestWithChiParams(req, map[string]string{"id": c.ID, "pid": compID})
	recorder = httptest.NewRecorder()

	handler.Decompose(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var restored []map[string]any
	parseJSONResponse(t, recorder, &restored)
	if len(restored) != 2 {
		t.Fatalf("expected 2 restored photos, got %d", len(restored))
	}
	if restored[0]["resource"] != nameA || restored[1]["resource"] != nameB {
		t.Errorf("expected source order %s, %s, got %v, %v",
			nameA, nameB, restored[0]["resource"], restored[1]["resource"])
	}

	// The composite raster is gone, the sources survive.
	if _, _, err := rs.Dimensions(context.Background(), compResource); err == nil {
		t.Error("expected composite raster deleted")
	}
	if _, _, err := rs.Dimensions(context.Background(), nameA); err != nil {
		t.Errorf("expected source raster kept: %v", err)
	}
}

func TestPhotosHandler_Decompose_NotComposite(t *testing.T) {
	st := memory.NewStore()
	rs := newTestRasters(t)
	handler := createPhotosHandlerForTest(st, rs)

	c := seedCase(t, st, "Oprava střechy", "a.png")
	pid := c.SortedPhotos()[0].ID

	req := httptest.NewRequest("POST", "/api/v1/cases/"+c.ID+"/photos/"+pid+"/decompose", nil)
	req = requestWithChiParams(req, map[string]string{"id": c.ID, "pid": pid})
	recorder := httptest.NewRecorder()

	handler.Decompose(recorder, req)

	assertStatusCode(t, recorder, http.StatusUnprocessableEntity)
}

func TestPhotosHandler_Rotate_Success(t *testing.T) {
	st := memory.NewStore()
	rs := newTestRasters(t)
	handler := createPhotosHandlerForTest(st, rs)

	name := saveTestRaster(t, rs, 64, 32)
	c := seedCase(t, st, "Oprava střechy", name)
	pid := c.SortedPhotos()[0].ID

	req := httptest.NewRequest("POST", "/api/v1/cases/"+c.ID+"/photos/"+pid+"/rotate", nil)
	req = requestWithChiParams(req, map[string]string{"id": c.ID, "pid": pid})
	recorder := httptest.NewRecorder()

	handler.Rotate(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	w, h, err := rs.Dimensions(context.Background(), name)
	if err != nil {
		t.Fatalf("failed to read rotated raster: %v", err)
	}
	if w != 32 || h != 64 {
		t.Errorf("expected 32x64 after rotation, got %dx%d", w, h)
	}
}

func TestPhotosHandler_Rotate_StaleGeometry(t *testing.T) {
	st := memory.NewStore()
	rs := newTestRasters(t)
	handler := createPhotosHandlerForTest(st, rs)

	name := saveTestRaster(t, rs, 64, 32)
	c := casefile.NewCase("Oprava střechy")
	p := casefile.NewPhoto(c.ID, name)
	// Strokes without a recorded canvas cannot be transformed.
	p.Drawing.Strokes = []annotation.Stroke{
		{Color: "#ff0000", Width: 3, Points: []annotation.Point{annotation.Pt(1, 1), annotation.Pt(5, 5)}},
	}
	c.AppendPhoto(p)
	if err := st.SaveCase(context.Background(), c); err != nil {
		t.Fatalf("failed to seed case: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/v1/cases/"+c.ID+"/photos/"+p.ID+"/rotate", nil)
	req = requestWithChiParams(req, map[string]string{"id": c.ID, "pid": p.ID})
	recorder := httptest.NewRecorder()

	handler.Rotate(recorder, req)

	assertStatusCode(t, recorder, http.StatusConflict)

	// The raster must be untouched after the refused rotation.
	w, h, err := rs.Dimensions(context.Background(), name)
	if err != nil {
		t.Fatalf("failed to read raster: %v", err)
	}
	if w != 64 || h != 32 {
		t.Errorf("expected raster untouched at 64x32, got %dx%d", w, h)
	}
}

func TestPhotosHandler_SetAnnotation_Success(t *testing.T) {
	st := memory.NewStore()
	rs := newTestRasters(t)
	handler := createPhotosHandlerForTest(st, rs)

	c := seedCase(t, st, "Oprava střechy", "a.png")
	pid := c.SortedPhotos()[0].ID

	body := bytes.NewBufferString(`{
		"version": 3,
		"drawing": {
			"canvas": {"w": 64, "h": 48},
			"strokes": [{"color": "#ff0000", "width": 3, "points": [{"x": 1, "y": 2}, {"x": 10, "y": 12}]}]
		},
		"marks": {
			"canvas": {"w": 64, "h": 48},
			"stamps": [
				{"kind": "circle", "color": "#00ff00", "at": {"x": 5, "y": 5}, "number": 1, "show_number": true},
				{"kind": "circle", "color": "#00ff00", "at": {"x": 9, "y": 9}, "number": 2, "show_number": true}
			]
		},
		"meanings": {"circle/#00ff00/numbered": "prasklina"},
		"show_stamp_summary": true
	}`)
	req := httptest.NewRequest("PUT", "/api/v1/cases/"+c.ID+"/photos/"+pid+"/annotation", body)
	req.Header.Set("Content-Type", "application/json")
	req = requestWithChiParams(req, map[string]string{"id": c.ID, "pid": pid})
	recorder := httptest.NewRecorder()

	handler.SetAnnotation(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var result map[string]any
	parseJSONResponse(t, recorder, &result)
	if result["stroke_count"] != float64(1) {
		t.Errorf("expected stroke_count 1, got %v", result["stroke_count"])
	}
	if result["stamp_count"] != float64(2) {
		t.Errorf("expected stamp_count 2, got %v", result["stamp_count"])
	}
	if result["show_stamp_summary"] != true {
		t.Error("expected show_stamp_summary set")
	}

	stored := reloadCase(t, st, c.ID)
	p := stored.Photo(pid)
	if len(p.Marks.Stamps) != 2 {
		t.Errorf("expected 2 stored stamps, got %d", len(p.Marks.Stamps))
	}
	if p.LegendMeanings["circle/#00ff00/numbered"] != "prasklina" {
		t.Errorf("expected stored meaning, got %v", p.LegendMeanings)
	}
}

func TestPhotosHandler_SetAnnotation_MigratesV1(t *testing.T) {
	st := memory.NewStore()
	rs := newTestRasters(t)
	handler := createPhotosHandlerForTest(st, rs)

	c := seedCase(t, st, "Oprava střechy", "a.png")
	pid := c.SortedPhotos()[0].ID

	// Version 1 payload: flat strokes with canvas_w/canvas_h, no version tag.
	body := bytes.NewBufferString(`{
		"canvas_w": 64,
		"canvas_h": 48,
		"strokes": [{"color": "#0000ff", "width": 2, "points": [{"x": 3, "y": 4}, {"x": 6, "y": 8}]}]
	}`)
	req := httptest.NewRequest("PUT", "/api/v1/cases/"+c.ID+"/photos/"+pid+"/annotation", body)
	req.Header.Set("Content-Type", "application/json")
	req = requestWithChiParams(req, map[string]string{"id": c.ID, "pid": pid})
	recorder := httptest.NewRecorder()

	handler.SetAnnotation(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	stored := reloadCase(t, st, c.ID)
	p := stored.Photo(pid)
	if len(p.Drawing.Strokes) != 1 {
		t.Fatalf("expected 1 migrated stroke, got %d", len(p.Drawing.Strokes))
	}
	if p.Drawing.Canvas.W != 64 || p.Drawing.Canvas.H != 48 {
		t.Errorf("expected migrated canvas 64x48, got %vx%v", p.Drawing.Canvas.W, p.Drawing.Canvas.H)
	}
}

func TestPhotosHandler_SetAnnotation_UnsupportedVersion(t *testing.T) {
	st := memory.NewStore()
	rs := newTestRasters(t)
	handler := createPhotosHandlerForTest(st, rs)

	c := seedCase(t, st, "Oprava střechy", "a.png")
	pid := c.SortedPhotos()[0].ID

	body := bytes.NewBufferString(`{"version": 9}`)
	req := httptest.NewRequest("PUT", "/api/v1/cases/"+c.ID+"/photos/"+pid+"/annotation", body)
	req.Header.Set("Content-Type", "application/json")
	req = requestWithChiParams(req, map[string]string{"id": c.ID, "pid": pid})
	recorder := httptest.NewRecorder()

	handler.SetAnnotation(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "unsupported annotation payload version 9")
}

func TestPhotosHandler_Legend_Success(t *testing.T) {
	st := memory.NewStore()
	rs := newTestRasters(t)
	handler := createPhotosHandlerForTest(st, rs)

	c := casefile.NewCase("Oprava střechy")
	p := casefile.NewPhoto(c.ID, "a.png")
	p.Marks.Canvas = annotation.Size{W: 64, H: 48}
	p.Marks.Stamps = []annotation.Stamp{
		{Kind: annotation.StampCross, Color: "#ff0000", At: annotation.Pt(1, 1)},
		{Kind: annotation.StampCross, Color: "#ff0000", At: annotation.Pt(2, 2)},
		{Kind: annotation.StampCircle, Color: "#00ff00", At: annotation.Pt(3, 3)},
	}
	p.LegendMeanings = map[string]string{"cross/#ff0000/plain": "vlhkost"}
	c.AppendPhoto(p)
	if err := st.SaveCase(context.Background(), c); err != nil {
		t.Fatalf("failed to seed case: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/v1/cases/"+c.ID+"/photos/"+p.ID+"/legend", nil)
	req = requestWithChiParams(req, map[string]string{"id": c.ID, "pid": p.ID})
	recorder := httptest.NewRecorder()

	handler.Legend(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var entries []map[string]any
	parseJSONResponse(t, recorder, &entries)
	if len(entries) != 2 {
		t.Fatalf("expected 2 legend rows, got %d", len(entries))
	}
	if entries[0]["count"] != float64(2) {
		t.Errorf("expected first row count 2, got %v", entries[0]["count"])
	}
	if entries[0]["meaning"] != "vlhkost" {
		t.Errorf("expected meaning 'vlhkost', got '%v'", entries[0]["meaning"])
	}
}

func TestPhotosHandler_Legend_EmptyIsArray(t *testing.T) {
	st := memory.NewStore()
	rs := newTestRasters(t)
	handler := createPhotosHandlerForTest(st, rs)

	c := seedCase(t, st, "Oprava střechy", "a.png")
	pid := c.SortedPhotos()[0].ID

	req := httptest.NewRequest("GET", "/api/v1/cases/"+c.ID+"/photos/"+pid+"/legend", nil)
	req = requestWithChiParams(req, map[string]string{"id": c.ID, "pid": pid})
	recorder := httptest.NewRecorder()

	handler.Legend(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	if got := recorder.Body.String(); got != "[]\n" {
		t.Errorf("expected empty JSON array, got %q", got)
	}
}

func TestPhotosHandler_Preview_Success(t *testing.T) {
	st := memory.NewStore()
	rs := newTestRasters(t)
	handler := createPhotosHandlerForTest(st, rs)

	name := saveTestRaster(t, rs, 64, 32)
	c := seedCase(t, st, "Oprava střechy", name)
	pid := c.SortedPhotos()[0].ID

	req := httptest.NewRequest("GET", "/api/v1/cases/"+c.ID+"/photos/"+pid+"/preview", nil)
	req = requestWithChiParams(req, map[string]string{"id": c.ID, "pid": pid})
	recorder := httptest.NewRecorder()

	handler.Preview(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	assertContentType(t, recorder, "image/png")

	img, err := png.Decode(recorder.Body)
	if err != nil {
		t.Fatalf("failed to decode preview PNG: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 32 {
		t.Errorf("expected 64x32 preview, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestPhotosHandler_Preview_MissingRaster(t *testing.T) {
	st := memory.NewStore()
	rs := newTestRasters(t)
	handler := createPhotosHandlerForTest(st, rs)

	c := seedCase(t, st, "Oprava střechy", "ghost.png")
	pid := c.SortedPhotos()[0].ID

	req := httptest.NewRequest("GET", "/api/v1/cases/"+c.ID+"/photos/"+pid+"/preview", nil)
	req = requestWithChiParams(req, map[string]string{"id": c.ID, "pid": pid})
	recorder := httptest.NewRecorder()

	handler.Preview(recorder, req)

	assertStatusCode(t, recorder, http.StatusNotFound)
	assertJSONError(t, recorder, "raster not found")
}
