package raster

import (
	"context"
	"image/color"
	"testing"

	"github.com/pavelhrncir/casebook/internal/annotation"
)

func TestRenderPreviewDrawsStroke(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	name, err := s.Save(ctx, solidImage(100, 100, white))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	d := &annotation.Drawing{
		Canvas: annotation.Size{W: 100, H: 100},
		Strokes: []annotation.Stroke{
			{Color: "#ff0000", Width: 4, Points: []annotation.Point{annotation.Pt(10, 10), annotation.Pt(90, 10)}},
		},
	}

	img, err := s.RenderPreview(ctx, name, d, &annotation.Set{})
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}

	if got := pixelAt(t, img, 50, 10); got != red {
		t.Errorf("pixel on the stroke = %v, want red", got)
	}
	if got := pixelAt(t, img, 50, 90); got != white {
		t.Errorf("pixel off the stroke = %v, want white", got)
	}

	// the stored raster stays untouched
	stored, err := s.Load(ctx, name)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got := pixelAt(t, stored, 50, 10); got != white {
		t.Errorf("stored raster was modified: pixel = %v", got)
	}
}

func TestRenderPreviewScalesCanvas(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	name, err := s.Save(ctx, solidImage(100, 100, white))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// coordinates recorded against a 200x200 canvas land at half scale
	d := &annotation.Drawing{
		Canvas: annotation.Size{W: 200, H: 200},
		Strokes: []annotation.Stroke{
			{Color: "#ff0000", Width: 8, Points: []annotation.Point{annotation.Pt(100, 100), annotation.Pt(120, 100)}},
		},
	}

	img, err := s.RenderPreview(ctx, name, d, nil)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if got := pixelAt(t, img, 55, 50); got != red {
		t.Errorf("scaled stroke pixel = %v, want red", got)
	}
}

func TestRenderPreviewDrawsStamp(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	name, err := s.Save(ctx, solidImage(100, 100, white))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	set := &annotation.Set{
		Canvas: annotation.Size{W: 100, H: 100},
		Stamps: []annotation.Stamp{
			{Kind: annotation.StampCircle, Color: "#ff0000", At: annotation.Pt(50, 50)},
		},
	}

	img, err := s.RenderPreview(ctx, name, nil, set)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}

	// the ring passes through (50+stampRadius, 50); its center stays clear
	if got := pixelAt(t, img, 50+int(stampRadius), 50); got != red {
		t.Errorf("ring pixel = %v, want red", got)
	}
	if got := pixelAt(t, img, 50, 50); got != white {
		t.Errorf("ring center = %v, want white", got)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#ff0000", color.RGBA{R: 0xff, A: 0xff}},
		{"#0f0", color.RGBA{G: 0xff, A: 0xff}},
		{"#336699", color.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xff}},
		{"", color.RGBA{R: 0xff, A: 0xff}},
		{"red", color.RGBA{R: 0xff, A: 0xff}},
		{"#zzz", color.RGBA{R: 0xff, A: 0xff}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseHexColor(tt.in); got != tt.want {
				t.Errorf("parseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
