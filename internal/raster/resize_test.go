package raster

import (
	"bytes"
	"image"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("could not encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestResizeImageDownscales(t *testing.T) {
	data := encodePNG(t, solidImage(100, 50, red))

	out, err := ResizeImage(data, 10)
	if err != nil {
		t.Fatalf("resize failed: %v", err)
	}

	img, format, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("could not decode result: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("format = %q, want jpeg", format)
	}
	if img.Bounds().Dx() != 10 || img.Bounds().Dy() != 5 {
		t.Errorf("bounds = %v, want 10x5", img.Bounds())
	}
}

func TestResizeImageKeepsSmall(t *testing.T) {
	data := encodePNG(t, solidImage(8, 8, blue))

	out, err := ResizeImage(data, 32)
	if err != nil {
		t.Fatalf("resize failed: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Error("small images must come back unchanged")
	}
}

func TestResizeImageBadData(t *testing.T) {
	if _, err := ResizeImage([]byte("not an image"), 10); err == nil {
		t.Error("expected error for undecodable data")
	}
}
