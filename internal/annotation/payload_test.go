package annotation

import (
	"strings"
	"testing"
)

func TestDecodePayloadLegacyV1(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"explicit version", `{"version":1,"canvas_w":640,"canvas_h":480,"strokes":[{"color":"#f00","width":2,"points":[{"x":1,"y":2}]}]}`},
		{"missing version tag", `{"canvas_w":640,"canvas_h":480,"strokes":[{"color":"#f00","width":2,"points":[{"x":1,"y":2}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodePayload([]byte(tt.data))
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if p.Version != currentPayloadVersion {
				t.Errorf("version = %d, want %d", p.Version, currentPayloadVersion)
			}
			if p.Drawing.Canvas.W != 640 || p.Drawing.Canvas.H != 480 {
				t.Errorf("canvas = %+v, want 640x480", p.Drawing.Canvas)
			}
			if len(p.Drawing.Strokes) != 1 || p.Drawing.Strokes[0].Points[0] != Pt(1, 2) {
				t.Errorf("strokes not migrated: %+v", p.Drawing.Strokes)
			}
			if !p.Marks.Empty() {
				t.Errorf("legacy payload produced marks: %+v", p.Marks)
			}
		})
	}
}

func TestDecodePayloadV2(t *testing.T) {
	data := `{"version":2,"drawing":{"canvas":{"w":100,"h":200},"strokes":[]},"marks":{"canvas":{"w":100,"h":200},"stamps":[{"kind":"circle","color":"#f00","at":{"x":5,"y":6},"number":1,"show_number":true}]}}`

	p, err := DecodePayload([]byte(data))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if p.Version != currentPayloadVersion {
		t.Errorf("version = %d, want %d", p.Version, currentPayloadVersion)
	}
	if len(p.Marks.Stamps) != 1 || p.Marks.Stamps[0].At != Pt(5, 6) {
		t.Errorf("stamps not carried over: %+v", p.Marks.Stamps)
	}
	if p.Meanings != nil {
		t.Errorf("v2 payload produced meanings: %v", p.Meanings)
	}
}

func TestDecodePayloadUnknownVersion(t *testing.T) {
	_, err := DecodePayload([]byte(`{"version":99}`))
	if err == nil {
		t.Fatal("expected error for unknown version")
	}
	if !strings.Contains(err.Error(), "version 99") {
		t.Errorf("error = %v, want version mentioned", err)
	}
}

func TestDecodePayloadInvalidJSON(t *testing.T) {
	if _, err := DecodePayload([]byte(`{not json`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := Payload{
		Drawing: Drawing{
			Canvas:  Size{W: 800, H: 600},
			Strokes: []Stroke{{Color: "#0f0", Width: 4, Points: []Point{Pt(7, 8)}}},
		},
		Marks: Set{
			Canvas: Size{W: 800, H: 600},
			Shapes: []Shape{{Kind: ShapeArrow, Color: "#00f", Width: 2, Points: []Point{Pt(0, 0), Pt(10, 10)}}},
		},
		Meanings:         map[string]string{"circle/#f00/plain": "crack"},
		ShowStampSummary: true,
	}

	data, err := EncodePayload(in)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	out, err := DecodePayload(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if out.Version != currentPayloadVersion {
		t.Errorf("version = %d, want %d", out.Version, currentPayloadVersion)
	}
	if !out.ShowStampSummary {
		t.Error("summary flag lost in round trip")
	}
	if out.Meanings["circle/#f00/plain"] != "crack" {
		t.Errorf("meanings lost in round trip: %v", out.Meanings)
	}
	if len(out.Marks.Shapes) != 1 || out.Marks.Shapes[0].Kind != ShapeArrow {
		t.Errorf("shapes lost in round trip: %+v", out.Marks.Shapes)
	}
}
