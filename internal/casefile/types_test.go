package casefile

import (
	"errors"
	"testing"

	"github.com/pavelhrncir/casebook/internal/annotation"
)

func TestCloneIndependence(t *testing.T) {
	c := newTestCase(t, 2)
	p := c.SortedPhotos()[0]
	p.Drawing = annotation.Drawing{
		Canvas:  annotation.Size{W: 10, H: 10},
		Strokes: []annotation.Stroke{{Points: []annotation.Point{annotation.Pt(1, 1)}}},
	}
	p.LegendMeanings = map[string]string{"circle/#f00/plain": "crack"}
	if err := c.SetTags([]string{"tag-1"}); err != nil {
		t.Fatalf("set tags failed: %v", err)
	}
	c.AppendAttachment(&CaseAttachment{ID: "a", Document: "doc", Filename: "plan.pdf"})

	clone := c.Clone()

	// mutate the clone, the original must not move
	clonePhoto := clone.SortedPhotos()[0]
	clonePhoto.Drawing.Strokes[0].Points[0] = annotation.Pt(99, 99)
	clonePhoto.LegendMeanings["circle/#f00/plain"] = "changed"
	clone.TagIDs[0] = "tag-2"
	clone.Attachments[0].Filename = "changed.pdf"
	clone.RemovePhoto(clone.SortedPhotos()[1].ID)

	if p.Drawing.Strokes[0].Points[0] != annotation.Pt(1, 1) {
		t.Error("clone shares stroke storage with the original")
	}
	if p.LegendMeanings["circle/#f00/plain"] != "crack" {
		t.Error("clone shares meaning map with the original")
	}
	if c.TagIDs[0] != "tag-1" {
		t.Error("clone shares tag storage with the original")
	}
	if c.Attachments[0].Filename != "plan.pdf" {
		t.Error("clone shares attachment records with the original")
	}
	if len(c.Photos) != 2 {
		t.Error("removing a clone photo must not touch the original")
	}

	// the clone's lookup table must resolve its own records
	if clone.Photo(clonePhoto.ID) != clonePhoto {
		t.Error("clone lookup table does not resolve clone records")
	}
}

func TestSetTagsLimit(t *testing.T) {
	c := NewCase("test case")

	if err := c.SetTags([]string{"a", "b", "c"}); err != nil {
		t.Fatalf("three tags must be allowed: %v", err)
	}
	if err := c.SetTags([]string{"a", "b", "c", "d"}); !errors.Is(err, ErrTagLimit) {
		t.Errorf("error = %v, want ErrTagLimit", err)
	}
	if len(c.TagIDs) != 3 {
		t.Errorf("failed assignment must not change tags, got %v", c.TagIDs)
	}
}

func TestWeekdaySetCodes(t *testing.T) {
	ws := Monday | Wednesday | Friday

	codes := ws.Codes()
	want := []string{"mon", "wed", "fri"}
	if len(codes) != len(want) {
		t.Fatalf("codes = %v, want %v", codes, want)
	}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("codes = %v, want %v", codes, want)
			break
		}
	}

	parsed, err := ParseWeekdays(codes)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed != ws {
		t.Errorf("parsed = %b, want %b", parsed, ws)
	}

	if _, err := ParseWeekdays([]string{"xyz"}); err == nil {
		t.Error("expected error for unknown weekday code")
	}
}

func TestTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"07:30", 7*60 + 30, false},
		{"00:00", 0, false},
		{"23:59", 23*60 + 59, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"noon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected parse error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("parsed = %d, want %d", got, tt.want)
			}
			if got.String() != tt.in {
				t.Errorf("string = %q, want %q", got.String(), tt.in)
			}
		})
	}
}

func TestAnnotationPayloadRoundTrip(t *testing.T) {
	c := newTestCase(t, 1)
	p := c.SortedPhotos()[0]
	p.Marks = annotation.Set{
		Canvas: annotation.Size{W: 10, H: 10},
		Stamps: []annotation.Stamp{{Kind: annotation.StampFlag, Color: "#000", At: annotation.Pt(3, 3)}},
	}
	p.LegendMeanings = map[string]string{"flag/#000/plain": "entry point"}
	p.ShowStampSummary = true

	data, err := annotation.EncodePayload(p.AnnotationPayload())
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := annotation.DecodePayload(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	fresh := NewPhoto(c.ID, "res-x")
	fresh.ApplyAnnotation(decoded)

	if !fresh.ShowStampSummary {
		t.Error("summary flag lost")
	}
	legend := fresh.Legend()
	if len(legend) != 1 || legend[0].Meaning != "entry point" {
		t.Errorf("legend = %+v, want the stored meaning", legend)
	}
}
