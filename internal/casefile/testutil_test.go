package casefile

import (
	"context"
	"fmt"
	"image"
	"testing"

	"github.com/pavelhrncir/casebook/internal/annotation"
)

// stubRaster implements raster.Store for editor tests. Set the Fail fields
// to inject errors; calls are recorded for assertions.
type stubRaster struct {
	ComposeCalls [][]string
	RotateCalls  []string
	DeleteCalls  []string

	FailCompose error
	FailRotate  error
	FailDelete  error
}

func (s *stubRaster) Load(ctx context.Context, name string) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

func (s *stubRaster) Dimensions(ctx context.Context, name string) (int, int, error) {
	return 1, 1, nil
}

func (s *stubRaster) Save(ctx context.Context, img image.Image) (string, error) {
	return "saved.png", nil
}

func (s *stubRaster) Delete(ctx context.Context, name string) error {
	if s.FailDelete != nil {
		return s.FailDelete
	}
	s.DeleteCalls = append(s.DeleteCalls, name)
	return nil
}

func (s *stubRaster) Rotate(ctx context.Context, name string) error {
	if s.FailRotate != nil {
		return s.FailRotate
	}
	s.RotateCalls = append(s.RotateCalls, name)
	return nil
}

func (s *stubRaster) Compose(ctx context.Context, names []string, rects []image.Rectangle) (string, error) {
	if s.FailCompose != nil {
		return "", s.FailCompose
	}
	s.ComposeCalls = append(s.ComposeCalls, append([]string(nil), names...))
	return fmt.Sprintf("composite-%d.png", len(s.ComposeCalls)), nil
}

func (s *stubRaster) RenderPreview(ctx context.Context, name string, d *annotation.Drawing, set *annotation.Set) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

func (s *stubRaster) Watch(fn func(string)) func() {
	return func() {}
}

// newTestCase builds a case with n photos whose resources are res-0..res-n-1.
func newTestCase(t *testing.T, n int) *Case {
	t.Helper()
	c := NewCase("test case")
	for i := 0; i < n; i++ {
		c.AppendPhoto(NewPhoto(c.ID, fmt.Sprintf("res-%d", i)))
	}
	return c
}

// resourceOrder returns the resource names in presentation order.
func resourceOrder(c *Case) []string {
	var out []string
	for _, p := range c.SortedPhotos() {
		out = append(out, p.Resource)
	}
	return out
}

func assertOrder(t *testing.T, c *Case, want ...string) {
	t.Helper()
	got := resourceOrder(c)
	if len(got) != len(want) {
		t.Fatalf("photo count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d = %s, want %s (full order %v)", i, got[i], want[i], got)
		}
	}
}

func assertDenseIndices(t *testing.T, c *Case) {
	t.Helper()
	for i, p := range c.SortedPhotos() {
		if p.OrderIndex != i {
			t.Errorf("photo %s has index %d at position %d", p.Resource, p.OrderIndex, i)
		}
	}
}
