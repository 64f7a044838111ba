// Package raster owns the pixel side of a case: loading, saving, rotating
// and composing photo rasters plus preview rendering of annotation layers.
// Rasters are addressed by opaque resource names; the case domain never
// touches pixel data directly.
package raster

import (
	"context"
	"errors"
	"image"

	"github.com/pavelhrncir/casebook/internal/annotation"
)

// ErrNotFound is returned when a named raster does not exist in the store.
var ErrNotFound = errors.New("raster not found")

// Store is the raster engine the case editor talks to.
type Store interface {
	// Load decodes the named raster. Returns ErrNotFound when absent.
	Load(ctx context.Context, name string) (image.Image, error)

	// Dimensions reports the pixel size of the named raster without
	// decoding the whole image.
	Dimensions(ctx context.Context, name string) (w, h int, err error)

	// Save stores a new raster and returns its generated name.
	Save(ctx context.Context, img image.Image) (string, error)

	// Delete removes the named raster.
	Delete(ctx context.Context, name string) error

	// Rotate turns the named raster 90 degrees clockwise in place.
	Rotate(ctx context.Context, name string) error

	// Compose scales the named rasters into their target rectangles and
	// stores the result as a new raster. Names and rects are parallel
	// slices; the canvas is the union of the rectangles.
	Compose(ctx context.Context, names []string, rects []image.Rectangle) (string, error)

	// RenderPreview draws the annotation layers over the named raster
	// and returns the combined image. The stored raster is not modified.
	RenderPreview(ctx context.Context, name string, d *annotation.Drawing, s *annotation.Set) (image.Image, error)

	// Watch registers a callback invoked with the resource name after
	// every mutation of that resource. The returned func cancels the
	// registration.
	Watch(fn func(name string)) (cancel func())
}
