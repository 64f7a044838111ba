package casefile

import (
	"context"
	"fmt"
	"image"

	"github.com/pavelhrncir/casebook/internal/annotation"
)

// RotatePhoto turns the photo's raster 90 degrees clockwise and transforms
// its annotation layers with it, keeping them locked to the raster frame.
// When annotation geometry exists without a recorded canvas size the call
// fails with annotation.ErrStaleGeometry and nothing is rotated.
func (e *Editor) RotatePhoto(ctx context.Context, c *Case, photoID string) error {
	p := c.Photo(photoID)
	if p == nil {
		return fmt.Errorf("%w: unknown photo %s", ErrInvalidSelection, photoID)
	}
	if p.Drawing.Stale() || p.Marks.Stale() {
		return fmt.Errorf("photo %s: %w", photoID, annotation.ErrStaleGeometry)
	}

	if err := e.raster.Rotate(ctx, p.Resource); err != nil {
		return &StorageError{Op: "rotate", Err: err}
	}

	if err := p.Drawing.Rotate90CW(); err != nil {
		return err
	}
	if err := p.Marks.Rotate90CW(); err != nil {
		return err
	}
	c.Touch()
	return nil
}

// Preview renders the photo's raster with its annotation layers drawn on
// top. Pure render request; the stored raster stays untouched.
func (e *Editor) Preview(ctx context.Context, c *Case, photoID string) (image.Image, error) {
	p := c.Photo(photoID)
	if p == nil {
		return nil, fmt.Errorf("%w: unknown photo %s", ErrInvalidSelection, photoID)
	}
	img, err := e.raster.RenderPreview(ctx, p.Resource, &p.Drawing, &p.Marks)
	if err != nil {
		return nil, &StorageError{Op: "preview", Err: err}
	}
	return img, nil
}
