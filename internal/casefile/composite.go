package casefile

import (
	"context"
	"fmt"
	"image"

	"github.com/pavelhrncir/casebook/internal/raster"
)

// Composite canvas geometry. The grid is fixed so composing the same
// selection always produces the same pixels.
const (
	compositeWidth  = 2048
	compositeHeight = 1536
	compositeGutter = 8
)

// Editor performs the photo operations that touch both case state and the
// raster store. The single fallible raster call always happens before any
// case mutation, so a storage failure leaves the case untouched.
type Editor struct {
	raster raster.Store
}

// NewEditor creates an editor backed by the given raster store.
func NewEditor(rs raster.Store) *Editor {
	return &Editor{raster: rs}
}

// CompositeRects returns the target rectangles for merging count photos
// onto the composite canvas, in selection order (row major):
//
//	2 photos - two equal columns
//	3 photos - one large left column, two stacked on the right
//	4 photos - a 2x2 grid
func CompositeRects(count int) ([]image.Rectangle, error) {
	const w, h, g = compositeWidth, compositeHeight, compositeGutter
	switch count {
	case 2:
		colW := (w - g) / 2
		return []image.Rectangle{
			image.Rect(0, 0, colW, h),
			image.Rect(colW+g, 0, w, h),
		}, nil
	case 3:
		leftW := (w - g) * 3 / 5
		rowH := (h - g) / 2
		return []image.Rectangle{
			image.Rect(0, 0, leftW, h),
			image.Rect(leftW+g, 0, w, rowH),
			image.Rect(leftW+g, rowH+g, w, h),
		}, nil
	case 4:
		colW := (w - g) / 2
		rowH := (h - g) / 2
		return []image.Rectangle{
			image.Rect(0, 0, colW, rowH),
			image.Rect(colW+g, 0, w, rowH),
			image.Rect(0, rowH+g, colW, h),
			image.Rect(colW+g, rowH+g, w, h),
		}, nil
	default:
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSelection, count)
	}
}

// Compose merges the selected photos into a single new composite photo.
// The composite takes the position of the earliest selected photo, the
// selected records leave the case and their raster resources stay in the
// store untouched.
func (e *Editor) Compose(ctx context.Context, c *Case, photoIDs []string) (*CasePhoto, error) {
	rects, err := CompositeRects(len(photoIDs))
	if err != nil {
		return nil, err
	}

	selected := make([]*CasePhoto, 0, len(photoIDs))
	seen := make(map[string]bool, len(photoIDs))
	for _, id := range photoIDs {
		p := c.Photo(id)
		if p == nil {
			return nil, fmt.Errorf("%w: unknown photo %s", ErrInvalidSelection, id)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: photo %s selected twice", ErrInvalidSelection, id)
		}
		seen[id] = true
		selected = append(selected, p)
	}

	names := make([]string, len(selected))
	minIdx := selected[0].OrderIndex
	for i, p := range selected {
		names[i] = p.Resource
		if p.OrderIndex < minIdx {
			minIdx = p.OrderIndex
		}
	}

	newName, err := e.raster.Compose(ctx, names, rects)
	if err != nil {
		return nil, &StorageError{Op: "compose", Err: err}
	}

	comp := NewPhoto(c.ID, newName)
	comp.Composite = true
	comp.SourceResources = names
	for _, p := range selected {
		c.detach(p)
	}
	c.insertAt(comp, minIdx)
	c.Touch()
	return comp, nil
}

// Decompose splits a composite photo back into one photo per source
// resource, placed at the composite's former position in stored source
// order. The restored photos start with empty annotation state; the
// composite's own raster is deleted.
func (e *Editor) Decompose(ctx context.Context, c *Case, photoID string) ([]*CasePhoto, error) {
	p := c.Photo(photoID)
	if p == nil {
		return nil, fmt.Errorf("%w: unknown photo %s", ErrInvalidSelection, photoID)
	}
	if !p.Composite {
		return nil, fmt.Errorf("%w: %s", ErrNotComposite, photoID)
	}

	if err := e.raster.Delete(ctx, p.Resource); err != nil {
		return nil, &StorageError{Op: "delete", Err: err}
	}

	former := p.OrderIndex
	c.detach(p)
	restored := make([]*CasePhoto, 0, len(p.SourceResources))
	for i, res := range p.SourceResources {
		np := NewPhoto(c.ID, res)
		c.insertAt(np, former+i)
		restored = append(restored, np)
	}
	c.Touch()
	return restored, nil
}

// insertAt places the photo so it ends up at the given position of the
// presentation order, then renumbers the whole sequence.
func (c *Case) insertAt(p *CasePhoto, position int) {
	rest := c.SortedPhotos()
	pos := 0
	for _, q := range rest {
		if q.OrderIndex < position {
			pos++
		}
	}
	if pos > len(rest) {
		pos = len(rest)
	}

	p.CaseID = c.ID
	p.Seq = c.takeSeq()
	ordered := make([]*CasePhoto, 0, len(rest)+1)
	ordered = append(ordered, rest[:pos]...)
	ordered = append(ordered, p)
	ordered = append(ordered, rest[pos:]...)
	for i, q := range ordered {
		q.OrderIndex = i
	}
	c.Photos = append(c.Photos, p)
	c.index(p)
}
