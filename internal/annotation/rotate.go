package annotation

import "errors"

// ErrStaleGeometry is returned when annotation coordinates exist but the
// canvas size they were recorded against is unknown. Rotating such geometry
// would corrupt it, so the caller has to surface the problem instead.
var ErrStaleGeometry = errors.New("annotation geometry has no recorded canvas size")

// Stale reports whether the drawing carries strokes without a canvas size.
func (d *Drawing) Stale() bool {
	return !d.Empty() && d.Canvas.IsZero()
}

// Rotate90CW rotates all strokes a quarter turn clockwise and swaps the
// canvas dimensions, keeping the coordinates locked to the raster frame.
func (d *Drawing) Rotate90CW() error {
	if d.Stale() {
		return ErrStaleGeometry
	}
	h := d.Canvas.H
	for i := range d.Strokes {
		pts := d.Strokes[i].Points
		for j := range pts {
			pts[j] = pts[j].Rotate90CW(h)
		}
	}
	d.Canvas = d.Canvas.Swap()
	return nil
}

// Stale reports whether the set carries geometry without a canvas size.
func (s *Set) Stale() bool {
	return !s.Empty() && s.Canvas.IsZero()
}

// Rotate90CW rotates all shapes and stamps a quarter turn clockwise and
// swaps the canvas dimensions.
func (s *Set) Rotate90CW() error {
	if s.Stale() {
		return ErrStaleGeometry
	}
	h := s.Canvas.H
	for i := range s.Shapes {
		pts := s.Shapes[i].Points
		for j := range pts {
			pts[j] = pts[j].Rotate90CW(h)
		}
	}
	for i := range s.Stamps {
		s.Stamps[i].At = s.Stamps[i].At.Rotate90CW(h)
	}
	s.Canvas = s.Canvas.Swap()
	return nil
}
