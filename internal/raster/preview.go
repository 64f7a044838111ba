package raster

import (
	"context"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/pavelhrncir/casebook/internal/annotation"
)

// stampRadius is the marker size of a stamp in raster pixels.
const stampRadius = 14.0

// RenderPreview draws the annotation layers over the named raster and
// returns the combined image. Coordinates recorded against a canvas size
// other than the raster's are scaled to fit; the stored raster stays
// untouched.
func (s *DirStore) RenderPreview(ctx context.Context, name string, d *annotation.Drawing, set *annotation.Set) (image.Image, error) {
	img, err := s.Load(ctx, name)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	if d != nil {
		sx, sy := canvasScale(d.Canvas, dst.Bounds())
		for _, stroke := range d.Strokes {
			drawStroke(dst, stroke, sx, sy)
		}
	}
	if set != nil {
		sx, sy := canvasScale(set.Canvas, dst.Bounds())
		for _, shape := range set.Shapes {
			drawShape(dst, shape, sx, sy)
		}
		for _, stamp := range set.Stamps {
			drawStamp(dst, stamp, sx, sy)
		}
	}
	return dst, nil
}

// canvasScale maps annotation canvas coordinates to raster pixels. A zero
// canvas means the coordinates already are raster pixels.
func canvasScale(canvas annotation.Size, b image.Rectangle) (float64, float64) {
	if canvas.IsZero() {
		return 1, 1
	}
	return float64(b.Dx()) / canvas.W, float64(b.Dy()) / canvas.H
}

func drawStroke(dst *image.RGBA, stroke annotation.Stroke, sx, sy float64) {
	col := parseHexColor(stroke.Color)
	r := stroke.Width * sx / 2
	if r < 1 {
		r = 1
	}
	for i := 1; i < len(stroke.Points); i++ {
		a := stroke.Points[i-1]
		b := stroke.Points[i]
		stampSegment(dst, a.X*sx, a.Y*sy, b.X*sx, b.Y*sy, r, col)
	}
	if len(stroke.Points) == 1 {
		p := stroke.Points[0]
		stampDisc(dst, p.X*sx, p.Y*sy, r, col)
	}
}

func drawShape(dst *image.RGBA, shape annotation.Shape, sx, sy float64) {
	if len(shape.Points) < 2 {
		return
	}
	col := parseHexColor(shape.Color)
	r := shape.Width * sx / 2
	if r < 1 {
		r = 1
	}
	a := shape.Points[0]
	b := shape.Points[1]
	ax, ay := a.X*sx, a.Y*sy
	bx, by := b.X*sx, b.Y*sy

	switch shape.Kind {
	case annotation.ShapeLine:
		stampSegment(dst, ax, ay, bx, by, r, col)
	case annotation.ShapeArrow:
		stampSegment(dst, ax, ay, bx, by, r, col)
		drawArrowHead(dst, ax, ay, bx, by, r, col)
	case annotation.ShapeRect:
		x0, x1 := math.Min(ax, bx), math.Max(ax, bx)
		y0, y1 := math.Min(ay, by), math.Max(ay, by)
		stampSegment(dst, x0, y0, x1, y0, r, col)
		stampSegment(dst, x1, y0, x1, y1, r, col)
		stampSegment(dst, x1, y1, x0, y1, r, col)
		stampSegment(dst, x0, y1, x0, y0, r, col)
	case annotation.ShapeEllipse:
		cx, cy := (ax+bx)/2, (ay+by)/2
		rx, ry := math.Abs(bx-ax)/2, math.Abs(by-ay)/2
		steps := int(math.Max(rx, ry)*4) + 16
		px, py := cx+rx, cy
		for i := 1; i <= steps; i++ {
			t := 2 * math.Pi * float64(i) / float64(steps)
			x := cx + rx*math.Cos(t)
			y := cy + ry*math.Sin(t)
			stampSegment(dst, px, py, x, y, r, col)
			px, py = x, y
		}
	}
}

func drawArrowHead(dst *image.RGBA, ax, ay, bx, by, r float64, col color.RGBA) {
	dx, dy := bx-ax, by-ay
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	ux, uy := dx/length, dy/length
	head := math.Min(length/3, stampRadius)
	// two barbs at 30 degrees
	const sin, cos = 0.5, 0.866
	lx := bx - head*(ux*cos-uy*sin)
	ly := by - head*(uy*cos+ux*sin)
	rx := bx - head*(ux*cos+uy*sin)
	ry := by - head*(uy*cos-ux*sin)
	stampSegment(dst, bx, by, lx, ly, r, col)
	stampSegment(dst, bx, by, rx, ry, r, col)
}

func drawStamp(dst *image.RGBA, stamp annotation.Stamp, sx, sy float64) {
	col := parseHexColor(stamp.Color)
	cx, cy := stamp.At.X*sx, stamp.At.Y*sy
	const r = stampRadius
	const line = 2.0

	switch stamp.Kind {
	case annotation.StampCircle:
		stampRing(dst, cx, cy, r, line, col)
	case annotation.StampSquare:
		stampSegment(dst, cx-r, cy-r, cx+r, cy-r, line, col)
		stampSegment(dst, cx+r, cy-r, cx+r, cy+r, line, col)
		stampSegment(dst, cx+r, cy+r, cx-r, cy+r, line, col)
		stampSegment(dst, cx-r, cy+r, cx-r, cy-r, line, col)
	case annotation.StampTriangle:
		stampSegment(dst, cx, cy-r, cx+r, cy+r, line, col)
		stampSegment(dst, cx+r, cy+r, cx-r, cy+r, line, col)
		stampSegment(dst, cx-r, cy+r, cx, cy-r, line, col)
	case annotation.StampCross:
		stampSegment(dst, cx-r, cy-r, cx+r, cy+r, line, col)
		stampSegment(dst, cx-r, cy+r, cx+r, cy-r, line, col)
	case annotation.StampFlag:
		stampSegment(dst, cx, cy+r, cx, cy-r, line, col)
		stampDisc(dst, cx+r/2, cy-r/2, r/2, col)
	default:
		stampDisc(dst, cx, cy, r/2, col)
	}
}

// stampSegment walks from a to b stamping discs of radius r.
func stampSegment(dst *image.RGBA, x0, y0, x1, y1, r float64, col color.RGBA) {
	dist := math.Hypot(x1-x0, y1-y0)
	steps := int(dist/0.5) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		stampDisc(dst, x0+(x1-x0)*t, y0+(y1-y0)*t, r, col)
	}
}

func stampDisc(dst *image.RGBA, cx, cy, r float64, col color.RGBA) {
	for y := int(cy - r); y <= int(cy+r); y++ {
		for x := int(cx - r); x <= int(cx+r); x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			if dx*dx+dy*dy <= r*r {
				dst.SetRGBA(x, y, col)
			}
		}
	}
}

func stampRing(dst *image.RGBA, cx, cy, r, line float64, col color.RGBA) {
	outer := r * r
	inner := (r - line) * (r - line)
	for y := int(cy - r); y <= int(cy+r); y++ {
		for x := int(cx - r); x <= int(cx+r); x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			d := dx*dx + dy*dy
			if d <= outer && d >= inner {
				dst.SetRGBA(x, y, col)
			}
		}
	}
}

// parseHexColor parses #rgb and #rrggbb colors, falling back to opaque red
// so a bad color is visible instead of invisible.
func parseHexColor(s string) color.RGBA {
	fallback := color.RGBA{R: 0xff, A: 0xff}
	if len(s) == 0 || s[0] != '#' {
		return fallback
	}
	hex := s[1:]
	digit := func(c byte) (uint8, bool) {
		switch {
		case c >= '0' && c <= '9':
			return c - '0', true
		case c >= 'a' && c <= 'f':
			return c - 'a' + 10, true
		case c >= 'A' && c <= 'F':
			return c - 'A' + 10, true
		}
		return 0, false
	}

	switch len(hex) {
	case 3:
		var v [3]uint8
		for i := 0; i < 3; i++ {
			d, ok := digit(hex[i])
			if !ok {
				return fallback
			}
			v[i] = d*16 + d
		}
		return color.RGBA{R: v[0], G: v[1], B: v[2], A: 0xff}
	case 6:
		var v [3]uint8
		for i := 0; i < 3; i++ {
			hi, ok1 := digit(hex[2*i])
			lo, ok2 := digit(hex[2*i+1])
			if !ok1 || !ok2 {
				return fallback
			}
			v[i] = hi*16 + lo
		}
		return color.RGBA{R: v[0], G: v[1], B: v[2], A: 0xff}
	}
	return fallback
}
