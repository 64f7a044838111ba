// Package annotation holds the vector annotation state attached to case
// photos: freehand strokes, geometric shapes and survey stamps, all expressed
// in the pixel coordinate space of the photo raster they belong to.
package annotation

// Point represents a 2D point in raster coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points (vector addition).
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the difference of two points (vector subtraction).
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns the point scaled by a scalar.
func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Rotate90CW returns the point rotated a quarter turn clockwise inside a
// raster of height h. The raster's left edge becomes the new top edge,
// so (x, y) maps to (h-y, x).
func (p Point) Rotate90CW(h float64) Point {
	return Point{X: h - p.Y, Y: p.X}
}

// Size holds raster dimensions in pixels.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Swap returns the size with width and height exchanged.
func (s Size) Swap() Size {
	return Size{W: s.H, H: s.W}
}

// IsZero reports whether no dimensions have been recorded.
func (s Size) IsZero() bool {
	return s.W == 0 && s.H == 0
}

// Stroke is a single freehand polyline. Pressures is optional; when present
// it carries one value per point.
type Stroke struct {
	Color     string    `json:"color"`
	Width     float64   `json:"width"`
	Points    []Point   `json:"points"`
	Pressures []float64 `json:"pressures,omitempty"`
}

// Clone returns a deep copy of the stroke.
func (s Stroke) Clone() Stroke {
	c := s
	c.Points = append([]Point(nil), s.Points...)
	if s.Pressures != nil {
		c.Pressures = append([]float64(nil), s.Pressures...)
	}
	return c
}

// ShapeKind enumerates the geometric shape tools.
type ShapeKind string

const (
	ShapeLine    ShapeKind = "line"
	ShapeArrow   ShapeKind = "arrow"
	ShapeRect    ShapeKind = "rect"
	ShapeEllipse ShapeKind = "ellipse"
)

// Shape is a geometric annotation. Lines and arrows use two end points,
// rectangles and ellipses two opposite corners of their bounding box.
type Shape struct {
	Kind   ShapeKind `json:"kind"`
	Color  string    `json:"color"`
	Width  float64   `json:"width"`
	Points []Point   `json:"points"`
}

// Clone returns a deep copy of the shape.
func (s Shape) Clone() Shape {
	c := s
	c.Points = append([]Point(nil), s.Points...)
	return c
}

// StampKind enumerates the survey stamp symbols.
type StampKind string

const (
	StampCircle   StampKind = "circle"
	StampTriangle StampKind = "triangle"
	StampSquare   StampKind = "square"
	StampCross    StampKind = "cross"
	StampFlag     StampKind = "flag"
)

// Stamp marks a single spot on the photo. Number is rendered next to the
// symbol only when ShowNumber is set.
type Stamp struct {
	Kind       StampKind `json:"kind"`
	Color      string    `json:"color"`
	At         Point     `json:"at"`
	Number     int       `json:"number"`
	ShowNumber bool      `json:"show_number"`
}

// Drawing is the freehand layer of a photo. Canvas records the raster
// dimensions the stroke coordinates are expressed against.
type Drawing struct {
	Canvas  Size     `json:"canvas"`
	Strokes []Stroke `json:"strokes"`
}

// Empty reports whether the drawing contains no strokes.
func (d *Drawing) Empty() bool {
	return len(d.Strokes) == 0
}

// Clone returns a deep copy of the drawing.
func (d *Drawing) Clone() Drawing {
	c := Drawing{Canvas: d.Canvas}
	for _, s := range d.Strokes {
		c.Strokes = append(c.Strokes, s.Clone())
	}
	return c
}

// Set is the shape and stamp layer of a photo. Canvas records the raster
// dimensions the coordinates are expressed against.
type Set struct {
	Canvas Size    `json:"canvas"`
	Shapes []Shape `json:"shapes"`
	Stamps []Stamp `json:"stamps"`
}

// Empty reports whether the set contains no shapes and no stamps.
func (s *Set) Empty() bool {
	return len(s.Shapes) == 0 && len(s.Stamps) == 0
}

// Clone returns a deep copy of the set.
func (s *Set) Clone() Set {
	c := Set{Canvas: s.Canvas}
	for _, sh := range s.Shapes {
		c.Shapes = append(c.Shapes, sh.Clone())
	}
	c.Stamps = append([]Stamp(nil), s.Stamps...)
	return c
}
