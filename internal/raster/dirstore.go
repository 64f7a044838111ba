package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// DirStore keeps rasters as PNG files in a single directory. Names are
// generated on save and never contain path separators.
type DirStore struct {
	dir      string
	notifier *Notifier
}

// NewDirStore opens (and creates if needed) a directory-backed store.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create raster directory: %w", err)
	}
	return &DirStore{dir: dir, notifier: NewNotifier()}, nil
}

// Dir returns the backing directory.
func (s *DirStore) Dir() string {
	return s.dir
}

func (s *DirStore) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid raster name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}

// Load decodes the named raster.
func (s *DirStore) Load(ctx context.Context, name string) (image.Image, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read raster %s: %w", name, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not decode raster %s: %w", name, err)
	}
	return img, nil
}

// Dimensions reports the pixel size of the named raster.
func (s *DirStore) Dimensions(ctx context.Context, name string) (int, int, error) {
	path, err := s.path(name)
	if err != nil {
		return 0, 0, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return 0, 0, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("could not open raster %s: %w", name, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("could not decode raster %s: %w", name, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Save stores a new raster as PNG and returns its generated name.
func (s *DirStore) Save(ctx context.Context, img image.Image) (string, error) {
	name := uuid.New().String() + ".png"
	if err := s.write(name, img); err != nil {
		return "", err
	}
	s.notifier.Notify(name)
	return name, nil
}

// Delete removes the named raster.
func (s *DirStore) Delete(ctx context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("could not delete raster %s: %w", name, err)
	}
	s.notifier.Notify(name)
	return nil
}

// Rotate turns the named raster 90 degrees clockwise in place.
func (s *DirStore) Rotate(ctx context.Context, name string) error {
	img, err := s.Load(ctx, name)
	if err != nil {
		return err
	}
	if err := s.write(name, rotate90CW(img)); err != nil {
		return err
	}
	s.notifier.Notify(name)
	return nil
}

// Compose scales the named rasters into their rectangles on a white canvas
// and stores the result as a new raster.
func (s *DirStore) Compose(ctx context.Context, names []string, rects []image.Rectangle) (string, error) {
	if len(names) != len(rects) {
		return "", fmt.Errorf("got %d names for %d rects", len(names), len(rects))
	}

	var canvas image.Rectangle
	for _, r := range rects {
		canvas = canvas.Union(r)
	}
	dst := image.NewRGBA(canvas)
	draw.Draw(dst, canvas, image.NewUniform(color.White), image.Point{}, draw.Src)

	for i, name := range names {
		img, err := s.Load(ctx, name)
		if err != nil {
			return "", err
		}
		target := fitRect(img.Bounds(), rects[i])
		draw.BiLinear.Scale(dst, target, img, img.Bounds(), draw.Over, nil)
	}

	return s.Save(ctx, dst)
}

// Watch registers a mutation callback. Callbacks run synchronously on the
// mutating goroutine; keep them short.
func (s *DirStore) Watch(fn func(name string)) func() {
	return s.notifier.Watch(fn)
}

func (s *DirStore) write(name string, img image.Image) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("could not encode raster %s: %w", name, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("could not write raster %s: %w", name, err)
	}
	return nil
}

// rotate90CW returns the image rotated a quarter turn clockwise.
func rotate90CW(src image.Image) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < w; y++ {
		for x := 0; x < h; x++ {
			dst.Set(x, y, src.At(b.Min.X+y, b.Min.Y+h-1-x))
		}
	}
	return dst
}

// fitRect centers the source aspect ratio inside the target rectangle.
func fitRect(src, target image.Rectangle) image.Rectangle {
	sw, sh := float64(src.Dx()), float64(src.Dy())
	tw, th := float64(target.Dx()), float64(target.Dy())
	if sw <= 0 || sh <= 0 {
		return target
	}

	scale := tw / sw
	if s := th / sh; s < scale {
		scale = s
	}
	w := int(sw * scale)
	h := int(sh * scale)
	x := target.Min.X + (target.Dx()-w)/2
	y := target.Min.Y + (target.Dy()-h)/2
	return image.Rect(x, y, x+w, y+h)
}

var _ Store = (*DirStore)(nil)
