// Package canvas provides the drawing surface pages are rendered into.
package canvas

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/image/draw"
)

// Canvas is an image-backed drawing surface. It is safe for concurrent use.
// Present swaps in a fully drawn frame at once; Resize followed by Draw
// exposes the blank frame in between.
type Canvas struct {
	mu      sync.RWMutex
	img     *image.RGBA
	version uint64
}

// New creates an empty 0x0 canvas.
func New() *Canvas {
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, 0, 0))}
}

// Resize replaces the canvas with a blank white surface of width x height.
func (c *Canvas) Resize(width, height int) {
	img := blank(width, height)

	c.mu.Lock()
	c.img = img
	c.version++
	c.mu.Unlock()
}

// Draw paints src scaled to fill the whole canvas.
func (c *Canvas) Draw(src image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	paint(c.img, src)
	c.version++
}

// Present resizes the canvas and paints src into it as a single update.
func (c *Canvas) Present(width, height int, src image.Image) {
	img := blank(width, height)
	paint(img, src)

	c.mu.Lock()
	c.img = img
	c.version++
	c.mu.Unlock()
}

func blank(width, height int) *image.RGBA {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

func paint(dst *image.RGBA, src image.Image) {
	if src.Bounds().Size() == dst.Bounds().Size() {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Over)
		return
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() (width, height int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// Version increases on every Resize, Draw or Present.
func (c *Canvas) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Empty reports whether the canvas has no area.
func (c *Canvas) Empty() bool {
	w, h := c.Size()
	return w == 0 || h == 0
}

// Snapshot returns a copy of the current frame.
func (c *Canvas) Snapshot() *image.RGBA {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := image.NewRGBA(c.img.Bounds())
	copy(out.Pix, c.img.Pix)
	return out
}

// EncodePNG writes the current frame as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	if c.Empty() {
		return fmt.Errorf("canvas is empty")
	}
	return png.Encode(w, c.Snapshot())
}

// WriteFile writes the current frame as a PNG file, creating parent
// directories as needed.
func (c *Canvas) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := c.EncodePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
