// Package glyph draws fixed-cell text glyphs into an RGB565 framebuffer.
//
// A Rasterizer wraps a tinyfont font and turns it into a monospace cell grid:
// every printable ASCII character occupies the same width × height cell, and
// drawing a character repaints its whole cell (background first, then the
// glyph in the foreground color).
package glyph

import (
	"image"
	"image/color"

	"github.com/flavioheleno/lcdconsole/image565"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// Rasterizer draws single-byte characters in fixed-size cells.
type Rasterizer struct {
	font tinyfont.Fonter

	// Cell metrics, measured once over the printable ASCII range.
	width, height int
	baseline      int
}

// New measures f and returns a Rasterizer for it.
//
// The cell width is the widest advance of any printable ASCII glyph, the cell
// height is the font line advance and the baseline sits below the tallest
// ascender.
func New(f tinyfont.Fonter) *Rasterizer {
	r := &Rasterizer{font: f, height: int(f.GetYAdvance())}
	for ch := rune(0x20); ch <= 0x7E; ch++ {
		info := f.GetGlyph(ch).Info()
		if w := int(info.XAdvance); w > r.width {
			r.width = w
		}
		if a := -int(info.YOffset); a > r.baseline {
			r.baseline = a
		}
	}
	if r.baseline > r.height {
		r.height = r.baseline
	}
	return r
}

// Default returns a Rasterizer for the proggy TinySZ 8pt font.
func Default() *Rasterizer {
	return New(&proggy.TinySZ8pt7b)
}

// Size returns the cell dimensions in pixels.
func (r *Rasterizer) Size() (w, h int) {
	return r.width, r.height
}

// DrawGlyph paints the cell whose top-left pixel is (x, y) with bg and draws
// ch on top of it in fg. Nothing outside the cell is touched.
func (r *Rasterizer) DrawGlyph(dst *image565.Image, x, y int, ch byte, bg, fg image565.RGB565) {
	box := image.Rect(x, y, x+r.width, y+r.height)
	dst.Fill(box, bg)
	if ch == ' ' {
		return
	}
	c := &cell{dst: dst, clip: box.Intersect(dst.Rect).Sub(dst.Rect.Min)}
	rx, ry := x-dst.Rect.Min.X, y-dst.Rect.Min.Y
	tinyfont.DrawChar(c, r.font, int16(rx), int16(ry+r.baseline), rune(ch), toRGBA(fg))
}

// cell is a drivers.Displayer restricted to one glyph cell. Coordinates are
// relative to the destination image origin.
type cell struct {
	dst  *image565.Image
	clip image.Rectangle
}

var _ drivers.Displayer = (*cell)(nil)

func (c *cell) Size() (x, y int16) {
	return c.dst.Size()
}

func (c *cell) SetPixel(x, y int16, col color.RGBA) {
	if !(image.Point{X: int(x), Y: int(y)}.In(c.clip)) {
		return
	}
	c.dst.SetPixel(x, y, col)
}

func (c *cell) Display() error {
	return nil
}

func toRGBA(c image565.RGB565) color.RGBA {
	r, g, b, _ := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xFF}
}
