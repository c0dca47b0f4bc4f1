package image565

import (
	"image"
	"image/color"
)

// RGB565 is a packed 16-bit color: 5 bits red, 6 bits green, 5 bits blue.
type RGB565 struct {
	V uint16
}

// Colors used by the reference board.
var (
	Black   = RGB565{V: 0x0000}
	White   = RGB565{V: 0xFFFF}
	Gray    = RGB565{V: 0x8430}
	Red     = RGB565{V: 0xF800}
	Green   = RGB565{V: 0x07E0}
	Blue    = RGB565{V: 0x001F}
	Yellow  = RGB565{V: 0xFFE0}
	Cyan    = RGB565{V: 0x7FFF}
	Magenta = RGB565{V: 0xF81F}
)

// RGBA converts the RGB565 color to standard RGBA.
// Channels are widened to 16 bits by replicating their high bits, so full
// intensity maps to 0xFFFF.
func (c RGB565) RGBA() (r, g, b, a uint32) {
	r5 := uint32(c.V>>11) & 0x1F
	g6 := uint32(c.V>>5) & 0x3F
	b5 := uint32(c.V) & 0x1F
	r = r5<<11 | r5<<6 | r5<<1 | r5>>4
	g = g6<<10 | g6<<4 | g6>>2
	b = b5<<11 | b5<<6 | b5<<1 | b5>>4
	return r, g, b, 0xFFFF
}

// toRGB565 converts any color.Color to RGB565.
func toRGB565(c color.Color) color.Color {
	if v, ok := c.(RGB565); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	return RGB565{V: uint16(r>>11)<<11 | uint16(g>>10)<<5 | uint16(b>>11)}
}

// RGB565Model converts colors to RGB565.
var RGB565Model = color.ModelFunc(toRGB565)

// FromRGBA packs an 8-bit per channel color.
func FromRGBA(c color.RGBA) RGB565 {
	return RGB565{V: uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)}
}

// Image is an RGB565 image with big-endian pixel storage.
type Image struct {
	Pix    []byte          // Pixel data (2 bytes per pixel, high byte first)
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// NewImage creates a new Image with the specified bounds.
func NewImage(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return &Image{Rect: r}
	}
	stride := w * 2
	return &Image{
		Pix:    make([]byte, stride*h),
		Stride: stride,
		Rect:   r,
	}
}

// ColorModel returns the color model of the image.
func (p *Image) ColorModel() color.Model {
	return RGB565Model
}

// Bounds returns the image bounds.
func (p *Image) Bounds() image.Rectangle {
	return p.Rect
}

// At returns the color of the pixel at (x, y).
// It implements the image.Image interface.
func (p *Image) At(x, y int) color.Color {
	return p.RGB565At(x, y)
}

// RGB565At returns the RGB565 color of the pixel at (x, y).
func (p *Image) RGB565At(x, y int) RGB565 {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return RGB565{}
	}
	i := p.PixOffset(x, y)
	return RGB565{V: uint16(p.Pix[i])<<8 | uint16(p.Pix[i+1])}
}

// Set sets the color of the pixel at (x, y).
func (p *Image) Set(x, y int, c color.Color) {
	p.SetRGB565(x, y, RGB565Model.Convert(c).(RGB565))
}

// SetRGB565 sets the RGB565 color of the pixel at (x, y).
// This is faster than Set() as it doesn't require color conversion.
func (p *Image) SetRGB565(x, y int, c RGB565) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	p.Pix[i] = byte(c.V >> 8)
	p.Pix[i+1] = byte(c.V)
}

// Fill paints r, clipped to the image bounds, with c.
func (p *Image) Fill(r image.Rectangle, c RGB565) {
	r = r.Intersect(p.Rect)
	if r.Empty() {
		return
	}
	hi, lo := byte(c.V>>8), byte(c.V)
	// Paint the first row, then replicate it.
	first := p.Pix[p.PixOffset(r.Min.X, r.Min.Y):p.PixOffset(r.Max.X-1, r.Min.Y)+2]
	for i := 0; i < len(first); i += 2 {
		first[i] = hi
		first[i+1] = lo
	}
	for y := r.Min.Y + 1; y < r.Max.Y; y++ {
		i := p.PixOffset(r.Min.X, y)
		copy(p.Pix[i:i+len(first)], first)
	}
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (p *Image) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*2
}

// Size returns the image dimensions. Together with SetPixel and Display it
// implements drivers.Displayer.
func (p *Image) Size() (x, y int16) {
	return int16(p.Rect.Dx()), int16(p.Rect.Dy())
}

// SetPixel sets the pixel at (x, y), relative to the image origin.
func (p *Image) SetPixel(x, y int16, c color.RGBA) {
	p.SetRGB565(p.Rect.Min.X+int(x), p.Rect.Min.Y+int(y), FromRGBA(c))
}

// Display is a no-op: the image lives in memory and is transferred to the
// panel by its owner.
func (p *Image) Display() error {
	return nil
}
