// Package termdisplay shows an RGB565 framebuffer in a terminal.
//
// Each terminal cell renders two vertically stacked pixels with an upper
// half block: the foreground color is the upper pixel, the background color
// the lower one. A 240×135 panel therefore needs a 240×68 terminal.
package termdisplay

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/flavioheleno/lcdconsole/image565"
	"github.com/gdamore/tcell/v2"
	"periph.io/x/conn/v3/display"
)

const upperHalf = '▀'

// Dev renders a w×h pixel panel onto a tcell screen.
type Dev struct {
	screen tcell.Screen
	rect   image.Rectangle
	frame  *image565.Image
	level  int // Backlight, 0-100
	shown  bool // Screen initialized
	halted bool
}

var _ display.Drawer = (*Dev)(nil)

// New returns a panel of w×h pixels shown on s. The screen is initialized
// by Init.
func New(s tcell.Screen, w, h int) *Dev {
	r := image.Rect(0, 0, w, h)
	return &Dev{
		screen: s,
		rect:   r,
		frame:  image565.NewImage(r),
		level:  100,
	}
}

// Init initializes the terminal screen.
func (d *Dev) Init() error {
	if err := d.screen.Init(); err != nil {
		return fmt.Errorf("termdisplay: %w", err)
	}
	d.screen.Clear()
	d.shown = true
	d.halted = false
	return nil
}

// SetBacklight scales the brightness of everything rendered, in percent
// (0-100). The screen is redrawn at the new level once Init has run; before
// that only the level is kept.
func (d *Dev) SetBacklight(level int) error {
	if d.halted {
		return errors.New("termdisplay: halted")
	}
	if level < 0 || level > 100 {
		return errors.New("termdisplay: backlight level must be between 0 and 100")
	}
	d.level = level
	d.render()
	return nil
}

// ColorModel returns the color model of the panel.
func (d *Dev) ColorModel() color.Model {
	return image565.RGB565Model
}

// Bounds returns the pixel bounds of the panel.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Draw draws src onto the panel and refreshes the terminal.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return errors.New("termdisplay: halted")
	}
	dst = dst.Intersect(d.rect)
	if dst.Empty() {
		return nil
	}
	if img, ok := src.(*image565.Image); ok && dst == d.rect && sp == (image.Point{}) && img.Rect == d.rect {
		copy(d.frame.Pix, img.Pix)
	} else {
		draw.Draw(d.frame, dst, src, sp, draw.Src)
	}
	d.render()
	return nil
}

// render paints the whole frame onto the screen.
func (d *Dev) render() {
	if !d.shown {
		return
	}
	w, h := d.rect.Dx(), d.rect.Dy()
	for y := 0; y < h; y += 2 {
		for x := 0; x < w; x++ {
			top := d.frame.RGB565At(x, y)
			bottom := image565.Black
			if y+1 < h {
				bottom = d.frame.RGB565At(x, y+1)
			}
			style := tcell.StyleDefault.Foreground(d.color(top)).Background(d.color(bottom))
			d.screen.SetContent(x, y/2, upperHalf, nil, style)
		}
	}
	d.screen.Show()
}

// color converts c to a terminal color dimmed by the backlight level.
func (d *Dev) color(c image565.RGB565) tcell.Color {
	r, g, b, _ := c.RGBA()
	scale := func(v uint32) int32 {
		return int32((v >> 8) * uint32(d.level) / 100)
	}
	return tcell.NewRGBColor(scale(r), scale(g), scale(b))
}

// PollEvent waits for the next terminal event, such as a key press.
func (d *Dev) PollEvent() tcell.Event {
	return d.screen.PollEvent()
}

// Halt releases the terminal.
func (d *Dev) Halt() error {
	if d.halted {
		return nil
	}
	d.halted = true
	if d.shown {
		d.shown = false
		d.screen.Fini()
	}
	return nil
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("termdisplay.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}
