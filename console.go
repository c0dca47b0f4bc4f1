package lcdconsole

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"time"

	"github.com/flavioheleno/lcdconsole/image565"
	"periph.io/x/conn/v3/display"
)

// Panel is the display hardware behind a Console.
type Panel interface {
	display.Drawer

	// Init brings the hardware up. It is called once, from Console.Init.
	Init() error
	// SetBacklight sets the backlight level in percent (0-100).
	SetBacklight(level int) error
}

// Rasterizer draws one character cell into the framebuffer.
type Rasterizer interface {
	// Size returns the cell dimensions in pixels.
	Size() (w, h int)
	// DrawGlyph draws ch with its cell's top-left pixel at (x, y).
	DrawGlyph(dst *image565.Image, x, y int, ch byte, bg, fg image565.RGB565)
}

// Opts is the configuration for a Console.
type Opts struct {
	// Sleep is the delay primitive used during bring-up (default: time.Sleep).
	Sleep func(time.Duration)
	// Backlight is the level set once the display shows a blank screen
	// (default when zero: 75).
	Backlight int
	// Logger receives bring-up diagnostics (default: discarded).
	Logger *slog.Logger
}

var (
	// ErrAlloc is returned by Init when no usable framebuffer or grid can be
	// derived from the panel and font metrics.
	ErrAlloc = errors.New("lcdconsole: cannot allocate framebuffer")
	// ErrHardware is returned by Init when the panel fails to come up.
	ErrHardware = errors.New("lcdconsole: hardware bring-up failed")
)

// tabWidth is the number of columns a horizontal tab advances.
const tabWidth = 8

// Console is a character grid drawn into an RGB565 framebuffer.
//
// A Console does nothing until Init succeeds; before that every operation
// is a silent no-op. It is not safe for concurrent use.
type Console struct {
	panel Panel
	font  Rasterizer
	sleep func(time.Duration)
	level int
	log   *slog.Logger

	buf *image565.Image // nil until Init succeeds

	glyphW, glyphH int
	cols, rows     int
	col, row       int
	fg, bg         image565.RGB565
}

var (
	_ io.Writer     = (*Console)(nil)
	_ io.ByteWriter = (*Console)(nil)
)

// New returns an uninitialized Console drawing with font onto panel.
//
// opts can be nil to use defaults.
func New(panel Panel, font Rasterizer, opts *Opts) *Console {
	if opts == nil {
		opts = &Opts{}
	}
	c := &Console{
		panel: panel,
		font:  font,
		sleep: opts.Sleep,
		level: opts.Backlight,
		log:   opts.Logger,
	}
	if c.sleep == nil {
		c.sleep = time.Sleep
	}
	if c.level == 0 {
		c.level = 75
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	return c
}

// Init allocates the framebuffer, brings up the panel and shows a blank
// screen. Calling Init on a ready Console does nothing and returns nil.
//
// On failure the Console is left exactly as it was and Init may be retried.
func (c *Console) Init() error {
	if c.buf != nil {
		return nil
	}

	bounds := c.panel.Bounds()
	if bounds.Empty() {
		return fmt.Errorf("%w: empty panel bounds %v", ErrAlloc, bounds)
	}
	gw, gh := c.font.Size()
	if gw <= 0 || gh <= 0 || bounds.Dx()/gw == 0 || bounds.Dy()/gh == 0 {
		return fmt.Errorf("%w: %dx%d glyphs do not fit %v", ErrAlloc, gw, gh, bounds)
	}
	buf := image565.NewImage(bounds)

	c.sleep(100 * time.Millisecond)
	// Keep the backlight dark until the RAM holds a blank frame.
	if err := c.panel.SetBacklight(0); err != nil {
		return fmt.Errorf("%w: %w", ErrHardware, err)
	}
	if err := c.panel.Init(); err != nil {
		c.log.Warn("panel init failed", "panel", c.panel, "err", err)
		return fmt.Errorf("%w: %w", ErrHardware, err)
	}

	buf.Fill(buf.Rect, image565.Black)
	if err := c.panel.Draw(buf.Rect, buf, image.Point{}); err != nil {
		return fmt.Errorf("%w: %w", ErrHardware, err)
	}
	if err := c.panel.SetBacklight(c.level); err != nil {
		return fmt.Errorf("%w: %w", ErrHardware, err)
	}

	c.buf = buf
	c.glyphW, c.glyphH = gw, gh
	c.cols, c.rows = bounds.Dx()/gw, bounds.Dy()/gh
	c.col, c.row = 0, 0
	c.fg, c.bg = image565.White, image565.Black
	c.log.Debug("console ready", "panel", c.panel, "cols", c.cols, "rows", c.rows,
		"glyph", fmt.Sprintf("%dx%d", gw, gh))
	return nil
}

// Ready reports whether Init has succeeded.
func (c *Console) Ready() bool {
	return c.buf != nil
}

// Clear paints the whole framebuffer with the background color. The cursor
// and colors are kept and nothing is sent to the panel.
func (c *Console) Clear() {
	if c.buf == nil {
		return
	}
	c.buf.Fill(c.buf.Rect, c.bg)
}

// SetColors sets the colors used by subsequent characters.
func (c *Console) SetColors(fg, bg image565.RGB565) {
	if c.buf == nil {
		return
	}
	c.fg, c.bg = fg, bg
}

// PutChar writes one byte at the cursor.
//
// CR, LF, TAB and VT move the cursor. Printable ASCII is drawn; any other
// byte is drawn as a space. Running past the last column moves to the next
// row, and running past the last row wraps to the top-left cell without
// clearing the screen.
func (c *Console) PutChar(ch byte) {
	if c.buf == nil {
		return
	}

	col, row := c.col, c.row
	switch ch {
	case '\r':
		col = 0
	case '\n', '\v':
		row++
	case '\t':
		col += tabWidth
	default:
		if ch < 0x20 || ch > 0x7E {
			ch = ' '
		}
		o := c.buf.Rect.Min
		c.font.DrawGlyph(c.buf, o.X+col*c.glyphW, o.Y+row*c.glyphH, ch, c.bg, c.fg)
		col++
	}

	// A tab overshooting the last column still wraps a single row.
	if col >= c.cols {
		col = 0
		row++
	}
	if row >= c.rows {
		col, row = 0, 0
	}
	c.col, c.row = col, row
}

// PutString writes s byte by byte with PutChar.
func (c *Console) PutString(s string) {
	for i := 0; i < len(s); i++ {
		c.PutChar(s[i])
	}
}

// Write implements io.Writer. It never fails.
func (c *Console) Write(p []byte) (int, error) {
	for _, ch := range p {
		c.PutChar(ch)
	}
	return len(p), nil
}

// WriteByte implements io.ByteWriter. It never fails.
func (c *Console) WriteByte(ch byte) error {
	c.PutChar(ch)
	return nil
}

// Flush sends the framebuffer to the panel. It returns nil without doing
// anything before Init.
func (c *Console) Flush() error {
	if c.buf == nil {
		return nil
	}
	if err := c.panel.Draw(c.buf.Rect, c.buf, image.Point{}); err != nil {
		return fmt.Errorf("lcdconsole: flush: %w", err)
	}
	return nil
}

// Cursor returns the cursor cell.
func (c *Console) Cursor() (col, row int) {
	return c.col, c.row
}

// Grid returns the grid size in cells. It is 0x0 before Init.
func (c *Console) Grid() (cols, rows int) {
	return c.cols, c.rows
}

// Colors returns the current foreground and background colors.
func (c *Console) Colors() (fg, bg image565.RGB565) {
	return c.fg, c.bg
}

// Buffer returns the framebuffer, or nil before Init. Callers must not
// modify it.
func (c *Console) Buffer() *image565.Image {
	return c.buf
}

// String returns a string representation of the console.
func (c *Console) String() string {
	return fmt.Sprintf("lcdconsole.Console{%dx%d}", c.cols, c.rows)
}
