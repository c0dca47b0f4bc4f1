// Package st7789 controls an ST7789 TFT LCD controller via SPI.
//
// The ST7789 drives up to 240×320 RGB565 pixels. The defaults target the
// 1.14" 240×135 panel found on the Waveshare RP2040-GEEK, which sits at an
// offset inside the controller RAM.
package st7789

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/flavioheleno/lcdconsole/image565"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Opts is the configuration for the ST7789 display.
type Opts struct {
	// Display dimensions in pixels
	W int // Width (default: 240, must be ≤320)
	H int // Height (default: 135, must be ≤320)

	// Position of the visible area inside the controller RAM
	XOffset int
	YOffset int

	Rotated bool // 180° rotation

	// Optional pins
	RST gpio.PinIO  // Reset pin (nil if not used)
	BL  gpio.PinOut // Backlight pin, PWM capable if possible (nil if not used)

	// Sleep is the delay primitive used during reset and wake-up.
	// Defaults to time.Sleep.
	Sleep func(time.Duration)
}

// Dev is the device handle for the ST7789 display.
type Dev struct {
	// Communication
	c     conn.Conn   // SPI connection
	dc    gpio.PinOut // Data/Command pin
	rst   gpio.PinIO  // Reset pin (optional)
	bl    gpio.PinOut // Backlight pin (optional)
	maxTx int         // Largest single transfer, 0 if unlimited

	sleep func(time.Duration)

	// Display geometry
	rect             image.Rectangle
	xOffset, yOffset int
	madctl           byte

	// Pixel buffers
	buffer []byte          // Last frame sent to the panel
	next   *image565.Image // Shadow frame for differential updates

	halted bool
}

var _ display.Drawer = (*Dev)(nil)

// NewSPI creates a new ST7789 device connected via SPI.
//
// The SPI port is configured for 10MHz, Mode0 (CPOL=0, CPHA=0), 8-bit transfers.
// The dc (Data/Command) GPIO pin must be provided and configured as an output.
// No command is sent until Init is called.
//
// opts can be nil to use defaults (1.14" 240x135 panel).
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{W: 240, H: 135, XOffset: 40, YOffset: 53}
	}
	if opts.W <= 0 || opts.W > 320 {
		return nil, errors.New("st7789: width must be between 1 and 320")
	}
	if opts.H <= 0 || opts.H > 320 {
		return nil, errors.New("st7789: height must be between 1 and 320")
	}
	if dc == nil {
		return nil, errors.New("st7789: dc pin is required")
	}

	c, err := p.Connect(10*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("st7789: %w", err)
	}

	d := &Dev{
		c:       c,
		dc:      dc,
		rst:     opts.RST,
		bl:      opts.BL,
		sleep:   opts.Sleep,
		rect:    image.Rect(0, 0, opts.W, opts.H),
		xOffset: opts.XOffset,
		yOffset: opts.YOffset,
		madctl:  0x70, // Landscape: MX | MV | ML
		buffer:  make([]byte, opts.W*opts.H*2),
	}
	if opts.Rotated {
		d.madctl ^= 0xC0
	}
	if d.sleep == nil {
		d.sleep = time.Sleep
	}
	if l, ok := c.(conn.Limits); ok {
		d.maxTx = l.MaxTxSize()
	}
	return d, nil
}

// initSequence is the register setup for the 1.14" V2 panel, after MADCTL.
var initSequence = []struct {
	cmd  byte
	data []byte
}{
	{0x3A, []byte{0x05}},                         // COLMOD: 16 bits per pixel
	{0xB2, []byte{0x0C, 0x0C, 0x00, 0x33, 0x33}}, // Porch control
	{0xB7, []byte{0x35}},                         // Gate control
	{0xBB, []byte{0x19}},                         // VCOM
	{0xC0, []byte{0x2C}},                         // LCM control
	{0xC2, []byte{0x01}},                         // VDV and VRH enable
	{0xC3, []byte{0x12}},                         // VRH
	{0xC4, []byte{0x20}},                         // VDV
	{0xC6, []byte{0x0F}},                         // Frame rate 60Hz
	{0xD0, []byte{0xA4, 0xA1}},                   // Power control
	{0xE0, []byte{0xD0, 0x04, 0x0D, 0x11, 0x13, 0x2B, 0x3F, 0x54, 0x4C, 0x18, 0x0D, 0x0B, 0x1F, 0x23}},
	{0xE1, []byte{0xD0, 0x04, 0x0C, 0x11, 0x13, 0x2C, 0x3F, 0x44, 0x51, 0x2F, 0x1F, 0x1F, 0x20, 0x23}},
	{0x21, nil}, // Inversion on, required for true colors on this panel
}

// Init resets the controller, sends the initialization sequence, clears the
// display RAM and turns the display on. It may be called again after Halt.
func (d *Dev) Init() error {
	if d.rst != nil {
		for _, l := range []gpio.Level{gpio.High, gpio.Low, gpio.High} {
			if err := d.rst.Out(l); err != nil {
				return fmt.Errorf("st7789: failed to drive RST %s: %w", l, err)
			}
			d.sleep(100 * time.Millisecond)
		}
	}

	if err := d.sendCommand(0x36, d.madctl); err != nil {
		return fmt.Errorf("st7789: init: %w", err)
	}
	for _, s := range initSequence {
		if err := d.sendCommand(s.cmd, s.data...); err != nil {
			return fmt.Errorf("st7789: init: %w", err)
		}
	}

	// Sleep out, then wait for the supply to settle
	if err := d.sendCommand(0x11); err != nil {
		return fmt.Errorf("st7789: init: %w", err)
	}
	d.sleep(120 * time.Millisecond)

	clear(d.buffer)
	if err := d.writeFullFrame(d.buffer); err != nil {
		return fmt.Errorf("st7789: clear: %w", err)
	}
	if d.next != nil {
		clear(d.next.Pix)
	}
	d.halted = false

	// Display on
	return d.sendCommand(0x29)
}

// sendCommand sends a command byte followed by its parameters.
func (d *Dev) sendCommand(cmd byte, params ...byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.c.Tx([]byte{cmd}, nil); err != nil {
		return err
	}
	if len(params) == 0 {
		return nil
	}
	return d.sendData(params)
}

// sendData sends data bytes, split to the connection transfer limit.
func (d *Dev) sendData(data []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	for len(data) > 0 {
		n := len(data)
		if d.maxTx > 0 && n > d.maxTx {
			n = d.maxTx
		}
		if err := d.c.Tx(data[:n], nil); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// writeRect writes pixel data to a rectangular region of the display.
func (d *Dev) writeRect(x, y, width, height int, pixels []byte) error {
	xs, xe := x+d.xOffset, x+width-1+d.xOffset
	ys, ye := y+d.yOffset, y+height-1+d.yOffset

	if err := d.sendCommand(0x2A, byte(xs>>8), byte(xs), byte(xe>>8), byte(xe)); err != nil {
		return err
	}
	if err := d.sendCommand(0x2B, byte(ys>>8), byte(ys), byte(ye>>8), byte(ye)); err != nil {
		return err
	}
	if err := d.sendCommand(0x2C); err != nil {
		return err
	}
	return d.sendData(pixels)
}

// writeFullFrame writes the entire frame buffer to the display.
func (d *Dev) writeFullFrame(pixels []byte) error {
	return d.writeRect(0, 0, d.rect.Dx(), d.rect.Dy(), pixels)
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return image565.RGB565Model
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Write writes raw big-endian RGB565 pixel data to the display.
// The data must be exactly d.rect.Dx() * d.rect.Dy() * 2 bytes.
func (d *Dev) Write(pixels []byte) (int, error) {
	if d.halted {
		return 0, errors.New("st7789: halted")
	}
	if len(pixels) != len(d.buffer) {
		return 0, errors.New("st7789: invalid buffer size")
	}
	if err := d.writeFullFrame(pixels); err != nil {
		return 0, err
	}
	copy(d.buffer, pixels)
	if d.next != nil {
		copy(d.next.Pix, pixels)
	}
	return len(pixels), nil
}

// Draw draws an image onto the display.
//
// A full-size *image565.Image at the origin is sent as is. Anything else is
// composed into a shadow frame and only the rectangle that changed since the
// last transfer is sent.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return errors.New("st7789: halted")
	}

	dst = dst.Intersect(d.rect)
	if dst.Empty() {
		return nil
	}

	if img, ok := src.(*image565.Image); ok {
		if dst == d.rect && sp == (image.Point{}) && img.Rect == d.rect {
			_, err := d.Write(img.Pix)
			return err
		}
	}

	if d.next == nil {
		d.next = image565.NewImage(d.rect)
		copy(d.next.Pix, d.buffer)
	}
	draw.Draw(d.next, dst, src, sp, draw.Src)

	minCol, maxCol, minRow, maxRow := d.calculateDiff()
	if minCol > maxCol {
		return nil
	}

	region := d.extractRegion(minCol, maxCol, minRow, maxRow)
	if err := d.writeRect(minCol, minRow, maxCol-minCol+1, maxRow-minRow+1, region); err != nil {
		return err
	}
	copy(d.buffer, d.next.Pix)
	return nil
}

// calculateDiff compares the shadow frame with the last frame sent and
// returns the smallest changed rectangle, in pixels and inclusive.
// minCol > maxCol means nothing changed.
func (d *Dev) calculateDiff() (minCol, maxCol, minRow, maxRow int) {
	width := d.rect.Dx()
	height := d.rect.Dy()
	stride := width * 2

	minCol, maxCol = width, -1
	minRow, maxRow = height, -1

	for y := 0; y < height; y++ {
		row := y * stride
		if bytes.Equal(d.buffer[row:row+stride], d.next.Pix[row:row+stride]) {
			continue
		}
		if y < minRow {
			minRow = y
		}
		maxRow = y
		for x := 0; x < width; x++ {
			i := row + x*2
			if d.buffer[i] != d.next.Pix[i] || d.buffer[i+1] != d.next.Pix[i+1] {
				if x < minCol {
					minCol = x
				}
				if x > maxCol {
					maxCol = x
				}
			}
		}
	}
	return
}

// extractRegion copies the pixels of a rectangle of the shadow frame.
func (d *Dev) extractRegion(minCol, maxCol, minRow, maxRow int) []byte {
	stride := d.rect.Dx() * 2
	rowBytes := (maxCol - minCol + 1) * 2

	out := make([]byte, 0, rowBytes*(maxRow-minRow+1))
	for y := minRow; y <= maxRow; y++ {
		start := y*stride + minCol*2
		out = append(out, d.next.Pix[start:start+rowBytes]...)
	}
	return out
}

// SetBacklight sets the backlight level in percent (0-100).
//
// The level is applied as PWM duty cycle at 1kHz. If the pin cannot do PWM,
// any level above 0 turns the backlight fully on.
func (d *Dev) SetBacklight(level int) error {
	if d.halted {
		return errors.New("st7789: halted")
	}
	if level < 0 || level > 100 {
		return errors.New("st7789: backlight level must be between 0 and 100")
	}
	if d.bl == nil {
		return nil
	}
	duty := gpio.DutyMax * gpio.Duty(level) / 100
	if err := d.bl.PWM(duty, physic.KiloHertz); err == nil {
		return nil
	}
	l := gpio.Low
	if level > 0 {
		l = gpio.High
	}
	if err := d.bl.Out(l); err != nil {
		return fmt.Errorf("st7789: backlight: %w", err)
	}
	return nil
}

// Invert inverts the display colors (black becomes white and vice versa).
func (d *Dev) Invert(invert bool) error {
	if d.halted {
		return errors.New("st7789: halted")
	}
	// The panel runs with controller inversion on for normal colors.
	mode := byte(0x21)
	if invert {
		mode = 0x20
	}
	return d.sendCommand(mode)
}

// Halt turns the backlight and the display off.
// After calling Halt, the display will not respond to further commands
// until Init is called again.
func (d *Dev) Halt() error {
	d.halted = true
	if d.bl != nil {
		if err := d.bl.Out(gpio.Low); err != nil {
			return fmt.Errorf("st7789: backlight: %w", err)
		}
	}
	return d.sendCommand(0x28) // Display OFF
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("st7789.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}
