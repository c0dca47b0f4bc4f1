// Package lcdconsole renders a text console onto the framebuffer of a small
// TFT display.
//
// A Console turns a stream of bytes into glyphs on a fixed character grid.
// It keeps the cursor, the active colors and an RGB565 framebuffer sized to
// the panel; Flush hands the framebuffer to the panel.
//
// # Character Handling
//
//	'\r'        cursor to column 0
//	'\n', '\v'  cursor one row down
//	'\t'        cursor 8 columns right
//	0x20-0x7E   glyph drawn, cursor one column right
//	others      drawn as a space, cursor one column right
//
// Past the last column the cursor moves to the start of the next row. Past
// the last row it wraps to the top-left cell; the screen is not cleared, new
// text overwrites the old. A tab is followed by a single wrap check, so on a
// grid narrower than 8 columns it still moves down only one row.
//
// # Lifecycle
//
// A Console starts uninitialized. Init allocates the framebuffer, brings the
// panel up (backlight off, blank frame, backlight on) and derives the grid
// from the panel bounds and the font cell size. Init is idempotent and, on
// failure, leaves the Console untouched so it can be retried.
//
// Before a successful Init every other method is a silent no-op: a
// diagnostic console must never take the firmware down with it.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/spi/spireg"
//		"periph.io/x/host/v3"
//
//		"github.com/flavioheleno/lcdconsole"
//		"github.com/flavioheleno/lcdconsole/glyph"
//		"github.com/flavioheleno/lcdconsole/image565"
//		"github.com/flavioheleno/lcdconsole/st7789"
//	)
//
//	func main() {
//		host.Init()
//		bus, _ := spireg.Open("")
//		panel, _ := st7789.NewSPI(bus, gpioreg.ByName("GPIO25"), &st7789.Opts{
//			W: 240, H: 135, XOffset: 40, YOffset: 53,
//			BL: gpioreg.ByName("GPIO18"),
//		})
//
//		con := lcdconsole.New(panel, glyph.Default(), nil)
//		if err := con.Init(); err != nil {
//			return
//		}
//		con.SetColors(image565.White, image565.Black)
//		con.PutString("debugprobe\r\n")
//		con.Flush()
//	}
//
// # Concurrency
//
// A Console is not safe for concurrent use. Callers sharing one across
// goroutines must serialise every call, Init and Flush included.
//
// # Running Without Hardware
//
// Package termdisplay implements Panel on top of a tcell terminal screen, so
// the same console can be driven from a desktop.
package lcdconsole
