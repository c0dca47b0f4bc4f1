// Package image565 provides the 16-bit RGB565 image format used by small TFT
// panels such as the ST7789.
//
// Each pixel takes two bytes, stored big-endian (high byte first), which is the
// order the panel expects on the wire. A full frame can therefore be sent to the
// controller without conversion.
//
// Memory layout example for a 2-pixel row:
//
//	Pixels: 0       1
//	Values: 0xF800  0x07E0   (red, green)
//	Bytes:  F8 00   07 E0
//
// This package provides:
//
// - RGB565: A color type holding one packed 5-6-5 pixel
// - RGB565Model: A color model for converting standard Go colors to RGB565
// - Image: A draw.Image implementation that also satisfies drivers.Displayer,
// so tinyfont can render straight into it
//
// Example usage:
//
//	img := image565.NewImage(image.Rect(0, 0, 240, 135))
//	img.Fill(img.Bounds(), image565.Black)
//	img.SetRGB565(10, 20, image565.White)
//	c := img.RGB565At(10, 20) // c.V == 0xFFFF
package image565
