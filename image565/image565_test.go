package image565

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"tinygo.org/x/drivers"
)

var _ draw.Image = (*Image)(nil)
var _ drivers.Displayer = (*Image)(nil)

func TestRGB565RGBA(t *testing.T) {
	tests := []struct {
		name                string
		c                   RGB565
		wantR, wantG, wantB uint32
	}{
		{"black", Black, 0, 0, 0},
		{"white", White, 0xFFFF, 0xFFFF, 0xFFFF},
		{"red", Red, 0xFFFF, 0, 0},
		{"green", Green, 0, 0xFFFF, 0},
		{"blue", Blue, 0, 0, 0xFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, a := tt.c.RGBA()
			if r != tt.wantR || g != tt.wantG || b != tt.wantB || a != 0xFFFF {
				t.Errorf("RGBA() = (%x, %x, %x, %x), want (%x, %x, %x, ffff)",
					r, g, b, a, tt.wantR, tt.wantG, tt.wantB)
			}
		})
	}
}

func TestRGB565ModelConvert(t *testing.T) {
	tests := []struct {
		name  string
		input color.Color
		want  uint16
	}{
		{"passthrough", RGB565{V: 0x1234}, 0x1234},
		{"black", color.Black, 0x0000},
		{"white", color.White, 0xFFFF},
		{"red", color.RGBA{0xFF, 0, 0, 0xFF}, 0xF800},
		{"green", color.RGBA{0, 0xFF, 0, 0xFF}, 0x07E0},
		{"blue", color.RGBA{0, 0, 0xFF, 0xFF}, 0x001F},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RGB565Model.Convert(tt.input).(RGB565)
			if got.V != tt.want {
				t.Errorf("RGB565Model.Convert(%v).V = 0x%04X, want 0x%04X", tt.input, got.V, tt.want)
			}
		})
	}
}

func TestFromRGBA(t *testing.T) {
	if got := FromRGBA(color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}); got != White {
		t.Errorf("FromRGBA(white) = 0x%04X, want 0xFFFF", got.V)
	}
	if got := FromRGBA(color.RGBA{0x80, 0x84, 0x80, 0xFF}); got != Gray {
		t.Errorf("FromRGBA(gray) = 0x%04X, want 0x%04X", got.V, Gray.V)
	}
}

func TestNewImage(t *testing.T) {
	tests := []struct {
		name       string
		rect       image.Rectangle
		wantStride int
		wantPixLen int
	}{
		{"240x135", image.Rect(0, 0, 240, 135), 480, 64800},
		{"4x2", image.Rect(0, 0, 4, 2), 8, 16},
		{"offset rect", image.Rect(10, 20, 13, 22), 6, 12},
		{"empty", image.Rect(0, 0, 0, 0), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := NewImage(tt.rect)
			if img.Rect != tt.rect {
				t.Errorf("Rect = %v, want %v", img.Rect, tt.rect)
			}
			if img.Stride != tt.wantStride {
				t.Errorf("Stride = %d, want %d", img.Stride, tt.wantStride)
			}
			if len(img.Pix) != tt.wantPixLen {
				t.Errorf("len(Pix) = %d, want %d", len(img.Pix), tt.wantPixLen)
			}
		})
	}
}

func TestImageByteOrder(t *testing.T) {
	img := NewImage(image.Rect(0, 0, 2, 1))
	img.SetRGB565(0, 0, Red)
	img.SetRGB565(1, 0, Green)

	want := []byte{0xF8, 0x00, 0x07, 0xE0}
	for i, b := range want {
		if img.Pix[i] != b {
			t.Errorf("Pix[%d] = 0x%02X, want 0x%02X", i, img.Pix[i], b)
		}
	}
}

func TestImageSetGet(t *testing.T) {
	img := NewImage(image.Rect(0, 0, 3, 2))
	img.Set(2, 1, color.White)
	if got := img.RGB565At(2, 1); got != White {
		t.Errorf("RGB565At(2, 1) = 0x%04X, want 0xFFFF", got.V)
	}
	c, ok := img.At(2, 1).(RGB565)
	if !ok || c != White {
		t.Errorf("At(2, 1) = %v, want White", img.At(2, 1))
	}
	if img.ColorModel() != RGB565Model {
		t.Error("ColorModel() did not return RGB565Model")
	}
}

func TestImageOutOfBounds(t *testing.T) {
	img := NewImage(image.Rect(0, 0, 4, 4))

	img.SetRGB565(-1, 0, White)
	img.SetRGB565(0, -1, White)
	img.SetRGB565(4, 0, White)

	for i, b := range img.Pix {
		if b != 0 {
			t.Fatalf("Pix[%d] = 0x%02X after out-of-bounds writes, want 0", i, b)
		}
	}
	if got := img.RGB565At(4, 4); got != (RGB565{}) {
		t.Errorf("RGB565At(4, 4) = 0x%04X, want 0", got.V)
	}
}

func TestImageFill(t *testing.T) {
	img := NewImage(image.Rect(0, 0, 4, 3))
	img.Fill(image.Rect(1, 1, 10, 10), Blue)

	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			want := Black
			if x >= 1 && y >= 1 {
				want = Blue
			}
			if got := img.RGB565At(x, y); got != want {
				t.Errorf("RGB565At(%d, %d) = 0x%04X, want 0x%04X", x, y, got.V, want.V)
			}
		}
	}

	// Fully clipped fill is a no-op.
	img.Fill(image.Rect(5, 5, 6, 6), White)
	if got := img.RGB565At(3, 2); got != Blue {
		t.Errorf("RGB565At(3, 2) = 0x%04X after clipped fill, want Blue", got.V)
	}
}

func TestImageDisplayer(t *testing.T) {
	img := NewImage(image.Rect(100, 50, 104, 52))

	w, h := img.Size()
	if w != 4 || h != 2 {
		t.Errorf("Size() = (%d, %d), want (4, 2)", w, h)
	}

	// SetPixel coordinates are relative to the image origin.
	img.SetPixel(1, 1, color.RGBA{0xFF, 0, 0, 0xFF})
	if got := img.RGB565At(101, 51); got != Red {
		t.Errorf("RGB565At(101, 51) = 0x%04X, want Red", got.V)
	}
	if err := img.Display(); err != nil {
		t.Errorf("Display() = %v, want nil", err)
	}
}
