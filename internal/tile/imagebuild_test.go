package tile

import (
	"image"
	"testing"

	"github.com/qmsk/pngtile/internal/cache"
)

func grayHeader(width, height uint32) cache.PngHeader {
	return cache.PngHeader{
		Width: width, Height: height, ColorType: cache.ColorTypeGrayscale,
		BitDepth: 8, ColBytes: 1, RowBytes: width,
	}
}

func TestPackRectDirect(t *testing.T) {
	header := grayHeader(8, 8)
	data := make([]byte, 8*8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			data[y*8+x] = byte(y*8 + x)
		}
	}

	p := Params{Width: 4, Height: 4, X: 2, Y: 2, Zoom: 0}
	out := packRect(header, data, p)

	for ry := 0; ry < 4; ry++ {
		for rx := 0; rx < 4; rx++ {
			want := data[(2+ry)*8+(2+rx)]
			got := out[ry*4+rx]
			if got != want {
				t.Fatalf("pixel (%d,%d) = %d, want %d", rx, ry, got, want)
			}
		}
	}
}

func TestPackRectClipped(t *testing.T) {
	header := grayHeader(4, 4)
	data := make([]byte, 16)
	for i := range data {
		data[i] = byte(i + 1)
	}

	// Requested rect runs off the right/bottom edge of a 4x4 source.
	p := Params{Width: 4, Height: 4, X: 2, Y: 2, Zoom: 0}
	out := packRect(header, data, p)

	// In-bounds quadrant (top-left 2x2 of the output) mirrors source (2,2)-(3,3).
	if out[0*4+0] != data[2*4+2] || out[0*4+1] != data[2*4+3] {
		t.Fatalf("in-bounds row 0 mismatch: got %v", out[0:4])
	}
	// Out-of-bounds columns/rows are filled with the zero pattern.
	if out[0*4+2] != 0 || out[0*4+3] != 0 {
		t.Fatalf("expected zero fill past right edge, got %v", out[0:4])
	}
	if out[2*4+0] != 0 {
		t.Fatalf("expected zero fill past bottom edge, got %v", out[2*4:2*4+4])
	}
}

func TestToImagePaletteRoundTrip(t *testing.T) {
	header := cache.PngHeader{
		Width: 2, Height: 2, ColorType: cache.ColorTypePalette, BitDepth: 8,
		ColBytes: 1, RowBytes: 2, NumPalette: 2,
	}
	header.Palette[0] = cache.PaletteEntry{R: 10, G: 20, B: 30}
	header.Palette[1] = cache.PaletteEntry{R: 40, G: 50, B: 60}

	buf := []byte{0, 1, 1, 0}
	img, err := toImage(header, buf, 2, 2)
	if err != nil {
		t.Fatalf("toImage: %v", err)
	}
	pal, ok := img.(*image.Paletted)
	if !ok {
		t.Fatalf("toImage type = %T, want *image.Paletted", img)
	}
	if len(pal.Palette) != 2 {
		t.Fatalf("palette length = %d, want 2", len(pal.Palette))
	}
}

func TestToImageUnsupportedCombo(t *testing.T) {
	header := cache.PngHeader{ColorType: 99, BitDepth: 1}
	if _, err := toImage(header, nil, 1, 1); err == nil {
		t.Fatalf("expected error for unsupported color_type/bit_depth")
	}
}
