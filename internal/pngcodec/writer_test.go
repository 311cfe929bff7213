package pngcodec

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestEncodeImageRoundTrip(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 2))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 10)
	}

	var buf bytes.Buffer
	if err := EncodeImage(&buf, img); err != nil {
		t.Fatalf("EncodeImage: %v", err)
	}

	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode of encoded output: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Fatalf("decoded bounds = %v, want %v", decoded.Bounds(), img.Bounds())
	}
	gray, ok := decoded.(*image.Gray)
	if !ok {
		t.Fatalf("decoded image type = %T, want *image.Gray", decoded)
	}
	for i := range gray.Pix {
		if gray.Pix[i] != img.Pix[i] {
			t.Fatalf("pixel %d = %d, want %d", i, gray.Pix[i], img.Pix[i])
		}
	}
}

func TestEncodeImagePaletted(t *testing.T) {
	pal := color.Palette{color.RGBA{0, 0, 0, 255}, color.RGBA{255, 0, 0, 255}}
	img := image.NewPaletted(image.Rect(0, 0, 2, 2), pal)
	img.SetColorIndex(0, 0, 0)
	img.SetColorIndex(1, 0, 1)
	img.SetColorIndex(0, 1, 1)
	img.SetColorIndex(1, 1, 0)

	var buf bytes.Buffer
	if err := EncodeImage(&buf, img); err != nil {
		t.Fatalf("EncodeImage: %v", err)
	}

	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode of encoded output: %v", err)
	}
	if _, ok := decoded.(*image.Paletted); !ok {
		t.Fatalf("decoded image type = %T, want *image.Paletted", decoded)
	}
}
