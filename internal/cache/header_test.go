package cache

import (
	"bytes"
	"testing"
)

func TestHeaderMarshalRoundTrip(t *testing.T) {
	h := &CacheHeader{
		Version: Version,
		Format:  FormatPNG,
		PngHeader: PngHeader{
			Width:      64,
			Height:     32,
			BitDepth:   8,
			ColorType:  ColorTypePalette,
			NumPalette: 2,
			RowBytes:   64,
			ColBytes:   1,
		},
		Params: ImageParams{
			Flags:           ParamsBackgroundSet,
			BackgroundPixel: [4]byte{1, 2, 3, 4},
		},
		DataSize: 64 * 32,
	}
	h.PngHeader.Palette[0] = PaletteEntry{R: 0, G: 0, B: 0}
	h.PngHeader.Palette[1] = PaletteEntry{R: 255, G: 255, B: 255}

	buf := h.Marshal()
	if len(buf) != HeaderSize {
		t.Fatalf("Marshal: got %d bytes, want %d", len(buf), HeaderSize)
	}
	if !HasMagic(buf) {
		t.Fatalf("Marshal: missing magic")
	}

	got, err := UnmarshalHeader(buf)
	if err != nil {
		t.Fatalf("UnmarshalHeader: %v", err)
	}

	if *got != *h {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", *got, *h)
	}
}

func TestUnmarshalHeaderShortBuffer(t *testing.T) {
	if _, err := UnmarshalHeader(make([]byte, HeaderSize-1)); err == nil {
		t.Fatalf("expected error for short buffer")
	}
}

func TestHasMagic(t *testing.T) {
	h := &CacheHeader{Version: Version, Format: FormatPNG}
	buf := h.Marshal()
	if !HasMagic(buf) {
		t.Fatalf("expected magic present")
	}
	if HasMagic(bytes.Repeat([]byte{0}, HeaderSize)) {
		t.Fatalf("expected no magic in zeroed buffer")
	}
	if HasMagic(nil) {
		t.Fatalf("expected no magic in empty buffer")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		h       CacheHeader
		wantErr bool
	}{
		{
			name: "ok grayscale",
			h: CacheHeader{
				PngHeader: PngHeader{Width: 4, Height: 2, ColorType: ColorTypeGrayscale, BitDepth: 8, ColBytes: 1, RowBytes: 4},
				DataSize:  8,
			},
		},
		{
			name: "data size mismatch",
			h: CacheHeader{
				PngHeader: PngHeader{Width: 4, Height: 2, ColorType: ColorTypeGrayscale, BitDepth: 8, ColBytes: 1, RowBytes: 4},
				DataSize:  999,
			},
			wantErr: true,
		},
		{
			name: "col_bytes mismatch",
			h: CacheHeader{
				PngHeader: PngHeader{Width: 4, Height: 2, ColorType: ColorTypeRGB, BitDepth: 8, ColBytes: 1, RowBytes: 4},
				DataSize:  8,
			},
			wantErr: true,
		},
		{
			name: "row_bytes too small",
			h: CacheHeader{
				PngHeader: PngHeader{Width: 8, Height: 2, ColorType: ColorTypeGrayscale, BitDepth: 8, ColBytes: 1, RowBytes: 4},
				DataSize:  8,
			},
			wantErr: true,
		},
		{
			name: "palette count without palette color type",
			h: CacheHeader{
				PngHeader: PngHeader{Width: 4, Height: 2, ColorType: ColorTypeGrayscale, BitDepth: 8, ColBytes: 1, RowBytes: 4, NumPalette: 1},
				DataSize:  8,
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.h.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
