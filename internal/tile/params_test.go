package tile

import (
	"testing"

	"github.com/qmsk/pngtile/internal/cache"
	"github.com/qmsk/pngtile/internal/pterr"
)

func TestPreflight(t *testing.T) {
	cases := []struct {
		name      string
		p         Params
		imgW      uint32
		imgH      uint32
		colorType uint8
		bitDepth  uint8
		wantKind  pterr.ErrKind
	}{
		{
			name: "ok zoom 0", p: Params{Width: 8, Height: 8, X: 0, Y: 0, Zoom: 0},
			imgW: 64, imgH: 64, colorType: cache.ColorTypeRGB, bitDepth: 8,
			wantKind: pterr.ErrNone,
		},
		{
			name: "ok zoom > 0 palette", p: Params{Width: 8, Height: 8, X: 0, Y: 0, Zoom: 1},
			imgW: 64, imgH: 64, colorType: cache.ColorTypePalette, bitDepth: 8,
			wantKind: pterr.ErrNone,
		},
		{
			name: "clip x out of bounds", p: Params{Width: 8, Height: 8, X: 100, Y: 0, Zoom: 0},
			imgW: 64, imgH: 64, colorType: cache.ColorTypeRGB, bitDepth: 8,
			wantKind: pterr.ErrTileClip,
		},
		{
			name: "clip y out of bounds", p: Params{Width: 8, Height: 8, X: 0, Y: 100, Zoom: 0},
			imgW: 64, imgH: 64, colorType: cache.ColorTypeRGB, bitDepth: 8,
			wantKind: pterr.ErrTileClip,
		},
		{
			name: "zero width", p: Params{Width: 0, Height: 8, X: 0, Y: 0, Zoom: 0},
			imgW: 64, imgH: 64, colorType: cache.ColorTypeRGB, bitDepth: 8,
			wantKind: pterr.ErrTileDim,
		},
		{
			name: "zero height", p: Params{Width: 8, Height: 0, X: 0, Y: 0, Zoom: 0},
			imgW: 64, imgH: 64, colorType: cache.ColorTypeRGB, bitDepth: 8,
			wantKind: pterr.ErrTileDim,
		},
		{
			name: "negative zoom", p: Params{Width: 8, Height: 8, X: 0, Y: 0, Zoom: -1},
			imgW: 64, imgH: 64, colorType: cache.ColorTypeRGB, bitDepth: 8,
			wantKind: pterr.ErrTileZoom,
		},
		{
			name: "zoom on non-palette", p: Params{Width: 8, Height: 8, X: 0, Y: 0, Zoom: 1},
			imgW: 64, imgH: 64, colorType: cache.ColorTypeRGB, bitDepth: 8,
			wantKind: pterr.ErrTileZoom,
		},
		{
			name: "zoom on 16-bit palette", p: Params{Width: 8, Height: 8, X: 0, Y: 0, Zoom: 1},
			imgW: 64, imgH: 64, colorType: cache.ColorTypePalette, bitDepth: 16,
			wantKind: pterr.ErrTileZoom,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := preflight(tc.p, tc.imgW, tc.imgH, tc.colorType, tc.bitDepth)
			if tc.wantKind == pterr.ErrNone {
				if err != nil {
					t.Fatalf("preflight() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("preflight() = nil, want error kind %v", tc.wantKind)
			}
			if got := pterr.KindOf(err); got != tc.wantKind {
				t.Fatalf("preflight() kind = %v, want %v", got, tc.wantKind)
			}
		})
	}
}

func TestParamsFactor(t *testing.T) {
	cases := []struct {
		zoom int32
		want uint32
	}{{0, 1}, {1, 2}, {2, 4}, {3, 8}}
	for _, tc := range cases {
		p := Params{Zoom: tc.zoom}
		if got := p.factor(); got != tc.want {
			t.Fatalf("factor(zoom=%d) = %d, want %d", tc.zoom, got, tc.want)
		}
	}
}
