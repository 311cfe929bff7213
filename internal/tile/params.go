// Package tile implements the tile renderer (§4.4): given a mapped
// cache header/data region and a requested rectangle, it produces a
// standalone PNG via internal/pngcodec, handling edge clipping and
// palette-aware zoom down-sampling. It plays the role the teacher's
// internal/tile package plays for geotiff2pmtiles — the component that
// turns a mapped source plus a requested region into an encoded output
// — generalized from COG/TIFF tiles to cache-file tiles.
package tile

import (
	"github.com/qmsk/pngtile/internal/cache"
	"github.com/qmsk/pngtile/internal/pterr"
)

// Params is the renderer's input rectangle (§3 TileParams): the output
// dimensions, the top-left source coordinate, and a non-negative zoom
// (downsample) factor expressed as a power of two exponent.
type Params struct {
	Width, Height uint32
	X, Y          uint32
	Zoom          int32
}

// factor returns 2^Zoom.
func (p Params) factor() uint32 {
	return uint32(1) << uint(p.Zoom)
}

// preflight validates p against header, per §4.4 "Preflight". The zoom
// > 0 / non-palette restriction is checked here rather than at cache
// update time, per the Open Question decision recorded in DESIGN.md:
// zoom capability is a property of the render request, not the cache.
func preflight(p Params, imgWidth, imgHeight uint32, colorType, bitDepth uint8) error {
	if p.X >= imgWidth || p.Y >= imgHeight {
		return pterr.New(pterr.ErrTileClip, "tile.Render", nil)
	}
	if p.Width == 0 || p.Height == 0 {
		return pterr.New(pterr.ErrTileDim, "tile.Render", nil)
	}
	if p.Zoom < 0 {
		return pterr.New(pterr.ErrTileZoom, "tile.Render", nil)
	}
	if p.Zoom > 0 && (colorType != cache.ColorTypePalette || bitDepth != 8) {
		return pterr.New(pterr.ErrTileZoom, "tile.Render", nil)
	}
	return nil
}
