package tile

import (
	"fmt"
	"image"
	"image/color"

	"github.com/qmsk/pngtile/internal/cache"
	"github.com/qmsk/pngtile/internal/pterr"
)

// fillPattern is the clipped-tile fill value (§4.4 "Clipped", §9 open
// question "the clipped-fill pattern is hard-coded to zero"). Routed
// through this single function, per the Open Question decision
// recorded in DESIGN.md, rather than inlined at each call site, so a
// future version can source it from CacheHeader.Params without
// touching callers.
func fillPattern(colBytes int) []byte {
	return make([]byte, colBytes)
}

// packRect builds a params.Width × params.Height buffer, colBytes per
// pixel, implementing §4.4's Direct and Clipped sub-paths for zoom=0.
func packRect(header cache.PngHeader, data []byte, p Params) []byte {
	colBytes := int(header.ColBytes)
	rowBytes := int(header.RowBytes)
	imgW, imgH := header.Width, header.Height

	width, height := int(p.Width), int(p.Height)
	out := make([]byte, width*height*colBytes)

	fully := p.X+p.Width <= imgW && p.Y+p.Height <= imgH
	if fully {
		for ry := 0; ry < height; ry++ {
			srcOff := int(p.Y+uint32(ry))*rowBytes + int(p.X)*colBytes
			dstOff := ry * width * colBytes
			copy(out[dstOff:dstOff+width*colBytes], data[srcOff:srcOff+width*colBytes])
		}
		return out
	}

	clipX := p.X + p.Width
	if clipX > imgW {
		clipX = imgW
	}
	clipY := p.Y + p.Height
	if clipY > imgH {
		clipY = imgH
	}
	realCols := 0
	if clipX > p.X {
		realCols = int(clipX - p.X)
	}
	fill := fillPattern(colBytes)

	for ry := 0; ry < height; ry++ {
		dstRow := out[ry*width*colBytes : (ry+1)*width*colBytes]
		srcY := p.Y + uint32(ry)
		if srcY >= clipY {
			for x := 0; x < width; x++ {
				copy(dstRow[x*colBytes:(x+1)*colBytes], fill)
			}
			continue
		}

		srcOff := int(srcY)*rowBytes + int(p.X)*colBytes
		copy(dstRow[:realCols*colBytes], data[srcOff:srcOff+realCols*colBytes])
		for x := realCols; x < width; x++ {
			copy(dstRow[x*colBytes:(x+1)*colBytes], fill)
		}
	}

	return out
}

// toImage wraps a packed width×height×colBytes buffer as the stdlib
// image.Image type matching header's color_type/bit_depth, so
// internal/pngcodec.EncodeImage re-emits the same color_type/bit_depth
// the source declared (§4.4 "identical bit_depth, color_type..."). The
// one exception is palette output: the stdlib encoder chooses a 1, 2, 4
// or 8-bit depth from the palette's length, so a palette of 16 or fewer
// entries is written below the header's bit_depth of 8.
func toImage(header cache.PngHeader, buf []byte, width, height int) (image.Image, error) {
	rect := image.Rect(0, 0, width, height)

	switch {
	case header.ColorType == cache.ColorTypePalette && header.BitDepth == 8:
		return &image.Paletted{
			Pix:     buf,
			Stride:  width,
			Rect:    rect,
			Palette: paletteFromHeader(header),
		}, nil

	case header.ColorType == cache.ColorTypeGrayscale && header.BitDepth == 8:
		return &image.Gray{Pix: buf, Stride: width, Rect: rect}, nil

	case header.ColorType == cache.ColorTypeGrayscale && header.BitDepth == 16:
		return &image.Gray16{Pix: buf, Stride: width * 2, Rect: rect}, nil

	case header.ColorType == cache.ColorTypeRGB && header.BitDepth == 8:
		// No stdlib type holds packed 3-byte/pixel RGB without alpha;
		// expand to *image.RGBA with alpha forced opaque so the encoder's
		// own Opaque() check selects the alpha-free color type.
		rgba := make([]byte, width*height*4)
		for i := 0; i < width*height; i++ {
			rgba[i*4+0] = buf[i*3+0]
			rgba[i*4+1] = buf[i*3+1]
			rgba[i*4+2] = buf[i*3+2]
			rgba[i*4+3] = 0xff
		}
		return &image.RGBA{Pix: rgba, Stride: width * 4, Rect: rect}, nil

	case header.ColorType == cache.ColorTypeRGBA && header.BitDepth == 8:
		return &image.NRGBA{Pix: buf, Stride: width * 4, Rect: rect}, nil

	case header.ColorType == cache.ColorTypeRGBA && header.BitDepth == 16:
		return &image.NRGBA64{Pix: buf, Stride: width * 8, Rect: rect}, nil

	default:
		return nil, pterr.New(pterr.ErrImgFormat, "tile.toImage", fmt.Errorf("unsupported color_type=%d bit_depth=%d", header.ColorType, header.BitDepth))
	}
}

func paletteFromHeader(header cache.PngHeader) color.Palette {
	pal := make(color.Palette, header.NumPalette)
	for i := range pal {
		e := header.Palette[i]
		pal[i] = color.RGBA{R: e.R, G: e.G, B: e.B, A: 0xff}
	}
	return pal
}
