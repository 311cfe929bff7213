package tile

import (
	"image"
	"image/color"

	"github.com/qmsk/pngtile/internal/cache"
)

// buildZoomed implements §4.4 "Zoom > 0": an 8-bit RGB output of
// dimensions (p.Width, p.Height), regardless of source color type
// (preflight already restricted this path to 8-bit palette sources —
// §15's Open Question decision). Each output pixel summarizes a
// factor×factor source region via successive pairwise averaging:
// out = (out + sample) / 2, a moving average biased toward the most
// recent sample rather than an arithmetic mean, matching
// src/lib/png.c's ADD_AVG macro. The first in-bounds sample of each
// output pixel is taken as-is and later samples are averaged into it,
// so the result always lies within the range of the sampled palette
// colors; an output pixel with no in-bounds samples stays zero. Source
// pixels are iterated in clamped fashion: samples past the source
// image's edges are simply skipped, leaving whatever was last
// accumulated (§8 "Boundary cases").
func buildZoomed(header cache.PngHeader, data []byte, p Params) image.Image {
	factor := int(p.factor())
	rowBytes := int(header.RowBytes)
	imgW, imgH := int(header.Width), int(header.Height)

	out := image.NewRGBA(image.Rect(0, 0, int(p.Width), int(p.Height)))

	for oy := 0; oy < int(p.Height); oy++ {
		for ox := 0; ox < int(p.Width); ox++ {
			var r, g, b uint32
			sampled := false

			baseY := int(p.Y) + oy*factor
			baseX := int(p.X) + ox*factor

			for sy := 0; sy < factor; sy++ {
				srcY := baseY + sy
				if srcY >= imgH {
					continue
				}
				for sx := 0; sx < factor; sx++ {
					srcX := baseX + sx
					if srcX >= imgW {
						continue
					}

					idx := data[srcY*rowBytes+srcX]
					entry := header.Palette[idx]
					if !sampled {
						r, g, b = uint32(entry.R), uint32(entry.G), uint32(entry.B)
						sampled = true
						continue
					}
					r = (r + uint32(entry.R)) / 2
					g = (g + uint32(entry.G)) / 2
					b = (b + uint32(entry.B)) / 2
				}
			}

			out.SetRGBA(ox, oy, color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xff})
		}
	}

	return out
}
