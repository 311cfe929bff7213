package pngcodec

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/qmsk/pngtile/internal/pterr"
)

// EncodeImage writes img as a PNG to w, the codec adapter's encode-side
// boundary (§4.1, mirroring the teacher's encode.PNGEncoder). Like
// decodeSafe, it recovers from any stdlib panic and translates it to a
// typed PngInternal error so internal/tile never depends on image/png
// directly.
func EncodeImage(w io.Writer, img image.Image) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = pterr.New(pterr.ErrPngInternal, "pngcodec.EncodeImage", fmt.Errorf("panic: %v", p))
		}
	}()

	enc := &png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, img); err != nil {
		return pterr.New(pterr.ErrPngInternal, "pngcodec.EncodeImage", err)
	}
	return nil
}
