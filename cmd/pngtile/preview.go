package main

import (
	"bytes"
	"fmt"
	"image/png"
	"io"

	"github.com/gen2brain/webp"
)

// writeOutput writes a rendered tile's PNG bytes to w, optionally
// re-encoding to WebP for the CLI's --format preview flag (SPEC_FULL.md
// §12: a debug/preview convenience outside the cache format's PNG-only
// contract, the same relationship the teacher keeps between its COG/PNG
// source pipeline and its optional WebP output tile format).
func writeOutput(pngBytes []byte, format string, w io.Writer) error {
	switch format {
	case "", "png":
		_, err := w.Write(pngBytes)
		return err

	case "webp":
		img, err := png.Decode(bytes.NewReader(pngBytes))
		if err != nil {
			return fmt.Errorf("decoding rendered tile: %w", err)
		}
		return webp.Encode(w, img, webp.Options{Quality: 90})

	default:
		return fmt.Errorf("unsupported -format %q", format)
	}
}
