package tile

import (
	"io"

	"github.com/qmsk/pngtile/internal/cache"
	"github.com/qmsk/pngtile/internal/pngcodec"
)

// Renderer binds a mapped, validated cache header and data region to
// the tile-render operation (§4.4). It borrows data for the lifetime of
// a single Render call; per §9's "per-render codec instances" note, a
// fresh Renderer (and a fresh internal/pngcodec encode pass) is the
// expected usage per call — nothing here is safe to share mutable state
// across concurrent renders beyond the read-only header/data.
type Renderer struct {
	Header cache.PngHeader
	Data   []byte
	Params cache.ImageParams
}

// NewRenderer binds a Renderer to an open cache's header and data
// region. Params is currently unused by the render path itself (the
// fill pattern is hard-coded zero per §15) but is threaded through so a
// future configurable fill can read it without changing call sites.
func NewRenderer(header cache.PngHeader, data []byte, params cache.ImageParams) *Renderer {
	return &Renderer{Header: header, Data: data, Params: params}
}

// RenderFile runs §4.4 against p and writes the resulting PNG to w, the
// "file stream" OutputSink variant: w is borrowed, flushed implicitly
// by png.Encoder.Encode returning, and never closed by this call.
func (r *Renderer) RenderFile(p Params, w io.Writer) error {
	return r.render(p, w)
}

// RenderMem runs §4.4 against p and returns the encoded PNG bytes, the
// "memory buffer" OutputSink variant (§3, §4.4).
func (r *Renderer) RenderMem(p Params) ([]byte, error) {
	sink := NewMemSink()
	if err := r.render(p, sink); err != nil {
		return nil, err
	}
	return sink.Bytes(), nil
}

func (r *Renderer) render(p Params, w io.Writer) error {
	if err := preflight(p, r.Header.Width, r.Header.Height, r.Header.ColorType, r.Header.BitDepth); err != nil {
		return err
	}

	if p.Zoom == 0 {
		buf := packRect(r.Header, r.Data, p)
		img, err := toImage(r.Header, buf, int(p.Width), int(p.Height))
		if err != nil {
			return err
		}
		return pngcodec.EncodeImage(w, img)
	}

	img := buildZoomed(r.Header, r.Data, p)
	return pngcodec.EncodeImage(w, img)
}
