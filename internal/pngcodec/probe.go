// Package pngcodec is the PNG codec adapter (§4.1): it wraps the
// standard library's image/png the way the teacher's internal/encode
// package wraps image/png and image/jpeg for its own tile formats
// (internal/encode/png.go, internal/encode/decode.go). Go's image/png
// has no libpng-style setjmp/longjmp error channel, so the "non-local
// exit translation" design note (§9) is modeled with a boundary
// recover() that turns any unexpected panic from the decoder into a
// typed PngInternal error, matching the spec's "no caller of the
// adapter observes the underlying mechanism" requirement.
package pngcodec

import (
	"bytes"
	"io"
	"os"

	"github.com/qmsk/pngtile/internal/pterr"
)

// ProbeResult classifies a path's leading bytes (§4.1 Probe).
type ProbeResult int

const (
	ProbePNG ProbeResult = iota
	ProbeNotPNG
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Probe opens path, reads its 8-byte signature, and classifies it.
func Probe(path string) (ProbeResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, pterr.New(pterr.ErrImgOpen, "pngcodec.Probe", err)
	}
	defer f.Close()

	var sig [8]byte
	if _, err := io.ReadFull(f, sig[:]); err != nil {
		return ProbeNotPNG, nil
	}

	if !bytes.Equal(sig[:], pngSignature) {
		return ProbeNotPNG, nil
	}
	return ProbePNG, nil
}
