// Package cache implements the on-disk cache file format (§3, §6) and
// the cache store lifecycle (§4.2, §4.3): sniffing, freshness checks,
// the atomic .tmp-then-rename update protocol, and the read-only mmap
// serving path. It is the on-disk counterpart of src/lib/cache.c /
// src/lib/cache.h in the reference implementation, laid out the way
// internal/pmtiles/header.go in the teacher repo serializes its own
// fixed-size binary header: a Header struct with explicit Serialize /
// Deserialize methods over a byte slice, rather than unsafe pointer casts.
package cache

import (
	"encoding/binary"
	"fmt"
)

// On-disk layout constants (§6). The header page is always exactly
// HeaderSize bytes; the pixel-data region follows immediately.
const (
	HeaderSize = 4096

	offMagic       = 0
	offVersion     = 6
	offFormat      = 8
	offWidth       = 12
	offHeight      = 16
	offBitDepth    = 20
	offColorType   = 21
	offNumPalette  = 22
	offRowBytes    = 24
	offColBytes    = 28
	offPalette     = 32
	paletteEntries = 256
	paletteBytes   = paletteEntries * 3
	offParamsFlags = offPalette + paletteBytes // 800
	offParamsBG    = offParamsFlags + 1        // 801
	offDataSize    = offParamsBG + 4           // 805

	// Version is the current on-disk format version. A mismatch marks
	// the cache incompatible (§6: "A mismatch in version or magic
	// surfaces as CacheIncompat and triggers re-update").
	Version = 5
)

// Magic is the literal 6-byte signature at the start of every cache file.
var Magic = [6]byte{'P', 'N', 'G', 'T', 'I', 'L'}

// Format tags the payload stored after the header. Only FormatPNG is
// ever written by this implementation; FormatCache is reserved as a
// sentinel meaning "the source path IS a cache file". Nothing in this
// module produces or interprets FormatCache: Sniff reports it as
// SniffBadFormat and Open rejects it with CacheFormat.
type Format uint32

const (
	FormatNone  Format = 0
	FormatPNG   Format = 1
	FormatCache Format = 2
)

// PaletteEntry is one R,G,B palette slot, matching PNG's PLTE layout.
type PaletteEntry struct {
	R, G, B uint8
}

// PngHeader is the decoded/stored snapshot of a source PNG's metadata
// (§3, §4.1 HeaderSnapshot). Width/Height/BitDepth/ColorType/NumPalette
// mirror libpng's IHDR+PLTE fields; RowBytes/ColBytes describe the
// packed pixel layout actually written into the cache's data region.
type PngHeader struct {
	Width, Height uint32
	BitDepth      uint8
	ColorType     uint8
	NumPalette    uint16
	RowBytes      uint32
	ColBytes      uint8
	Palette       [paletteEntries]PaletteEntry
}

// PNG color type tags, matching the PNG spec's IHDR color_type field.
const (
	ColorTypeGrayscale      = 0
	ColorTypeRGB            = 2
	ColorTypePalette        = 3
	ColorTypeGrayscaleAlpha = 4
	ColorTypeRGBA           = 6
)

// ParamsFlag is a bitmask of recognized ImageParams options (§3). Only
// one bit is defined today; it is a bitmask rather than a bool so a
// future option doesn't force an on-disk format bump (see SPEC_FULL.md
// §13).
type ParamsFlag uint8

const (
	ParamsBackgroundSet ParamsFlag = 1 << 0
)

// ImageParams configures cache creation (§3 ImageParams).
type ImageParams struct {
	Flags           ParamsFlag
	BackgroundPixel [4]byte
}

// HasBackground reports whether a background pixel was configured.
func (p ImageParams) HasBackground() bool {
	return p.Flags&ParamsBackgroundSet != 0
}

// CacheHeader is the complete 4096-byte on-disk header page (§3, §6).
type CacheHeader struct {
	Version    uint16
	Format     Format
	PngHeader  PngHeader
	Params     ImageParams
	DataSize   uint64
}

// Validate checks the structural invariants from §3: data_size must
// equal height*row_bytes, col_bytes must match the channel/bit-depth
// formula for the declared color type, row_bytes must be at least
// width*col_bytes, and the palette entry count must be sane.
func (h *CacheHeader) Validate() error {
	png := &h.PngHeader

	if uint64(png.Height)*uint64(png.RowBytes) != h.DataSize {
		return fmt.Errorf("cache: data_size %d does not match height(%d)*row_bytes(%d)", h.DataSize, png.Height, png.RowBytes)
	}

	wantColBytes := colBytesFor(png.ColorType, png.BitDepth)
	if wantColBytes != 0 && uint32(png.ColBytes) != wantColBytes {
		return fmt.Errorf("cache: col_bytes %d does not match color_type=%d bit_depth=%d (want %d)", png.ColBytes, png.ColorType, png.BitDepth, wantColBytes)
	}

	if uint64(png.RowBytes) < uint64(png.Width)*uint64(png.ColBytes) {
		return fmt.Errorf("cache: row_bytes %d smaller than width(%d)*col_bytes(%d)", png.RowBytes, png.Width, png.ColBytes)
	}

	if png.NumPalette > paletteEntries {
		return fmt.Errorf("cache: num_palette %d exceeds %d", png.NumPalette, paletteEntries)
	}
	if (png.NumPalette != 0) != (png.ColorType == ColorTypePalette) {
		return fmt.Errorf("cache: num_palette set iff color_type is palette")
	}

	return nil
}

// colBytesFor computes bytes-per-pixel from channel count and bit depth,
// per §3: "col_bytes = channels × (bit_depth == 16 ? 2 : 1)". Sub-byte
// depths are always packed to 1 byte/pixel by the codec adapter, so they
// fall under the bit_depth != 16 branch. Returns 0 for unrecognized
// color types (skips validation rather than rejecting formats this
// package doesn't otherwise reason about).
func colBytesFor(colorType, bitDepth uint8) uint32 {
	var channels uint32
	switch colorType {
	case ColorTypeGrayscale:
		channels = 1
	case ColorTypeRGB:
		channels = 3
	case ColorTypePalette:
		channels = 1
	case ColorTypeGrayscaleAlpha:
		channels = 2
	case ColorTypeRGBA:
		channels = 4
	default:
		return 0
	}
	if bitDepth == 16 {
		return channels * 2
	}
	return channels
}

// Marshal encodes the header into a HeaderSize-byte page.
func (h *CacheHeader) Marshal() []byte {
	buf := make([]byte, HeaderSize)

	copy(buf[offMagic:], Magic[:])
	binary.LittleEndian.PutUint16(buf[offVersion:], h.Version)
	binary.LittleEndian.PutUint32(buf[offFormat:], uint32(h.Format))

	png := &h.PngHeader
	binary.LittleEndian.PutUint32(buf[offWidth:], png.Width)
	binary.LittleEndian.PutUint32(buf[offHeight:], png.Height)
	buf[offBitDepth] = png.BitDepth
	buf[offColorType] = png.ColorType
	binary.LittleEndian.PutUint16(buf[offNumPalette:], png.NumPalette)
	binary.LittleEndian.PutUint32(buf[offRowBytes:], png.RowBytes)
	buf[offColBytes] = png.ColBytes

	for i, entry := range png.Palette {
		o := offPalette + i*3
		buf[o+0] = entry.R
		buf[o+1] = entry.G
		buf[o+2] = entry.B
	}

	buf[offParamsFlags] = uint8(h.Params.Flags)
	copy(buf[offParamsBG:offParamsBG+4], h.Params.BackgroundPixel[:])

	binary.LittleEndian.PutUint64(buf[offDataSize:], h.DataSize)

	return buf
}

// UnmarshalHeader decodes a HeaderSize-byte page. It does not validate
// the magic/version/format fields — callers that care about
// compatibility (Sniff, Stat, Open) check those explicitly so they can
// return the right §7 error kind.
func UnmarshalHeader(buf []byte) (*CacheHeader, error) {
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("cache: header buffer too short: %d bytes", len(buf))
	}

	h := &CacheHeader{
		Version: binary.LittleEndian.Uint16(buf[offVersion:]),
		Format:  Format(binary.LittleEndian.Uint32(buf[offFormat:])),
	}

	png := &h.PngHeader
	png.Width = binary.LittleEndian.Uint32(buf[offWidth:])
	png.Height = binary.LittleEndian.Uint32(buf[offHeight:])
	png.BitDepth = buf[offBitDepth]
	png.ColorType = buf[offColorType]
	png.NumPalette = binary.LittleEndian.Uint16(buf[offNumPalette:])
	png.RowBytes = binary.LittleEndian.Uint32(buf[offRowBytes:])
	png.ColBytes = buf[offColBytes]

	for i := range png.Palette {
		o := offPalette + i*3
		png.Palette[i] = PaletteEntry{R: buf[o+0], G: buf[o+1], B: buf[o+2]}
	}

	h.Params.Flags = ParamsFlag(buf[offParamsFlags])
	copy(h.Params.BackgroundPixel[:], buf[offParamsBG:offParamsBG+4])

	h.DataSize = binary.LittleEndian.Uint64(buf[offDataSize:])

	return h, nil
}

// HasMagic reports whether buf starts with the cache file signature.
func HasMagic(buf []byte) bool {
	return len(buf) >= len(Magic) && string(buf[:len(Magic)]) == string(Magic[:])
}
