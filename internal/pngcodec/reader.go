package pngcodec

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/qmsk/pngtile/internal/cache"
	"github.com/qmsk/pngtile/internal/pterr"
)

// blockSize is the sparse-decode scan granularity in pixels (§4.1, §9
// "sparse-decode write path"), grounded on src/lib/png.c's BLOCK_SIZE.
// A block whose pixels all equal the configured background pixel is
// left unwritten so the cache file keeps the hole ftruncate created for
// it.
const blockSize = 64

// Reader adapts a decoded PNG source to the cache.Decoder interface
// (§4.1 HeaderSnapshot/ReadRows). Go's image/png decodes a PNG fully
// into one of a handful of concrete image.Image types rather than
// streaming rows through a callback the way libpng does, so OpenRead
// decodes once up front and ReadRows walks the already-decoded image;
// this package is where that impedance mismatch is absorbed.
type Reader struct {
	img    image.Image
	header cache.PngHeader
	size   uint64
}

// ihdr holds the handful of IHDR fields image/png's own APIs don't
// expose (bit depth as declared, interlace method): Go's png.Decode
// and png.DecodeConfig normalize everything to one of a few in-memory
// representations and drop these. They're cheap to read directly since
// IHDR is always the first chunk immediately after the 8-byte signature.
type ihdr struct {
	width, height       uint32
	bitDepth, colorType uint8
	interlace           uint8
}

// readIHDR reads the signature and the 25-byte IHDR chunk (4 length + 4
// type + 13 data + 4 crc) from the current position of f, which must be
// offset 0.
func readIHDR(f *os.File) (ihdr, error) {
	var buf [33]byte
	if _, err := io.ReadFull(f, buf[:]); err != nil {
		return ihdr{}, fmt.Errorf("pngcodec: short read for IHDR: %w", err)
	}

	if string(buf[12:16]) != "IHDR" {
		return ihdr{}, fmt.Errorf("pngcodec: first chunk is not IHDR")
	}

	data := buf[16:29]
	return ihdr{
		width:     binary.BigEndian.Uint32(data[0:4]),
		height:    binary.BigEndian.Uint32(data[4:8]),
		bitDepth:  data[8],
		colorType: data[9],
		interlace: data[12],
	}, nil
}

// OpenRead opens path, validates it as a non-interlaced PNG, and decodes
// it fully (§4.1 "Fails with ImgFormat if interlaced"). The returned
// Reader satisfies cache.Decoder.
func OpenRead(path string) (*Reader, error) {
	result, err := Probe(path)
	if err != nil {
		return nil, err
	}
	if result != ProbePNG {
		return nil, pterr.New(pterr.ErrImgFormat, "pngcodec.OpenRead", fmt.Errorf("not a PNG file"))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, pterr.New(pterr.ErrImgOpen, "pngcodec.OpenRead", err)
	}
	defer f.Close()

	hdr, err := readIHDR(f)
	if err != nil {
		return nil, pterr.New(pterr.ErrImgFormat, "pngcodec.OpenRead", err)
	}
	if hdr.interlace != 0 {
		return nil, pterr.New(pterr.ErrImgFormatInterlace, "pngcodec.OpenRead", fmt.Errorf("interlaced PNG not supported"))
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, pterr.New(pterr.ErrImgOpen, "pngcodec.OpenRead", err)
	}

	img, err := decodeSafe(f)
	if err != nil {
		return nil, err
	}

	pngHeader, err := buildHeader(img, hdr)
	if err != nil {
		return nil, err
	}

	return &Reader{
		img:    img,
		header: pngHeader,
		size:   uint64(pngHeader.Height) * uint64(pngHeader.RowBytes),
	}, nil
}

// decodeSafe calls png.Decode behind a recover, translating any panic
// from the stdlib decoder into a typed PngInternal error. This is the
// adapter's analogue of the reference implementation's setjmp error
// trap in pt_png_open: no caller of this package ever observes the
// underlying decoding mechanism's own failure mode.
func decodeSafe(r io.Reader) (img image.Image, err error) {
	defer func() {
		if p := recover(); p != nil {
			img = nil
			err = pterr.New(pterr.ErrPngInternal, "pngcodec.decode", fmt.Errorf("panic: %v", p))
		}
	}()

	img, decErr := png.Decode(r)
	if decErr != nil {
		return nil, pterr.New(pterr.ErrPngInternal, "pngcodec.decode", decErr)
	}
	return img, nil
}

// buildHeader derives a cache.PngHeader from the decoded image's
// concrete type, forcing the packed-to-1-byte/pixel layout §4.1
// requires for sub-8-bit source depths. The raw IHDR fields are not
// consulted: image/png already hands back sub-8-bit sources at one byte
// per pixel, and they are recorded with bit_depth 8.
func buildHeader(img image.Image, raw ihdr) (cache.PngHeader, error) {
	bounds := img.Bounds()
	width := uint32(bounds.Dx())
	height := uint32(bounds.Dy())

	h := cache.PngHeader{Width: width, Height: height}

	switch src := img.(type) {
	case *image.Paletted:
		h.ColorType = cache.ColorTypePalette
		h.BitDepth = 8
		h.ColBytes = 1
		h.NumPalette = uint16(len(src.Palette))
		if h.NumPalette > 256 {
			return cache.PngHeader{}, pterr.New(pterr.ErrImgFormat, "pngcodec.buildHeader", fmt.Errorf("palette too large: %d entries", h.NumPalette))
		}
		for i, c := range src.Palette {
			r, g, b, _ := c.RGBA()
			h.Palette[i] = cache.PaletteEntry{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
		}

	case *image.Gray:
		h.ColorType = cache.ColorTypeGrayscale
		h.BitDepth = 8
		h.ColBytes = 1

	case *image.Gray16:
		h.ColorType = cache.ColorTypeGrayscale
		h.BitDepth = 16
		h.ColBytes = 2

	case *image.RGBA:
		h.ColorType = cache.ColorTypeRGB
		h.BitDepth = 8
		h.ColBytes = 3

	case *image.NRGBA:
		h.ColorType = cache.ColorTypeRGBA
		h.BitDepth = 8
		h.ColBytes = 4

	case *image.NRGBA64:
		h.ColorType = cache.ColorTypeRGBA
		h.BitDepth = 16
		h.ColBytes = 8

	default:
		// Anything else (e.g. the *image.RGBA64 image/png returns for
		// 16-bit truecolor without alpha) is recorded as 8-bit RGBA and
		// repacked through packRow's generic color.Color path rather than
		// rejected outright.
		h.ColorType = cache.ColorTypeRGBA
		h.BitDepth = 8
		h.ColBytes = 4
	}

	h.RowBytes = width * uint32(h.ColBytes)
	return h, nil
}

// HeaderSnapshot implements cache.Decoder.
func (r *Reader) HeaderSnapshot() (cache.PngHeader, uint64, error) {
	return r.header, r.size, nil
}

// ReadRows implements cache.Decoder, decoding every row in order (§4.1
// "Non-interlaced only"; row order matches the reference's streaming
// decode). When params carries no background pixel, every row is
// copied straight into dest (the Direct strategy). When a background
// pixel is configured, each row is divided into blockSize-pixel blocks
// (Sparse strategy): a block that byte-for-byte matches the background
// pattern is left untouched in dest, so the hole Update's ftruncate
// created for it survives; any other block is copied in full.
func (r *Reader) ReadRows(dest []byte, header cache.PngHeader, params cache.ImageParams) error {
	width := int(header.Width)
	height := int(header.Height)
	colBytes := int(header.ColBytes)
	rowBytes := int(header.RowBytes)

	if uint64(len(dest)) < uint64(height)*uint64(rowBytes) {
		return pterr.New(pterr.ErrCacheWrite, "pngcodec.ReadRows", fmt.Errorf("destination too small: %d < %d", len(dest), height*rowBytes))
	}

	row := make([]byte, width*colBytes)

	var bgPixel []byte
	if params.HasBackground() && colBytes <= len(params.BackgroundPixel) {
		bgPixel = params.BackgroundPixel[:colBytes]
	}

	for y := 0; y < height; y++ {
		if err := packRow(r.img, y, header, row); err != nil {
			return err
		}

		dstRow := dest[y*rowBytes : y*rowBytes+rowBytes]

		if bgPixel == nil {
			copy(dstRow[:width*colBytes], row)
			continue
		}

		for x := 0; x < width; x += blockSize {
			end := x + blockSize
			if end > width {
				end = width
			}
			block := row[x*colBytes : end*colBytes]
			if matchesPattern(block, bgPixel) {
				continue
			}
			copy(dstRow[x*colBytes:end*colBytes], block)
		}
	}

	return nil
}

// matchesPattern reports whether block consists entirely of repetitions
// of pixel (len(pixel) == col_bytes), the per-block background test
// from §4.1's sparse decode strategy.
func matchesPattern(block, pixel []byte) bool {
	for i := 0; i < len(block); i += len(pixel) {
		if !bytesEqual(block[i:i+len(pixel)], pixel) {
			return false
		}
	}
	return true
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// packRow fills row (len == width*ColBytes) with pixel y of img, packed
// to the layout declared by header.
func packRow(img image.Image, y int, header cache.PngHeader, row []byte) error {
	width := int(header.Width)
	colBytes := int(header.ColBytes)

	switch src := img.(type) {
	case *image.Paletted:
		copy(row, src.Pix[y*src.Stride:y*src.Stride+width])
		return nil

	case *image.Gray:
		copy(row, src.Pix[y*src.Stride:y*src.Stride+width])
		return nil

	case *image.Gray16:
		copy(row, src.Pix[y*src.Stride:y*src.Stride+width*2])
		return nil

	case *image.RGBA:
		base := y * src.Stride
		for x := 0; x < width; x++ {
			px := src.Pix[base+x*4 : base+x*4+4]
			o := x * colBytes
			row[o+0] = px[0]
			row[o+1] = px[1]
			row[o+2] = px[2]
		}
		return nil

	case *image.NRGBA:
		base := y * src.Stride
		copy(row, src.Pix[base:base+width*4])
		return nil

	case *image.NRGBA64:
		base := y * src.Stride
		copy(row, src.Pix[base:base+width*8])
		return nil

	default:
		bounds := img.Bounds()
		for x := 0; x < width; x++ {
			r8, g8, b8, a8 := rgba8(img.At(bounds.Min.X+x, bounds.Min.Y+y))
			o := x * colBytes
			switch colBytes {
			case 1:
				row[o] = r8
			case 3:
				row[o+0], row[o+1], row[o+2] = r8, g8, b8
			case 4:
				row[o+0], row[o+1], row[o+2], row[o+3] = r8, g8, b8, a8
			default:
				return pterr.New(pterr.ErrImgFormat, "pngcodec.packRow", fmt.Errorf("unsupported col_bytes %d", colBytes))
			}
		}
		return nil
	}
}

func rgba8(c color.Color) (r, g, b, a uint8) {
	cr, cg, cb, ca := c.RGBA()
	return uint8(cr >> 8), uint8(cg >> 8), uint8(cb >> 8), uint8(ca >> 8)
}
