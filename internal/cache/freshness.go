package cache

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/qmsk/pngtile/internal/pterr"
)

// SniffResult classifies a path's header (§4.2 Sniff).
type SniffResult int

const (
	SniffValid SniffResult = iota
	SniffNotCache
	SniffVersionMismatch
	SniffBadFormat
)

// Sniff reads and validates a cache file's header magic, version and
// format, without checking freshness against any source file.
func Sniff(path string) (SniffResult, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return SniffNotCache, nil
		}
		return 0, pterr.New(pterr.ErrCacheStat, "cache.Sniff", err)
	}
	defer f.Close()

	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(f, buf); err != nil {
		return SniffNotCache, nil
	}

	if !HasMagic(buf) {
		return SniffNotCache, nil
	}

	h, err := UnmarshalHeader(buf)
	if err != nil {
		return 0, pterr.New(pterr.ErrCacheRead, "cache.Sniff", err)
	}

	if h.Version != Version {
		return SniffVersionMismatch, nil
	}
	if h.Format != FormatPNG {
		return SniffBadFormat, nil
	}

	return SniffValid, nil
}

// Status is the cache freshness lattice (§4.2 Stat, §8 invariant 6).
type Status int

const (
	StatusFresh Status = iota
	StatusNone
	StatusStale
	StatusIncompat
)

func (s Status) String() string {
	switch s {
	case StatusFresh:
		return "fresh"
	case StatusNone:
		return "none"
	case StatusStale:
		return "stale"
	case StatusIncompat:
		return "incompat"
	default:
		return "unknown"
	}
}

// Stat determines cachePath's freshness relative to sourcePath, per the
// algorithm in §4.2.
func Stat(cachePath, sourcePath string) (Status, error) {
	srcInfo, err := os.Stat(sourcePath)
	if err != nil {
		return 0, pterr.New(pterr.ErrImgStat, "cache.Stat", err)
	}

	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return StatusNone, nil
		}
		return 0, pterr.New(pterr.ErrCacheStat, "cache.Stat", err)
	}

	if srcInfo.ModTime().After(cacheInfo.ModTime()) {
		return StatusStale, nil
	}

	sniff, err := Sniff(cachePath)
	if err != nil {
		return 0, err
	}
	if sniff != SniffValid {
		return StatusIncompat, nil
	}

	return StatusFresh, nil
}

// Info summarizes a cache file for §4.2 ReadInfo / the façade's Info().
type Info struct {
	Mtime   time.Time
	Bytes   int64
	Blocks  int64 // allocated 512-byte blocks (meaningful for sparse files)
	Version uint16
	Width   uint32
	Height  uint32
	Bpp     uint32 // bits per pixel (ColBytes * 8)
}

// ReadInfo reads a cache file's header and stat metadata without
// retaining an open mapping.
func ReadInfo(cachePath string) (Info, error) {
	fi, err := os.Stat(cachePath)
	if err != nil {
		return Info{}, pterr.New(pterr.ErrCacheStat, "cache.ReadInfo", err)
	}

	f, err := os.Open(cachePath)
	if err != nil {
		return Info{}, pterr.New(pterr.ErrCacheOpenRead, "cache.ReadInfo", err)
	}
	defer f.Close()

	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(f, buf); err != nil {
		return Info{}, pterr.New(pterr.ErrCacheRead, "cache.ReadInfo", err)
	}

	h, err := UnmarshalHeader(buf)
	if err != nil {
		return Info{}, pterr.New(pterr.ErrCacheRead, "cache.ReadInfo", err)
	}

	return Info{
		Mtime:   fi.ModTime(),
		Bytes:   fi.Size(),
		Blocks:  allocatedBlocks(fi),
		Version: h.Version,
		Width:   h.PngHeader.Width,
		Height:  h.PngHeader.Height,
		Bpp:     uint32(h.PngHeader.ColBytes) * 8,
	}, nil
}
