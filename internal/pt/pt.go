// Package pt is the pngtile façade (§4.5): the single type a consumer
// of this module imports. It binds a cache path to a source image,
// exposes the open/status/update/info/tile operations, and wires
// internal/cache, internal/pngcodec and internal/tile together the way
// the teacher's cmd/geotiff2pmtiles/main.go wires internal/cog,
// internal/tile and internal/encode — except here the wiring lives in
// a library package rather than only in main, since this module is
// meant to be imported, not just run as a CLI.
package pt

import (
	"github.com/qmsk/pngtile/internal/cache"
	"github.com/qmsk/pngtile/internal/ptpath"
	"github.com/qmsk/pngtile/internal/tile"
)

// ImageParams configures cache creation (§3). It is a type alias for
// internal/cache's identically-named type so callers never need to
// import internal/cache directly.
type ImageParams = cache.ImageParams

// TileParams is the renderer's input rectangle (§3). Alias of
// internal/tile.Params for the same reason.
type TileParams = tile.Params

// Status is the cache freshness lattice (§4.2, §8 invariant 6).
type Status = cache.Status

const (
	StatusFresh    = cache.StatusFresh
	StatusNone     = cache.StatusNone
	StatusStale    = cache.StatusStale
	StatusIncompat = cache.StatusIncompat
)

// ImageInfo reports the source image's dimensions and pixel depth, the
// part of §4.2 ReadInfo that mirrors the original pt_image_info fields.
type ImageInfo struct {
	Width, Height uint32
	Bpp           uint32
}

// CacheInfo reports on-disk cache accounting (§4.2 ReadInfo).
type CacheInfo struct {
	Bytes   int64
	Blocks  int64
	Version uint16
}

// CachePath derives a cache path from a source path by replacing its
// final extension with ".cache" (§4.2 Path).
func CachePath(sourcePath string) (string, error) {
	return ptpath.WithExt(sourcePath, ".cache")
}

// Stat reports cachePath's freshness relative to sourcePath (§4.2 Stat).
func Stat(cachePath, sourcePath string) (Status, error) {
	return cache.Stat(cachePath, sourcePath)
}
