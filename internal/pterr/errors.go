package pterr

import (
	"errors"
	"fmt"
)

// ErrKind enumerates the error kinds in §7 of the specification. Unlike
// the reference implementation's -errno-style return codes, callers here
// branch on Kind via errors.As with a *Error target or the KindOf helper
// below.
type ErrKind uint8

const (
	ErrNone ErrKind = iota

	ErrMem
	ErrPath

	ErrImgMode
	ErrImgStat
	ErrImgOpen
	ErrImgFormat
	ErrImgFormatInterlace
	ErrImgFormatCache

	ErrPngCreate
	ErrPngInternal

	ErrCacheMode
	ErrCacheStat
	ErrCacheOpenRead
	ErrCacheOpenTmp
	ErrCacheUnlinkTmp
	ErrCacheSeek
	ErrCacheRead
	ErrCacheWrite
	ErrCacheTrunc
	ErrCacheMmap
	ErrCacheMunmap
	ErrCacheClose
	ErrCacheRenameTmp

	ErrCacheMagic
	ErrCacheVersion
	ErrCacheFormat

	ErrTileDim
	ErrTileClip
	ErrTileZoom
)

var errKindNames = [...]string{
	ErrNone:    "none",
	ErrMem:     "Mem",
	ErrPath:    "Path",

	ErrImgMode:            "ImgMode",
	ErrImgStat:            "ImgStat",
	ErrImgOpen:            "ImgOpen",
	ErrImgFormat:          "ImgFormat",
	ErrImgFormatInterlace: "ImgFormatInterlace",
	ErrImgFormatCache:     "ImgFormatCache",

	ErrPngCreate:   "PngCreate",
	ErrPngInternal: "PngInternal",

	ErrCacheMode:      "CacheMode",
	ErrCacheStat:      "CacheStat",
	ErrCacheOpenRead:  "CacheOpenRead",
	ErrCacheOpenTmp:   "CacheOpenTmp",
	ErrCacheUnlinkTmp: "CacheUnlinkTmp",
	ErrCacheSeek:      "CacheSeek",
	ErrCacheRead:      "CacheRead",
	ErrCacheWrite:     "CacheWrite",
	ErrCacheTrunc:     "CacheTrunc",
	ErrCacheMmap:      "CacheMmap",
	ErrCacheMunmap:    "CacheMunmap",
	ErrCacheClose:     "CacheClose",
	ErrCacheRenameTmp: "CacheRenameTmp",

	ErrCacheMagic:   "CacheMagic",
	ErrCacheVersion: "CacheVersion",
	ErrCacheFormat:  "CacheFormat",

	ErrTileDim:  "TileDim",
	ErrTileClip: "TileClip",
	ErrTileZoom: "TileZoom",
}

func (k ErrKind) String() string {
	if int(k) < len(errKindNames) && errKindNames[k] != "" {
		return errKindNames[k]
	}
	return fmt.Sprintf("ErrKind(%d)", uint8(k))
}

// Error is the typed error returned by every operation in this module.
// Op names the failing operation (e.g. "cache.Open", "tile.Render") the
// way the reference's RETURN_ERROR macros tag a single error kind per
// call site.
type Error struct {
	Kind ErrKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an *Error, wrapping cause when non-nil.
func New(kind ErrKind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// KindOf extracts the ErrKind from err, or ErrNone if err is nil or not
// one of this package's typed errors.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrNone
}
