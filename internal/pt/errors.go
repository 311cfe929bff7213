package pt

import "github.com/qmsk/pngtile/internal/pterr"

// ErrKind and Error are re-exported from internal/pterr so that
// internal/cache, internal/pngcodec and internal/tile can construct
// typed errors without importing this façade package (which imports
// all three) — avoiding an import cycle — while callers of this
// module only ever need to import "pt" (§7, §14).
type ErrKind = pterr.ErrKind
type Error = pterr.Error

const (
	ErrNone ErrKind = pterr.ErrNone
	ErrMem  ErrKind = pterr.ErrMem
	ErrPath ErrKind = pterr.ErrPath

	ErrImgMode            ErrKind = pterr.ErrImgMode
	ErrImgStat            ErrKind = pterr.ErrImgStat
	ErrImgOpen            ErrKind = pterr.ErrImgOpen
	ErrImgFormat          ErrKind = pterr.ErrImgFormat
	ErrImgFormatInterlace ErrKind = pterr.ErrImgFormatInterlace
	ErrImgFormatCache     ErrKind = pterr.ErrImgFormatCache

	ErrPngCreate   ErrKind = pterr.ErrPngCreate
	ErrPngInternal ErrKind = pterr.ErrPngInternal

	ErrCacheMode      ErrKind = pterr.ErrCacheMode
	ErrCacheStat      ErrKind = pterr.ErrCacheStat
	ErrCacheOpenRead  ErrKind = pterr.ErrCacheOpenRead
	ErrCacheOpenTmp   ErrKind = pterr.ErrCacheOpenTmp
	ErrCacheUnlinkTmp ErrKind = pterr.ErrCacheUnlinkTmp
	ErrCacheSeek      ErrKind = pterr.ErrCacheSeek
	ErrCacheRead      ErrKind = pterr.ErrCacheRead
	ErrCacheWrite     ErrKind = pterr.ErrCacheWrite
	ErrCacheTrunc     ErrKind = pterr.ErrCacheTrunc
	ErrCacheMmap      ErrKind = pterr.ErrCacheMmap
	ErrCacheMunmap    ErrKind = pterr.ErrCacheMunmap
	ErrCacheClose     ErrKind = pterr.ErrCacheClose
	ErrCacheRenameTmp ErrKind = pterr.ErrCacheRenameTmp

	ErrCacheMagic   ErrKind = pterr.ErrCacheMagic
	ErrCacheVersion ErrKind = pterr.ErrCacheVersion
	ErrCacheFormat  ErrKind = pterr.ErrCacheFormat

	ErrTileDim  ErrKind = pterr.ErrTileDim
	ErrTileClip ErrKind = pterr.ErrTileClip
	ErrTileZoom ErrKind = pterr.ErrTileZoom
)

// KindOf extracts the ErrKind from err, or ErrNone if err isn't one of
// this module's typed errors.
func KindOf(err error) ErrKind {
	return pterr.KindOf(err)
}
