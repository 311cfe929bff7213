package cache

import (
	"errors"
	"fmt"
	"os"

	"github.com/qmsk/pngtile/internal/ptlog"
	"github.com/qmsk/pngtile/internal/ptpath"
	"github.com/qmsk/pngtile/internal/pterr"
)

// Decoder is the subset of the PNG codec adapter (§4.1) that the cache
// store's update path needs: a header snapshot and a row-decode pass
// targeting the mapped data region. internal/pngcodec.Reader implements
// this; Store never imports pngcodec directly so the dependency only
// flows one way (codec -> cache, for the PngHeader type), avoiding an
// import cycle between the two collaborators.
type Decoder interface {
	HeaderSnapshot() (PngHeader, uint64, error)
	ReadRows(dest []byte, header PngHeader, params ImageParams) error
}

// Store is a single cache file's lifecycle object (§4.3): at most one
// open file descriptor and one full-file mapping at a time.
type Store struct {
	path string

	file    *os.File
	mapping []byte
	header  *CacheHeader
	data    []byte // slice of mapping covering the pixel-data region

	readonly bool
}

// NewStore constructs a Store bound to path; it performs no I/O.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the cache file path this store is bound to.
func (s *Store) Path() string { return s.path }

// IsOpen reports whether the store currently holds a mapping.
func (s *Store) IsOpen() bool { return s.mapping != nil }

// Header returns the currently-mapped header, or nil if not open.
func (s *Store) Header() *CacheHeader { return s.header }

// Data returns the currently-mapped pixel-data region, or nil if not open.
func (s *Store) Data() []byte { return s.data }

// rollback tears down any partially-established fd/mapping, used by both
// Open's and Update's error paths (§4.3 "roll back: unmap if mapped,
// close fd, and propagate the typed error").
func (s *Store) rollback() {
	if s.mapping != nil {
		_ = munmapFile(s.mapping)
		s.mapping = nil
		s.header = nil
		s.data = nil
	}
	if s.file != nil {
		_ = s.file.Close()
		s.file = nil
	}
}

// Open maps the cache file read-only for serving (§4.3 "Open (read-only
// serving path)"). A no-op if already open.
func (s *Store) Open() error {
	if s.IsOpen() {
		return nil
	}

	f, err := os.OpenFile(s.path, os.O_RDONLY, 0)
	if err != nil {
		return pterr.New(pterr.ErrCacheOpenRead, "cache.Open", err)
	}
	s.file = f

	buf := make([]byte, HeaderSize)
	if _, err := readFull(f, buf); err != nil {
		s.rollback()
		return pterr.New(pterr.ErrCacheRead, "cache.Open", err)
	}

	if !HasMagic(buf) {
		s.rollback()
		return pterr.New(pterr.ErrCacheMagic, "cache.Open", fmt.Errorf("bad magic"))
	}

	header, err := UnmarshalHeader(buf)
	if err != nil {
		s.rollback()
		return pterr.New(pterr.ErrCacheRead, "cache.Open", err)
	}

	if err := validateCompat(header); err != nil {
		s.rollback()
		return err
	}

	mapSize := HeaderSize + int(header.DataSize)
	mapping, err := mmapFile(int(f.Fd()), mapSize, protRead)
	if err != nil {
		s.rollback()
		return pterr.New(pterr.ErrCacheMmap, "cache.Open", err)
	}

	s.mapping = mapping
	s.header = header
	s.data = mapping[HeaderSize:]
	s.readonly = true

	return nil
}

// validateCompat checks version/format the way Sniff does (Open checks
// the magic before decoding the header), returning the precise §7
// error kind for Open's roll-back path.
func validateCompat(h *CacheHeader) error {
	if h.Version != Version {
		return pterr.New(pterr.ErrCacheVersion, "cache.Open", fmt.Errorf("version %d != %d", h.Version, Version))
	}
	if h.Format != FormatPNG {
		return pterr.New(pterr.ErrCacheFormat, "cache.Open", fmt.Errorf("format %d != %d", h.Format, FormatPNG))
	}
	return nil
}

// Update runs the atomic create/update protocol (§4.3 "Update"): compose
// the header from the decoder's snapshot, write it into a freshly
// created .tmp file, decode pixel rows into the mapped data region, then
// rename .tmp to the final cache path. The store is closed both before
// and after a successful Update (§4.5: transitions New -> Updating ->
// New) — callers that want to serve tiles afterward call Open separately.
func (s *Store) Update(dec Decoder, params ImageParams) error {
	if s.IsOpen() {
		return pterr.New(pterr.ErrCacheMode, "cache.Update", fmt.Errorf("store already open"))
	}

	pngHeader, dataSize, err := dec.HeaderSnapshot()
	if err != nil {
		return err
	}

	header := &CacheHeader{
		Version:   Version,
		Format:    FormatPNG,
		PngHeader: pngHeader,
		Params:    params,
		DataSize:  dataSize,
	}

	tmpPath, err := ptpath.WithExt(s.path, ".tmp")
	if err != nil {
		return pterr.New(pterr.ErrPath, "cache.Update", err)
	}

	if err := os.Remove(tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return pterr.New(pterr.ErrCacheUnlinkTmp, "cache.Update", err)
	}

	f, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return pterr.New(pterr.ErrCacheOpenTmp, "cache.Update", err)
	}
	s.file = f

	if err := s.updateBody(dec, header, tmpPath); err != nil {
		s.rollback()
		_ = os.Remove(tmpPath)
		return err
	}

	// A successful Update leaves the store closed; the caller re-opens
	// read-only to serve tiles.
	s.rollback()

	return nil
}

// updateBody performs steps 4-8 of §4.3's Update protocol once the .tmp
// file descriptor has been exclusively created. Errors here are cleaned
// up by the caller (rollback + unlink .tmp).
func (s *Store) updateBody(dec Decoder, header *CacheHeader, tmpPath string) error {
	buf := header.Marshal()
	if _, err := writeFull(s.file, buf); err != nil {
		return pterr.New(pterr.ErrCacheWrite, "cache.Update", err)
	}

	totalSize := HeaderSize + int64(header.DataSize)
	if err := s.file.Truncate(totalSize); err != nil {
		return pterr.New(pterr.ErrCacheTrunc, "cache.Update", err)
	}

	mapping, err := mmapFile(int(s.file.Fd()), int(totalSize), protReadWrite)
	if err != nil {
		return pterr.New(pterr.ErrCacheMmap, "cache.Update", err)
	}
	s.mapping = mapping
	s.header = header
	s.data = mapping[HeaderSize:]

	if err := dec.ReadRows(s.data, header.PngHeader, header.Params); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return pterr.New(pterr.ErrCacheRenameTmp, "cache.Update", err)
	}

	return nil
}

// Close unmaps and closes the store. Idempotent: closing a closed store
// is success (§4.3 "Close").
func (s *Store) Close() error {
	if !s.IsOpen() {
		return nil
	}

	if err := munmapFile(s.mapping); err != nil {
		return pterr.New(pterr.ErrCacheMunmap, "cache.Close", err)
	}
	s.mapping = nil
	s.header = nil
	s.data = nil

	if s.file != nil {
		if err := s.file.Close(); err != nil {
			return pterr.New(pterr.ErrCacheClose, "cache.Close", err)
		}
		s.file = nil
	}

	return nil
}

// Destroy is the best-effort destructor path (§4.3 "Force-abort"): it
// releases any open mapping/fd without returning an error, logging at
// warning level on failure. Used when the owning Image is dropped
// without an explicit Close.
func (s *Store) Destroy() {
	if !s.IsOpen() {
		return
	}
	if err := s.Close(); err != nil {
		ptlog.Default.WarnErrno("cache.Store.Destroy", err)
		// Ensure no dangling state even if Close partially failed.
		s.rollback()
	}
}

func readFull(f *os.File, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := f.Read(buf[total:])
		if n > 0 {
			total += n
		}
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, fmt.Errorf("cache: short read")
		}
	}
	return total, nil
}

func writeFull(f *os.File, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := f.Write(buf[total:])
		if n > 0 {
			total += n
		}
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
