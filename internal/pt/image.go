package pt

import (
	"io"

	"github.com/qmsk/pngtile/internal/cache"
	"github.com/qmsk/pngtile/internal/pngcodec"
	"github.com/qmsk/pngtile/internal/pterr"
	"github.com/qmsk/pngtile/internal/tile"
)

// State is one of the Image lifecycle states (§4.5).
type State int

const (
	StateNew State = iota
	StateOpen
	StateUpdating
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateOpen:
		return "open"
	case StateUpdating:
		return "updating"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Image binds a cache-file path to the operations in §4.5. It holds at
// most one open CacheStore at a time; the scheduling model (§5) is
// single-threaded cooperative per operation, so Image applies no
// internal locking of its own — concurrent tile renders against an
// already-open Image are safe because internal/tile.Renderer only ever
// reads the mapping, but callers must not call Update/Open/Close
// concurrently with anything else on the same Image.
type Image struct {
	cachePath string
	state     State
	store     *cache.Store
}

// New allocates an Image bound to cachePath. No I/O is performed (§4.5
// "new(cache_path)").
func New(cachePath string) *Image {
	return &Image{cachePath: cachePath, state: StateNew}
}

// Path returns the cache path this Image is bound to.
func (img *Image) Path() string { return img.cachePath }

// State returns the Image's current lifecycle state.
func (img *Image) State() State { return img.state }

// Status delegates to Stat (§4.5 "status(source_path)"); it never
// changes img's state.
func (img *Image) Status(sourcePath string) (Status, error) {
	return cache.Stat(img.cachePath, sourcePath)
}

// Info opens the cache transiently if not already open and returns
// ImageInfo/CacheInfo (§4.2 ReadInfo, §4.5 "info()"). Reading through
// cache.ReadInfo rather than through img.store (when already open)
// keeps this operation side-effect free regardless of current state,
// at the cost of one extra open/close when the Image happens to be
// open already.
func (img *Image) Info() (ImageInfo, CacheInfo, error) {
	info, err := cache.ReadInfo(img.cachePath)
	if err != nil {
		return ImageInfo{}, CacheInfo{}, err
	}
	return ImageInfo{
			Width:  info.Width,
			Height: info.Height,
			Bpp:    info.Bpp,
		}, CacheInfo{
			Bytes:   info.Bytes,
			Blocks:  info.Blocks,
			Version: info.Version,
		}, nil
}

// Update runs §4.3's atomic update protocol against sourcePath,
// transitioning New -> Updating -> New (§4.5 "update(source_path,
// params)"). Fails ImgMode if the Image is not in state New (in
// particular, if it is currently Open).
func (img *Image) Update(sourcePath string, params ImageParams) error {
	if img.state != StateNew {
		return pterr.New(pterr.ErrImgMode, "pt.Update", nil)
	}

	dec, err := pngcodec.OpenRead(sourcePath)
	if err != nil {
		return err
	}

	img.state = StateUpdating
	store := cache.NewStore(img.cachePath)
	err = store.Update(dec, params)
	img.state = StateNew

	return err
}

// Open transitions New -> Open by mapping the cache read-only (§4.5
// "open()").
func (img *Image) Open() error {
	if img.state != StateNew {
		return pterr.New(pterr.ErrImgMode, "pt.Open", nil)
	}

	store := cache.NewStore(img.cachePath)
	if err := store.Open(); err != nil {
		return err
	}

	img.store = store
	img.state = StateOpen
	return nil
}

// Close transitions Open -> New, releasing the mapping and fd (§4.5
// "close()"). Idempotent: closing a non-open Image is success.
func (img *Image) Close() error {
	if img.state != StateOpen {
		return nil
	}

	err := img.store.Close()
	img.store = nil
	img.state = StateNew
	return err
}

// Destroy unconditionally releases any resources the Image holds,
// logging rather than failing on error (§4.3 "Force-abort"). Intended
// for use from a defer at the point an Image is dropped.
func (img *Image) Destroy() {
	if img.store != nil {
		img.store.Destroy()
		img.store = nil
	}
	img.state = StateClosed
}

// TileFile requires state Open and runs §4.4 against p, writing the
// encoded PNG to the borrowed stream w (§4.5 "tile_file").
func (img *Image) TileFile(p TileParams, w io.Writer) error {
	renderer, err := img.renderer()
	if err != nil {
		return err
	}
	return renderer.RenderFile(p, w)
}

// TileMem requires state Open and runs §4.4 against p, returning the
// encoded PNG bytes (§4.5 "tile_mem").
func (img *Image) TileMem(p TileParams) ([]byte, error) {
	renderer, err := img.renderer()
	if err != nil {
		return nil, err
	}
	return renderer.RenderMem(p)
}

func (img *Image) renderer() (*tile.Renderer, error) {
	if img.state != StateOpen {
		return nil, pterr.New(pterr.ErrImgMode, "pt.Tile", nil)
	}
	header := img.store.Header()
	return tile.NewRenderer(header.PngHeader, img.store.Data(), header.Params), nil
}
