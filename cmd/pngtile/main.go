package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/qmsk/pngtile/internal/pt"
	"github.com/qmsk/pngtile/internal/ptlog"
)

func main() {
	var (
		quiet       bool
		verbose     bool
		debug       bool
		forceUpdate bool
		noUpdate    bool
		background  string
		width       uint
		height      uint
		x           uint
		y           uint
		zoom        int
		outPath     string
		format      string
		benchmark   int
		randomize   bool
	)

	flag.BoolVar(&quiet, "q", false, "Suppress non-error output")
	flag.BoolVar(&quiet, "quiet", false, "Suppress non-error output")
	flag.BoolVar(&verbose, "v", false, "Verbose output")
	flag.BoolVar(&verbose, "verbose", false, "Verbose output")
	flag.BoolVar(&debug, "D", false, "Debug output")
	flag.BoolVar(&debug, "debug", false, "Debug output")
	flag.BoolVar(&forceUpdate, "U", false, "Force a cache update even if fresh")
	flag.BoolVar(&forceUpdate, "force-update", false, "Force a cache update even if fresh")
	flag.BoolVar(&noUpdate, "N", false, "Never update the cache, fail if missing/stale")
	flag.BoolVar(&noUpdate, "no-update", false, "Never update the cache, fail if missing/stale")
	flag.StringVar(&background, "B", "", "Background pixel as 0xHHHHHHHH")
	flag.StringVar(&background, "background", "", "Background pixel as 0xHHHHHHHH")
	flag.UintVar(&width, "W", 256, "Tile width")
	flag.UintVar(&width, "width", 256, "Tile width")
	flag.UintVar(&height, "H", 256, "Tile height")
	flag.UintVar(&height, "height", 256, "Tile height")
	flag.UintVar(&x, "x", 0, "Tile x offset")
	flag.UintVar(&y, "y", 0, "Tile y offset")
	flag.IntVar(&zoom, "z", 0, "Zoom (downsample) factor")
	flag.IntVar(&zoom, "zoom", 0, "Zoom (downsample) factor")
	flag.StringVar(&outPath, "o", "-", "Output path, - for stdout")
	flag.StringVar(&outPath, "out", "-", "Output path, - for stdout")
	flag.StringVar(&format, "format", "png", "Output preview format: png, webp")
	flag.IntVar(&benchmark, "benchmark", 0, "Render N tiles in a loop and report throughput")
	flag.BoolVar(&randomize, "randomize", false, "Randomize benchmark tile coordinates")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pngtile [flags] <image.png>...\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := ptlog.New(os.Stderr, ptlog.LevelInfo)
	if quiet {
		logger.SetLevel(ptlog.LevelError)
	} else if debug {
		logger.SetLevel(ptlog.LevelDebug)
	} else if verbose {
		logger.SetLevel(ptlog.LevelInfo)
	} else {
		logger.SetLevel(ptlog.LevelWarn)
	}
	ptlog.Default = logger

	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	params, err := parseParams(background)
	if err != nil {
		log.Fatalf("pngtile: %v", err)
	}

	exitCode := 0
	for _, sourcePath := range paths {
		if err := processImage(sourcePath, params, cliFlags{
			forceUpdate: forceUpdate,
			noUpdate:    noUpdate,
			width:       uint32(width),
			height:      uint32(height),
			x:           uint32(x),
			y:           uint32(y),
			zoom:        int32(zoom),
			outPath:     outPath,
			format:      format,
			benchmark:   benchmark,
			randomize:   randomize,
		}, logger); err != nil {
			logger.Error("%s: %v", sourcePath, err)
			exitCode = 1
		}
	}

	os.Exit(exitCode)
}

type cliFlags struct {
	forceUpdate, noUpdate bool
	width, height         uint32
	x, y                  uint32
	zoom                  int32
	outPath               string
	format                string
	benchmark             int
	randomize             bool
}

func parseParams(background string) (pt.ImageParams, error) {
	if background == "" {
		return pt.ImageParams{}, nil
	}

	v, err := strconv.ParseUint(strings.TrimPrefix(background, "0x"), 16, 32)
	if err != nil {
		return pt.ImageParams{}, fmt.Errorf("invalid -background %q: %w", background, err)
	}

	var bg [4]byte
	bg[0] = byte(v >> 24)
	bg[1] = byte(v >> 16)
	bg[2] = byte(v >> 8)
	bg[3] = byte(v)

	return pt.ImageParams{Flags: 1, BackgroundPixel: bg}, nil
}

func processImage(sourcePath string, params pt.ImageParams, flags cliFlags, logger *ptlog.Logger) error {
	cachePath, err := pt.CachePath(sourcePath)
	if err != nil {
		return fmt.Errorf("cache path: %w", err)
	}

	img := pt.New(cachePath)
	defer img.Destroy()

	status, err := img.Status(sourcePath)
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	logger.Debug("%s: cache status %v", sourcePath, status)

	needsUpdate := flags.forceUpdate || status != pt.StatusFresh
	if needsUpdate && flags.noUpdate {
		return fmt.Errorf("cache is not fresh and -no-update was given")
	}
	if needsUpdate {
		logger.Info("%s: updating cache %s", sourcePath, cachePath)
		if err := img.Update(sourcePath, params); err != nil {
			return fmt.Errorf("update: %w", err)
		}
	}

	if err := img.Open(); err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer img.Close()

	if info, cacheInfo, err := img.Info(); err == nil {
		logger.Debug("%s: %dx%d, %s cache (%s allocated)", sourcePath, info.Width, info.Height,
			humanize.Bytes(uint64(cacheInfo.Bytes)), humanize.Bytes(uint64(cacheInfo.Blocks*512)))
	}

	tileParams := pt.TileParams{Width: flags.width, Height: flags.height, X: flags.x, Y: flags.y, Zoom: flags.zoom}

	if flags.benchmark > 0 {
		return runBenchmark(img, tileParams, flags, logger)
	}

	return renderOnce(img, tileParams, flags)
}

func renderOnce(img *pt.Image, tileParams pt.TileParams, flags cliFlags) error {
	out := os.Stdout
	if flags.outPath != "-" {
		f, err := os.Create(flags.outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", flags.outPath, err)
		}
		defer f.Close()
		out = f
	}

	if flags.format == "" || flags.format == "png" {
		return img.TileFile(tileParams, out)
	}

	pngBytes, err := img.TileMem(tileParams)
	if err != nil {
		return err
	}
	return writeOutput(pngBytes, flags.format, out)
}

// runBenchmark renders N tiles in a loop and reports throughput (§6
// --benchmark) through the same leveled/humanized output the rest of
// the CLI uses (logger.Info, humanize.Comma) rather than a standalone
// terminal progress bar: a periodic Info line every reportInterval,
// plus a final summary.
const reportInterval = time.Second

func runBenchmark(img *pt.Image, base pt.TileParams, flags cliFlags, logger *ptlog.Logger) error {
	info, _, err := img.Info()
	if err != nil {
		return err
	}

	start := time.Now()
	lastReport := start

	for i := 0; i < flags.benchmark; i++ {
		p := base
		if flags.randomize && info.Width > base.Width && info.Height > base.Height {
			p.X = uint32(rand.Intn(int(info.Width - base.Width)))
			p.Y = uint32(rand.Intn(int(info.Height - base.Height)))
		}

		if _, err := img.TileMem(p); err != nil {
			return fmt.Errorf("render %d: %w", i, err)
		}

		if now := time.Now(); now.Sub(lastReport) >= reportInterval {
			rate := float64(i+1) / now.Sub(start).Seconds()
			logger.Info("%s/%s renders, %s/s", humanize.Comma(int64(i+1)), humanize.Comma(int64(flags.benchmark)), humanize.Comma(int64(rate)))
			lastReport = now
		}
	}

	elapsed := time.Since(start)
	rate := float64(flags.benchmark) / elapsed.Seconds()
	logger.Info("rendered %s tiles in %s (%s/s)", humanize.Comma(int64(flags.benchmark)), elapsed.Round(time.Millisecond), humanize.Comma(int64(rate)))
	return nil
}
