package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTestHeader(t *testing.T, path string, version uint16, format Format) {
	t.Helper()
	h := &CacheHeader{
		Version:   version,
		Format:    format,
		PngHeader: PngHeader{Width: 1, Height: 1, ColorType: ColorTypeGrayscale, BitDepth: 8, ColBytes: 1, RowBytes: 1},
		DataSize:  1,
	}
	buf := h.Marshal()
	buf = append(buf, 0) // one data byte
	if err := os.WriteFile(path, buf, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestSniff(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "missing.cache")
	if res, err := Sniff(missing); err != nil || res != SniffNotCache {
		t.Fatalf("Sniff(missing) = %v, %v; want SniffNotCache, nil", res, err)
	}

	notCache := filepath.Join(dir, "garbage.cache")
	if err := os.WriteFile(notCache, []byte("not a cache file"), 0644); err != nil {
		t.Fatal(err)
	}
	if res, err := Sniff(notCache); err != nil || res != SniffNotCache {
		t.Fatalf("Sniff(garbage) = %v, %v; want SniffNotCache, nil", res, err)
	}

	valid := filepath.Join(dir, "valid.cache")
	writeTestHeader(t, valid, Version, FormatPNG)
	if res, err := Sniff(valid); err != nil || res != SniffValid {
		t.Fatalf("Sniff(valid) = %v, %v; want SniffValid, nil", res, err)
	}

	badVersion := filepath.Join(dir, "badversion.cache")
	writeTestHeader(t, badVersion, Version+1, FormatPNG)
	if res, err := Sniff(badVersion); err != nil || res != SniffVersionMismatch {
		t.Fatalf("Sniff(badVersion) = %v, %v; want SniffVersionMismatch, nil", res, err)
	}

	badFormat := filepath.Join(dir, "badformat.cache")
	writeTestHeader(t, badFormat, Version, FormatCache)
	if res, err := Sniff(badFormat); err != nil || res != SniffBadFormat {
		t.Fatalf("Sniff(badFormat) = %v, %v; want SniffBadFormat, nil", res, err)
	}
}

func TestStat(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "source.png")
	if err := os.WriteFile(source, []byte("source"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("none", func(t *testing.T) {
		cachePath := filepath.Join(dir, "none.cache")
		status, err := Stat(cachePath, source)
		if err != nil || status != StatusNone {
			t.Fatalf("Stat = %v, %v; want StatusNone, nil", status, err)
		}
	})

	t.Run("fresh", func(t *testing.T) {
		cachePath := filepath.Join(dir, "fresh.cache")
		writeTestHeader(t, cachePath, Version, FormatPNG)
		future := time.Now().Add(time.Hour)
		if err := os.Chtimes(cachePath, future, future); err != nil {
			t.Fatal(err)
		}
		status, err := Stat(cachePath, source)
		if err != nil || status != StatusFresh {
			t.Fatalf("Stat = %v, %v; want StatusFresh, nil", status, err)
		}
	})

	t.Run("stale", func(t *testing.T) {
		cachePath := filepath.Join(dir, "stale.cache")
		writeTestHeader(t, cachePath, Version, FormatPNG)
		past := time.Now().Add(-time.Hour)
		if err := os.Chtimes(cachePath, past, past); err != nil {
			t.Fatal(err)
		}
		status, err := Stat(cachePath, source)
		if err != nil || status != StatusStale {
			t.Fatalf("Stat = %v, %v; want StatusStale, nil", status, err)
		}
	})

	t.Run("incompat", func(t *testing.T) {
		cachePath := filepath.Join(dir, "incompat.cache")
		writeTestHeader(t, cachePath, Version+1, FormatPNG)
		future := time.Now().Add(time.Hour)
		if err := os.Chtimes(cachePath, future, future); err != nil {
			t.Fatal(err)
		}
		status, err := Stat(cachePath, source)
		if err != nil || status != StatusIncompat {
			t.Fatalf("Stat = %v, %v; want StatusIncompat, nil", status, err)
		}
	})

	t.Run("missing source", func(t *testing.T) {
		if _, err := Stat(filepath.Join(dir, "x.cache"), filepath.Join(dir, "nope.png")); err == nil {
			t.Fatalf("expected error for missing source")
		}
	})
}

func TestReadInfo(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "info.cache")
	writeTestHeader(t, cachePath, Version, FormatPNG)

	info, err := ReadInfo(cachePath)
	if err != nil {
		t.Fatalf("ReadInfo: %v", err)
	}
	if info.Width != 1 || info.Height != 1 || info.Bpp != 8 || info.Version != Version {
		t.Fatalf("ReadInfo = %+v, unexpected fields", info)
	}
}
