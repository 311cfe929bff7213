package pngcodec

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProbe(t *testing.T) {
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "sig.png")
	if err := os.WriteFile(pngPath, pngSignature, 0644); err != nil {
		t.Fatal(err)
	}
	if res, err := Probe(pngPath); err != nil || res != ProbePNG {
		t.Fatalf("Probe(pngPath) = %v, %v; want ProbePNG, nil", res, err)
	}

	notPath := filepath.Join(dir, "not.png")
	if err := os.WriteFile(notPath, []byte("not a png"), 0644); err != nil {
		t.Fatal(err)
	}
	if res, err := Probe(notPath); err != nil || res != ProbeNotPNG {
		t.Fatalf("Probe(notPath) = %v, %v; want ProbeNotPNG, nil", res, err)
	}

	shortPath := filepath.Join(dir, "short.png")
	if err := os.WriteFile(shortPath, pngSignature[:4], 0644); err != nil {
		t.Fatal(err)
	}
	if res, err := Probe(shortPath); err != nil || res != ProbeNotPNG {
		t.Fatalf("Probe(shortPath) = %v, %v; want ProbeNotPNG, nil", res, err)
	}

	if _, err := Probe(filepath.Join(dir, "missing.png")); err == nil {
		t.Fatalf("expected Probe to error on a missing file")
	}
}
