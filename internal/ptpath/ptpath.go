// Package ptpath provides the path-extension manipulation the cache layer
// needs to derive sibling paths (.cache, .tmp) from a source image path.
// This mirrors src/lib/path.c's path_with_fext in the reference
// implementation: replace the final extension of a path with a new one.
package ptpath

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MaxPathLen bounds the destination buffer the way the reference
// implementation's fixed "char tmp_path[1024]" stack buffers do.
const MaxPathLen = 1024

// WithExt replaces path's final extension with ext (which should include
// the leading dot, e.g. ".cache"). Returns an error if path has no
// extension, or if the result would not fit MaxPathLen.
func WithExt(path, ext string) (string, error) {
	orig := filepath.Ext(path)
	if orig == "" {
		return "", fmt.Errorf("ptpath: %q has no extension", path)
	}

	base := strings.TrimSuffix(path, orig)
	out := base + ext

	if len(out) >= MaxPathLen {
		return "", fmt.Errorf("ptpath: result path too long: %d bytes", len(out))
	}

	return out, nil
}
