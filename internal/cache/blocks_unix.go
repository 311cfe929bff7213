//go:build unix

package cache

import (
	"os"
	"syscall"
)

// allocatedBlocks returns the number of 512-byte blocks actually
// allocated on disk for fi, which is what makes ReadInfo's Blocks field
// meaningful for sparse cache files (§4.2).
func allocatedBlocks(fi os.FileInfo) int64 {
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		return int64(st.Blocks)
	}
	return fi.Size() / 512
}
