//go:build !unix

package cache

import "fmt"

// mmapFile is unimplemented on non-unix platforms; the cache store's
// mmap-backed serving path (§4.3) has no portable equivalent outside
// the unix mmap(2) family.
func mmapFile(fd int, size int, prot int) ([]byte, error) {
	return nil, fmt.Errorf("cache: mmap not supported on this platform")
}

func munmapFile(data []byte) error {
	return fmt.Errorf("cache: mmap not supported on this platform")
}

const (
	protRead      = 0
	protReadWrite = 0
)
