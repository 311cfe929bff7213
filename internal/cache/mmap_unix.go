//go:build unix

package cache

import "golang.org/x/sys/unix"

// mmapFile maps size bytes of fd starting at offset 0. prot is one of
// unix.PROT_READ or unix.PROT_READ|unix.PROT_WRITE; the mapping is
// always MAP_SHARED so that stores through a writable mapping are
// visible to other processes once fsync'd/renamed (§4.3, §9 "Sparse
// writes... implementers must write via the mapping").
func mmapFile(fd int, size int, prot int) ([]byte, error) {
	return unix.Mmap(fd, 0, size, prot, unix.MAP_SHARED)
}

// munmapFile releases a mapping created by mmapFile.
func munmapFile(data []byte) error {
	return unix.Munmap(data)
}

const (
	protRead      = unix.PROT_READ
	protReadWrite = unix.PROT_READ | unix.PROT_WRITE
)
