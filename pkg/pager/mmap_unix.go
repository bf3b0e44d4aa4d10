//go:build unix || darwin || linux || freebsd || openbsd || netbsd

// pkg/pager/mmap_unix.go
package pager

import (
	"os"

	"golang.org/x/sys/unix"
)

// mapRef carries no extra state on Unix: a mapping is identified by its byte
// slice alone.
type mapRef struct{}

func mapFile(f *os.File, size int64) (mapRef, []byte, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, int(size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return mapRef{}, nil, err
	}
	return mapRef{}, data, nil
}

func unmapFile(_ mapRef, data []byte) error {
	return unix.Munmap(data)
}

func flushMap(_ mapRef, data []byte) error {
	return unix.Msync(data, unix.MS_SYNC)
}
