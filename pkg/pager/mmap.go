// pkg/pager/mmap.go
// Package pager provides memory-mapped file access for the storage layer:
// a low-level MmapFile plus the fixed-block file built on it.
//
// The map/unmap/flush primitives are platform-specific (mmap_unix.go,
// mmap_windows.go); the open/grow/close lifecycle around them is shared.
package pager

import (
	"fmt"
	"os"
)

// MmapFile is a read-write memory-mapped file. Growing the file remaps it,
// so callers must never retain a slice into the mapping across an operation
// that may grow it; re-slice through Data or Slice instead.
type MmapFile struct {
	f    *os.File
	ref  mapRef
	data []byte
	size int64
}

// OpenMmapFile opens or creates path and maps it read-write. A file smaller
// than minSize is extended first; an empty file cannot be mapped, so minSize
// must be positive.
func OpenMmapFile(path string, minSize int64) (*MmapFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	size := stat.Size()
	if size < minSize {
		if err := f.Truncate(minSize); err != nil {
			f.Close()
			return nil, fmt.Errorf("extend %s: %w", path, err)
		}
		size = minSize
	}
	if size == 0 {
		f.Close()
		return nil, fmt.Errorf("mmap %s: cannot map empty file", path)
	}

	ref, data, err := mapFile(f, size)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}

	return &MmapFile{f: f, ref: ref, data: data, size: size}, nil
}

// Size returns the current mapped size in bytes.
func (m *MmapFile) Size() int64 {
	return m.size
}

// Data returns the full mapped region.
func (m *MmapFile) Data() []byte {
	return m.data
}

// Slice returns the mapped bytes at [offset, offset+length), or nil if the
// range falls outside the mapping.
func (m *MmapFile) Slice(offset, length int) []byte {
	if offset < 0 || length < 0 || offset+length > len(m.data) {
		return nil
	}
	return m.data[offset : offset+length]
}

// Sync flushes dirty mapped pages to disk.
func (m *MmapFile) Sync() error {
	return flushMap(m.ref, m.data)
}

// Grow extends the file to newSize and remaps it; any slice obtained from
// the old mapping is invalid afterwards. The old view is flushed and dropped
// before the file is resized: shared-mapping writes sit in the page cache
// and must reach the file before the view goes away.
func (m *MmapFile) Grow(newSize int64) error {
	if newSize <= m.size {
		return nil
	}

	if err := flushMap(m.ref, m.data); err != nil {
		return fmt.Errorf("flush before grow: %w", err)
	}
	if err := unmapFile(m.ref, m.data); err != nil {
		return fmt.Errorf("unmap before grow: %w", err)
	}
	m.data = nil

	if err := m.f.Truncate(newSize); err != nil {
		return fmt.Errorf("extend %s: %w", m.f.Name(), err)
	}

	ref, data, err := mapFile(m.f, newSize)
	if err != nil {
		return fmt.Errorf("remap %s: %w", m.f.Name(), err)
	}
	m.ref = ref
	m.data = data
	m.size = newSize
	return nil
}

// Close unmaps and closes the file.
func (m *MmapFile) Close() error {
	var firstErr error

	if m.data != nil {
		if err := unmapFile(m.ref, m.data); err != nil {
			firstErr = err
		}
		m.data = nil
	}

	if m.f != nil {
		if err := m.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		m.f = nil
	}

	return firstErr
}
