// pkg/btree/stringpool.go
package btree

import (
	"bytes"
	"fmt"

	"github.com/pstiasny/inverted-index/pkg/pager"
)

// StringIndex addresses a NUL-terminated string in the pool, as a byte
// offset from the start of the arena. Offsets are stable for the lifetime
// of the pool: the arena only ever grows.
type StringIndex uint32

// StringPool is an append-only arena of NUL-terminated strings backed by a
// memory-mapped file. The file starts with a 32-byte checksummed header;
// the arena follows.
type StringPool struct {
	mmap    *pager.MmapFile
	freeIdx uint32
}

const poolInitialSize = poolHeaderSize + 1024

// OpenStringPool opens or creates the pool file at path. If reset is true,
// the pool is reinitialised empty; otherwise a header that does not validate
// is returned as an error.
func OpenStringPool(path string, reset bool) (*StringPool, error) {
	m, err := pager.OpenMmapFile(path, poolInitialSize)
	if err != nil {
		return nil, err
	}

	p := &StringPool{mmap: m}
	if !reset {
		freeIdx, err := decodePoolHeader(m.Slice(0, poolHeaderSize))
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("string pool %s: %w", path, err)
		}
		p.freeIdx = freeIdx
		return p, nil
	}

	p.freeIdx = 0
	p.writeHeader()
	return p, nil
}

func (p *StringPool) writeHeader() {
	encodePoolHeader(p.mmap.Slice(0, poolHeaderSize), p.freeIdx)
}

// capacity returns the arena bytes currently available.
func (p *StringPool) capacity() uint32 {
	return uint32(p.mmap.Size()) - poolHeaderSize
}

// Append stores s followed by a NUL terminator and returns its index. The
// arena grows by doubling (or to fit, whichever is larger), so amortised
// cost stays constant.
func (p *StringPool) Append(s string) (StringIndex, error) {
	need := uint32(len(s)) + 1
	if p.freeIdx+need > p.capacity() {
		newSize := 2 * p.mmap.Size()
		if fit := int64(poolHeaderSize + p.freeIdx + need); fit > newSize {
			newSize = fit
		}
		if err := p.mmap.Grow(newSize); err != nil {
			return 0, fmt.Errorf("grow string pool: %w", err)
		}
	}

	at := p.freeIdx
	dst := p.mmap.Slice(int(poolHeaderSize+at), int(need))
	copy(dst, s)
	dst[len(s)] = 0
	p.freeIdx += need

	return StringIndex(at), nil
}

// Get returns the NUL-terminated string at index i, without the terminator.
// An index outside the written arena is a programmer error.
func (p *StringPool) Get(i StringIndex) []byte {
	if uint32(i) >= p.freeIdx {
		panic(fmt.Sprintf("string pool index %d out of range %d", i, p.freeIdx))
	}
	arena := p.mmap.Slice(poolHeaderSize, int(p.freeIdx))
	s := arena[i:]
	end := bytes.IndexByte(s, 0)
	if end < 0 {
		panic(fmt.Sprintf("string pool entry at %d is not terminated", i))
	}
	return s[:end]
}

// GetString is Get returning a string copy.
func (p *StringPool) GetString(i StringIndex) string {
	return string(p.Get(i))
}

// FreeIdx returns the number of arena bytes in use.
func (p *StringPool) FreeIdx() uint32 {
	return p.freeIdx
}

// Sync writes the header and flushes the mapping to disk.
func (p *StringPool) Sync() error {
	p.writeHeader()
	return p.mmap.Sync()
}

// Close syncs and unmaps the pool.
func (p *StringPool) Close() error {
	p.writeHeader()
	if err := p.mmap.Sync(); err != nil {
		p.mmap.Close()
		return err
	}
	return p.mmap.Close()
}
