// pkg/pager/blockfile.go
package pager

import (
	"errors"
	"fmt"
)

var (
	ErrBadBlockIndex = errors.New("block index out of range")
)

// BlockFile is a memory-mapped file divided into fixed-size blocks. Blocks
// are addressed by index starting at 0; capacity grows by the 2n+1 doubling
// rule, which keeps amortised allocation cost constant while the mapping is
// rebuilt on each grow.
type BlockFile struct {
	mmap      *MmapFile
	blockSize int
	count     int
}

// OpenBlockFile opens or creates path with at least minBlocks blocks of
// blockSize bytes each. An existing larger file keeps its size; a partial
// trailing block is not addressable.
func OpenBlockFile(path string, blockSize, minBlocks int) (*BlockFile, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("block size must be positive, got %d", blockSize)
	}
	if minBlocks < 1 {
		minBlocks = 1
	}

	m, err := OpenMmapFile(path, int64(blockSize)*int64(minBlocks))
	if err != nil {
		return nil, err
	}

	return &BlockFile{
		mmap:      m,
		blockSize: blockSize,
		count:     int(m.Size() / int64(blockSize)),
	}, nil
}

// BlockSize returns the size of each block in bytes.
func (f *BlockFile) BlockSize() int {
	return f.blockSize
}

// Count returns the number of addressable blocks.
func (f *BlockFile) Count() int {
	return f.count
}

// Block returns the mapped bytes of block i. The slice is only valid until
// the next Grow.
func (f *BlockFile) Block(i int) ([]byte, error) {
	if i < 0 || i >= f.count {
		return nil, fmt.Errorf("%w: %d of %d", ErrBadBlockIndex, i, f.count)
	}
	return f.mmap.Slice(i*f.blockSize, f.blockSize), nil
}

// Grow extends the file to 2*count+1 blocks and remaps it. All previously
// returned block slices are invalid afterwards.
func (f *BlockFile) Grow() error {
	newCount := 2*f.count + 1
	if err := f.mmap.Grow(int64(newCount) * int64(f.blockSize)); err != nil {
		return err
	}
	f.count = newCount
	return nil
}

// Sync flushes dirty blocks to disk.
func (f *BlockFile) Sync() error {
	return f.mmap.Sync()
}

// Close syncs, unmaps and closes the file.
func (f *BlockFile) Close() error {
	if err := f.mmap.Sync(); err != nil {
		f.mmap.Close()
		return err
	}
	return f.mmap.Close()
}
