// pkg/btree/format.go
// Package btree implements the persistent forward index: a B+tree over
// fixed-size memory-mapped blocks with prefix-truncated inline keys and a
// side string pool holding the full keys and contents.
//
// The node file begins with a checksummed superblock in block 0; nodes
// occupy blocks 1 and up. The string pool lives in its own file with a
// 32-byte header followed by the arena bytes.
package btree

import (
	"encoding/binary"
	"errors"

	"github.com/cespare/xxhash/v2"
)

const (
	// SuperblockMagic identifies the node file. Exactly 16 bytes.
	SuperblockMagic = "IIdx btree 1\x00\x00\x00\x00"

	// PoolMagic identifies the string pool file. Exactly 16 bytes.
	PoolMagic = "IIdx strpool 1\x00\x00"

	// FormatVersion is the on-disk format version of both files.
	FormatVersion = 1

	// DefaultBlockSize is the default node block size in bytes.
	DefaultBlockSize = 4096

	// DefaultMaxInnerKeyLength is the default inline key truncation limit.
	DefaultMaxInnerKeyLength = 128
)

// Superblock field offsets within block 0 of the node file.
const (
	sbOffMagic        = 0  // 16 bytes: magic string
	sbOffVersion      = 16 // 4 bytes: format version
	sbOffBlockSize    = 20 // 4 bytes: block size in bytes
	sbOffMaxInnerKey  = 24 // 2 bytes: inline key truncation limit
	sbOffState        = 26 // 1 byte: clean/dirty marker
	sbOffReserved     = 27 // 1 byte: reserved
	sbOffRootNode     = 28 // 4 bytes: root node block index
	sbOffLastUsedNode = 32 // 4 bytes: highest allocated node block index
	sbOffItemCount    = 36 // 4 bytes: total leaf items in the tree
	sbOffLastSeqid    = 40 // 4 bytes: last log seqid applied to the tree
	sbOffChecksum     = 44 // 8 bytes: xxhash64 of bytes [0, 44)
	superblockSize    = 52
)

// String pool header field offsets.
const (
	poolOffMagic    = 0  // 16 bytes: magic string
	poolOffVersion  = 16 // 4 bytes: format version
	poolOffFreeIdx  = 20 // 4 bytes: arena bytes in use
	poolOffChecksum = 24 // 8 bytes: xxhash64 of bytes [0, 24)
	poolHeaderSize  = 32
)

// Superblock state values.
const (
	stateClean = 1
	stateDirty = 2
)

var (
	ErrInvalidMagic    = errors.New("invalid magic: not an index file")
	ErrInvalidVersion  = errors.New("unsupported format version")
	ErrBadChecksum     = errors.New("header checksum mismatch")
	ErrDirtyFile       = errors.New("file was not closed cleanly")
	ErrGeometryChanged = errors.New("file geometry does not match options")
)

// Superblock is the decoded block-0 header of the node file.
type Superblock struct {
	BlockSize         uint32
	MaxInnerKeyLength uint16
	State             uint8
	RootNode          uint32
	LastUsedNode      uint32
	ItemCount         uint32
	LastSeqid         uint32
}

// encode serialises the superblock into buf, which must be at least
// superblockSize bytes (block 0 of the node file).
func (sb *Superblock) encode(buf []byte) {
	copy(buf[sbOffMagic:], SuperblockMagic)
	binary.LittleEndian.PutUint32(buf[sbOffVersion:], FormatVersion)
	binary.LittleEndian.PutUint32(buf[sbOffBlockSize:], sb.BlockSize)
	binary.LittleEndian.PutUint16(buf[sbOffMaxInnerKey:], sb.MaxInnerKeyLength)
	buf[sbOffState] = sb.State
	buf[sbOffReserved] = 0
	binary.LittleEndian.PutUint32(buf[sbOffRootNode:], sb.RootNode)
	binary.LittleEndian.PutUint32(buf[sbOffLastUsedNode:], sb.LastUsedNode)
	binary.LittleEndian.PutUint32(buf[sbOffItemCount:], sb.ItemCount)
	binary.LittleEndian.PutUint32(buf[sbOffLastSeqid:], sb.LastSeqid)
	binary.LittleEndian.PutUint64(buf[sbOffChecksum:], xxhash.Sum64(buf[:sbOffChecksum]))
}

// decodeSuperblock validates and decodes block 0 of the node file.
func decodeSuperblock(buf []byte) (*Superblock, error) {
	if len(buf) < superblockSize {
		return nil, ErrInvalidMagic
	}
	if string(buf[sbOffMagic:sbOffMagic+16]) != SuperblockMagic {
		return nil, ErrInvalidMagic
	}
	if binary.LittleEndian.Uint32(buf[sbOffVersion:]) != FormatVersion {
		return nil, ErrInvalidVersion
	}
	if binary.LittleEndian.Uint64(buf[sbOffChecksum:]) != xxhash.Sum64(buf[:sbOffChecksum]) {
		return nil, ErrBadChecksum
	}

	return &Superblock{
		BlockSize:         binary.LittleEndian.Uint32(buf[sbOffBlockSize:]),
		MaxInnerKeyLength: binary.LittleEndian.Uint16(buf[sbOffMaxInnerKey:]),
		State:             buf[sbOffState],
		RootNode:          binary.LittleEndian.Uint32(buf[sbOffRootNode:]),
		LastUsedNode:      binary.LittleEndian.Uint32(buf[sbOffLastUsedNode:]),
		ItemCount:         binary.LittleEndian.Uint32(buf[sbOffItemCount:]),
		LastSeqid:         binary.LittleEndian.Uint32(buf[sbOffLastSeqid:]),
	}, nil
}

// encodePoolHeader serialises the string pool header into buf.
func encodePoolHeader(buf []byte, freeIdx uint32) {
	copy(buf[poolOffMagic:], PoolMagic)
	binary.LittleEndian.PutUint32(buf[poolOffVersion:], FormatVersion)
	binary.LittleEndian.PutUint32(buf[poolOffFreeIdx:], freeIdx)
	binary.LittleEndian.PutUint64(buf[poolOffChecksum:], xxhash.Sum64(buf[:poolOffChecksum]))
}

// decodePoolHeader validates the string pool header and returns the free
// index.
func decodePoolHeader(buf []byte) (uint32, error) {
	if len(buf) < poolHeaderSize {
		return 0, ErrInvalidMagic
	}
	if string(buf[poolOffMagic:poolOffMagic+16]) != PoolMagic {
		return 0, ErrInvalidMagic
	}
	if binary.LittleEndian.Uint32(buf[poolOffVersion:]) != FormatVersion {
		return 0, ErrInvalidVersion
	}
	if binary.LittleEndian.Uint64(buf[poolOffChecksum:]) != xxhash.Sum64(buf[:poolOffChecksum]) {
		return 0, ErrBadChecksum
	}
	return binary.LittleEndian.Uint32(buf[poolOffFreeIdx:]), nil
}
