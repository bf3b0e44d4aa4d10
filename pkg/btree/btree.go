// pkg/btree/btree.go
package btree

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pstiasny/inverted-index/pkg/entity"
	"github.com/pstiasny/inverted-index/pkg/pager"
)

const (
	nodeFileName = "btree.db"
	poolFileName = "strings.db"

	// Block size bounds: offsets inside a block are u16, and a block must
	// hold the header plus at least two items with full inline keys.
	minBlockSize = 128
	maxBlockSize = 65535
)

var (
	ErrNotFound = errors.New("entity not found")
)

// KeyCmp is the outcome of comparing a probe key against a node item.
type KeyCmp int

const (
	KeyBelowItem   KeyCmp = -1
	KeyMatchesItem KeyCmp = 0
	KeyAboveItem   KeyCmp = 1
)

// Options configures the forward index.
type Options struct {
	BlockSize         int // node block size in bytes (default 4096)
	MaxInnerKeyLength int // inline key truncation limit (default 128)
}

// BTree is the persistent forward index: id -> content, keyed
// lexicographically. The tree owns its node file and string pool; nodes
// reference keys and contents by pool offset. A single BTree instance must
// not be shared across goroutines.
type BTree struct {
	nodes *pager.BlockFile
	sp    *StringPool

	blockSize         int
	maxInnerKeyLength int

	rootNode     uint32
	lastUsedNode uint32
	itemCount    uint32
	lastSeqid    uint32
}

// Open opens the forward index stored in dir, creating it if absent. A file
// pair that validates and was closed cleanly is reused; anything else
// (missing, corrupt header, geometry mismatch, dirty after a crash) is
// discarded and reinitialised empty, to be rebuilt from the operation log.
// The superblock is marked dirty until Close.
func Open(dir string, opts Options) (*BTree, error) {
	blockSize := opts.BlockSize
	if blockSize == 0 {
		blockSize = DefaultBlockSize
	}
	maxKey := opts.MaxInnerKeyLength
	if maxKey == 0 {
		maxKey = DefaultMaxInnerKeyLength
	}
	if blockSize < minBlockSize || blockSize > maxBlockSize {
		return nil, fmt.Errorf("block size %d outside [%d, %d]", blockSize, minBlockSize, maxBlockSize)
	}
	if maxKey < 1 || nodeHeaderSize+2*nodeItemSize+2*maxKey > blockSize {
		return nil, fmt.Errorf("max inner key length %d does not fit two items in a %d byte block", maxKey, blockSize)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	nodePath := filepath.Join(dir, nodeFileName)
	poolPath := filepath.Join(dir, poolFileName)

	t, err := tryOpen(nodePath, poolPath, blockSize, maxKey)
	if err != nil {
		// Start over: the log is the source of truth.
		if err := os.Remove(nodePath); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err := os.Remove(poolPath); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		t, err = tryOpen(nodePath, poolPath, blockSize, maxKey)
		if err != nil {
			return nil, err
		}
	}

	// Mark dirty and flush the mark, so a crash from here on is detected.
	t.writeSuperblock(stateDirty)
	if err := t.nodes.Sync(); err != nil {
		t.nodes.Close()
		t.sp.Close()
		return nil, err
	}
	return t, nil
}

func tryOpen(nodePath, poolPath string, blockSize, maxKey int) (*BTree, error) {
	nodes, err := pager.OpenBlockFile(nodePath, blockSize, 2)
	if err != nil {
		return nil, err
	}

	t := &BTree{
		nodes:             nodes,
		blockSize:         blockSize,
		maxInnerKeyLength: maxKey,
	}

	block0, err := nodes.Block(0)
	if err != nil {
		nodes.Close()
		return nil, err
	}
	sb, sbErr := decodeSuperblock(block0)
	fresh := sbErr != nil
	if !fresh {
		switch {
		case sb.State != stateClean:
			sbErr = ErrDirtyFile
		case int(sb.BlockSize) != blockSize || int(sb.MaxInnerKeyLength) != maxKey:
			sbErr = ErrGeometryChanged
		}
		fresh = sbErr != nil
	}

	// A block 0 without the magic (a zero-filled file just created, or an
	// overwritten one) is initialised fresh here; any other bad or stale
	// header forces a rebuild through the caller.
	if fresh && sbErr != nil && !errors.Is(sbErr, ErrInvalidMagic) {
		nodes.Close()
		return nil, sbErr
	}

	sp, err := OpenStringPool(poolPath, fresh)
	if err != nil {
		nodes.Close()
		return nil, err
	}
	t.sp = sp

	if fresh {
		t.rootNode = 1
		t.lastUsedNode = 1
		t.itemCount = 0
		t.lastSeqid = 0
		root, err := nodes.Block(1)
		if err != nil {
			t.closeFiles()
			return nil, err
		}
		initNode(root, true)
	} else {
		t.rootNode = sb.RootNode
		t.lastUsedNode = sb.LastUsedNode
		t.itemCount = sb.ItemCount
		t.lastSeqid = sb.LastSeqid
	}

	return t, nil
}

func (t *BTree) closeFiles() {
	t.nodes.Close()
	t.sp.Close()
}

func (t *BTree) writeSuperblock(state uint8) {
	block0, err := t.nodes.Block(0)
	if err != nil {
		panic(err)
	}
	sb := Superblock{
		BlockSize:         uint32(t.blockSize),
		MaxInnerKeyLength: uint16(t.maxInnerKeyLength),
		State:             state,
		RootNode:          t.rootNode,
		LastUsedNode:      t.lastUsedNode,
		ItemCount:         t.itemCount,
		LastSeqid:         t.lastSeqid,
	}
	sb.encode(block0)
}

// node returns a view of the node in block i. Indices always come from the
// tree's own bookkeeping, so a bad one is a programmer error.
func (t *BTree) node(i uint32) *Node {
	if i == 0 || i > t.lastUsedNode {
		panic(fmt.Sprintf("bad node index %d", i))
	}
	data, err := t.nodes.Block(int(i))
	if err != nil {
		panic(err)
	}
	return loadNode(data)
}

// newNode allocates and formats a fresh node, growing the file if needed.
// Growing remaps the file: callers must re-derive any Node views they hold.
func (t *BTree) newNode(leaf bool) (uint32, error) {
	t.lastUsedNode++
	for int(t.lastUsedNode) >= t.nodes.Count() {
		if err := t.nodes.Grow(); err != nil {
			return 0, fmt.Errorf("grow node file: %w", err)
		}
	}
	data, err := t.nodes.Block(int(t.lastUsedNode))
	if err != nil {
		return 0, err
	}
	initNode(data, leaf)
	return t.lastUsedNode, nil
}

// compareKeys orders the probe key against item itemIdx of node n. Most
// comparisons are settled on the inline prefix; only a saturated equal
// prefix falls back to the full key in the string pool.
func (t *BTree) compareKeys(n *Node, itemIdx int, key []byte) KeyCmp {
	innerLen := n.InnerKeyLen(itemIdx)
	p := len(key)
	if innerLen < p {
		p = innerLen
	}
	cmp := bytes.Compare(key[:p], n.InlineKey(itemIdx)[:p])

	if innerLen == t.maxInnerKeyLength {
		// Truncated inline copy: an equal prefix says nothing about the
		// bytes beyond it.
		if cmp == 0 {
			cmp = bytes.Compare(key, t.sp.Get(n.KeyIdx(itemIdx)))
		}
	} else {
		if cmp == 0 {
			switch {
			case len(key) > innerLen:
				return KeyAboveItem
			case len(key) < innerLen:
				return KeyBelowItem
			}
		}
	}

	switch {
	case cmp < 0:
		return KeyBelowItem
	case cmp > 0:
		return KeyAboveItem
	default:
		return KeyMatchesItem
	}
}

// findInsertPos returns the position of the first item ordered above key,
// skipping the low fence in inner nodes.
func (t *BTree) findInsertPos(n *Node, key []byte) int {
	i := 0
	if !n.IsLeaf() {
		i = 1
	}
	for ; i < n.NumItems(); i++ {
		if t.compareKeys(n, i, key) == KeyBelowItem {
			return i
		}
	}
	return n.NumItems()
}

// Get looks up an entity by id. Returns ErrNotFound if absent.
func (t *BTree) Get(id string) (*entity.Entity, error) {
	c := t.Cursor()
	key := []byte(id)
	c.NavigateToLeaf(key)

	n := c.Node()
	if c.LastInNode() || t.compareKeys(n, c.ItemIdx(), key) != KeyMatchesItem {
		return nil, ErrNotFound
	}
	return &entity.Entity{
		ID:      id,
		Content: t.sp.GetString(StringIndex(n.ContentIdx(c.ItemIdx()))),
	}, nil
}

// Insert adds an entity. The caller guarantees the id is not yet present;
// duplicate detection happens at the database layer.
func (t *BTree) Insert(e *entity.Entity) error {
	key := []byte(e.ID)
	innerLen := len(key)
	if innerLen > t.maxInnerKeyLength {
		innerLen = t.maxInnerKeyLength
	}

	keyIdx, err := t.sp.Append(e.ID)
	if err != nil {
		return err
	}
	contentIdx, err := t.sp.Append(e.Content)
	if err != nil {
		return err
	}

	c := t.Cursor()
	c.NavigateToLeaf(key)

	insertAt := t.findInsertPos(c.Node(), key)
	if err := t.insertRec(c.Path(), keyIdx, key[:innerLen], uint32(contentIdx), insertAt); err != nil {
		return err
	}

	t.itemCount++
	return nil
}

// insertRec inserts an item into the node at the tail of path, splitting and
// promoting a separator into the parent when full. Every step either
// completes in place or recurses on a strictly shorter path; a new root is
// created at most once per call.
func (t *BTree) insertRec(path []PathEntry, keyIdx StringIndex, innerKey []byte, contentIdx uint32, insertAt int) error {
	nodeIdx := path[len(path)-1].NodeIdx
	parentPath := path[:len(path)-1]

	n := t.node(nodeIdx)
	if n.HasSpace(len(innerKey)) {
		n.AddItem(insertAt, keyIdx, contentIdx, innerKey)
		n.SetUpdateSeqid(t.lastSeqid + 1)
		return nil
	}

	// Full: split off a right sibling. Allocation may remap the file, so
	// the node view is re-derived afterwards.
	leaf := n.IsLeaf()
	siblingIdx, err := t.newNode(leaf)
	if err != nil {
		return err
	}
	n = t.node(nodeIdx)

	splitPos := n.NumItems() / 2
	if insertAt <= splitPos {
		t.splitNode(nodeIdx, siblingIdx, splitPos)
		t.node(nodeIdx).AddItem(insertAt, keyIdx, contentIdx, innerKey)
	} else {
		t.splitNode(nodeIdx, siblingIdx, splitPos+1)
		t.node(siblingIdx).AddItem(insertAt-splitPos-1, keyIdx, contentIdx, innerKey)
	}
	t.node(nodeIdx).SetUpdateSeqid(t.lastSeqid + 1)
	t.node(siblingIdx).SetUpdateSeqid(t.lastSeqid + 1)

	// Promote the right sibling's first key as a separator. The inline
	// bytes are copied out: the recursive insert may grow the file and
	// move the block they point into.
	sibling := t.node(siblingIdx)
	sepKeyIdx := sibling.KeyIdx(0)
	sepInner := append([]byte(nil), sibling.InlineKey(0)...)

	if len(parentPath) > 0 {
		idxInParent := parentPath[len(parentPath)-1].ItemIdx
		return t.insertRec(parentPath, sepKeyIdx, sepInner, siblingIdx, idxInParent+1)
	}

	// Split at the root: install a new root with the left node's first key
	// as the low fence and the separator above it.
	newRootIdx, err := t.newNode(false)
	if err != nil {
		return err
	}
	left := t.node(nodeIdx)
	fenceKeyIdx := left.KeyIdx(0)
	fenceInner := append([]byte(nil), left.InlineKey(0)...)

	root := t.node(newRootIdx)
	root.AddItem(0, fenceKeyIdx, nodeIdx, fenceInner)
	root.AddItem(1, sepKeyIdx, siblingIdx, sepInner)
	root.SetUpdateSeqid(t.lastSeqid + 1)
	t.rootNode = newRootIdx
	return nil
}

// splitNode moves items [splitPos, numItems) of left into the empty right
// sibling and repacks the remainder of left tightly, preserving key order in
// both blocks. The right node takes over left's sibling link.
func (t *BTree) splitNode(leftIdx, rightIdx uint32, splitPos int) {
	left := t.node(leftIdx)
	right := t.node(rightIdx)

	scratch := make([]byte, t.blockSize)
	tmp := initNode(scratch, left.IsLeaf())
	tmp.SetUpdateSeqid(left.UpdateSeqid())

	for i := 0; i < splitPos; i++ {
		tmp.AddItem(tmp.NumItems(), left.KeyIdx(i), left.ContentIdx(i), left.InlineKey(i))
	}
	for i := splitPos; i < left.NumItems(); i++ {
		right.AddItem(right.NumItems(), left.KeyIdx(i), left.ContentIdx(i), left.InlineKey(i))
	}

	right.SetNextIdx(left.NextIdx())
	tmp.SetNextIdx(rightIdx)

	copy(left.data, scratch)
}

// ItemCount returns the number of entities in the tree.
func (t *BTree) ItemCount() int {
	return int(t.itemCount)
}

// LastSeqid returns the last log seqid applied to the tree.
func (t *BTree) LastSeqid() uint32 {
	return t.lastSeqid
}

// SetLastSeqid records that all log records up to seqid are reflected in
// the tree. Persisted in the superblock on Sync and Close.
func (t *BTree) SetLastSeqid(seqid uint32) {
	t.lastSeqid = seqid
}

// Sync flushes the pool and node file, superblock included, still marked
// dirty.
func (t *BTree) Sync() error {
	if err := t.sp.Sync(); err != nil {
		return err
	}
	t.writeSuperblock(stateDirty)
	return t.nodes.Sync()
}

// Close flushes everything and marks the superblock clean, making the file
// pair reusable on the next Open.
func (t *BTree) Close() error {
	if err := t.sp.Close(); err != nil {
		t.nodes.Close()
		return err
	}
	t.writeSuperblock(stateClean)
	return t.nodes.Close()
}
