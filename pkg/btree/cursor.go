// pkg/btree/cursor.go
package btree

import "fmt"

// PathEntry is one breadcrumb of a cursor's descent: a node and the item
// index the cursor sits at (or descended through) inside it.
type PathEntry struct {
	NodeIdx uint32
	ItemIdx int
}

// Cursor is a stateful position in the tree: the current node and item plus
// the breadcrumb path from the root down to and including the current node.
// It holds a non-owning handle on the tree; node views are re-derived from
// indices on every access, so the cursor stays valid across file growth.
type Cursor struct {
	tree    *BTree
	nodeIdx uint32
	itemIdx int
	path    []PathEntry
}

// Cursor returns a new cursor positioned at the first item of the root.
func (t *BTree) Cursor() *Cursor {
	return &Cursor{
		tree:    t,
		nodeIdx: t.rootNode,
		itemIdx: 0,
		path:    []PathEntry{{NodeIdx: t.rootNode, ItemIdx: 0}},
	}
}

// Node returns a view of the current node.
func (c *Cursor) Node() *Node {
	return c.tree.node(c.nodeIdx)
}

// NodeIdx returns the current node's block index.
func (c *Cursor) NodeIdx() uint32 {
	return c.nodeIdx
}

// ItemIdx returns the current item index within the node.
func (c *Cursor) ItemIdx() int {
	return c.itemIdx
}

// Path returns the breadcrumb path from the root to the current node. The
// slice aliases cursor state and is invalidated by navigation.
func (c *Cursor) Path() []PathEntry {
	return c.path
}

func (c *Cursor) setItemIdx(idx int) {
	c.itemIdx = idx
	c.path[len(c.path)-1].ItemIdx = idx
}

// Next advances to the next item within the current node. It may move one
// past the last item; LastInNode reports that state.
func (c *Cursor) Next() {
	c.setItemIdx(c.itemIdx + 1)
}

// Down descends through the current inner item into its child.
func (c *Cursor) Down() {
	n := c.Node()
	if n.IsLeaf() {
		panic("cannot descend from a leaf")
	}
	c.nodeIdx = n.ContentIdx(c.itemIdx)
	c.itemIdx = 0
	c.path = append(c.path, PathEntry{NodeIdx: c.nodeIdx, ItemIdx: 0})
}

// Up pops the breadcrumb and restores the position in the parent.
func (c *Cursor) Up() {
	if len(c.path) < 2 {
		panic("cannot ascend from the root")
	}
	c.path = c.path[:len(c.path)-1]
	top := c.path[len(c.path)-1]
	c.nodeIdx = top.NodeIdx
	c.itemIdx = top.ItemIdx
}

// Top reports whether the cursor is at the root node.
func (c *Cursor) Top() bool {
	return c.nodeIdx == c.tree.rootNode
}

// Leaf reports whether the current node is a leaf.
func (c *Cursor) Leaf() bool {
	return c.Node().IsLeaf()
}

// LastInNode reports whether the cursor has moved past the node's items.
func (c *Cursor) LastInNode() bool {
	return c.itemIdx >= c.Node().NumItems()
}

// NodeHasNext reports whether another item follows in the current node.
func (c *Cursor) NodeHasNext() bool {
	return c.itemIdx+1 < c.Node().NumItems()
}

// Key returns the current item's full key via the string pool.
func (c *Cursor) Key() string {
	n := c.Node()
	if c.itemIdx >= n.NumItems() {
		panic(fmt.Sprintf("cursor past node end: %d", c.itemIdx))
	}
	return c.tree.sp.GetString(n.KeyIdx(c.itemIdx))
}

// Content returns the current leaf item's content via the string pool.
// Inner nodes expose separator keys but no user content.
func (c *Cursor) Content() string {
	n := c.Node()
	if !n.IsLeaf() {
		panic("content of a non-leaf item")
	}
	if c.itemIdx >= n.NumItems() {
		panic(fmt.Sprintf("cursor past node end: %d", c.itemIdx))
	}
	return c.tree.sp.GetString(StringIndex(n.ContentIdx(c.itemIdx)))
}

// NavigateToItem binary-searches the current node for key and positions the
// cursor on the match, or on the last item ordered at or below the probe
// (clamped to the first item). In inner nodes the low fence at index 0 is
// never probed as an upper bound; it is reached only by backing off.
func (c *Cursor) NavigateToItem(key []byte) {
	n := c.Node()
	low, high := 0, n.NumItems()
	if !n.IsLeaf() && low < high {
		low = 1
	}

	cmp := KeyBelowItem
	for high > low {
		mid := (low + high) / 2
		c.setItemIdx(mid)
		cmp = c.tree.compareKeys(n, mid, key)
		if cmp == KeyMatchesItem {
			break
		} else if cmp == KeyBelowItem {
			high = mid
		} else {
			low = mid + 1
		}
	}
	if cmp == KeyBelowItem && c.itemIdx > 0 {
		c.setItemIdx(c.itemIdx - 1)
	}
}

// NavigateToLeaf descends from the current position to the leaf where key
// lives, leaving the cursor at the lookup/insertion point.
func (c *Cursor) NavigateToLeaf(key []byte) {
	for !c.Leaf() {
		c.NavigateToItem(key)
		c.Down()
	}
	c.NavigateToItem(key)
}
