// pkg/btree/check.go
package btree

import "fmt"

// checkVisitor verifies the tree's ordering invariants during a walk:
// leaf keys strictly ascending over the whole tree, every inner separator
// above the maximum key of the subtree to its left and at or below the
// minimum key of the subtree to its right.
type checkVisitor struct {
	prevLeafKey    string
	haveLeafKey    bool
	pendingSep     string
	havePendingSep bool
	items          int
	errs           []error
}

func (v *checkVisitor) EnterNode(c *Cursor) {}
func (v *checkVisitor) EnterLeaf(c *Cursor) {}
func (v *checkVisitor) ExitNode(c *Cursor)  {}
func (v *checkVisitor) ExitLeaf(c *Cursor)  {}

func (v *checkVisitor) EnterNodeItem(c *Cursor) {
	if c.ItemIdx() == 0 {
		// The low fence only floors the leftmost subtree; it is not a
		// separator.
		return
	}
	sep := c.Key()
	if v.haveLeafKey && sep <= v.prevLeafKey {
		v.errs = append(v.errs, fmt.Errorf(
			"node %d: separator %q not above left subtree max %q",
			c.NodeIdx(), sep, v.prevLeafKey))
	}
	v.pendingSep = sep
	v.havePendingSep = true
}

func (v *checkVisitor) EnterLeafItem(c *Cursor) {
	key := c.Key()
	v.items++
	if v.haveLeafKey && key <= v.prevLeafKey {
		v.errs = append(v.errs, fmt.Errorf(
			"leaf %d: key %q not above previous key %q",
			c.NodeIdx(), key, v.prevLeafKey))
	}
	if v.havePendingSep && key < v.pendingSep {
		v.errs = append(v.errs, fmt.Errorf(
			"leaf %d: key %q below separator %q",
			c.NodeIdx(), key, v.pendingSep))
	}
	v.havePendingSep = false
	v.prevLeafKey = key
	v.haveLeafKey = true
}

// Check walks the whole tree and returns the first violated invariant, or
// nil if the structure is sound and the leaf item count matches the tree's
// bookkeeping.
func (t *BTree) Check() error {
	v := &checkVisitor{}
	t.Walk(v)
	if len(v.errs) > 0 {
		return v.errs[0]
	}
	if v.items != int(t.itemCount) {
		return fmt.Errorf("walk saw %d items, tree counts %d", v.items, t.itemCount)
	}
	return nil
}
