// pkg/btree/visitor.go
package btree

// Visitor receives hooks from a depth-first walk of the tree. Item hooks
// fire in key order; node hooks bracket each block.
type Visitor interface {
	EnterNode(c *Cursor)
	EnterLeaf(c *Cursor)
	EnterNodeItem(c *Cursor)
	EnterLeafItem(c *Cursor)
	ExitNode(c *Cursor)
	ExitLeaf(c *Cursor)
}

// Walk drives v over the whole tree with a fresh cursor. The walk is
// iterative: a node is entered, its items visited (descending through inner
// items), then exited and the cursor moves on in the parent.
func (t *BTree) Walk(v Visitor) {
	c := t.Cursor()

	enter := func() {
		if c.Leaf() {
			v.EnterLeaf(c)
		} else {
			v.EnterNode(c)
		}
	}
	exit := func() {
		if c.Leaf() {
			v.ExitLeaf(c)
		} else {
			v.ExitNode(c)
		}
	}

	enter()
	for {
		if c.Top() && c.LastInNode() {
			break
		}

		if c.LastInNode() {
			exit()
			c.Up()
			c.Next()
			continue
		}

		if c.Leaf() {
			for !c.LastInNode() {
				v.EnterLeafItem(c)
				c.Next()
			}
		} else {
			v.EnterNodeItem(c)
			c.Down()
			enter()
		}
	}
	exit()
}
