// pkg/btree/printer.go
package btree

import (
	"fmt"
	"io"
)

// treePrinter renders the tree structure for debugging.
type treePrinter struct {
	out               io.Writer
	prefix            string
	printInnerKeyData bool
}

func (p *treePrinter) EnterNode(c *Cursor) {
	fmt.Fprintf(p.out, "%senter inner node %d\n", p.prefix, c.NodeIdx())
	p.prefix += "  "
}

func (p *treePrinter) EnterLeaf(c *Cursor) {
	fmt.Fprintf(p.out, "%senter leaf node %d\n", p.prefix, c.NodeIdx())
	p.prefix += "  "
}

func (p *treePrinter) EnterNodeItem(c *Cursor) {
	fmt.Fprintf(p.out, "%sinner node key #%d: %s\n", p.prefix, c.ItemIdx(), c.Key())
	if p.printInnerKeyData {
		n := c.Node()
		fmt.Fprintf(p.out, "%s  inline key data: %s\n", p.prefix, n.InlineKey(c.ItemIdx()))
	}
}

func (p *treePrinter) EnterLeafItem(c *Cursor) {
	fmt.Fprintf(p.out, "%sleaf node key #%d: %s\n", p.prefix, c.ItemIdx(), c.Key())
	if p.printInnerKeyData {
		n := c.Node()
		fmt.Fprintf(p.out, "%s  inline key data: %s offset: %d length: %d\n",
			p.prefix, n.InlineKey(c.ItemIdx()), n.InnerKeyOffset(c.ItemIdx()), n.InnerKeyLen(c.ItemIdx()))
	}
	fmt.Fprintf(p.out, "%s  content: %s\n", p.prefix, c.Content())
}

func (p *treePrinter) ExitNode(c *Cursor) {
	p.prefix = p.prefix[:len(p.prefix)-2]
	fmt.Fprintf(p.out, "%sexit inner node %d\n", p.prefix, c.NodeIdx())
}

func (p *treePrinter) ExitLeaf(c *Cursor) {
	p.prefix = p.prefix[:len(p.prefix)-2]
	fmt.Fprintf(p.out, "%sexit leaf node %d\n", p.prefix, c.NodeIdx())
}

// Dump writes a textual rendering of the tree to w, inline key data
// included.
func (t *BTree) Dump(w io.Writer) {
	t.Walk(&treePrinter{out: w, printInnerKeyData: true})
}
