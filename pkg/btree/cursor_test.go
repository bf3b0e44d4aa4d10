// pkg/btree/cursor_test.go
package btree

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pstiasny/inverted-index/pkg/entity"
)

func TestCursorNavigateWithinLeaf(t *testing.T) {
	tree := openTree(t, t.TempDir(), smallOpts)
	defer tree.Close()

	for _, id := range []string{"b", "d", "f"} {
		require.NoError(t, tree.Insert(&entity.Entity{ID: id, Content: "c" + id}))
	}

	c := tree.Cursor()
	c.NavigateToLeaf([]byte("d"))
	require.True(t, c.Leaf())
	require.Equal(t, "d", c.Key())
	require.Equal(t, "cd", c.Content())

	// A probe between items lands on the item below it.
	c = tree.Cursor()
	c.NavigateToLeaf([]byte("e"))
	require.Equal(t, "d", c.Key())

	// A probe below everything lands on the first item.
	c = tree.Cursor()
	c.NavigateToLeaf([]byte("a"))
	require.Equal(t, 0, c.ItemIdx())
	require.Equal(t, "b", c.Key())
}

func TestCursorNextAndPredicates(t *testing.T) {
	tree := openTree(t, t.TempDir(), smallOpts)
	defer tree.Close()

	for _, id := range []string{"a", "b"} {
		require.NoError(t, tree.Insert(&entity.Entity{ID: id, Content: "v"}))
	}

	c := tree.Cursor()
	require.True(t, c.Top())
	require.True(t, c.Leaf())
	require.True(t, c.NodeHasNext())
	require.False(t, c.LastInNode())
	require.Equal(t, "a", c.Key())

	c.Next()
	require.Equal(t, "b", c.Key())
	require.False(t, c.NodeHasNext())

	c.Next()
	require.True(t, c.LastInNode())
}

func TestCursorDownUp(t *testing.T) {
	tree := openTree(t, t.TempDir(), smallOpts)
	defer tree.Close()

	// Grow past one split so the root is an inner node.
	for i := 0; i < 50; i++ {
		require.NoError(t, tree.Insert(&entity.Entity{ID: fmt.Sprintf("k%02d", i), Content: "v"}))
	}

	c := tree.Cursor()
	require.False(t, c.Leaf())
	require.True(t, c.Top())
	rootIdx := c.NodeIdx()

	c.Down()
	require.False(t, c.Top())
	require.Len(t, c.Path(), 2)

	c.Up()
	require.Equal(t, rootIdx, c.NodeIdx())
	require.Equal(t, 0, c.ItemIdx())
	require.Len(t, c.Path(), 1)
}

// keyCollector gathers leaf keys in walk order.
type keyCollector struct {
	keys []string
}

func (k *keyCollector) EnterNode(c *Cursor)     {}
func (k *keyCollector) EnterLeaf(c *Cursor)     {}
func (k *keyCollector) ExitNode(c *Cursor)      {}
func (k *keyCollector) ExitLeaf(c *Cursor)      {}
func (k *keyCollector) EnterNodeItem(c *Cursor) {}
func (k *keyCollector) EnterLeafItem(c *Cursor) {
	k.keys = append(k.keys, c.Key())
}

func TestWalkYieldsKeysInOrder(t *testing.T) {
	tree := openTree(t, t.TempDir(), smallOpts)
	defer tree.Close()

	const n = 300
	order := []int{}
	for i := 0; i < n; i++ {
		order = append(order, (i*7919)%n)
	}
	seen := map[int]bool{}
	inserted := 0
	for _, i := range order {
		if seen[i] {
			continue
		}
		seen[i] = true
		inserted++
		require.NoError(t, tree.Insert(&entity.Entity{ID: fmt.Sprintf("%03d", i), Content: "v"}))
	}

	var kc keyCollector
	tree.Walk(&kc)

	require.Len(t, kc.keys, inserted)
	for i := 1; i < len(kc.keys); i++ {
		require.Less(t, kc.keys[i-1], kc.keys[i])
	}
}

func TestWalkEmptyTree(t *testing.T) {
	tree := openTree(t, t.TempDir(), smallOpts)
	defer tree.Close()

	var kc keyCollector
	tree.Walk(&kc)
	require.Empty(t, kc.keys)
}

func TestDump(t *testing.T) {
	tree := openTree(t, t.TempDir(), smallOpts)
	defer tree.Close()

	require.NoError(t, tree.Insert(&entity.Entity{ID: "foo", Content: "bar"}))

	var buf bytes.Buffer
	tree.Dump(&buf)

	out := buf.String()
	require.Contains(t, out, "enter leaf node")
	require.Contains(t, out, "leaf node key #0: foo")
	require.Contains(t, out, "content: bar")
	require.Contains(t, out, "exit leaf node")
}
