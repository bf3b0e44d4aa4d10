// pkg/pager/blockfile_test.go
package pager

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockFileOpenAndWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.db")

	f, err := OpenBlockFile(path, 256, 2)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, 2, f.Count())
	require.Equal(t, 256, f.BlockSize())

	b, err := f.Block(1)
	require.NoError(t, err)
	require.Len(t, b, 256)
	copy(b, "hello")

	b, err = f.Block(1)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), b[:5])
}

func TestBlockFileBadIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.db")

	f, err := OpenBlockFile(path, 256, 2)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Block(2)
	require.ErrorIs(t, err, ErrBadBlockIndex)
	_, err = f.Block(-1)
	require.ErrorIs(t, err, ErrBadBlockIndex)
}

func TestBlockFileGrowDoubling(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.db")

	f, err := OpenBlockFile(path, 128, 1)
	require.NoError(t, err)
	defer f.Close()

	b, _ := f.Block(0)
	copy(b, "keep me")

	require.NoError(t, f.Grow())
	require.Equal(t, 3, f.Count())
	require.NoError(t, f.Grow())
	require.Equal(t, 7, f.Count())

	// Contents survive the remap.
	b, err = f.Block(0)
	require.NoError(t, err)
	require.Equal(t, []byte("keep me"), b[:7])
}

func TestBlockFilePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.db")

	f, err := OpenBlockFile(path, 128, 2)
	require.NoError(t, err)
	b, _ := f.Block(1)
	copy(b, "durable")
	require.NoError(t, f.Close())

	f, err = OpenBlockFile(path, 128, 1)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, 2, f.Count())
	b, _ = f.Block(1)
	require.Equal(t, []byte("durable"), b[:7])
}

func TestMmapFileGrow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena")

	m, err := OpenMmapFile(path, 64)
	require.NoError(t, err)
	defer m.Close()

	copy(m.Data(), "front")
	require.NoError(t, m.Grow(4096))
	require.EqualValues(t, 4096, m.Size())
	require.Equal(t, []byte("front"), m.Slice(0, 5))

	// Shrinking is a no-op.
	require.NoError(t, m.Grow(64))
	require.EqualValues(t, 4096, m.Size())
}

func TestMmapFileSliceBounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena")

	m, err := OpenMmapFile(path, 64)
	require.NoError(t, err)
	defer m.Close()

	require.NotNil(t, m.Slice(0, 64))
	require.Nil(t, m.Slice(1, 64))
	require.Nil(t, m.Slice(-1, 4))
}
