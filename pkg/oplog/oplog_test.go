// pkg/oplog/oplog_test.go
package oplog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pstiasny/inverted-index/pkg/entity"
)

func op(seqid uint32, id, content string) *entity.AddOp {
	return &entity.AddOp{Seqid: seqid, Entity: &entity.Entity{ID: id, Content: content}}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log")

	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.WriteOp(op(1, "id1", "test content")))
	require.NoError(t, l.WriteOp(op(2, "id2", "")))
	require.NoError(t, l.Close())

	l, err = Open(path)
	require.NoError(t, err)
	defer l.Close()

	got, err := l.ReadOp()
	require.NoError(t, err)
	require.EqualValues(t, 1, got.Seqid)
	require.Equal(t, "id1", got.Entity.ID)
	require.Equal(t, "test content", got.Entity.Content)

	got, err = l.ReadOp()
	require.NoError(t, err)
	require.EqualValues(t, 2, got.Seqid)
	require.Equal(t, "id2", got.Entity.ID)
	require.Equal(t, "", got.Entity.Content)

	got, err = l.ReadOp()
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestEmptyLog(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "log"))
	require.NoError(t, err)
	defer l.Close()

	got, err := l.ReadOp()
	require.NoError(t, err)
	require.Nil(t, got)
	require.EqualValues(t, 1, l.NextSeqid())
}

func TestSeqidMonotonicity(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "log"))
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.WriteOp(op(1, "a", "x")))
	require.ErrorIs(t, l.WriteOp(op(1, "b", "y")), ErrStaleSeqid)
	require.EqualValues(t, 2, l.NextSeqid())
}

func TestReplayThenAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log")

	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.WriteOp(op(1, "a", "x")))
	require.NoError(t, l.Close())

	l, err = Open(path)
	require.NoError(t, err)
	for {
		o, err := l.ReadOp()
		require.NoError(t, err)
		if o == nil {
			break
		}
	}
	require.NoError(t, l.WriteOp(op(l.NextSeqid(), "b", "y")))
	require.NoError(t, l.Close())

	l, err = Open(path)
	require.NoError(t, err)
	defer l.Close()
	var ids []string
	for {
		o, err := l.ReadOp()
		require.NoError(t, err)
		if o == nil {
			break
		}
		ids = append(ids, o.Entity.ID)
	}
	require.Equal(t, []string{"a", "b"}, ids)
}

func TestOutOfOrderSeqidIsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log")

	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.WriteOp(op(5, "a", "x")))
	require.NoError(t, l.Close())

	// Append a record whose seqid goes backwards, bypassing WriteOp.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	require.NoError(t, err)
	_, err = f.Write([]byte{3, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 'b', 'y'})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	l, err = Open(path)
	require.NoError(t, err)
	defer l.Close()

	_, err = l.ReadOp()
	require.NoError(t, err)
	_, err = l.ReadOp()
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestTruncatedRecordIsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log")

	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.WriteOp(op(1, "id1", "content")))
	require.NoError(t, l.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, os.Truncate(path, info.Size()-3))

	l, err = Open(path)
	require.NoError(t, err)
	defer l.Close()

	_, err = l.ReadOp()
	require.ErrorIs(t, err, ErrCorrupt)
}
