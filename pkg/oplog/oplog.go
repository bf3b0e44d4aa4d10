// pkg/oplog/oplog.go
// Package oplog implements the append-only operation log that gives the
// database point-in-time durability.
//
// # LOG FILE FORMAT
//
// The log is a sequence of add-operation records with no file header. Each
// record is a fixed-layout frame of little-endian values:
//
//	0-3:   Sequence id (strictly increasing over the life of the log)
//	4-7:   Id size in bytes
//	8-11:  Content size in bytes
//	12-:   Id bytes (no terminator, no padding)
//	...:   Content bytes
//
// A record is flushed to the operating system before WriteOp returns, so it
// survives a process crash. There is no fsync: power-loss durability is not
// promised.
package oplog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pstiasny/inverted-index/internal/encoding"
	"github.com/pstiasny/inverted-index/pkg/entity"
)

// MaxFieldSize bounds the id and content sizes a record may declare. A
// larger value can only come from a corrupt or misframed log.
const MaxFieldSize = 1 << 30

var (
	ErrCorrupt    = errors.New("corrupt log")
	ErrStaleSeqid = errors.New("seqid not above last seqid")
)

// Log is an append-only operation log. Open it, drain ReadOp to replay, then
// append with WriteOp. A Log is exclusively owned by one goroutine.
type Log struct {
	file      *os.File
	reader    *bufio.Reader
	lastSeqid uint32
}

// Open opens or creates the log at path, positioned at the start for replay.
func Open(path string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	return &Log{
		file:   f,
		reader: bufio.NewReader(f),
	}, nil
}

// ReadOp reads the next record. At a clean end of file it returns (nil, nil);
// a record cut short or out of seqid order is corruption.
func (l *Log) ReadOp() (*entity.AddOp, error) {
	seqid, err := encoding.ReadU32(l.reader)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading seqid: %v", ErrCorrupt, err)
	}

	idSize, err := encoding.ReadU32(l.reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading id size: %v", ErrCorrupt, err)
	}
	contentSize, err := encoding.ReadU32(l.reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading content size: %v", ErrCorrupt, err)
	}
	if idSize > MaxFieldSize || contentSize > MaxFieldSize {
		return nil, fmt.Errorf("%w: implausible record sizes %d/%d", ErrCorrupt, idSize, contentSize)
	}

	if seqid <= l.lastSeqid {
		return nil, fmt.Errorf("%w: seqid %d after %d", ErrCorrupt, seqid, l.lastSeqid)
	}

	id, err := encoding.ReadBytes(l.reader, int(idSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading id: %v", ErrCorrupt, err)
	}
	content, err := encoding.ReadBytes(l.reader, int(contentSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading content: %v", ErrCorrupt, err)
	}

	l.lastSeqid = seqid
	return &entity.AddOp{
		Seqid:  seqid,
		Entity: &entity.Entity{ID: string(id), Content: string(content)},
	}, nil
}

// WriteOp appends op to the log and hands it to the operating system. The
// op's seqid must be above every seqid already in the log.
func (l *Log) WriteOp(op *entity.AddOp) error {
	if op.Seqid <= l.lastSeqid {
		return fmt.Errorf("%w: %d after %d", ErrStaleSeqid, op.Seqid, l.lastSeqid)
	}

	if _, err := l.file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seek log end: %w", err)
	}

	w := bufio.NewWriter(l.file)
	if err := encoding.WriteU32(w, op.Seqid); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	if err := encoding.WriteU32(w, uint32(len(op.Entity.ID))); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	if err := encoding.WriteU32(w, uint32(len(op.Entity.Content))); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	if err := encoding.WriteBytes(w, []byte(op.Entity.ID)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	if err := encoding.WriteBytes(w, []byte(op.Entity.Content)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush log: %w", err)
	}

	l.lastSeqid = op.Seqid
	return nil
}

// LastSeqid returns the highest seqid read or written so far.
func (l *Log) LastSeqid() uint32 {
	return l.lastSeqid
}

// NextSeqid returns the seqid the next appended op must carry.
func (l *Log) NextSeqid() uint32 {
	return l.lastSeqid + 1
}

// Close releases the log file. Writes are already with the OS.
func (l *Log) Close() error {
	return l.file.Close()
}
