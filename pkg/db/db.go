// pkg/db/db.go
// Package db is the database facade: it composes the operation log, the
// persistent forward index and the in-memory inverted index, and is the
// only object the command layer sees.
package db

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pstiasny/inverted-index/pkg/btree"
	"github.com/pstiasny/inverted-index/pkg/entity"
	"github.com/pstiasny/inverted-index/pkg/index"
	"github.com/pstiasny/inverted-index/pkg/inverted"
	"github.com/pstiasny/inverted-index/pkg/oplog"
)

var (
	ErrEntityExists = errors.New("entity exists")

	// ErrNotFound is returned by Get for an absent id.
	ErrNotFound = btree.ErrNotFound
)

// Options configures the database.
type Options struct {
	LogPath           string
	DataDir           string
	BlockSize         int // forward index block size (default 4096)
	MaxInnerKeyLength int // forward index inline key limit (default 128)
	Logger            *zap.Logger
}

// DB is a single-node searchable entity store. A DB instance is exclusively
// owned by one goroutine; there is no internal locking.
type DB struct {
	log      *oplog.Log
	tree     *btree.BTree
	forward  index.Forward
	inverted *inverted.Index
	logger   *zap.Logger
}

// Open opens the log and forward index and replays the log into the
// indexes. Records already reflected in the persisted tree are skipped
// there; the in-memory inverted index is always rebuilt in full.
func Open(opts Options) (*DB, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	l, err := oplog.Open(opts.LogPath)
	if err != nil {
		return nil, err
	}

	tree, err := btree.Open(opts.DataDir, btree.Options{
		BlockSize:         opts.BlockSize,
		MaxInnerKeyLength: opts.MaxInnerKeyLength,
	})
	if err != nil {
		l.Close()
		return nil, err
	}

	d := &DB{
		log:      l,
		tree:     tree,
		forward:  tree,
		inverted: inverted.NewIndex(),
		logger:   logger,
	}

	start := time.Now()
	replayed, skipped := 0, 0
	for {
		op, err := l.ReadOp()
		if err != nil {
			d.closeQuietly()
			return nil, fmt.Errorf("replay: %w", err)
		}
		if op == nil {
			break
		}
		applied, err := d.applyOp(op)
		if err != nil {
			d.closeQuietly()
			return nil, fmt.Errorf("replay seqid %d: %w", op.Seqid, err)
		}
		if applied {
			replayed++
		} else {
			skipped++
		}
	}
	logger.Info("database open",
		zap.Int("replayed", replayed),
		zap.Int("already_indexed", skipped),
		zap.Uint32("last_seqid", l.LastSeqid()),
		zap.Duration("elapsed", time.Since(start)))

	return d, nil
}

// applyOp applies a log record to both indexes. The forward index only takes
// records above its persisted seqid; the inverted index takes everything.
// Returns whether the forward index was written.
func (d *DB) applyOp(op *entity.AddOp) (bool, error) {
	applied := false
	if op.Seqid > d.tree.LastSeqid() {
		if err := d.forward.Insert(op.Entity); err != nil {
			return false, err
		}
		d.tree.SetLastSeqid(op.Seqid)
		applied = true
	}
	for _, term := range op.Entity.Tokens() {
		d.inverted.Insert(term, op.Entity.ID)
	}
	return applied, nil
}

// Add stores a new entity. The log record is written and flushed before the
// indexes are touched: if the in-memory application fails the record is
// still on disk and replay will redo it.
func (d *DB) Add(e *entity.Entity) error {
	if _, err := d.forward.Get(e.ID); err == nil {
		return ErrEntityExists
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	op := &entity.AddOp{Seqid: d.log.NextSeqid(), Entity: e}
	if err := d.log.WriteOp(op); err != nil {
		return err
	}
	if _, err := d.applyOp(op); err != nil {
		return err
	}

	d.logger.Debug("entity added",
		zap.Uint32("seqid", op.Seqid),
		zap.String("id", e.ID))
	return nil
}

// Get retrieves an entity by id. Returns ErrNotFound if absent.
func (d *DB) Get(id string) (*entity.Entity, error) {
	return d.forward.Get(id)
}

// Query evaluates a query tree against the inverted index and returns the
// matching ids, ascending.
func (d *DB) Query(q inverted.Query) inverted.PostingList {
	return q.Eval(d.inverted)
}

// Close closes the log and flushes the forward index.
func (d *DB) Close() error {
	d.logger.Info("database close",
		zap.Uint32("last_seqid", d.log.LastSeqid()),
		zap.Int("items", d.tree.ItemCount()))

	errLog := d.log.Close()
	errTree := d.tree.Close()
	if errLog != nil {
		return errLog
	}
	return errTree
}

func (d *DB) closeQuietly() {
	d.log.Close()
	d.tree.Close()
}
