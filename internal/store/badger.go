package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"
)

// Badger stores one badger key per entry under a namespace prefix, so several
// caches can share one database directory.
type Badger[V any] struct {
	db     *badger.DB
	prefix []byte
	owned  bool
}

// zapBadgerLogger adapts zap to the badger.Logger interface.
type zapBadgerLogger struct {
	logger *zap.SugaredLogger
}

var _ badger.Logger = (*zapBadgerLogger)(nil)

func (l *zapBadgerLogger) Errorf(msg string, args ...any)   { l.logger.Errorf(msg, args...) }
func (l *zapBadgerLogger) Warningf(msg string, args ...any) { l.logger.Warnf(msg, args...) }
func (l *zapBadgerLogger) Infof(msg string, args ...any)    { l.logger.Debugf(msg, args...) }
func (l *zapBadgerLogger) Debugf(msg string, args ...any)   { l.logger.Debugf(msg, args...) }

// OpenBadgerDB opens a badger database in dir, creating it if needed.
// An empty dir opens an in-memory database.
func OpenBadgerDB(dir string, logger *zap.Logger) (*badger.DB, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating badger directory %q: %w", dir, err)
		}
		opts = badger.DefaultOptions(dir)
	}

	if logger == nil {
		opts = opts.WithLogger(nil)
	} else {
		opts = opts.WithLogger(&zapBadgerLogger{logger: logger.Sugar()})
	}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger database: %w", err)
	}
	return db, nil
}

// NewBadger returns a persister that uses keys under namespace in db.
// The caller keeps ownership of db.
func NewBadger[V any](db *badger.DB, namespace string) *Badger[V] {
	return &Badger[V]{db: db, prefix: []byte(namespace + ":")}
}

// OpenBadger opens a dedicated database in dir and returns a persister that
// closes it on Close.
func OpenBadger[V any](dir, namespace string, logger *zap.Logger) (*Badger[V], error) {
	db, err := OpenBadgerDB(dir, logger)
	if err != nil {
		return nil, err
	}
	b := NewBadger[V](db, namespace)
	b.owned = true
	return b, nil
}

func (b *Badger[V]) Load(ctx context.Context) (map[string]V, error) {
	if b.db.IsClosed() {
		return nil, ErrClosed
	}

	entries := make(map[string]V)
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = b.prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			key := string(item.Key()[len(b.prefix):])

			var value V
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &value)
			}); err != nil {
				return fmt.Errorf("decoding entry %q: %w", key, err)
			}
			entries[key] = value
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (b *Badger[V]) Merge(ctx context.Context, entries map[string]V) error {
	if b.db.IsClosed() {
		return ErrClosed
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	for k, v := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding entry %q: %w", k, err)
		}
		if err := wb.Set(b.key(k), data); err != nil {
			return fmt.Errorf("writing entry %q: %w", k, err)
		}
	}

	return wb.Flush()
}

func (b *Badger[V]) Clear(context.Context) error {
	if b.db.IsClosed() {
		return ErrClosed
	}
	return b.db.DropPrefix(b.prefix)
}

func (b *Badger[V]) Close() error {
	if !b.owned || b.db.IsClosed() {
		return nil
	}
	return b.db.Close()
}

func (b *Badger[V]) key(k string) []byte {
	out := make([]byte, 0, len(b.prefix)+len(k))
	out = append(out, b.prefix...)
	return append(out, k...)
}
