package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/DataDog/zstd"
	"github.com/dgraph-io/badger/v4"
)

// badgerBackend. values are zstd compressed before they reach badger.
type badgerBackend struct {
	db *badger.DB
}

func OpenBadger(path string, inMemory bool) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	return badger.Open(opts)
}

func (b *badgerBackend) get(key []byte) ([]byte, error) {
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, errKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return zstd.Decompress(nil, val)
}

func (b *badgerBackend) putBatch(ctx context.Context, pairs []kvPair) error {
	batch := b.db.NewWriteBatch()
	defer batch.Cancel()

	for _, p := range pairs {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled")
		default:
		}

		val, err := zstd.CompressLevel(nil, p.value, zstd.DefaultCompression)
		if err != nil {
			return err
		}
		if err := batch.Set(p.key, val); err != nil {
			return err
		}
	}
	return batch.Flush()
}

func (b *badgerBackend) scanPrefix(ctx context.Context, prefix []byte, fn func(key, value []byte) error) error {
	return b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = 10
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			tile, err := zstd.Decompress(nil, val)
			if err != nil {
				return fmt.Errorf("decompress %x: %w", item.Key(), err)
			}
			if err := fn(item.KeyCopy(nil), tile); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *badgerBackend) close() error {
	return b.db.Close()
}
