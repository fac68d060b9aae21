package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

// pebbleBackend. pebble compresses its own blocks, values are stored as is.
type pebbleBackend struct {
	db *pebble.DB
}

func OpenPebble(path string, inMemory bool) (*pebble.DB, error) {
	opts := &pebble.Options{}
	if inMemory {
		opts.FS = vfs.NewMem()
	}
	return pebble.Open(path, opts)
}

func (p *pebbleBackend) get(key []byte) ([]byte, error) {
	val, closer, err := p.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, errKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte{}, val...), nil
}

func (p *pebbleBackend) putBatch(ctx context.Context, pairs []kvPair) error {
	batch := p.db.NewBatch()
	defer batch.Close()

	for _, kv := range pairs {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled")
		default:
		}
		if err := batch.Set(kv.key, kv.value, nil); err != nil {
			return err
		}
	}
	return batch.Commit(pebble.Sync)
}

// prefixUpperBound. smallest key greater than every key starting with prefix.
func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

func (p *pebbleBackend) scanPrefix(ctx context.Context, prefix []byte, fn func(key, value []byte) error) error {
	it, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return err
	}
	defer it.Close()

	for it.First(); it.Valid(); it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(append([]byte{}, it.Key()...), append([]byte{}, it.Value()...)); err != nil {
			return err
		}
	}
	return it.Error()
}

func (p *pebbleBackend) close() error {
	return p.db.Close()
}
