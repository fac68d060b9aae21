package kv

import (
	"context"
	"errors"
)

var (
	errKeyNotFound   = errors.New("key not found")
	ErrEdgesNotFound = errors.New("edges not found")
)

type kvPair struct {
	key   []byte
	value []byte
}

// backend. the few key value operations KVDB needs from an engine.
type backend interface {
	get(key []byte) ([]byte, error)
	putBatch(ctx context.Context, pairs []kvPair) error
	scanPrefix(ctx context.Context, prefix []byte, fn func(key, value []byte) error) error
	close() error
}
