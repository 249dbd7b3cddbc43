package respcache

import (
	"context"
	"errors"
	"fmt"
)

// Producer computes the value for a key on a cache miss.
type Producer[V any] func(ctx context.Context) (V, error)

// PersistError reports a produced value that FetchOrCompute returned but
// could not write to disk. The value is still served from memory.
type PersistError struct {
	Cache string
	Key   string
	Err   error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s/%s: %v", e.Cache, e.Key, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// IsPersistError reports whether err only means the value was not saved.
func IsPersistError(err error) bool {
	var persistErr *PersistError
	return errors.As(err, &persistErr)
}

// FetchOrCompute returns the cached value for key, calling produce only
// on a miss. A produced value is cached before it is returned; a
// producer error is returned unchanged and nothing is cached.
//
// When caching the produced value fails, the value is still returned
// together with a *PersistError.
func FetchOrCompute[V any](ctx context.Context, c *Cache[V], key string, produce Producer[V]) (V, error) {
	if value, ok := c.Get(key); ok {
		c.metadataSink.RecordCacheLookup(c.name, key, true)
		return value, nil
	}
	c.metadataSink.RecordCacheLookup(c.name, key, false)

	value, err := produce(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	if err := c.Put(key, value); err != nil {
		return value, &PersistError{Cache: c.name, Key: key, Err: err}
	}
	return value, nil
}
