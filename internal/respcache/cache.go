package respcache

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rohmanhakim/paper-review/internal/metadata"
	"github.com/rohmanhakim/paper-review/pkg/codec"
)

// Cache is a persistent key → value map backed by one JSON-Lines file.
// The whole file is replayed into memory on Open and every Put is
// appended before it returns. A Cache is not safe for concurrent use.
type Cache[V any] struct {
	name         string
	store        *LineStore
	mode         Mode[V]
	entries      map[string]V
	metadataSink metadata.MetadataSink
}

// Open loads the cache stored at path. A missing file yields an empty
// cache and is only created by the first Put.
func Open[V any](path string, mode Mode[V], metadataSink metadata.MetadataSink) (*Cache[V], error) {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	c := &Cache[V]{
		name:         strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		store:        NewLineStore(path, metadataSink),
		mode:         mode,
		entries:      make(map[string]V),
		metadataSink: metadataSink,
	}

	err := c.store.Replay(func(lineNo int, record Record) error {
		text, err := codec.Decode(record.Response)
		if err != nil {
			c.store.reportSkipped(lineNo, record.Key, err.Error())
			return nil
		}
		value, err := c.mode.Deserialize(text)
		if err != nil {
			c.store.reportSkipped(lineNo, record.Key, "undecodable value: "+err.Error())
			return nil
		}
		// later lines overwrite earlier ones
		c.entries[record.Key] = value
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cache[V]) Name() string {
	return c.name
}

func (c *Cache[V]) Path() string {
	return c.store.Path()
}

func (c *Cache[V]) Len() int {
	return len(c.entries)
}

// Keys returns the cached keys in ascending order.
func (c *Cache[V]) Keys() []string {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (c *Cache[V]) Get(key string) (V, bool) {
	value, ok := c.entries[key]
	return value, ok
}

// Put stores value under key in memory, then appends it to the backing
// file. When the append fails the in-memory entry stays in place and the
// error is returned. A key that is not valid UTF-8 could not be read back
// unchanged, so it is rejected before touching memory.
func (c *Cache[V]) Put(key string, value V) error {
	var err error
	if !utf8.ValidString(key) {
		err = &codec.CodecError{
			Message: "key is not valid UTF-8 text",
			Cause:   codec.ErrCauseInvalidUTF8,
		}
	} else {
		c.entries[key] = value
		err = c.persist(key, value)
	}
	if err != nil {
		cause := metadata.CauseUnknown
		var storeErr *StoreError
		var codecErr *codec.CodecError
		switch {
		case errors.As(err, &storeErr):
			cause = mapStoreErrorToMetadataCause(storeErr)
		case errors.As(err, &codecErr):
			cause = metadata.CauseContentInvalid
		}
		c.metadataSink.RecordError(
			time.Now(),
			"respcache",
			"Cache.Put",
			cause,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrCache, c.name),
				metadata.NewAttr(metadata.AttrKey, key),
				metadata.NewAttr(metadata.AttrWritePath, c.store.Path()),
			},
		)
	}
	return err
}

func (c *Cache[V]) persist(key string, value V) error {
	text, err := c.mode.Serialize(value)
	if err != nil {
		return &codec.CodecError{
			Message: err.Error(),
			Cause:   codec.ErrCauseSerialize,
		}
	}
	token, err := codec.Encode(text)
	if err != nil {
		return err
	}
	return c.store.Append(Record{Key: key, Response: token})
}
