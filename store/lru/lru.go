// Package lru implements an object store that acts as a least-recently-used
// cache for a nested object store.
package lru

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/gitdb-io/gitdb"
	"github.com/gitdb-io/gitdb/store"
)

var _ gitdb.Store = &Store{}

// Store implements a memory-based least-recently-used cache for an
// object store.
// It caches content-addressed objects only:
// those are immutable, so a cached copy can never go stale.
// Stable-address objects are overwritten in place by other replicas,
// so GetAt and PutAt always pass through to the underlying store.
// Writes pass through as well.
type Store struct {
	c *lru.Cache // Oid->Blob
	s gitdb.Store
}

// New produces a new Store backed by `s` and caching up to `size` objects.
func New(s gitdb.Store, size int) (*Store, error) {
	c, err := lru.New(size)
	return &Store{s: s, c: c}, err
}

// GetObject gets the blob with content address `oid`.
func (s *Store) GetObject(ctx context.Context, oid gitdb.Oid) (gitdb.Blob, error) {
	if got, ok := s.c.Get(oid); ok {
		return got.(gitdb.Blob), nil
	}
	blob, err := s.s.GetObject(ctx, oid)
	if err != nil {
		return nil, err
	}
	s.c.Add(oid, blob)
	return blob, nil
}

// PutObject adds a blob to the store if it wasn't already present.
func (s *Store) PutObject(ctx context.Context, b gitdb.Blob) (gitdb.Oid, bool, error) {
	oid, added, err := s.s.PutObject(ctx, b)
	if err != nil {
		return gitdb.Oid{}, false, err
	}
	s.c.Add(oid, b)
	return oid, added, nil
}

// GetAt gets the blob stored at a stable address, uncached.
func (s *Store) GetAt(ctx context.Context, addr gitdb.Addr) (gitdb.Blob, error) {
	return s.s.GetAt(ctx, addr)
}

// PutAt stores a blob at a stable address, overwriting in place.
func (s *Store) PutAt(ctx context.Context, addr gitdb.Addr, b gitdb.Blob) error {
	return s.s.PutAt(ctx, addr, b)
}

// ListObjects produces all content addresses in the underlying store,
// in lexicographic order, starting after `start`.
func (s *Store) ListObjects(ctx context.Context, start gitdb.Oid, f func(gitdb.Oid) error) error {
	return s.s.ListObjects(ctx, start, f)
}

// ListAddrs produces all occupied stable addresses in the underlying
// store, in lexicographic order, starting after `start`.
func (s *Store) ListAddrs(ctx context.Context, start gitdb.Addr, f func(gitdb.Addr) error) error {
	return s.s.ListAddrs(ctx, start, f)
}

func init() {
	store.Register("lru", func(ctx context.Context, conf map[string]interface{}) (gitdb.Store, error) {
		size, ok := conf["size"].(float64)
		if !ok {
			return nil, errors.New(`missing "size" parameter`)
		}
		nested, ok := conf["nested"].(map[string]interface{})
		if !ok {
			return nil, errors.New(`missing "nested" parameter`)
		}
		nestedType, ok := nested["type"].(string)
		if !ok {
			return nil, errors.New(`"nested" parameter missing "type"`)
		}
		nestedStore, err := store.Create(ctx, nestedType, nested)
		if err != nil {
			return nil, errors.Wrap(err, "creating nested store")
		}
		return New(nestedStore, int(size))
	})
}
