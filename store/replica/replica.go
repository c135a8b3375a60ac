// Package replica implements a store that mirrors writes across
// several nested stores.
package replica

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/gitdb-io/gitdb"
	"github.com/gitdb-io/gitdb/store"
)

var _ gitdb.Store = (*Store)(nil)

// Store delegates reads and writes to a set of nested stores.
// Writes go to every replica concurrently
// and must succeed on all of them;
// reads are served by the first replica that has the object.
// The first replica is the primary:
// it answers listing requests,
// and its answer decides a write's return values.
//
// Replicas that drift apart
// (a write that failed partway, or an out-of-band copy)
// are reconciled by syncing objects
// and structurally merging namespace tables,
// not by anything this store does.
type Store struct {
	stores []gitdb.Store
}

// New produces a new Store.
// The set of replicas must be non-empty.
func New(stores ...gitdb.Store) *Store {
	return &Store{stores: stores}
}

// GetObject gets the blob with content address `oid`
// from the first replica that has it.
func (s *Store) GetObject(ctx context.Context, oid gitdb.Oid) (gitdb.Blob, error) {
	err := error(gitdb.ErrNotFound)
	for _, nested := range s.stores {
		var b gitdb.Blob
		b, err = nested.GetObject(ctx, oid)
		if err == nil {
			return b, nil
		}
	}
	return nil, err
}

// PutObject adds a blob to every replica concurrently.
// Some replicas may already have the blob and others may not;
// the `added` result reports what happened on the primary.
func (s *Store) PutObject(ctx context.Context, b gitdb.Blob) (gitdb.Oid, bool, error) {
	var (
		g, gctx = errgroup.WithContext(ctx)
		oid     = b.Oid()
		added   bool
	)
	for i, nested := range s.stores {
		i, nested := i, nested
		g.Go(func() error {
			_, a, err := nested.PutObject(gctx, b)
			if i == 0 {
				added = a
			}
			return errors.Wrapf(err, "storing object %s in replica %d", oid, i)
		})
	}
	return oid, added, g.Wait()
}

// GetAt gets the blob at a stable address
// from the first replica that has it.
func (s *Store) GetAt(ctx context.Context, addr gitdb.Addr) (gitdb.Blob, error) {
	err := error(gitdb.ErrNotFound)
	for _, nested := range s.stores {
		var b gitdb.Blob
		b, err = nested.GetAt(ctx, addr)
		if err == nil {
			return b, nil
		}
	}
	return nil, err
}

// PutAt stores a blob at a stable address on every replica concurrently.
func (s *Store) PutAt(ctx context.Context, addr gitdb.Addr, b gitdb.Blob) error {
	g, gctx := errgroup.WithContext(ctx)
	for i, nested := range s.stores {
		i, nested := i, nested
		g.Go(func() error {
			return errors.Wrapf(nested.PutAt(gctx, addr, b), "storing at address %s in replica %d", addr, i)
		})
	}
	return g.Wait()
}

// ListObjects produces the primary replica's content addresses,
// in lexicographic order, starting after `start`.
func (s *Store) ListObjects(ctx context.Context, start gitdb.Oid, f func(gitdb.Oid) error) error {
	return s.stores[0].ListObjects(ctx, start, f)
}

// ListAddrs produces the primary replica's occupied stable addresses,
// in lexicographic order, starting after `start`.
func (s *Store) ListAddrs(ctx context.Context, start gitdb.Addr, f func(gitdb.Addr) error) error {
	return s.stores[0].ListAddrs(ctx, start, f)
}

func init() {
	store.Register("replica", func(ctx context.Context, conf map[string]interface{}) (gitdb.Store, error) {
		replicas, ok := conf["replicas"].([]interface{})
		if !ok || len(replicas) == 0 {
			return nil, errors.New(`missing "replicas" parameter`)
		}
		var stores []gitdb.Store
		for i, r := range replicas {
			nested, ok := r.(map[string]interface{})
			if !ok {
				return nil, errors.Errorf("replica %d is not an object", i)
			}
			nestedType, ok := nested["type"].(string)
			if !ok {
				return nil, errors.Errorf(`replica %d missing "type"`, i)
			}
			nestedStore, err := store.Create(ctx, nestedType, nested)
			if err != nil {
				return nil, errors.Wrapf(err, "creating replica %d", i)
			}
			stores = append(stores, nestedStore)
		}
		return New(stores...), nil
	})
}
