// Package gc implements garbage collection of unreachable ciphertexts.
//
// Overwriting or removing a blob leaves its old ciphertext in the
// content-addressed half of the store with nothing pointing at it.
// Collection is mark-and-sweep: Mark walks the namespace tree and
// records every oid still referenced by an entry table, then Run
// deletes every stored object that was not marked.
//
// Namespace objects and salt records live at stable addresses, not
// content addresses, so a sweep never touches them.
package gc

import (
	"context"

	"github.com/gitdb-io/gitdb"
	"github.com/gitdb-io/gitdb/db"
	"github.com/gitdb-io/gitdb/ns"
)

// Store is an object store whose content-addressed objects can be deleted.
type Store interface {
	gitdb.Store
	DeleteObject(context.Context, gitdb.Oid) error
}

// Keep is a set of oids to protect from collection.
type Keep interface {
	// Add adds a single oid to the Keep.
	// It returns true if it was newly added and false if it was already present.
	Add(context.Context, gitdb.Oid) (bool, error)

	// Contains tells whether an oid is in the Keep.
	Contains(context.Context, gitdb.Oid) (bool, error)
}

// Mark adds to k the oid of every blob ciphertext reachable from the
// namespace tree rooted at key.
//
// Marking must cover every tree that shares the store: replicas that
// sync objects into a common store must all be marked before a sweep,
// or their blobs will be collected out from under them.
func Mark(ctx context.Context, k Keep, d *db.DB, key gitdb.Key) error {
	return d.Walk(ctx, key, func(_ gitdb.Key, e ns.Entry) error {
		if e.Kind != ns.Blob {
			return nil
		}
		_, err := k.Add(ctx, e.ObjectRef().Oid)
		return err
	})
}

// Run runs a garbage collection on s,
// deleting every content-addressed object not in k.
func Run(ctx context.Context, s Store, k Keep) error {
	return s.ListObjects(ctx, gitdb.Oid{}, func(oid gitdb.Oid) error {
		found, err := k.Contains(ctx, oid)
		if err != nil {
			return err
		}
		if found {
			return nil
		}
		return s.DeleteObject(ctx, oid)
	})
}

// MemKeep is a Keep held in memory.
type MemKeep struct {
	m map[gitdb.Oid]struct{}
}

func NewMemKeep() *MemKeep {
	return &MemKeep{m: make(map[gitdb.Oid]struct{})}
}

func (k *MemKeep) Add(_ context.Context, oid gitdb.Oid) (bool, error) {
	if _, ok := k.m[oid]; ok {
		return false, nil
	}
	k.m[oid] = struct{}{}
	return true, nil
}

func (k *MemKeep) Contains(_ context.Context, oid gitdb.Oid) (bool, error) {
	_, ok := k.m[oid]
	return ok, nil
}
