package db

import (
	"context"

	"github.com/gitdb-io/gitdb"
	"github.com/gitdb-io/gitdb/ns"
)

// Walk calls f for every entry in the subtree rooted at key,
// depth-first in name order,
// passing each entry's full key alongside the entry.
// Walk is read-only; it fails with ErrNotFound
// if the namespace at key does not exist.
// If f returns an error, Walk exits with that error.
func (db *DB) Walk(ctx context.Context, key gitdb.Key, f func(gitdb.Key, ns.Entry) error) error {
	if err := key.Validate(); err != nil {
		return err
	}
	return db.walk(ctx, key, f)
}

func (db *DB) walk(ctx context.Context, key gitdb.Key, f func(gitdb.Key, ns.Entry) error) error {
	n, err := db.load(ctx, key)
	if err != nil {
		return err
	}
	return n.Each(func(e ns.Entry) error {
		child := key.Child(e.Name)
		if err := f(child, e); err != nil {
			return err
		}
		if e.Kind == ns.KindNamespace {
			return db.walk(ctx, child, f)
		}
		return nil
	})
}
