package db

import (
	"context"

	"github.com/pkg/errors"

	"github.com/gitdb-io/gitdb"
	"github.com/gitdb-io/gitdb/ns"
)

// ErrConflict is returned by Merge when entry tables diverge
// and no chooser was supplied to resolve them.
var ErrConflict = errors.New("namespace merge conflict")

// A Chooser resolves one merge conflict.
// It returns the entry to keep,
// or keep=false to drop the name from the merged table.
type Chooser func(ns.Conflict) (e ns.Entry, keep bool, err error)

// Merge reconciles the local namespace at key with a remote replica's
// version of the same namespace, given their common base,
// and persists the merged entry table.
//
// This is the structural counterpart to the underlying store's
// object-level merge: encrypted namespace objects cannot be merged
// byte-wise, since re-encryption randomizes every byte, so the driver
// decrypts both sides and hands the tables to ns.Merge.
// Divergent changes to the same entry name go to choose;
// a nil choose fails the merge with ErrConflict.
func (db *DB) Merge(ctx context.Context, key gitdb.Key, base, theirs *ns.Namespace, choose Chooser) error {
	if err := key.Validate(); err != nil {
		return err
	}

	ours, err := db.load(ctx, key)
	if err != nil {
		return err
	}

	merged, conflicts := ns.Merge(base, ours, theirs)
	for _, c := range conflicts {
		if choose == nil {
			return errors.Wrapf(ErrConflict, "%s: entry %q", key, c.Name)
		}
		e, keep, err := choose(c)
		if err != nil {
			return errors.Wrapf(err, "resolving conflict on %q in %s", c.Name, key)
		}
		if !keep {
			continue
		}
		if err := merged.Set(e); err != nil {
			return errors.Wrapf(err, "applying resolution for %q in %s", c.Name, key)
		}
	}

	_, err = db.persist(ctx, key, merged)
	return err
}
