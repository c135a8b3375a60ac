// Package db implements the gitdb namespace tree engine:
// the logic that resolves hierarchical keys to encrypted objects,
// lazily materializes namespaces along a key path,
// and maintains their entry tables.
package db

import (
	"context"

	"github.com/pkg/errors"

	"github.com/gitdb-io/gitdb"
	"github.com/gitdb-io/gitdb/crypt"
	"github.com/gitdb-io/gitdb/ns"
	"github.com/gitdb-io/gitdb/sealed"
)

// DB is an encrypted namespace tree over an object store.
//
// Operations are synchronous and touch a bounded set of objects:
// the target plus the ancestor namespaces on its path.
// DB holds no cross-call cache;
// every operation re-derives addresses deterministically,
// which is what lets independent replicas work against
// the same store without coordinating.
type DB struct {
	sealed *sealed.Store
}

// New produces a DB reading and writing through store,
// sealing every object with session.
// The root namespace must already be provisioned (see Init);
// operations against an uninitialized store fail with ErrRootMissing.
func New(store gitdb.Store, session *crypt.Session) *DB {
	return &DB{sealed: sealed.New(store, session)}
}

// Init provisions the root namespace in store.
// It is a no-op if the root already exists and session can open it;
// an existing root that fails to decrypt is an error,
// so Init never clobbers another session's data.
func Init(ctx context.Context, store gitdb.Store, session *crypt.Session) error {
	s := sealed.New(store, session)

	_, err := s.GetAt(ctx, gitdb.Root)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gitdb.ErrNotFound) {
		return err
	}

	b, err := ns.New().Encode()
	if err != nil {
		return err
	}
	_, err = s.PutAt(ctx, gitdb.Root, b)
	return errors.Wrap(err, "provisioning root namespace")
}

// load fetches and decodes the namespace stored for key, without
// creating anything. Absence is ErrNotFound, except for the root,
// whose absence means the database was never initialized.
func (db *DB) load(ctx context.Context, key gitdb.Key) (*ns.Namespace, error) {
	b, err := db.sealed.GetAt(ctx, key)
	if errors.Is(err, gitdb.ErrNotFound) && key.IsRoot() {
		return nil, errors.WithStack(gitdb.ErrRootMissing)
	}
	if err != nil {
		return nil, err
	}
	return ns.Decode(b)
}

// persist encodes and re-encrypts a namespace at its stable address,
// returning the fresh salt it was sealed with.
func (db *DB) persist(ctx context.Context, key gitdb.Key, n *ns.Namespace) (gitdb.Salt, error) {
	b, err := n.Encode()
	if err != nil {
		return gitdb.Salt{}, err
	}
	return db.sealed.PutAt(ctx, key, b)
}

// resolveOrCreate opens the namespace at key,
// materializing it and any missing ancestors on the way.
//
// Only ErrNotFound triggers creation.
// A namespace that exists but fails to decrypt is fatal:
// treating "exists but undecryptable" as "doesn't exist"
// would silently shadow data.
func (db *DB) resolveOrCreate(ctx context.Context, key gitdb.Key) (*ns.Namespace, error) {
	n, err := db.load(ctx, key)
	if err == nil || !errors.Is(err, gitdb.ErrNotFound) {
		return n, err
	}

	// The recursion terminates at the root, which always exists
	// (or the whole operation fails with ErrRootMissing).
	parentKey, leaf, err := key.Partition()
	if err != nil {
		return nil, err
	}
	parent, err := db.resolveOrCreate(ctx, parentKey)
	if err != nil {
		return nil, err
	}

	if e, ok := parent.Get(leaf); ok && e.Kind == ns.Blob {
		return nil, errors.Wrapf(gitdb.ErrKeyIsBlob, "%s", key)
	}

	// Persist the empty child before linking it into its parent:
	// a crash in between orphans the child,
	// but can never leave an entry pointing at nothing.
	child := ns.New()
	salt, err := db.persist(ctx, key, child)
	if err != nil {
		return nil, err
	}

	addr := gitdb.NamespaceAddr(key)
	err = parent.Set(ns.Entry{Name: leaf, Kind: ns.KindNamespace, Ref: addr[:], Salt: salt[:]})
	if err != nil {
		return nil, err
	}
	if _, err = db.persist(ctx, parentKey, parent); err != nil {
		return nil, err
	}

	return child, nil
}

// Namespace opens the namespace named by key,
// creating it and any missing ancestors if necessary.
// Opening an existing namespace performs no writes.
func (db *DB) Namespace(ctx context.Context, key gitdb.Key) (*ns.Namespace, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return db.resolveOrCreate(ctx, key)
}

// List calls f for each entry in the namespace named by key,
// in name order.
// Unlike Namespace it never creates anything:
// a missing namespace is ErrNotFound.
func (db *DB) List(ctx context.Context, key gitdb.Key, f func(ns.Entry) error) error {
	if err := key.Validate(); err != nil {
		return err
	}
	n, err := db.load(ctx, key)
	if err != nil {
		return err
	}
	return n.Each(f)
}

// Put stores plaintext as the blob named by key,
// creating the parent namespace if necessary.
// Overwriting an existing blob replaces its locator and salt;
// the old ciphertext becomes unreachable.
// A key naming a namespace is rejected with ErrKeyIsNamespace.
func (db *DB) Put(ctx context.Context, key gitdb.Key, plaintext []byte) error {
	if err := key.Validate(); err != nil {
		return err
	}
	parentKey, leaf, err := partitionBlobKey(key)
	if err != nil {
		return err
	}

	parent, err := db.resolveOrCreate(ctx, parentKey)
	if err != nil {
		return err
	}
	if e, ok := parent.Get(leaf); ok && e.Kind == ns.KindNamespace {
		return errors.Wrapf(gitdb.ErrKeyIsNamespace, "%s", key)
	}

	ref, err := db.sealed.PutBlob(ctx, key, plaintext)
	if err != nil {
		return err
	}

	err = parent.Set(ns.Entry{Name: leaf, Kind: ns.Blob, Ref: ref.Oid[:], Salt: ref.Salt[:]})
	if err != nil {
		return err
	}
	_, err = db.persist(ctx, parentKey, parent)
	return err
}

// Get returns the plaintext of the blob named by key.
// The read path never creates or mutates anything:
// a missing parent namespace or entry is ErrNotFound,
// and a key naming a namespace is ErrKeyIsNamespace.
func (db *DB) Get(ctx context.Context, key gitdb.Key) ([]byte, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	parentKey, leaf, err := partitionBlobKey(key)
	if err != nil {
		return nil, err
	}

	parent, err := db.load(ctx, parentKey)
	if err != nil {
		return nil, err
	}

	e, ok := parent.Get(leaf)
	if !ok {
		return nil, errors.Wrapf(gitdb.ErrNotFound, "%s", key)
	}
	switch e.Kind {
	case ns.Blob:
		return db.sealed.GetBlob(ctx, key, e.ObjectRef())
	case ns.KindNamespace:
		return nil, errors.Wrapf(gitdb.ErrKeyIsNamespace, "%s", key)
	}
	return nil, errors.Errorf("namespace %s: entry %q has corrupt kind %d", parentKey, leaf, e.Kind)
}

// Rm removes the blob entry named by key from its parent namespace.
// The blob's ciphertext becomes unreachable garbage.
// Removing namespaces is not supported.
func (db *DB) Rm(ctx context.Context, key gitdb.Key) error {
	if err := key.Validate(); err != nil {
		return err
	}
	parentKey, leaf, err := partitionBlobKey(key)
	if err != nil {
		return err
	}

	parent, err := db.load(ctx, parentKey)
	if err != nil {
		return err
	}

	e, ok := parent.Get(leaf)
	if !ok {
		return errors.Wrapf(gitdb.ErrNotFound, "%s", key)
	}
	if e.Kind == ns.KindNamespace {
		return errors.Wrapf(gitdb.ErrKeyIsNamespace, "%s", key)
	}

	parent.Remove(leaf)
	_, err = db.persist(ctx, parentKey, parent)
	return err
}

// The root is the one key that can never name a blob.
func partitionBlobKey(key gitdb.Key) (gitdb.Key, string, error) {
	if key.IsRoot() {
		return "", "", errors.Wrapf(gitdb.ErrKeyIsNamespace, "%s", key)
	}
	return key.Partition()
}
