// Package bolt implements an object store on a bbolt database file.
package bolt

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	bbolt "go.etcd.io/bbolt"

	"github.com/gitdb-io/gitdb"
	"github.com/gitdb-io/gitdb/store"
)

var _ gitdb.Store = &Store{}

var (
	objectsBucket = []byte("objects")
	addrsBucket   = []byte("addrs")
)

// Store is a bbolt-based implementation of an object store.
// Content-addressed objects and stable-address objects
// live in separate buckets of the same database file.
type Store struct {
	db *bbolt.DB
}

// New opens the database file at `path`,
// creating it and the required buckets as needed.
func New(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{objectsBucket, addrsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return errors.Wrapf(err, "creating bucket %s", name)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetObject gets the blob with content address `oid`.
func (s *Store) GetObject(_ context.Context, oid gitdb.Oid) (gitdb.Blob, error) {
	var result gitdb.Blob
	err := s.db.View(func(tx *bbolt.Tx) error {
		got := tx.Bucket(objectsBucket).Get(oid[:])
		if got == nil {
			return gitdb.ErrNotFound
		}
		result = append(gitdb.Blob(nil), got...)
		return nil
	})
	return result, err
}

// PutObject adds a blob to the store if it wasn't already present.
func (s *Store) PutObject(_ context.Context, b gitdb.Blob) (gitdb.Oid, bool, error) {
	var (
		oid   = b.Oid()
		added bool
	)
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(objectsBucket)
		if bucket.Get(oid[:]) != nil {
			return nil
		}
		added = true
		return bucket.Put(oid[:], b)
	})
	return oid, added, errors.Wrapf(err, "storing object %s", oid)
}

// DeleteObject removes the blob with content address `oid`.
func (s *Store) DeleteObject(_ context.Context, oid gitdb.Oid) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(objectsBucket)
		if bucket.Get(oid[:]) == nil {
			return gitdb.ErrNotFound
		}
		return bucket.Delete(oid[:])
	})
}

// GetAt gets the blob stored at a stable address.
func (s *Store) GetAt(_ context.Context, addr gitdb.Addr) (gitdb.Blob, error) {
	var result gitdb.Blob
	err := s.db.View(func(tx *bbolt.Tx) error {
		got := tx.Bucket(addrsBucket).Get(addr[:])
		if got == nil {
			return gitdb.ErrNotFound
		}
		result = append(gitdb.Blob(nil), got...)
		return nil
	})
	return result, err
}

// PutAt stores a blob at a stable address, overwriting in place.
func (s *Store) PutAt(_ context.Context, addr gitdb.Addr, b gitdb.Blob) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(addrsBucket).Put(addr[:], b)
	})
	return errors.Wrapf(err, "storing at address %s", addr)
}

// ListObjects produces all content addresses in the store,
// in lexicographic order, starting after `start`.
func (s *Store) ListObjects(_ context.Context, start gitdb.Oid, f func(gitdb.Oid) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(objectsBucket).Cursor()
		for k, _ := c.Seek(start[:]); k != nil; k, _ = c.Next() {
			if bytes.Equal(k, start[:]) {
				continue
			}
			if err := f(gitdb.OidFromBytes(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListAddrs produces all occupied stable addresses,
// in lexicographic order, starting after `start`.
func (s *Store) ListAddrs(_ context.Context, start gitdb.Addr, f func(gitdb.Addr) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(addrsBucket).Cursor()
		for k, _ := c.Seek(start[:]); k != nil; k, _ = c.Next() {
			if bytes.Equal(k, start[:]) {
				continue
			}
			if err := f(gitdb.AddrFromBytes(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

func init() {
	store.Register("bolt", func(_ context.Context, conf map[string]interface{}) (gitdb.Store, error) {
		path, ok := conf["path"].(string)
		if !ok {
			return nil, errors.New(`missing "path" parameter`)
		}
		return New(path)
	})
}
