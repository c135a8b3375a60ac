// Package file implements an object store as a file hierarchy.
package file

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/bobg/flock"
	"github.com/google/renameio"
	"github.com/pkg/errors"

	"github.com/gitdb-io/gitdb"
	"github.com/gitdb-io/gitdb/store"
)

var _ gitdb.Store = &Store{}

// Store is a file-based implementation of an object store.
// Content-addressed objects live under root/objects
// and are immutable once written;
// stable-address objects live under root/addrs
// and are replaced atomically in place via rename.
// Both halves shard files by the leading hex digits of their names.
type Store struct {
	root    string
	flocker flock.Locker
}

// New produces a new Store storing data beneath `root`.
func New(root string) *Store {
	return &Store{root: root}
}

func (s *Store) objectroot() string {
	return filepath.Join(s.root, "objects")
}

func (s *Store) addrroot() string {
	return filepath.Join(s.root, "addrs")
}

func (s *Store) objectpath(oid gitdb.Oid) string {
	h := oid.String()
	return filepath.Join(s.objectroot(), h[:2], h[:4], h)
}

func (s *Store) addrpath(addr gitdb.Addr) string {
	h := addr.String()
	return filepath.Join(s.addrroot(), h[:2], h[:4], h)
}

func (s *Store) addrLockPath() string {
	return filepath.Join(s.root, "addrs.lock")
}

// GetObject gets the blob with content address `oid`.
func (s *Store) GetObject(_ context.Context, oid gitdb.Oid) (gitdb.Blob, error) {
	path := s.objectpath(oid)
	blob, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, gitdb.ErrNotFound
	}
	return blob, errors.Wrapf(err, "opening %s", path)
}

// PutObject adds a blob to the store if it wasn't already present.
func (s *Store) PutObject(_ context.Context, b gitdb.Blob) (gitdb.Oid, bool, error) {
	var (
		oid  = b.Oid()
		path = s.objectpath(oid)
		dir  = filepath.Dir(path)
	)

	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return oid, false, errors.Wrapf(err, "ensuring path %s exists", dir)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if os.IsExist(err) {
		return oid, false, nil
	}
	if err != nil {
		return gitdb.Oid{}, false, errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	_, err = f.Write(b)
	if err != nil {
		return gitdb.Oid{}, false, errors.Wrapf(err, "writing data to %s", path)
	}

	return oid, true, nil
}

// DeleteObject removes the blob with content address `oid`.
func (s *Store) DeleteObject(_ context.Context, oid gitdb.Oid) error {
	path := s.objectpath(oid)
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return gitdb.ErrNotFound
	}
	return errors.Wrapf(err, "removing %s", path)
}

// GetAt gets the blob stored at a stable address.
func (s *Store) GetAt(_ context.Context, addr gitdb.Addr) (gitdb.Blob, error) {
	path := s.addrpath(addr)
	blob, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, gitdb.ErrNotFound
	}
	return blob, errors.Wrapf(err, "opening %s", path)
}

// PutAt stores a blob at a stable address, overwriting in place.
// The write itself is atomic
// (readers see either the old contents or the new, never a mixture);
// the file lock serializes writers racing for the same address.
func (s *Store) PutAt(_ context.Context, addr gitdb.Addr, b gitdb.Blob) error {
	var (
		path = s.addrpath(addr)
		dir  = filepath.Dir(path)
	)

	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return errors.Wrapf(err, "ensuring path %s exists", dir)
	}

	err = s.flocker.Lock(s.addrLockPath())
	if err != nil {
		return errors.Wrap(err, "locking address space")
	}
	defer s.flocker.Unlock(s.addrLockPath())

	return errors.Wrapf(renameio.WriteFile(path, b, 0644), "writing %s", path)
}

// ListObjects produces all content addresses in the store,
// in lexicographic order, starting after `start`.
func (s *Store) ListObjects(_ context.Context, start gitdb.Oid, f func(gitdb.Oid) error) error {
	return listHexTree(s.objectroot(), start.String(), func(name string) error {
		oid, err := gitdb.OidFromHex(name)
		if err != nil {
			return nil
		}
		return f(oid)
	})
}

// ListAddrs produces all occupied stable addresses,
// in lexicographic order, starting after `start`.
func (s *Store) ListAddrs(_ context.Context, start gitdb.Addr, f func(gitdb.Addr) error) error {
	return listHexTree(s.addrroot(), start.String(), func(name string) error {
		addr, err := gitdb.AddrFromHex(name)
		if err != nil {
			return nil
		}
		return f(addr)
	})
}

// Walks a two-level sharded hex hierarchy in name order,
// skipping names up to and including startHex.
func listHexTree(root, startHex string, f func(name string) error) error {
	topLevel, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "reading dir %s", root)
	}

	topIndex := sort.Search(len(topLevel), func(n int) bool {
		return topLevel[n].Name() >= startHex[:2]
	})
	for i := topIndex; i < len(topLevel); i++ {
		topInfo := topLevel[i]
		if !topInfo.IsDir() {
			continue
		}
		topName := topInfo.Name()
		if len(topName) != 2 {
			continue
		}
		if _, err = strconv.ParseInt(topName, 16, 64); err != nil {
			continue
		}

		midLevel, err := os.ReadDir(filepath.Join(root, topName))
		if err != nil {
			return errors.Wrapf(err, "reading dir %s/%s", root, topName)
		}
		midIndex := sort.Search(len(midLevel), func(n int) bool {
			return midLevel[n].Name() >= startHex[:4]
		})
		for j := midIndex; j < len(midLevel); j++ {
			midInfo := midLevel[j]
			if !midInfo.IsDir() {
				continue
			}
			midName := midInfo.Name()
			if len(midName) != 4 {
				continue
			}
			if _, err = strconv.ParseInt(midName, 16, 64); err != nil {
				continue
			}

			infos, err := os.ReadDir(filepath.Join(root, topName, midName))
			if err != nil {
				return errors.Wrapf(err, "reading dir %s/%s/%s", root, topName, midName)
			}

			index := sort.Search(len(infos), func(n int) bool {
				return infos[n].Name() > startHex
			})
			for k := index; k < len(infos); k++ {
				info := infos[k]
				if info.IsDir() {
					continue
				}
				if err := f(info.Name()); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func init() {
	store.Register("file", func(_ context.Context, conf map[string]interface{}) (gitdb.Store, error) {
		root, ok := conf["root"].(string)
		if !ok {
			return nil, errors.New(`missing "root" parameter`)
		}
		return New(root), nil
	})
}
