// Package mem implements an in-memory object store.
package mem

import (
	"context"
	"sort"
	"sync"

	"github.com/gitdb-io/gitdb"
	"github.com/gitdb-io/gitdb/store"
)

var _ gitdb.Store = &Store{}

// Store is a memory-based implementation of an object store.
type Store struct {
	mu      sync.Mutex
	objects map[gitdb.Oid]gitdb.Blob
	addrs   map[gitdb.Addr]gitdb.Blob
}

// New produces a new Store.
func New() *Store {
	return &Store{
		objects: make(map[gitdb.Oid]gitdb.Blob),
		addrs:   make(map[gitdb.Addr]gitdb.Blob),
	}
}

// GetObject gets the blob with content address `oid`.
func (s *Store) GetObject(_ context.Context, oid gitdb.Oid) (gitdb.Blob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.objects[oid]; ok {
		return b, nil
	}
	return nil, gitdb.ErrNotFound
}

// PutObject adds a blob to the store if it wasn't already present.
func (s *Store) PutObject(_ context.Context, b gitdb.Blob) (gitdb.Oid, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var added bool

	oid := b.Oid()
	if _, ok := s.objects[oid]; !ok {
		s.objects[oid] = b
		added = true
	}
	return oid, added, nil
}

// DeleteObject removes the blob with content address `oid`.
func (s *Store) DeleteObject(_ context.Context, oid gitdb.Oid) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[oid]; !ok {
		return gitdb.ErrNotFound
	}
	delete(s.objects, oid)
	return nil
}

// GetAt gets the blob stored at a stable address.
func (s *Store) GetAt(_ context.Context, addr gitdb.Addr) (gitdb.Blob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.addrs[addr]; ok {
		return b, nil
	}
	return nil, gitdb.ErrNotFound
}

// PutAt stores a blob at a stable address, overwriting in place.
func (s *Store) PutAt(_ context.Context, addr gitdb.Addr, b gitdb.Blob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.addrs[addr] = b
	return nil
}

// ListObjects produces all content addresses in the store, in lexicographic order.
func (s *Store) ListObjects(ctx context.Context, start gitdb.Oid, f func(gitdb.Oid) error) error {
	s.mu.Lock()
	oids := make([]gitdb.Oid, 0, len(s.objects))
	for oid := range s.objects {
		oids = append(oids, oid)
	}
	s.mu.Unlock()

	sort.Slice(oids, func(i, j int) bool { return oids[i].Less(oids[j]) })
	index := sort.Search(len(oids), func(n int) bool {
		return start.Less(oids[n])
	})

	for i := index; i < len(oids); i++ {
		if err := f(oids[i]); err != nil {
			return err
		}
	}
	return nil
}

// ListAddrs produces all occupied stable addresses, in lexicographic order.
func (s *Store) ListAddrs(ctx context.Context, start gitdb.Addr, f func(gitdb.Addr) error) error {
	s.mu.Lock()
	addrs := make([]gitdb.Addr, 0, len(s.addrs))
	for addr := range s.addrs {
		addrs = append(addrs, addr)
	}
	s.mu.Unlock()

	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Less(addrs[j]) })
	index := sort.Search(len(addrs), func(n int) bool {
		return start.Less(addrs[n])
	})

	for i := index; i < len(addrs); i++ {
		if err := f(addrs[i]); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	store.Register("mem", func(context.Context, map[string]interface{}) (gitdb.Store, error) {
		return New(), nil
	})
}
