// Package logging implements a store that delegates everything to a nested store,
// logging operations as they happen.
package logging

import (
	"context"
	"log"

	"github.com/pkg/errors"

	"github.com/gitdb-io/gitdb"
	"github.com/gitdb-io/gitdb/store"
)

var _ gitdb.Store = &Store{}

type Store struct {
	s gitdb.Store
}

func New(s gitdb.Store) *Store {
	return &Store{s: s}
}

func (s *Store) GetObject(ctx context.Context, oid gitdb.Oid) (gitdb.Blob, error) {
	b, err := s.s.GetObject(ctx, oid)
	if err != nil {
		log.Printf("ERROR GetObject %s: %s", oid, err)
	} else {
		log.Printf("GetObject %s", oid)
	}
	return b, err
}

func (s *Store) PutObject(ctx context.Context, b gitdb.Blob) (gitdb.Oid, bool, error) {
	oid, added, err := s.s.PutObject(ctx, b)
	if err != nil {
		log.Printf("ERROR in PutObject: %s", err)
	} else {
		log.Printf("PutObject %s, added=%v", oid, added)
	}
	return oid, added, err
}

func (s *Store) GetAt(ctx context.Context, addr gitdb.Addr) (gitdb.Blob, error) {
	b, err := s.s.GetAt(ctx, addr)
	if err != nil {
		log.Printf("ERROR GetAt %s: %s", addr, err)
	} else {
		log.Printf("GetAt %s", addr)
	}
	return b, err
}

func (s *Store) PutAt(ctx context.Context, addr gitdb.Addr, b gitdb.Blob) error {
	err := s.s.PutAt(ctx, addr, b)
	if err != nil {
		log.Printf("ERROR in PutAt %s: %s", addr, err)
	} else {
		log.Printf("PutAt %s (%d bytes)", addr, len(b))
	}
	return err
}

func (s *Store) ListObjects(ctx context.Context, start gitdb.Oid, f func(gitdb.Oid) error) error {
	log.Printf("ListObjects, start=%s", start)
	return s.s.ListObjects(ctx, start, func(oid gitdb.Oid) error {
		err := f(oid)
		if err != nil {
			log.Printf("  ERROR in ListObjects: %s: %s", oid, err)
		} else {
			log.Printf("  ListObjects: %s", oid)
		}
		return err
	})
}

func (s *Store) ListAddrs(ctx context.Context, start gitdb.Addr, f func(gitdb.Addr) error) error {
	log.Printf("ListAddrs, start=%s", start)
	return s.s.ListAddrs(ctx, start, func(addr gitdb.Addr) error {
		err := f(addr)
		if err != nil {
			log.Printf("  ERROR in ListAddrs: %s: %s", addr, err)
		} else {
			log.Printf("  ListAddrs: %s", addr)
		}
		return err
	})
}

func init() {
	store.Register("logging", func(ctx context.Context, conf map[string]interface{}) (gitdb.Store, error) {
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
		return New(nestedStore), nil
	})
}
