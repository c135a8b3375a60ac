// Package testutil provides helpers for testing Store implementations.
package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gitdb-io/gitdb"
)

// ReadWrite permits testing a Store implementation's
// content-addressed half:
// blobs go in, come back out unchanged,
// duplicate writes are deduplicated,
// and absent oids fail with ErrNotFound.
func ReadWrite(ctx context.Context, t *testing.T, store gitdb.Store) {
	blobs := []gitdb.Blob{
		[]byte("first"),
		[]byte("second"),
		bytes.Repeat([]byte{0xab}, 65536),
		{},
	}

	var oids []gitdb.Oid
	for _, b := range blobs {
		oid, added, err := store.PutObject(ctx, b)
		if err != nil {
			t.Fatal(err)
		}
		if !added {
			t.Errorf("blob %s reported as already present on first write", oid)
		}
		if oid != b.Oid() {
			t.Errorf("got oid %s, want %s", oid, b.Oid())
		}
		oids = append(oids, oid)
	}

	// Re-putting is a no-op.
	for i, b := range blobs {
		oid, added, err := store.PutObject(ctx, b)
		if err != nil {
			t.Fatal(err)
		}
		if added {
			t.Errorf("blob %s reported as added on second write", oid)
		}
		if oid != oids[i] {
			t.Errorf("oid changed across writes: %s then %s", oids[i], oid)
		}
	}

	for i, oid := range oids {
		got, err := store.GetObject(ctx, oid)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, blobs[i]) {
			t.Errorf("blob %s corrupted on round trip", oid)
		}
	}

	if _, err := store.GetObject(ctx, gitdb.Blob("never stored").Oid()); !errors.Is(err, gitdb.ErrNotFound) {
		t.Errorf("absent oid: got %v, want ErrNotFound", err)
	}

	// ListObjects yields every oid, in order, starting after `start`.
	var listed []gitdb.Oid
	err := store.ListObjects(ctx, gitdb.Oid{}, func(oid gitdb.Oid) error {
		listed = append(listed, oid)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != len(blobs) {
		t.Errorf("listed %d oids, want %d", len(listed), len(blobs))
	}
	for i := 1; i < len(listed); i++ {
		if !listed[i-1].Less(listed[i]) {
			t.Error("ListObjects out of order")
		}
	}
	if len(listed) > 1 {
		var after []gitdb.Oid
		err = store.ListObjects(ctx, listed[0], func(oid gitdb.Oid) error {
			after = append(after, oid)
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
		if len(after) != len(listed)-1 || after[0] != listed[1] {
			t.Error("ListObjects did not start after the given oid")
		}
	}
}

// Addressed permits testing a Store implementation's stable-address
// half: overwrite-in-place semantics, ErrNotFound for vacant
// addresses, and address enumeration.
func Addressed(ctx context.Context, t *testing.T, store gitdb.Store) {
	addrs := []gitdb.Addr{
		gitdb.NamespaceAddr("/a"),
		gitdb.SaltAddr("/a"),
		gitdb.NamespaceAddr("/z/deep"),
	}

	if _, err := store.GetAt(ctx, addrs[0]); !errors.Is(err, gitdb.ErrNotFound) {
		t.Errorf("vacant address: got %v, want ErrNotFound", err)
	}

	for i, addr := range addrs {
		if err := store.PutAt(ctx, addr, []byte(fmt.Sprintf("v1-%d", i))); err != nil {
			t.Fatal(err)
		}
	}
	for i, addr := range addrs {
		got, err := store.GetAt(ctx, addr)
		if err != nil {
			t.Fatal(err)
		}
		if want := fmt.Sprintf("v1-%d", i); string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}

	// Later writes overwrite earlier ones in place.
	if err := store.PutAt(ctx, addrs[0], []byte("v2")); err != nil {
		t.Fatal(err)
	}
	got, err := store.GetAt(ctx, addrs[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v2" {
		t.Errorf("got %q, want v2", got)
	}

	var listed []gitdb.Addr
	err = store.ListAddrs(ctx, gitdb.Addr{}, func(addr gitdb.Addr) error {
		listed = append(listed, addr)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != len(addrs) {
		t.Errorf("listed %d addrs, want %d", len(listed), len(addrs))
	}
	for i := 1; i < len(listed); i++ {
		if !listed[i-1].Less(listed[i]) {
			t.Error("ListAddrs out of order")
		}
	}
}
