package gc_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/gitdb-io/gitdb"
	"github.com/gitdb-io/gitdb/crypt"
	"github.com/gitdb-io/gitdb/db"
	. "github.com/gitdb-io/gitdb/gc"
	"github.com/gitdb-io/gitdb/store/mem"
)

func TestGC(t *testing.T) {
	ctx := context.Background()

	store := mem.New()
	sess, err := crypt.NewSession([]byte("correct horse"), bytes.Repeat([]byte{9}, crypt.KeySize), 16)
	if err != nil {
		t.Fatal(err)
	}
	if err = db.Init(ctx, store, sess); err != nil {
		t.Fatal(err)
	}
	d := db.New(store, sess)

	if err = d.Put(ctx, "/keep/a", []byte("live")); err != nil {
		t.Fatal(err)
	}
	if err = d.Put(ctx, "/keep/b", []byte("doomed")); err != nil {
		t.Fatal(err)
	}

	// Overwriting and removing both orphan ciphertexts.
	if err = d.Put(ctx, "/keep/a", []byte("live v2")); err != nil {
		t.Fatal(err)
	}
	if err = d.Rm(ctx, "/keep/b"); err != nil {
		t.Fatal(err)
	}

	var before int
	err = store.ListObjects(ctx, gitdb.Oid{}, func(gitdb.Oid) error {
		before++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if before != 3 {
		t.Fatalf("got %d stored objects before collection, want 3", before)
	}

	keep := NewMemKeep()
	if err = Mark(ctx, keep, d, gitdb.Root); err != nil {
		t.Fatal(err)
	}
	if err = Run(ctx, store, keep); err != nil {
		t.Fatal(err)
	}

	var after int
	err = store.ListObjects(ctx, gitdb.Oid{}, func(gitdb.Oid) error {
		after++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if after != 1 {
		t.Errorf("got %d stored objects after collection, want 1", after)
	}

	// The live blob still reads back; the removed one is still gone.
	got, err := d.Get(ctx, "/keep/a")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "live v2" {
		t.Errorf("got %q, want %q", got, "live v2")
	}
	if _, err = d.Get(ctx, "/keep/b"); !errors.Is(err, gitdb.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}

	// Namespaces live at stable addresses and are untouched by a sweep.
	if _, err = d.Namespace(ctx, "/keep"); err != nil {
		t.Fatal(err)
	}
}
