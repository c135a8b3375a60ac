package db

import (
	"context"
	"errors"
	"testing"

	"github.com/gitdb-io/gitdb/ns"
)

// Simulates two replicas of the same database diverging on one
// namespace and reconciling through the structural merge driver.
func TestMergeReplicas(t *testing.T) {
	ctx := context.Background()

	store := newCountingStore()
	sess := testSession(t, "correct horse")
	if err := Init(ctx, store, sess); err != nil {
		t.Fatal(err)
	}
	local := New(store, sess)

	// Common history: /shared/common exists on both replicas.
	if err := local.Put(ctx, "/shared/common", []byte("base")); err != nil {
		t.Fatal(err)
	}
	base, err := local.Namespace(ctx, "/shared")
	if err != nil {
		t.Fatal(err)
	}
	baseCopy := *base

	// The remote replica added /shared/theirs; we added /shared/ours.
	remoteStore := newCountingStore()
	if err := Init(ctx, remoteStore, sess); err != nil {
		t.Fatal(err)
	}
	remote := New(remoteStore, sess)
	if err := remote.Put(ctx, "/shared/common", []byte("base")); err != nil {
		t.Fatal(err)
	}
	if err := remote.Put(ctx, "/shared/theirs", []byte("their blob")); err != nil {
		t.Fatal(err)
	}
	theirs, err := remote.Namespace(ctx, "/shared")
	if err != nil {
		t.Fatal(err)
	}

	if err := local.Put(ctx, "/shared/ours", []byte("our blob")); err != nil {
		t.Fatal(err)
	}

	if err := local.Merge(ctx, "/shared", &baseCopy, theirs, nil); err != nil {
		t.Fatal(err)
	}

	merged, err := local.Namespace(ctx, "/shared")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"common", "ours", "theirs"} {
		if _, ok := merged.Get(name); !ok {
			t.Errorf("merged namespace missing entry %q", name)
		}
	}

	// The merged entry still resolves on the local replica once the
	// remote's objects have synced over.
	ref, _ := theirs.Get("theirs")
	ct, err := remoteStore.GetObject(ctx, ref.ObjectRef().Oid)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err = store.PutObject(ctx, ct); err != nil {
		t.Fatal(err)
	}
	got, err := local.Get(ctx, "/shared/theirs")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "their blob" {
		t.Errorf("got %q, want %q", got, "their blob")
	}
}

func TestMergeConflict(t *testing.T) {
	ctx := context.Background()
	db, _ := testDB(t)

	if err := db.Put(ctx, "/shared/k", []byte("ours")); err != nil {
		t.Fatal(err)
	}
	ours, err := db.Namespace(ctx, "/shared")
	if err != nil {
		t.Fatal(err)
	}

	// Both sides added "k" with different contents and no common base.
	theirEntry, _ := ours.Get("k")
	theirEntry.Ref = append([]byte(nil), theirEntry.Ref...)
	theirEntry.Ref[0] ^= 1
	theirs := ns.New()
	if err := theirs.Set(theirEntry); err != nil {
		t.Fatal(err)
	}

	err = db.Merge(ctx, "/shared", ns.New(), theirs, nil)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}

	// A chooser resolves it.
	err = db.Merge(ctx, "/shared", ns.New(), theirs, func(c ns.Conflict) (ns.Entry, bool, error) {
		return *c.Theirs, true, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	merged, err := db.Namespace(ctx, "/shared")
	if err != nil {
		t.Fatal(err)
	}
	e, ok := merged.Get("k")
	if !ok {
		t.Fatal("merged namespace missing k")
	}
	if e.Ref[0] != theirEntry.Ref[0] {
		t.Error("chooser's resolution was not applied")
	}
}
