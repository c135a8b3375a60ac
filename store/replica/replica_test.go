package replica

import (
	"context"
	"testing"

	"github.com/gitdb-io/gitdb"
	"github.com/gitdb-io/gitdb/store/mem"
	"github.com/gitdb-io/gitdb/testutil"
)

func TestStore(t *testing.T) {
	testutil.ReadWrite(context.Background(), t, New(mem.New(), mem.New()))
}

func TestAddressed(t *testing.T) {
	testutil.Addressed(context.Background(), t, New(mem.New(), mem.New()))
}

func TestMirroring(t *testing.T) {
	ctx := context.Background()

	a, b := mem.New(), mem.New()
	s := New(a, b)

	oid, added, err := s.PutObject(ctx, []byte("mirrored"))
	if err != nil {
		t.Fatal(err)
	}
	if !added {
		t.Error("blob reported as already present on first write")
	}

	// Both replicas got the write.
	for i, nested := range []*mem.Store{a, b} {
		got, err := nested.GetObject(ctx, oid)
		if err != nil {
			t.Fatalf("replica %d: %v", i, err)
		}
		if string(got) != "mirrored" {
			t.Errorf("replica %d: got %q, want %q", i, got, "mirrored")
		}
	}

	addr := gitdb.NamespaceAddr("/mirrored")
	if err = s.PutAt(ctx, addr, []byte("v1")); err != nil {
		t.Fatal(err)
	}
	for i, nested := range []*mem.Store{a, b} {
		got, err := nested.GetAt(ctx, addr)
		if err != nil {
			t.Fatalf("replica %d: %v", i, err)
		}
		if string(got) != "v1" {
			t.Errorf("replica %d: got %q, want v1", i, got)
		}
	}
}

// Reads fall back to later replicas when the primary is missing an object.
func TestReadFallback(t *testing.T) {
	ctx := context.Background()

	a, b := mem.New(), mem.New()
	oid, _, err := b.PutObject(ctx, []byte("only on b"))
	if err != nil {
		t.Fatal(err)
	}

	got, err := New(a, b).GetObject(ctx, oid)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "only on b" {
		t.Errorf("got %q, want %q", got, "only on b")
	}
}
