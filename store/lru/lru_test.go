package lru

import (
	"context"
	"errors"
	"testing"

	"github.com/gitdb-io/gitdb"
	"github.com/gitdb-io/gitdb/store/mem"
	"github.com/gitdb-io/gitdb/testutil"
)

func TestStore(t *testing.T) {
	s, err := New(mem.New(), 100)
	if err != nil {
		t.Fatal(err)
	}
	testutil.ReadWrite(context.Background(), t, s)
}

func TestAddressed(t *testing.T) {
	s, err := New(mem.New(), 100)
	if err != nil {
		t.Fatal(err)
	}
	testutil.Addressed(context.Background(), t, s)
}

// A cached object survives the loss of the backing store;
// an addressed object does not, since addressed reads are never cached.
func TestCaching(t *testing.T) {
	ctx := context.Background()

	backing := mem.New()
	s, err := New(backing, 10)
	if err != nil {
		t.Fatal(err)
	}

	oid, _, err := s.PutObject(ctx, []byte("cached"))
	if err != nil {
		t.Fatal(err)
	}
	addr := gitdb.NamespaceAddr("/cached")
	if err = s.PutAt(ctx, addr, []byte("addressed")); err != nil {
		t.Fatal(err)
	}

	// A fresh backing store simulates eviction of everything.
	s.s = mem.New()

	got, err := s.GetObject(ctx, oid)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "cached" {
		t.Errorf("got %q, want %q", got, "cached")
	}

	if _, err = s.GetAt(ctx, addr); !errors.Is(err, gitdb.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound (addressed objects must not be cached)", err)
	}
}
