package ns

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gitdb-io/gitdb"
)

func blobEntry(name string, fill byte) Entry {
	ref := make([]byte, 32)
	salt := make([]byte, gitdb.SaltSize)
	for i := range ref {
		ref[i] = fill
		salt[i] = ^fill
	}
	return Entry{Name: name, Kind: Blob, Ref: ref, Salt: salt}
}

func nsEntry(name string, fill byte) Entry {
	e := blobEntry(name, fill)
	e.Kind = KindNamespace
	return e
}

func TestTableOps(t *testing.T) {
	n := New()

	if _, ok := n.Get("a"); ok {
		t.Error("Get on empty namespace succeeded")
	}

	// Insert out of order; the table must stay sorted.
	for _, name := range []string{"cherry", "apple", "banana"} {
		if err := n.Set(blobEntry(name, 1)); err != nil {
			t.Fatal(err)
		}
	}

	var got []string
	err := n.Each(func(e Entry) error {
		got = append(got, e.Name)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"apple", "banana", "cherry"}, got); diff != "" {
		t.Errorf("entry order mismatch (-want +got):\n%s", diff)
	}

	// Replacing a blob entry with a new ref is allowed.
	if err = n.Set(blobEntry("banana", 2)); err != nil {
		t.Fatal(err)
	}
	e, ok := n.Get("banana")
	if !ok {
		t.Fatal("banana missing after replace")
	}
	if e.Ref[0] != 2 {
		t.Error("replace did not update the ref")
	}
	if n.Len() != 3 {
		t.Errorf("got %d entries, want 3", n.Len())
	}

	if !n.Remove("banana") {
		t.Error("Remove reported absent for a present entry")
	}
	if n.Remove("banana") {
		t.Error("Remove reported present for an absent entry")
	}
	if n.Len() != 2 {
		t.Errorf("got %d entries, want 2", n.Len())
	}
}

func TestKindImmutable(t *testing.T) {
	n := New()
	if err := n.Set(blobEntry("a", 1)); err != nil {
		t.Fatal(err)
	}
	if err := n.Set(nsEntry("b", 1)); err != nil {
		t.Fatal(err)
	}

	if err := n.Set(nsEntry("a", 2)); !errors.Is(err, gitdb.ErrKeyIsBlob) {
		t.Errorf("overwriting blob with namespace: got %v, want ErrKeyIsBlob", err)
	}
	if err := n.Set(blobEntry("b", 2)); !errors.Is(err, gitdb.ErrKeyIsNamespace) {
		t.Errorf("overwriting namespace with blob: got %v, want ErrKeyIsNamespace", err)
	}
}

func TestEncodeDecode(t *testing.T) {
	n := New()
	for _, e := range []Entry{blobEntry("a", 1), nsEntry("b", 2), blobEntry("c", 3)} {
		if err := n.Set(e); err != nil {
			t.Fatal(err)
		}
	}

	b, err := n.Encode()
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(n, got); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}

	// Equal tables must encode to equal bytes regardless of insertion order.
	m := New()
	for _, e := range []Entry{blobEntry("c", 3), blobEntry("a", 1), nsEntry("b", 2)} {
		if err := m.Set(e); err != nil {
			t.Fatal(err)
		}
	}
	b2, err := m.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != string(b2) {
		t.Error("insertion order changed the encoding")
	}

	// Empty table round-trips too.
	eb, err := New().Encode()
	if err != nil {
		t.Fatal(err)
	}
	empty, err := Decode(eb)
	if err != nil {
		t.Fatal(err)
	}
	if empty.Len() != 0 {
		t.Errorf("decoded empty table has %d entries", empty.Len())
	}
}
