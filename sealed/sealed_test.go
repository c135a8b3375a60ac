package sealed

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/gitdb-io/gitdb"
	"github.com/gitdb-io/gitdb/crypt"
	"github.com/gitdb-io/gitdb/store/mem"
)

func testStore(t *testing.T) (*Store, *mem.Store) {
	t.Helper()
	sess, err := crypt.NewSession([]byte("passphrase"), bytes.Repeat([]byte{7}, crypt.KeySize), 16)
	if err != nil {
		t.Fatal(err)
	}
	raw := mem.New()
	return New(raw, sess), raw
}

func TestBlobRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, raw := testStore(t)

	const key = gitdb.Key("/a/b")
	plaintext := []byte("some payload")

	ref, err := s.PutBlob(ctx, key, plaintext)
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.GetBlob(ctx, key, ref)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("got %q, want %q", got, plaintext)
	}

	// The ciphertext visible to the raw store must not contain the plaintext.
	ct, err := raw.GetObject(ctx, ref.Oid)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(ct, plaintext) {
		t.Error("plaintext visible in stored ciphertext")
	}

	// The salt record is co-located, in plaintext, at the key's salt address.
	rec, err := raw.GetAt(ctx, gitdb.SaltAddr(key))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(rec, ref.Salt[:]) {
		t.Error("salt record does not match the returned salt")
	}
}

func TestBlobNotFound(t *testing.T) {
	ctx := context.Background()
	s, _ := testStore(t)

	var ref gitdb.ObjectRef
	ref.Oid = gitdb.Blob("never stored").Oid()

	_, err := s.GetBlob(ctx, "/a/b", ref)
	if !errors.Is(err, gitdb.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestAddressedRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, raw := testStore(t)

	const key = gitdb.Key("/a")

	if _, err := s.GetAt(ctx, key); !errors.Is(err, gitdb.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound before first write", err)
	}

	salt1, err := s.PutAt(ctx, key, []byte("v1"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.GetAt(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v1" {
		t.Errorf("got %q, want v1", got)
	}

	// Overwriting re-encrypts under a fresh salt and replaces the record.
	salt2, err := s.PutAt(ctx, key, []byte("v2"))
	if err != nil {
		t.Fatal(err)
	}
	if salt1 == salt2 {
		t.Error("salt reused across re-encryptions")
	}
	rec, err := raw.GetAt(ctx, gitdb.SaltAddr(key))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(rec, salt2[:]) {
		t.Error("salt record not overwritten")
	}

	got, err = s.GetAt(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v2" {
		t.Errorf("got %q, want v2", got)
	}
}

func TestWrongCredentialsIsNotNotFound(t *testing.T) {
	ctx := context.Background()
	s, raw := testStore(t)

	const key = gitdb.Key("/a")
	if _, err := s.PutAt(ctx, key, []byte("secret")); err != nil {
		t.Fatal(err)
	}

	other, err := crypt.NewSession([]byte("wrong"), bytes.Repeat([]byte{7}, crypt.KeySize), 16)
	if err != nil {
		t.Fatal(err)
	}

	_, err = New(raw, other).GetAt(ctx, key)
	if !errors.Is(err, crypt.ErrAuthFailed) {
		t.Errorf("got %v, want ErrAuthFailed", err)
	}
	if errors.Is(err, gitdb.ErrNotFound) {
		t.Error("decrypt failure must not read as absence")
	}
}
