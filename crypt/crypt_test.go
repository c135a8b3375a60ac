package crypt

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gitdb-io/gitdb"
)

// Low iteration count keeps the tests fast;
// the KDF's strength is not under test.
const testIters = 16

func testSession(t *testing.T, passphrase string) *Session {
	t.Helper()
	keyFile := bytes.Repeat([]byte{0x42}, KeySize)
	s, err := NewSession([]byte(passphrase), keyFile, testIters)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSealOpenRoundTrip(t *testing.T) {
	s := testSession(t, "opening night")

	cases := [][]byte{
		nil,
		[]byte("hello"),
		bytes.Repeat([]byte{0xff}, 4096),
	}
	for _, plaintext := range cases {
		ct, salt, err := s.Seal("/a/b", plaintext)
		if err != nil {
			t.Fatal(err)
		}
		got, err := s.Open("/a/b", ct, salt)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, plaintext) {
			t.Errorf("got %x, want %x", got, plaintext)
		}
	}
}

func TestOpenFailures(t *testing.T) {
	s := testSession(t, "opening night")

	ct, salt, err := s.Seal("/a/b", []byte("payload"))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("wrong passphrase", func(t *testing.T) {
		other := testSession(t, "different")
		if _, err := other.Open("/a/b", ct, salt); !errors.Is(err, ErrAuthFailed) {
			t.Errorf("got %v, want ErrAuthFailed", err)
		}
	})

	t.Run("wrong key file", func(t *testing.T) {
		other, err := NewSession([]byte("opening night"), bytes.Repeat([]byte{0x43}, KeySize), testIters)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := other.Open("/a/b", ct, salt); !errors.Is(err, ErrAuthFailed) {
			t.Errorf("got %v, want ErrAuthFailed", err)
		}
	})

	t.Run("wrong salt", func(t *testing.T) {
		var bad gitdb.Salt
		copy(bad[:], salt[:])
		bad[0] ^= 1
		if _, err := s.Open("/a/b", ct, bad); !errors.Is(err, ErrAuthFailed) {
			t.Errorf("got %v, want ErrAuthFailed", err)
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		// The associated data binds the ciphertext to its gitdb key.
		if _, err := s.Open("/a/c", ct, salt); !errors.Is(err, ErrAuthFailed) {
			t.Errorf("got %v, want ErrAuthFailed", err)
		}
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		bad := append([]byte(nil), ct...)
		bad[len(bad)/2] ^= 1
		if _, err := s.Open("/a/b", bad, salt); !errors.Is(err, ErrAuthFailed) {
			t.Errorf("got %v, want ErrAuthFailed", err)
		}
	})
}

func TestSaltUniqueness(t *testing.T) {
	s := testSession(t, "opening night")

	// Re-sealing the same plaintext under the same key must draw a new
	// salt - and so a new one-time derived key - every single time.
	seen := make(map[gitdb.Salt]bool)
	for i := 0; i < 100; i++ {
		_, salt, err := s.Seal("/a/b", []byte("same plaintext"))
		if err != nil {
			t.Fatal(err)
		}
		if seen[salt] {
			t.Fatalf("salt reused after %d seals", i)
		}
		seen[salt] = true
	}
}

func TestSaltExhaustedRNG(t *testing.T) {
	s := testSession(t, "opening night")
	s.rand = bytes.NewReader(nil) // no entropy available

	if _, _, err := s.Seal("/a/b", []byte("x")); err == nil {
		t.Error("Seal succeeded with an empty RNG")
	}
}

func TestKeyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keyfile")

	b, err := GenerateKeyFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != KeySize {
		t.Fatalf("generated %d bytes, want %d", len(b), KeySize)
	}

	got, err := ReadKeyFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, b) {
		t.Error("read back different bytes than generated")
	}

	if _, err = GenerateKeyFile(path); err == nil {
		t.Error("GenerateKeyFile overwrote an existing file")
	}

	short := filepath.Join(dir, "short")
	if err = os.WriteFile(short, []byte("too short"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err = ReadKeyFile(short); !errors.Is(err, ErrKeyFileSize) {
		t.Errorf("got %v, want ErrKeyFileSize", err)
	}
}
