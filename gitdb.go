package gitdb

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"

	"github.com/pkg/errors"
)

type (
	// Blob is the type of a stored byte sequence.
	Blob []byte

	// Oid is the content address of a blob:
	// the sha256 hash of its (encrypted) bytes.
	// The store assigns it; this layer treats it as opaque.
	Oid [sha256.Size]byte

	// Addr is a stable object address derived from a Key.
	// Unlike an Oid it is independent of content,
	// so the object stored at an Addr may be overwritten in place.
	Addr [sha256.Size]byte

	// Salt is the per-object random value driving key derivation.
	// It is persisted in plaintext alongside every encrypted object
	// and regenerated on every re-encryption of that object.
	Salt [SaltSize]byte
)

// SaltSize is the size of a Salt in bytes.
const SaltSize = 32

// ObjectRef locates one encrypted blob:
// the oid of its ciphertext and the salt it was sealed with.
type ObjectRef struct {
	Oid  Oid
	Salt Salt
}

// Oid computes the content address of a blob.
func (b Blob) Oid() Oid {
	return sha256.Sum256(b)
}

func (o Oid) String() string { return hex.EncodeToString(o[:]) }

func (o Oid) IsZero() bool { return o == Oid{} }

func (o Oid) Less(other Oid) bool {
	return bytes.Compare(o[:], other[:]) < 0
}

func (o *Oid) FromHex(s string) error {
	if len(s) != 2*sha256.Size {
		return errors.New("wrong length")
	}
	_, err := hex.Decode(o[:], []byte(s))
	return err
}

// OidFromBytes converts a byte slice to an Oid.
func OidFromBytes(b []byte) Oid {
	var out Oid
	copy(out[:], b)
	return out
}

// OidFromHex parses a hex string as an Oid.
func OidFromHex(s string) (Oid, error) {
	var out Oid
	err := out.FromHex(s)
	return out, err
}

func (a Addr) String() string { return hex.EncodeToString(a[:]) }

func (a Addr) IsZero() bool { return a == Addr{} }

func (a Addr) Less(other Addr) bool {
	return bytes.Compare(a[:], other[:]) < 0
}

func (a *Addr) FromHex(s string) error {
	if len(s) != 2*sha256.Size {
		return errors.New("wrong length")
	}
	_, err := hex.Decode(a[:], []byte(s))
	return err
}

// AddrFromBytes converts a byte slice to an Addr.
func AddrFromBytes(b []byte) Addr {
	var out Addr
	copy(out[:], b)
	return out
}

// AddrFromHex parses a hex string as an Addr.
func AddrFromHex(s string) (Addr, error) {
	var out Addr
	err := out.FromHex(s)
	return out, err
}

// SaltFromBytes converts a byte slice to a Salt.
func SaltFromBytes(b []byte) Salt {
	var out Salt
	copy(out[:], b)
	return out
}

// NamespaceAddr computes the stable address
// at which the namespace object for key is stored.
// It is a deterministic function of the key alone,
// so every replica computes the same address with no coordination.
func NamespaceAddr(key Key) Addr {
	return addrFor("ns", key)
}

// SaltAddr computes the stable address of the plaintext salt record
// for the encrypted object stored under key.
func SaltAddr(key Key) Addr {
	return addrFor("salt", key)
}

// Domain-separated so a salt record can never collide
// with a namespace object.
func addrFor(domain string, key Key) Addr {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0})
	h.Write([]byte(key))
	var a Addr
	h.Sum(a[:0])
	return a
}
