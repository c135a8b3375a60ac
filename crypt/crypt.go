// Package crypt implements gitdb's per-object encryption.
//
// Every stored object is sealed with ChaCha20-Poly1305 under a one-time
// 256-bit key derived from three inputs:
//   - the session passphrase, stretched with PBKDF2-HMAC-SHA256
//   - a fresh random 32-byte salt, drawn for every encryption event
//   - a 32-byte device-local key file, mixed in by XOR
//
// The AEAD nonce is fixed at all zeroes. Key uniqueness substitutes for
// nonce uniqueness: independently-syncing replicas cannot coordinate nonce
// assignment, and the 96-bit nonce space is too small to draw nonces at
// random across the system's write volume, so a new salt - and therefore a
// new key - is drawn for every seal instead. A derived key must never
// encrypt more than one plaintext.
package crypt

import (
	"crypto/rand"
	"crypto/sha256"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"

	"github.com/gitdb-io/gitdb"
)

const (
	// KeySize is the size of a derived key and of the device key file.
	KeySize = 32

	// DefaultIterations is the default PBKDF2 iteration count
	// (the OWASP recommended minimum for HMAC-SHA256).
	DefaultIterations = 210000
)

var (
	// ErrAuthFailed is returned when an AEAD tag check fails:
	// wrong passphrase, wrong key file, wrong salt,
	// or corrupted/tampered ciphertext.
	// It is distinct from gitdb.ErrNotFound,
	// which is a storage condition, not a crypto one.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrKeyFileSize is returned for key files that are not exactly 32 bytes.
	ErrKeyFileSize = errors.New("key file must be exactly 32 bytes")
)

// Session carries the secret material for one database session:
// passphrase, device key file, and iteration count.
// It is supplied explicitly to every sealing and opening call site
// rather than held in package-level state,
// so its lifetime is auditable and Close can wipe it.
//
// A Session is safe for concurrent use.
type Session struct {
	passphrase []byte
	keyFile    [KeySize]byte
	iterations int
	rand       io.Reader
}

// NewSession produces a Session from the user passphrase
// and the raw bytes of the device key file.
// An iteration count of 0 selects DefaultIterations.
func NewSession(passphrase, keyFile []byte, iterations int) (*Session, error) {
	if len(keyFile) != KeySize {
		return nil, errors.Wrapf(ErrKeyFileSize, "got %d bytes", len(keyFile))
	}
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	s := &Session{
		passphrase: append([]byte(nil), passphrase...),
		iterations: iterations,
		rand:       rand.Reader,
	}
	copy(s.keyFile[:], keyFile)
	return s, nil
}

// deriveKey stretches the passphrase with the given salt
// and mixes in the device key file.
// Compromise of the passphrase alone or of the key file alone
// is insufficient to reconstruct the key.
func (s *Session) deriveKey(salt gitdb.Salt) []byte {
	k := pbkdf2.Key(s.passphrase, salt[:], s.iterations, KeySize, sha256.New)
	for i := range k {
		k[i] ^= s.keyFile[i]
	}
	return k
}

// Seal encrypts plaintext for storage under the given gitdb key.
// It draws a fresh random salt, derives a one-time key from it,
// and returns the ciphertext together with the new salt.
//
// The caller must persist the returned salt with (or before) the
// ciphertext, and must discard the object's previous salt: the old
// ciphertext is undecryptable without it, and the old salt must never
// be reused for a new encryption.
func (s *Session) Seal(key gitdb.Key, plaintext []byte) ([]byte, gitdb.Salt, error) {
	var salt gitdb.Salt
	if _, err := io.ReadFull(s.rand, salt[:]); err != nil {
		return nil, gitdb.Salt{}, errors.Wrap(err, "generating salt")
	}

	k := s.deriveKey(salt)
	defer Zero(k)

	aead, err := chacha20poly1305.New(k)
	if err != nil {
		return nil, gitdb.Salt{}, errors.Wrap(err, "creating cipher")
	}

	var nonce [chacha20poly1305.NonceSize]byte // all zeroes; the key is one-time
	ct := aead.Seal(nil, nonce[:], plaintext, additionalData(key, salt))
	return ct, salt, nil
}

// Open authenticates and decrypts a ciphertext sealed by Seal
// under the same gitdb key and salt.
// A failed tag check yields ErrAuthFailed.
func (s *Session) Open(key gitdb.Key, ciphertext []byte, salt gitdb.Salt) ([]byte, error) {
	k := s.deriveKey(salt)
	defer Zero(k)

	aead, err := chacha20poly1305.New(k)
	if err != nil {
		return nil, errors.Wrap(err, "creating cipher")
	}

	var nonce [chacha20poly1305.NonceSize]byte
	pt, err := aead.Open(nil, nonce[:], ciphertext, additionalData(key, salt))
	if err != nil {
		return nil, errors.WithStack(ErrAuthFailed)
	}
	return pt, nil
}

// additionalData binds a ciphertext to the gitdb key it is stored under
// and to its salt, so ciphertexts cannot be swapped between keys.
func additionalData(key gitdb.Key, salt gitdb.Salt) []byte {
	h := sha256.Sum256([]byte(key))
	return append(h[:], salt[:]...)
}

// Close wipes the session's secret material.
// The Session must not be used afterward.
func (s *Session) Close() {
	Zero(s.passphrase)
	Zero(s.keyFile[:])
}

// Zero overwrites b with zeroes.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
