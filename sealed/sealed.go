// Package sealed wraps an object store with gitdb's per-object encryption.
// Plaintexts are sealed on their way in and opened on their way out;
// each encrypted object's salt record is persisted
// through the same store, in plaintext, at an address derived from
// the object's gitdb key.
package sealed

import (
	"context"

	"github.com/pkg/errors"

	"github.com/gitdb-io/gitdb"
	"github.com/gitdb-io/gitdb/crypt"
)

// Store is an encrypt-then-store adapter over a gitdb.Store.
// It is safe for concurrent use if the nested store is.
type Store struct {
	s    gitdb.Store
	sess *crypt.Session
}

// New produces a Store writing through s and sealing with sess.
func New(s gitdb.Store, sess *crypt.Session) *Store {
	return &Store{s: s, sess: sess}
}

// PutBlob seals plaintext and writes the ciphertext content-addressed,
// recording the new salt at the key's salt address.
// It returns the locator to link into the owning namespace.
// The previous salt record for the key, if any, is overwritten:
// once a blob is replaced its old salt must never be reused.
func (s *Store) PutBlob(ctx context.Context, key gitdb.Key, plaintext []byte) (gitdb.ObjectRef, error) {
	ct, salt, err := s.sess.Seal(key, plaintext)
	if err != nil {
		return gitdb.ObjectRef{}, errors.Wrapf(err, "sealing %s", key)
	}

	err = s.s.PutAt(ctx, gitdb.SaltAddr(key), salt[:])
	if err != nil {
		return gitdb.ObjectRef{}, errors.Wrapf(err, "storing salt record for %s", key)
	}

	oid, _, err := s.s.PutObject(ctx, gitdb.Blob(ct))
	if err != nil {
		return gitdb.ObjectRef{}, errors.Wrapf(err, "storing blob for %s", key)
	}

	return gitdb.ObjectRef{Oid: oid, Salt: salt}, nil
}

// GetBlob fetches a blob's ciphertext by its locator and opens it.
// Absence yields gitdb.ErrNotFound;
// an undecryptable object yields crypt.ErrAuthFailed,
// never ErrNotFound.
func (s *Store) GetBlob(ctx context.Context, key gitdb.Key, ref gitdb.ObjectRef) ([]byte, error) {
	ct, err := s.s.GetObject(ctx, ref.Oid)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching blob for %s", key)
	}
	pt, err := s.sess.Open(key, ct, ref.Salt)
	return pt, errors.Wrapf(err, "opening blob for %s", key)
}

// PutAt seals plaintext and overwrites the addressed object for key
// (its namespace object), along with its salt record.
// The salt lands before the ciphertext:
// a reader must never find a ciphertext whose salt is unrecorded.
func (s *Store) PutAt(ctx context.Context, key gitdb.Key, plaintext []byte) (gitdb.Salt, error) {
	ct, salt, err := s.sess.Seal(key, plaintext)
	if err != nil {
		return gitdb.Salt{}, errors.Wrapf(err, "sealing %s", key)
	}

	err = s.s.PutAt(ctx, gitdb.SaltAddr(key), salt[:])
	if err != nil {
		return gitdb.Salt{}, errors.Wrapf(err, "storing salt record for %s", key)
	}

	err = s.s.PutAt(ctx, gitdb.NamespaceAddr(key), ct)
	if err != nil {
		return gitdb.Salt{}, errors.Wrapf(err, "storing namespace object %s", key)
	}

	return salt, nil
}

// GetAt fetches and opens the addressed object for key.
func (s *Store) GetAt(ctx context.Context, key gitdb.Key) ([]byte, error) {
	ct, err := s.s.GetAt(ctx, gitdb.NamespaceAddr(key))
	if err != nil {
		return nil, errors.Wrapf(err, "fetching namespace object %s", key)
	}

	saltRec, err := s.s.GetAt(ctx, gitdb.SaltAddr(key))
	if err != nil {
		return nil, errors.Wrapf(err, "fetching salt record for %s", key)
	}

	pt, err := s.sess.Open(key, ct, gitdb.SaltFromBytes(saltRec))
	return pt, errors.Wrapf(err, "opening namespace object %s", key)
}
