// Package gitdb is an encrypted-at-rest hierarchical data store
// layered on a content-addressed object store.
//
// Client applications read and write opaque payloads - "blobs" -
// under hierarchical string keys that look like filesystem paths:
// /contacts/alice, /todo/2026/inbox, and so on.
// Every interior component of a key names a "namespace",
// a directory-like table mapping entry names
// to blobs or to child namespaces.
//
// Everything gitdb persists is encrypted locally before it reaches storage.
// Each object is sealed under a one-time key
// derived from the session passphrase,
// a device-local key file,
// and a fresh random salt drawn for every write.
// The salt is stored in plaintext next to the ciphertext;
// its uniqueness, not its secrecy, is what the design relies on.
//
// The underlying object store is deliberately dumb.
// It stores byte sequences either content-addressed
// (looked up by the hash of their bytes)
// or at stable, key-derived addresses with overwrite-in-place semantics.
// Because addresses are deterministic functions of keys,
// independently-syncing replicas need no coordination to agree
// on where any object lives.
// Several interchangeable backends live under store/...;
// the db package implements the namespace tree engine on top of them.
package gitdb
