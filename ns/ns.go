// Package ns defines gitdb's namespace objects:
// directory-like tables mapping entry names
// to blobs or to child namespaces.
package ns

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack"

	"github.com/gitdb-io/gitdb"
)

// Kind distinguishes the two kinds of namespace entry.
// Every read site must switch over both cases;
// an entry's kind is immutable once created.
type Kind uint8

const (
	// Blob marks an entry naming an opaque encrypted payload.
	Blob Kind = iota + 1

	// KindNamespace marks an entry naming a child namespace.
	KindNamespace
)

func (k Kind) String() string {
	switch k {
	case Blob:
		return "blob"
	case KindNamespace:
		return "namespace"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Entry is one member of a namespace's table.
//
// For a Blob entry, Ref is the oid of the blob's ciphertext and Salt is
// the salt the blob was sealed with; both are authoritative, since a
// blob's ciphertext is immutable under its oid.
//
// For a Namespace entry, Ref is the child's stable address and Salt is
// the salt the child was sealed with when the entry was written. The
// child re-encrypts (with a new salt) on every mutation without
// touching its parent, so readers must load children through their
// address and current salt record, not through this snapshot.
type Entry struct {
	Name string
	Kind Kind
	Ref  []byte
	Salt []byte
}

// ObjectRef returns the blob locator carried by a Blob entry.
func (e Entry) ObjectRef() gitdb.ObjectRef {
	return gitdb.ObjectRef{
		Oid:  gitdb.OidFromBytes(e.Ref),
		Salt: gitdb.SaltFromBytes(e.Salt),
	}
}

// Addr returns the child address carried by a Namespace entry.
func (e Entry) Addr() gitdb.Addr {
	return gitdb.AddrFromBytes(e.Ref)
}

// A Namespace is a table of entries sorted by name.
// Names are unique within one namespace.
type Namespace struct {
	Entries []Entry
}

// New produces a new, empty namespace.
func New() *Namespace {
	return new(Namespace)
}

// Decode parses the encoding produced by Encode.
func Decode(b []byte) (*Namespace, error) {
	var n Namespace
	err := msgpack.Unmarshal(b, &n)
	return &n, errors.Wrap(err, "decoding namespace")
}

// Encode produces the canonical byte encoding of the entry table.
// Entries are kept sorted by name,
// so equal tables encode to equal bytes.
func (n *Namespace) Encode() ([]byte, error) {
	b, err := msgpack.Marshal(n)
	return b, errors.Wrap(err, "encoding namespace")
}

func (n *Namespace) search(name string) int {
	return sort.Search(len(n.Entries), func(i int) bool {
		return n.Entries[i].Name >= name
	})
}

// Len returns the number of entries.
func (n *Namespace) Len() int { return len(n.Entries) }

// Get looks up the entry with the given name.
// The boolean return value reports whether it was present.
func (n *Namespace) Get(name string) (Entry, bool) {
	i := n.search(name)
	if i < len(n.Entries) && n.Entries[i].Name == name {
		return n.Entries[i], true
	}
	return Entry{}, false
}

// Set inserts or replaces the entry named e.Name.
// Replacing an entry with one of a different kind is rejected:
// a blob name must never become a namespace name or vice versa.
func (n *Namespace) Set(e Entry) error {
	i := n.search(e.Name)
	if i < len(n.Entries) && n.Entries[i].Name == e.Name {
		if n.Entries[i].Kind != e.Kind {
			return errors.Wrapf(kindErr(n.Entries[i].Kind), "entry %q", e.Name)
		}
		n.Entries[i] = e
		return nil
	}
	n.Entries = append(n.Entries, Entry{})
	copy(n.Entries[i+1:], n.Entries[i:])
	n.Entries[i] = e
	return nil
}

// Remove deletes the entry with the given name,
// reporting whether it was present.
func (n *Namespace) Remove(name string) bool {
	i := n.search(name)
	if i >= len(n.Entries) || n.Entries[i].Name != name {
		return false
	}
	copy(n.Entries[i:], n.Entries[i+1:])
	n.Entries[len(n.Entries)-1] = Entry{}
	n.Entries = n.Entries[:len(n.Entries)-1]
	return true
}

// Each calls a function for each entry in name order.
// If the callback returns an error, Each exits with that error.
func (n *Namespace) Each(f func(Entry) error) error {
	for _, e := range n.Entries {
		if err := f(e); err != nil {
			return err
		}
	}
	return nil
}

func kindErr(existing Kind) error {
	if existing == Blob {
		return gitdb.ErrKeyIsBlob
	}
	return gitdb.ErrKeyIsNamespace
}
