package gitdb

import (
	"strings"

	"github.com/pkg/errors"
)

// Key is a hierarchical gitdb key.
// A valid key begins with a slash and consists of one or more
// non-empty segments of [A-Za-z0-9_.-] separated by single slashes.
// The bare string "/" names the root namespace.
type Key string

// Root is the key of the root namespace.
const Root = Key("/")

var (
	// ErrInvalidKey is returned for keys violating the grammar.
	ErrInvalidKey = errors.New("invalid key")

	// ErrNoParent is returned when partitioning the root key.
	ErrNoParent = errors.New("key has no parent")
)

// Validate checks k against the key grammar.
func (k Key) Validate() error {
	if k == Root {
		return nil
	}
	s := string(k)
	if s == "" {
		return errors.Wrap(ErrInvalidKey, "empty key")
	}
	if s[0] != '/' {
		return errors.Wrapf(ErrInvalidKey, "key %q does not begin with a slash", s)
	}
	if s[len(s)-1] == '/' {
		return errors.Wrapf(ErrInvalidKey, "key %q has a trailing slash", s)
	}
	for _, seg := range strings.Split(s[1:], "/") {
		if seg == "" {
			return errors.Wrapf(ErrInvalidKey, "key %q has an empty segment", s)
		}
		for _, c := range seg {
			if !segmentChar(c) {
				return errors.Wrapf(ErrInvalidKey, "key %q contains disallowed character %q", s, c)
			}
		}
	}
	return nil
}

func segmentChar(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '_' || c == '.' || c == '-':
		return true
	}
	return false
}

// IsRoot reports whether k is the root key.
func (k Key) IsRoot() bool { return k == Root }

// Partition splits k into the key of its parent namespace
// and its final segment.
// Partitioning the root fails with ErrNoParent.
func (k Key) Partition() (parent Key, leaf string, err error) {
	if err := k.Validate(); err != nil {
		return "", "", err
	}
	if k.IsRoot() {
		return "", "", errors.Wrapf(ErrNoParent, "key %q", k)
	}
	i := strings.LastIndexByte(string(k), '/')
	parent = k[:i]
	if i == 0 {
		parent = Root
	}
	return parent, string(k[i+1:]), nil
}

// Segments returns the segments of k in order.
// The root key has no segments.
func (k Key) Segments() []string {
	if k.IsRoot() {
		return nil
	}
	return strings.Split(string(k[1:]), "/")
}

// Child returns the key naming the given entry under k.
func (k Key) Child(name string) Key {
	if k.IsRoot() {
		return Key("/" + name)
	}
	return k + Key("/"+name)
}
