package gitdb

import "errors"

var (
	// ErrNotFound is the error returned
	// when a requested object, namespace, or entry is absent.
	ErrNotFound = errors.New("not found")

	// ErrRootMissing is returned when the root namespace
	// has not been provisioned.
	// It indicates an uninitialized database,
	// never a key that merely needs creating.
	ErrRootMissing = errors.New("root namespace missing")

	// ErrKeyIsNamespace is returned when a blob operation
	// is attempted on a key that names a namespace.
	ErrKeyIsNamespace = errors.New("key names a namespace")

	// ErrKeyIsBlob is returned when a namespace operation
	// is attempted on a key that names a blob.
	ErrKeyIsBlob = errors.New("key names a blob")
)
