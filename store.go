package gitdb

import "context"

// Getter is the read half of a Store.
type Getter interface {
	// GetObject gets a content-addressed blob by its oid.
	// It returns ErrNotFound if the blob is absent.
	GetObject(ctx context.Context, oid Oid) (Blob, error)

	// GetAt gets the blob stored at a stable address.
	// It returns ErrNotFound if nothing has been stored there.
	GetAt(ctx context.Context, addr Addr) (Blob, error)
}

// Store is the object-store boundary consumed by gitdb.
// It stores byte sequences two ways:
// content-addressed (PutObject/GetObject),
// where the lookup key is the sha256 hash of the bytes,
// and addressed (PutAt/GetAt),
// where the caller supplies a stable address
// and later writes overwrite earlier ones in place.
//
// Namespace objects and salt records use addressed storage,
// because their locations must be computable from keys alone;
// blob ciphertexts use content-addressed storage
// and are reachable only through namespace entry tables.
type Store interface {
	Getter

	// PutObject adds a content-addressed blob to the store
	// if it was not already present.
	// It returns the blob's oid and a boolean
	// that is true iff the blob had to be added.
	PutObject(ctx context.Context, b Blob) (oid Oid, added bool, err error)

	// PutAt stores a blob at a stable address,
	// replacing whatever was stored there before.
	PutAt(ctx context.Context, addr Addr, b Blob) error

	// ListObjects calls a function for each content-addressed oid
	// in the store in lexicographic order,
	// beginning with the first oid _after_ the specified one.
	//
	// The calls reflect at least the set of oids
	// known at the moment ListObjects was called.
	// It is unspecified whether later changes,
	// that happen concurrently with ListObjects,
	// are reflected.
	//
	// If the callback function returns an error,
	// ListObjects exits with that error.
	ListObjects(ctx context.Context, start Oid, f func(Oid) error) error

	// ListAddrs calls a function for each occupied stable address,
	// in lexicographic order,
	// beginning with the first address _after_ the specified one.
	// The same consistency caveats as ListObjects apply.
	ListAddrs(ctx context.Context, start Addr, f func(Addr) error) error
}
