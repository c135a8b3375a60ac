// Package gcs implements an object store on Google Cloud Storage.
package gcs

import (
	"context"
	stderrs "errors"
	"io"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/gitdb-io/gitdb"
	"github.com/gitdb-io/gitdb/store"
)

var _ gitdb.Store = &Store{}

// Store is a Google Cloud Storage-based implementation of an object store.
// Content-addressed objects are bucket objects named "o:" plus the hex oid,
// written with a DoesNotExist precondition so duplicate writes are cheap no-ops;
// stable-address objects are named "a:" plus the hex address
// and overwritten unconditionally.
type Store struct {
	bucket *storage.BucketHandle
}

// New produces a new Store.
func New(bucket *storage.BucketHandle) *Store {
	return &Store{bucket: bucket}
}

// GetObject gets the blob with content address `oid`.
func (s *Store) GetObject(ctx context.Context, oid gitdb.Oid) (gitdb.Blob, error) {
	b, err := s.read(ctx, objName(oid))
	if isNotExist(err) {
		return nil, gitdb.ErrNotFound
	}
	return b, err
}

// PutObject adds a blob to the store if it wasn't already present.
func (s *Store) PutObject(ctx context.Context, b gitdb.Blob) (gitdb.Oid, bool, error) {
	var (
		oid   = b.Oid()
		name  = objName(oid)
		obj   = s.bucket.Object(name).If(storage.Conditions{DoesNotExist: true})
		w     = obj.NewWriter(ctx)
		added bool
	)
	err := func() error {
		defer w.Close()

		_, err := w.Write(b)
		var e *googleapi.Error
		if stderrs.As(err, &e) && e.Code == http.StatusPreconditionFailed {
			return nil
		}
		if err == nil { // sic
			added = true
		}
		return errors.Wrapf(err, "writing object %s", name)
	}()
	return oid, added, err
}

// DeleteObject removes the blob with content address `oid`.
func (s *Store) DeleteObject(ctx context.Context, oid gitdb.Oid) error {
	err := s.bucket.Object(objName(oid)).Delete(ctx)
	if isNotExist(err) {
		return gitdb.ErrNotFound
	}
	return errors.Wrapf(err, "deleting object %s", oid)
}

// GetAt gets the blob stored at a stable address.
func (s *Store) GetAt(ctx context.Context, addr gitdb.Addr) (gitdb.Blob, error) {
	b, err := s.read(ctx, addrObjName(addr))
	if isNotExist(err) {
		return nil, gitdb.ErrNotFound
	}
	return b, err
}

// PutAt stores a blob at a stable address, overwriting in place.
// Cloud Storage object replacement is atomic,
// so concurrent readers see a complete old or new value.
func (s *Store) PutAt(ctx context.Context, addr gitdb.Addr, b gitdb.Blob) error {
	var (
		name = addrObjName(addr)
		w    = s.bucket.Object(name).NewWriter(ctx)
	)
	err := func() error {
		defer w.Close()

		_, err := w.Write(b)
		return err
	}()
	return errors.Wrapf(err, "writing object %s", name)
}

// ListObjects produces all content addresses in the store,
// in lexicographic order, starting after `start`.
func (s *Store) ListObjects(ctx context.Context, start gitdb.Oid, f func(gitdb.Oid) error) error {
	// Cloud Storage iterators have no API for starting in the middle of a bucket,
	// but they can filter by object-name prefix.
	// So we take the hex encoding of `start`
	// and repeatedly compute prefixes for the objects after it.
	// If `start` ends e67a, for example, the final generated prefixes are:
	//   e67b e67c e67d e67e e67f
	//   e68 e69 e6a e6b e6c e6d e6e e6f
	//   e7 e8 e9 ea eb ec ed ee ef
	//   f
	return eachHexPrefix(start.String(), false, func(prefix string) error {
		return s.list(ctx, "o:"+prefix, func(hexName string) error {
			oid, err := gitdb.OidFromHex(hexName)
			if err != nil {
				return errors.Wrapf(err, "decoding object name %s", hexName)
			}
			return f(oid)
		})
	})
}

// ListAddrs produces all occupied stable addresses,
// in lexicographic order, starting after `start`.
func (s *Store) ListAddrs(ctx context.Context, start gitdb.Addr, f func(gitdb.Addr) error) error {
	return eachHexPrefix(start.String(), false, func(prefix string) error {
		return s.list(ctx, "a:"+prefix, func(hexName string) error {
			addr, err := gitdb.AddrFromHex(hexName)
			if err != nil {
				return errors.Wrapf(err, "decoding object name %s", hexName)
			}
			return f(addr)
		})
	})
}

func (s *Store) read(ctx context.Context, name string) (gitdb.Blob, error) {
	r, err := s.bucket.Object(name).NewReader(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "reading info of object %s", name)
	}

	b := make(gitdb.Blob, r.Attrs.Size)
	err = func() error {
		defer r.Close()

		_, err := io.ReadFull(r, b)
		return errors.Wrapf(err, "reading contents of object %s", name)
	}()
	return b, err
}

func (s *Store) list(ctx context.Context, prefix string, f func(hexName string) error) error {
	iter := s.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		obj, err := iter.Next()
		if stderrs.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := f(obj.Name[2:]); err != nil {
			return err
		}
	}
}

func isNotExist(err error) bool {
	if stderrs.Is(err, storage.ErrObjectNotExist) {
		return true
	}
	var e *googleapi.Error
	return stderrs.As(err, &e) && e.Code == http.StatusNotFound
}

func eachHexPrefix(prefix string, incl bool, f func(string) error) error {
	prefix = strings.ToLower(prefix)
	for len(prefix) > 0 {
		end := hexval(prefix[len(prefix)-1:][0])
		if !incl {
			end++
		}
		prefix = prefix[:len(prefix)-1]
		for c := end; c < 16; c++ {
			err := f(prefix + string(hexdigit(c)))
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func hexval(b byte) int {
	switch {
	case '0' <= b && b <= '9':
		return int(b - '0')
	case 'a' <= b && b <= 'f':
		return int(10 + b - 'a')
	case 'A' <= b && b <= 'F':
		return int(10 + b - 'A')
	}
	return 0
}

func hexdigit(n int) byte {
	if n < 10 {
		return byte(n + '0')
	}
	return byte(n - 10 + 'a')
}

func objName(oid gitdb.Oid) string {
	return "o:" + oid.String()
}

func addrObjName(addr gitdb.Addr) string {
	return "a:" + addr.String()
}

func init() {
	store.Register("gcs", func(ctx context.Context, conf map[string]interface{}) (gitdb.Store, error) {
		var options []option.ClientOption
		creds, ok := conf["creds"].(string)
		if !ok {
			return nil, errors.New(`missing "creds" parameter`)
		}
		bucketName, ok := conf["bucket"].(string)
		if !ok {
			return nil, errors.New(`missing "bucket" parameter`)
		}
		options = append(options, option.WithCredentialsFile(creds))
		c, err := storage.NewClient(ctx, options...)
		if err != nil {
			return nil, errors.Wrap(err, "creating cloud storage client")
		}
		return New(c.Bucket(bucketName)), nil
	})
}
