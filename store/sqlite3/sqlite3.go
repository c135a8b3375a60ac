// Package sqlite3 implements an object store on a Sqlite database.
package sqlite3

import (
	"context"
	"database/sql"
	stderrs "errors"

	"github.com/bobg/sqlutil"
	_ "github.com/mattn/go-sqlite3" // register the sqlite3 type for sql.Open
	"github.com/pkg/errors"

	"github.com/gitdb-io/gitdb"
	"github.com/gitdb-io/gitdb/store"
)

var _ gitdb.Store = &Store{}

// Store is a Sqlite-based object store.
type Store struct {
	db *sql.DB
}

// Schema is the SQL that New executes.
// It creates the `objects` and `addrs` tables if they do not exist.
// (If they do exist, they must have the columns, constraints, and indexing described here.)
const Schema = `
CREATE TABLE IF NOT EXISTS objects (
  oid BLOB PRIMARY KEY NOT NULL,
  data BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS addrs (
  addr BLOB PRIMARY KEY NOT NULL,
  data BLOB NOT NULL
);
`

// New produces a new Store using `db` for storage.
// It expects to create tables `objects` and `addrs`,
// or for those tables already to exist with the correct schema.
// (See variable Schema.)
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	_, err := db.ExecContext(ctx, Schema)
	return &Store{db: db}, err
}

// GetObject gets the blob with content address `oid`.
func (s *Store) GetObject(ctx context.Context, oid gitdb.Oid) (gitdb.Blob, error) {
	const q = `SELECT data FROM objects WHERE oid = $1`

	var b gitdb.Blob
	err := s.db.QueryRowContext(ctx, q, oid[:]).Scan(&b)
	if stderrs.Is(err, sql.ErrNoRows) {
		return nil, gitdb.ErrNotFound
	}
	return b, errors.Wrapf(err, "querying object %s", oid)
}

// PutObject adds a blob to the store if it wasn't already present.
func (s *Store) PutObject(ctx context.Context, b gitdb.Blob) (gitdb.Oid, bool, error) {
	const q = `INSERT INTO objects (oid, data) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	oid := b.Oid()
	res, err := s.db.ExecContext(ctx, q, oid[:], []byte(b))
	if err != nil {
		return gitdb.Oid{}, false, errors.Wrap(err, "inserting object")
	}

	aff, err := res.RowsAffected()
	if err != nil {
		return gitdb.Oid{}, false, errors.Wrap(err, "counting affected rows")
	}

	return oid, aff > 0, nil
}

// DeleteObject removes the blob with content address `oid`.
func (s *Store) DeleteObject(ctx context.Context, oid gitdb.Oid) error {
	const q = `DELETE FROM objects WHERE oid = $1`

	res, err := s.db.ExecContext(ctx, q, oid[:])
	if err != nil {
		return errors.Wrapf(err, "deleting object %s", oid)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting affected rows")
	}
	if aff == 0 {
		return gitdb.ErrNotFound
	}
	return nil
}

// GetAt gets the blob stored at a stable address.
func (s *Store) GetAt(ctx context.Context, addr gitdb.Addr) (gitdb.Blob, error) {
	const q = `SELECT data FROM addrs WHERE addr = $1`

	var b gitdb.Blob
	err := s.db.QueryRowContext(ctx, q, addr[:]).Scan(&b)
	if stderrs.Is(err, sql.ErrNoRows) {
		return nil, gitdb.ErrNotFound
	}
	return b, errors.Wrapf(err, "querying address %s", addr)
}

// PutAt stores a blob at a stable address, overwriting in place.
func (s *Store) PutAt(ctx context.Context, addr gitdb.Addr, b gitdb.Blob) error {
	const q = `INSERT INTO addrs (addr, data) VALUES ($1, $2) ON CONFLICT (addr) DO UPDATE SET data = excluded.data`

	_, err := s.db.ExecContext(ctx, q, addr[:], []byte(b))
	return errors.Wrapf(err, "storing at address %s", addr)
}

// ListObjects produces all content addresses in the store,
// in lexicographic order, starting after `start`.
func (s *Store) ListObjects(ctx context.Context, start gitdb.Oid, f func(gitdb.Oid) error) error {
	const q = `SELECT oid FROM objects WHERE oid > $1 ORDER BY oid`
	return sqlutil.ForQueryRows(ctx, s.db, q, start[:], func(oid []byte) error {
		return f(gitdb.OidFromBytes(oid))
	})
}

// ListAddrs produces all occupied stable addresses,
// in lexicographic order, starting after `start`.
func (s *Store) ListAddrs(ctx context.Context, start gitdb.Addr, f func(gitdb.Addr) error) error {
	const q = `SELECT addr FROM addrs WHERE addr > $1 ORDER BY addr`
	return sqlutil.ForQueryRows(ctx, s.db, q, start[:], func(addr []byte) error {
		return f(gitdb.AddrFromBytes(addr))
	})
}

func init() {
	store.Register("sqlite3", func(ctx context.Context, conf map[string]interface{}) (gitdb.Store, error) {
		conn, ok := conf["conn"].(string)
		if !ok {
			return nil, errors.New(`missing "conn" parameter`)
		}
		db, err := sql.Open("sqlite3", conn)
		if err != nil {
			return nil, errors.Wrap(err, "opening sqlite db")
		}
		return New(ctx, db)
	})
}
