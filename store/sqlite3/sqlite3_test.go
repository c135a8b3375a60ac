package sqlite3

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/gitdb-io/gitdb/testutil"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	testutil.ReadWrite(ctx, t, newTestStore(ctx, t))
}

func TestAddressed(t *testing.T) {
	ctx := context.Background()
	testutil.Addressed(ctx, t, newTestStore(ctx, t))
}

func newTestStore(ctx context.Context, t *testing.T) *Store {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "gitdb.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	s, err := New(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	return s
}
