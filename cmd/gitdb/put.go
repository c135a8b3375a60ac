package main

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/gitdb-io/gitdb"
)

func (c maincmd) put(ctx context.Context, fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}
	if fs.NArg() == 0 {
		return errors.New("missing key")
	}
	key := gitdb.Key(fs.Arg(0))

	plaintext, err := io.ReadAll(os.Stdin)
	if err != nil {
		return errors.Wrap(err, "reading stdin")
	}

	db, done, err := c.openDB(ctx)
	if err != nil {
		return err
	}
	defer done()

	return errors.Wrapf(db.Put(ctx, key, plaintext), "storing %s", key)
}
