package main

import (
	"context"
	"flag"

	"github.com/pkg/errors"

	"github.com/gitdb-io/gitdb"
)

func (c maincmd) rm(ctx context.Context, fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}
	if fs.NArg() == 0 {
		return errors.New("missing key")
	}
	key := gitdb.Key(fs.Arg(0))

	db, done, err := c.openDB(ctx)
	if err != nil {
		return err
	}
	defer done()

	return errors.Wrapf(db.Rm(ctx, key), "removing %s", key)
}
