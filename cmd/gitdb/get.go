package main

import (
	"context"
	"flag"
	"os"

	"github.com/pkg/errors"

	"github.com/gitdb-io/gitdb"
)

func (c maincmd) get(ctx context.Context, fs *flag.FlagSet, args []string) error {
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

	plaintext, err := db.Get(ctx, key)
	if err != nil {
		return errors.Wrapf(err, "getting %s", key)
	}
	_, err = os.Stdout.Write(plaintext)
	return errors.Wrap(err, "writing blob to stdout")
}
