package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"github.com/gitdb-io/gitdb"
)

// namespace materializes the namespace at a key,
// creating any missing ancestors.
// Opening an existing namespace writes nothing.
func (c maincmd) namespace(ctx context.Context, fs *flag.FlagSet, args []string) error {
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

	n, err := db.Namespace(ctx, key)
	if err != nil {
		return errors.Wrapf(err, "opening namespace %s", key)
	}
	fmt.Printf("%s: %d entries\n", key, n.Len())
	return nil
}
