package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"github.com/gitdb-io/gitdb"
	"github.com/gitdb-io/gitdb/ns"
)

func (c maincmd) ls(ctx context.Context, fs *flag.FlagSet, args []string) error {
	recursive := fs.Bool("r", false, "recurse into child namespaces")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}

	key := gitdb.Root
	if fs.NArg() > 0 {
		key = gitdb.Key(fs.Arg(0))
	}

	db, done, err := c.openDB(ctx)
	if err != nil {
		return err
	}
	defer done()

	if *recursive {
		return db.Walk(ctx, key, func(k gitdb.Key, e ns.Entry) error {
			if e.Kind == ns.KindNamespace {
				fmt.Printf("%s/\n", k)
			} else {
				fmt.Println(k)
			}
			return nil
		})
	}

	err = db.List(ctx, key, func(e ns.Entry) error {
		if e.Kind == ns.KindNamespace {
			fmt.Printf("%s/\n", e.Name)
		} else {
			fmt.Println(e.Name)
		}
		return nil
	})
	return errors.Wrapf(err, "listing namespace %s", key)
}
