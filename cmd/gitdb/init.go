package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"github.com/gitdb-io/gitdb/db"
)

func (c maincmd) init(ctx context.Context, fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}

	s, sess, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	err = db.Init(ctx, s, sess)
	if err != nil {
		return errors.Wrap(err, "initializing database")
	}
	fmt.Println("initialized")
	return nil
}
