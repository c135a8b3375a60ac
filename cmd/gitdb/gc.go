package main

import (
	"context"
	"flag"

	"github.com/pkg/errors"

	"github.com/gitdb-io/gitdb"
	"github.com/gitdb-io/gitdb/db"
	"github.com/gitdb-io/gitdb/gc"
)

// gc collects ciphertexts orphaned by overwrites and removals.
// The whole tree is marked from the root, so anything reachable
// survives; run it only when no other replica is mid-sync into
// this store.
func (c maincmd) gc(ctx context.Context, fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}

	s, sess, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	deleter, ok := s.(gc.Store)
	if !ok {
		return errors.Errorf("%s-type stores do not support deletion", c.conf.Store["type"])
	}

	keep := gc.NewMemKeep()
	err = gc.Mark(ctx, keep, db.New(s, sess), gitdb.Root)
	if err != nil {
		return errors.Wrap(err, "marking reachable objects")
	}
	return errors.Wrap(gc.Run(ctx, deleter, keep), "sweeping")
}
