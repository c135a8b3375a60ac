package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"github.com/gitdb-io/gitdb/crypt"
)

func (c maincmd) keyfile(ctx context.Context, fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}

	path := c.conf.KeyFile
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}

	b, err := crypt.GenerateKeyFile(path)
	if err != nil {
		return err
	}
	crypt.Zero(b)

	fmt.Printf("wrote %s\n", path)
	fmt.Println("this file is a device secret: do not sync it, and do not lose it")
	return nil
}
