package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"github.com/gitdb-io/gitdb"
	"github.com/gitdb-io/gitdb/store"
)

// objects enumerates the raw content-addressed objects in the store.
// It needs no credentials: oids and ciphertexts are not secret.
func (c maincmd) objects(ctx context.Context, fs *flag.FlagSet, args []string) error {
	startstr := fs.String("start", "", "list oids greater than this hex oid")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}

	var start gitdb.Oid
	if *startstr != "" {
		var err error
		start, err = gitdb.OidFromHex(*startstr)
		if err != nil {
			return errors.Wrapf(err, "decoding oid %s", *startstr)
		}
	}

	s, err := store.Create(ctx, c.conf.Store["type"].(string), c.conf.Store)
	if err != nil {
		return errors.Wrap(err, "creating store")
	}

	return s.ListObjects(ctx, start, func(oid gitdb.Oid) error {
		fmt.Println(oid)
		return nil
	})
}
