package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/zalando/go-keyring"
	"golang.org/x/term"

	"github.com/gitdb-io/gitdb"
	"github.com/gitdb-io/gitdb/crypt"
	"github.com/gitdb-io/gitdb/db"
	"github.com/gitdb-io/gitdb/store"
)

// openDB assembles the configured store and a crypto session
// and returns the database handle over them.
// The caller owns the session's lifetime via the returned closer.
func (c maincmd) openDB(ctx context.Context) (*db.DB, func(), error) {
	s, sess, err := c.open(ctx)
	if err != nil {
		return nil, nil, err
	}
	return db.New(s, sess), sess.Close, nil
}

func (c maincmd) open(ctx context.Context) (gitdb.Store, *crypt.Session, error) {
	sess, err := c.session()
	if err != nil {
		return nil, nil, err
	}

	s, err := store.Create(ctx, c.conf.Store["type"].(string), c.conf.Store)
	if err != nil {
		sess.Close()
		return nil, nil, errors.Wrap(err, "creating store")
	}
	return s, sess, nil
}

func (c maincmd) session() (*crypt.Session, error) {
	keyFile, err := crypt.ReadKeyFile(c.conf.KeyFile)
	if err != nil {
		return nil, errors.Wrapf(err, "reading key file %s", c.conf.KeyFile)
	}
	defer crypt.Zero(keyFile)

	passphrase, err := c.passphrase()
	if err != nil {
		return nil, err
	}
	defer crypt.Zero(passphrase)

	return crypt.NewSession(passphrase, keyFile, c.conf.Iterations)
}

// passphrase fetches the passphrase from the system keyring when one
// is configured, falling back to a terminal prompt.
func (c maincmd) passphrase() ([]byte, error) {
	if c.conf.KeyringService != "" {
		got, err := keyring.Get(c.conf.KeyringService, c.conf.KeyringUser)
		if err == nil {
			return []byte(got), nil
		}
		if !errors.Is(err, keyring.ErrNotFound) {
			return nil, errors.Wrap(err, "reading passphrase from keyring")
		}
	}
	return promptPassphrase("passphrase: ")
}

func promptPassphrase(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	passphrase, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	return passphrase, errors.Wrap(err, "reading passphrase")
}
