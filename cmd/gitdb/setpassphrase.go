package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/pkg/errors"
	"github.com/zalando/go-keyring"

	"github.com/gitdb-io/gitdb/crypt"
)

func (c maincmd) setPassphrase(ctx context.Context, fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}

	if c.conf.KeyringService == "" {
		return errors.New("config has no keyring_service; set one to store the passphrase in the system keyring")
	}

	passphrase, err := promptPassphrase("new passphrase: ")
	if err != nil {
		return err
	}
	defer crypt.Zero(passphrase)

	again, err := promptPassphrase("again: ")
	if err != nil {
		return err
	}
	defer crypt.Zero(again)

	if string(passphrase) != string(again) {
		return errors.New("passphrases do not match")
	}

	err = keyring.Set(c.conf.KeyringService, c.conf.KeyringUser, string(passphrase))
	if err != nil {
		return errors.Wrap(err, "storing passphrase in keyring")
	}
	fmt.Printf("passphrase stored in keyring service %s\n", c.conf.KeyringService)
	return nil
}
