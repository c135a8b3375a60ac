package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// config is the JSON configuration for the gitdb command.
//
// The "store" object is passed verbatim to the backend factory
// selected by its "type" field, e.g.
//
//	{
//	  "store": {"type": "file", "root": "/var/lib/gitdb"},
//	  "keyfile": "/home/me/.config/gitdb/key",
//	  "keyring_service": "gitdb",
//	  "keyring_user": "me"
//	}
//
// When keyring_service is set, the passphrase comes from the
// system keyring (see the set-passphrase subcommand);
// otherwise it is prompted for on the terminal.
type config struct {
	Store          map[string]interface{} `json:"store"`
	KeyFile        string                 `json:"keyfile"`
	Iterations     int                    `json:"iterations"`
	KeyringService string                 `json:"keyring_service"`
	KeyringUser    string                 `json:"keyring_user"`
}

func loadConfig(filename string) (*config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "opening config file %s", filename)
	}
	defer f.Close()

	var conf config
	err = json.NewDecoder(f).Decode(&conf)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding config file %s", filename)
	}

	if conf.Store == nil {
		return nil, fmt.Errorf("config file %s missing `store` object", filename)
	}
	if _, ok := conf.Store["type"].(string); !ok {
		return nil, fmt.Errorf("config file %s: `store` object missing `type` parameter", filename)
	}
	if conf.KeyFile == "" {
		return nil, fmt.Errorf("config file %s missing `keyfile` parameter", filename)
	}
	return &conf, nil
}
