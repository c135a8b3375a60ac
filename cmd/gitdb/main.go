// Command gitdb is a CLI interface to encrypted gitdb databases.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/bobg/subcmd"

	_ "github.com/gitdb-io/gitdb/store/bolt"
	_ "github.com/gitdb-io/gitdb/store/file"
	_ "github.com/gitdb-io/gitdb/store/gcs"
	_ "github.com/gitdb-io/gitdb/store/logging"
	_ "github.com/gitdb-io/gitdb/store/lru"
	_ "github.com/gitdb-io/gitdb/store/mem"
	_ "github.com/gitdb-io/gitdb/store/pg"
	_ "github.com/gitdb-io/gitdb/store/replica"
	_ "github.com/gitdb-io/gitdb/store/sqlite3"
)

type maincmd struct {
	conf *config
}

func main() {
	configPath := flag.String("config", "gitdbconf.json", "path to config file")
	flag.Parse()

	if *configPath == "" {
		log.Fatal("Config value not set")
	}

	conf, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Loading config file %s: %s", *configPath, err)
	}

	ctx := context.Background()

	c := maincmd{conf: conf}

	// The keyfile and set-passphrase subcommands run before a store
	// or credentials exist, so session setup is deferred until a
	// subcommand asks for the database.
	err = subcmd.Run(ctx, c, flag.Args())
	if err != nil {
		log.Fatal(err)
	}
}

func (c maincmd) Subcmds() map[string]subcmd.Subcmd {
	return map[string]subcmd.Subcmd{
		"init":           {F: c.init},
		"keyfile":        {F: c.keyfile},
		"set-passphrase": {F: c.setPassphrase},
		"namespace":      {F: c.namespace},
		"put":            {F: c.put},
		"get":            {F: c.get},
		"rm":             {F: c.rm},
		"ls":             {F: c.ls},
		"objects":        {F: c.objects},
		"gc":             {F: c.gc},
	}
}
