// Package store provides a registry of gitdb object-store backends,
// so stores can be created from configuration by name.
package store

import (
	"context"
	"fmt"

	"github.com/gitdb-io/gitdb"
)

// Factory creates a Store from configuration.
type Factory func(context.Context, map[string]interface{}) (gitdb.Store, error)

var registry = make(map[string]Factory)

// Register associates a factory with a backend name.
// Backends call Register from their init functions.
func Register(key string, f Factory) {
	registry[key] = f
}

// Create builds the backend registered under key from conf.
func Create(ctx context.Context, key string, conf map[string]interface{}) (gitdb.Store, error) {
	f, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("key %s not found in registry", key)
	}
	return f(ctx, conf)
}
