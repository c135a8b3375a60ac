package crypt

import (
	"crypto/rand"
	"os"

	"github.com/google/renameio"
	"github.com/pkg/errors"
)

// ReadKeyFile reads the device-local key file at path.
// The file must contain exactly 32 raw bytes.
// Its contents are a device secret:
// they are never transmitted and never synced.
func ReadKeyFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading key file %s", path)
	}
	if len(b) != KeySize {
		return nil, errors.Wrapf(ErrKeyFileSize, "%s is %d bytes", path, len(b))
	}
	return b, nil
}

// GenerateKeyFile creates a new random key file at path,
// written atomically with owner-only permissions,
// and returns its contents.
// It refuses to overwrite an existing file.
func GenerateKeyFile(path string) ([]byte, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, errors.Errorf("key file %s already exists", path)
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking for key file %s", path)
	}

	b := make([]byte, KeySize)
	if _, err := rand.Read(b); err != nil {
		return nil, errors.Wrap(err, "generating key file bytes")
	}

	err := renameio.WriteFile(path, b, 0600)
	return b, errors.Wrapf(err, "writing key file %s", path)
}
