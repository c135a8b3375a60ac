package logging

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/gitdb-io/gitdb/store/mem"
	"github.com/gitdb-io/gitdb/testutil"
)

func TestStore(t *testing.T) {
	log.SetOutput(io.Discard)
	defer log.SetOutput(log.Writer())

	testutil.ReadWrite(context.Background(), t, New(mem.New()))
}

func TestAddressed(t *testing.T) {
	log.SetOutput(io.Discard)
	defer log.SetOutput(log.Writer())

	testutil.Addressed(context.Background(), t, New(mem.New()))
}
