package habits

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/habitd/internal/storage"
)

func TestPersisterWritesLatestSnapshot(t *testing.T) {
	ctx := context.Background()
	gw := storage.NewMemoryGateway()
	p := newPersister(gw, "k", log.New(io.Discard))
	defer p.close()

	for i := 0; i < 50; i++ {
		p.enqueue([]byte(fmt.Sprintf("v%d", i)))
	}
	require.NoError(t, p.flush(ctx))

	got, err := gw.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v49", string(got))
	assert.LessOrEqual(t, gw.Saves(), 50)
}

func TestPersisterFlushHonoursContext(t *testing.T) {
	gw := storage.NewMemoryGateway()
	p := newPersister(gw, "k", log.New(io.Discard))
	defer p.close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.mu.Lock()
	p.queued++
	p.mu.Unlock()

	assert.ErrorIs(t, p.flush(ctx), context.Canceled)
}

func TestPersisterCloseDrainsPending(t *testing.T) {
	gw := storage.NewMemoryGateway()
	p := newPersister(gw, "k", log.New(io.Discard))
	p.enqueue([]byte("last"))
	p.close()
	p.enqueue([]byte("ignored"))

	got, err := gw.Load(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "last", string(got))
}
