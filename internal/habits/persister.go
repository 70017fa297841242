package habits

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sandeepkv93/habitd/internal/storage"
)

const saveTimeout = 5 * time.Second

// persister writes snapshots on a single goroutine. Only the newest pending
// snapshot is written; older ones are superseded.
type persister struct {
	gateway storage.Gateway
	key     string
	logger  *log.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	pending []byte
	dirty   bool
	queued  uint64
	written uint64
	closed  bool
	done    chan struct{}
}

func newPersister(gateway storage.Gateway, key string, logger *log.Logger) *persister {
	p := &persister{
		gateway: gateway,
		key:     key,
		logger:  logger,
		done:    make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)
	go p.run()
	return p
}

func (p *persister) enqueue(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.logger.Warn("snapshot dropped after close", "key", p.key)
		return
	}
	p.queued++
	p.pending = data
	p.dirty = true
	p.cond.Broadcast()
}

// flush blocks until every snapshot enqueued before the call has been written.
func (p *persister) flush(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		p.mu.Lock()
		p.cond.Broadcast()
		p.mu.Unlock()
	})
	defer stop()

	p.mu.Lock()
	defer p.mu.Unlock()
	target := p.queued
	for p.written < target {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.cond.Wait()
	}
	return nil
}

func (p *persister) close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.done
		return
	}
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()
	<-p.done
}

func (p *persister) run() {
	defer close(p.done)
	for {
		p.mu.Lock()
		for !p.dirty && !p.closed {
			p.cond.Wait()
		}
		if !p.dirty {
			p.mu.Unlock()
			return
		}
		data, version := p.pending, p.queued
		p.pending, p.dirty = nil, false
		p.mu.Unlock()

		p.save(data)

		p.mu.Lock()
		p.written = version
		p.cond.Broadcast()
		p.mu.Unlock()
	}
}

func (p *persister) save(data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := p.gateway.Save(ctx, p.key, data); err != nil {
		p.logger.Error("persist habits failed", "key", p.key, "error", err)
		return
	}
	p.logger.Debug("habits persisted", "key", p.key, "bytes", len(data))
}
