package storage

import (
	"context"
	"slices"
	"sync"
)

// MemoryGateway is an in-process Gateway. Failures can be injected for tests.
type MemoryGateway struct {
	mu      sync.Mutex
	data    map[string][]byte
	saves   int
	LoadErr error
	SaveErr error
	closed  bool
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{data: make(map[string][]byte)}
}

func (g *MemoryGateway) Load(_ context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil, ErrClosed
	}
	if g.LoadErr != nil {
		return nil, g.LoadErr
	}
	v, ok := g.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v), nil
}

func (g *MemoryGateway) Save(_ context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrClosed
	}
	if g.SaveErr != nil {
		return g.SaveErr
	}
	g.data[key] = slices.Clone(value)
	g.saves++
	return nil
}

func (g *MemoryGateway) SetFailures(loadErr, saveErr error) {
	g.mu.Lock()
	g.LoadErr = loadErr
	g.SaveErr = saveErr
	g.mu.Unlock()
}

// Saves reports how many successful writes happened.
func (g *MemoryGateway) Saves() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.saves
}

func (g *MemoryGateway) Close() error {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	return nil
}
