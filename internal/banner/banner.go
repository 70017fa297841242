// Package banner holds the single transient in-app banner shown after habit actions.
package banner

import (
	"sync"
	"time"
)

const DefaultDelay = 4 * time.Second

type State struct {
	Visible bool
	Title   string
	Message string
}

// Publisher owns one banner slot. Show replaces whatever is visible and
// restarts the hide timer.
type Publisher struct {
	mu      sync.Mutex
	state   State
	delay   time.Duration
	seq     uint64
	timer   *time.Timer
	changes chan State
	closed  bool
}

func New(delay time.Duration) *Publisher {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Publisher{
		delay:   delay,
		changes: make(chan State, 1),
	}
}

func (p *Publisher) Show(title, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	p.seq++
	seq := p.seq
	if p.timer != nil {
		p.timer.Stop()
	}
	p.state = State{Visible: true, Title: title, Message: message}
	p.timer = time.AfterFunc(p.delay, func() { p.expire(seq) })
	p.publishLocked()
}

// Hide clears visibility and keeps the last title and message.
func (p *Publisher) Hide() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hideLocked()
}

func (p *Publisher) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Changes carries the latest state. Slow readers only see the newest value.
func (p *Publisher) Changes() <-chan State {
	return p.changes
}

func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.timer != nil {
		p.timer.Stop()
	}
	close(p.changes)
}

func (p *Publisher) expire(seq uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq {
		return
	}
	p.hideLocked()
}

func (p *Publisher) hideLocked() {
	if p.closed || !p.state.Visible {
		return
	}
	p.seq++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.state.Visible = false
	p.publishLocked()
}

func (p *Publisher) publishLocked() {
	select {
	case <-p.changes:
	default:
	}
	p.changes <- p.state
}
