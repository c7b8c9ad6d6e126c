// Package events provides the NATS-backed event publisher. Handlers acquire
// a connection handle per request and release it on every exit path; the
// pool keeps a few idle connections around instead of redialing each time.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	dialTimeout = 5 * time.Second
	maxIdle     = 4
)

// BusConn is the part of *nats.Conn the pool relies on.
type BusConn interface {
	Publish(subject string, payload []byte) error
	IsClosed() bool
	Close()
}

type Pool struct {
	url    string
	dial   func(url string) (BusConn, error)
	logger *zap.SugaredLogger

	mu     sync.Mutex
	idle   []BusConn
	closed bool
}

func NewPool(url string, logger *zap.SugaredLogger) *Pool {
	return NewPoolWithDialer(url, func(url string) (BusConn, error) {
		nc, err := nats.Connect(url, nats.Timeout(dialTimeout))
		if err != nil {
			return nil, err
		}
		return nc, nil
	}, logger)
}

func NewPoolWithDialer(url string, dial func(url string) (BusConn, error), logger *zap.SugaredLogger) *Pool {
	return &Pool{
		url:    url,
		dial:   dial,
		logger: logger,
	}
}

// Conn is a pooled publisher handle. It is intended for one request: use it,
// then Release it.
type Conn struct {
	bus  BusConn
	pool *Pool
}

// Publish is fire-and-forget; no acknowledgment is awaited.
func (c *Conn) Publish(subject string, payload []byte) error {
	return c.bus.Publish(subject, payload)
}

// Release hands the connection back to the pool. Closed or surplus
// connections are discarded.
func (c *Conn) Release() {
	c.pool.put(c.bus)
}

// Acquire returns a publisher handle, reusing an idle connection when one is
// available and dialing otherwise.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	for len(p.idle) > 0 {
		bus := p.idle[len(p.idle)-1]
		p.idle = p.idle[:len(p.idle)-1]
		if bus.IsClosed() {
			continue
		}
		p.mu.Unlock()
		return &Conn{bus: bus, pool: p}, nil
	}
	p.mu.Unlock()

	bus, err := p.dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("connecting to the event bus: %w", err)
	}
	return &Conn{bus: bus, pool: p}, nil
}

func (p *Pool) put(bus BusConn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || bus.IsClosed() || len(p.idle) >= maxIdle {
		bus.Close()
		return
	}
	p.idle = append(p.idle, bus)
}

// Close drains the pool. Handles still in flight close on Release.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	for _, bus := range p.idle {
		bus.Close()
	}
	p.idle = nil
}
