// Package publisher delivers ledger events to a sink, synchronously by
// default or through a buffered channel when emit latency matters more than
// immediate durability.
package publisher

import (
	"context"
	"sync"

	"github.com/google/uuid"

	id "fundledger/pkg/domain"
	audit "fundledger/pkg/platform/audit"
	"fundledger/pkg/requestcontext"
)

type Publisher struct {
	sink  audit.Sink
	ch    chan audit.Event
	wg    sync.WaitGroup
	once  sync.Once
	async bool

	mu     sync.RWMutex
	closed bool
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to asynchronous delivery through a
// channel of the given capacity. Close drains the buffer before returning.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.async = true
		p.ch = make(chan audit.Event, size)
	}
}

func NewPublisher(sink audit.Sink, opts ...Option) *Publisher {
	p := &Publisher{sink: sink}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records a ledger event. Missing id and timestamp are filled from the
// request context so emitters only state what happened.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if p.async {
		p.mu.RLock()
		defer p.mu.RUnlock()
		if p.closed {
			// Shutdown has begun; a late event is dropped rather than sent
			// on the closed channel.
			return nil
		}
		p.ch <- event
		return nil
	}
	return p.sink.Append(ctx, event)
}

// List queries events back when the sink is a queryable store. Returns nil
// for write-only sinks.
func (p *Publisher) List(ctx context.Context, principal id.Principal) ([]audit.Event, error) {
	store, ok := p.sink.(audit.Store)
	if !ok {
		return nil, nil
	}
	return store.ListByPrincipal(ctx, principal)
}

// Close stops the async worker after the buffer is drained. Safe to call
// multiple times and in sync mode; Emit calls racing Close drop their event
// instead of panicking.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if !p.async {
			return
		}
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		close(p.ch)
		p.wg.Wait()
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.ch {
		// Event delivery is best-effort off the request path; the sink owns
		// its own retry policy.
		_ = p.sink.Append(context.Background(), event)
	}
}
