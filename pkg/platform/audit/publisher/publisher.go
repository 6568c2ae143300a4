// Package publisher emits audit events to an audit.Store.
//
// Compliance events (verification decisions) are always written synchronously
// and their errors returned so the caller can fail the decision. Operations
// events go through the optional async buffer when one is configured and are
// dropped with a warning when it is full.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	id "mindcare/pkg/domain"
	audit "mindcare/pkg/platform/audit"
)

var errBufferFull = errors.New("audit buffer full")

// Publisher writes audit events to a store.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics

	buffer    chan audit.Event
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables background writes for operations events.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.buffer = make(chan audit.Event, size)
		}
	}
}

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// NewPublisher creates a publisher over store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records an event. The timestamp is set when missing and the category is
// derived from the action.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Category = audit.AuditEvent(event.Action).Category()

	if p.buffer == nil || event.Category == audit.CategoryCompliance {
		return p.persist(ctx, event)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return p.persist(ctx, event)
	}
	select {
	case p.buffer <- event:
		return nil
	default:
		p.metrics.IncDropped()
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit buffer full, dropping event", "action", event.Action)
		}
		return errBufferFull
	}
}

func (p *Publisher) persist(ctx context.Context, event audit.Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		p.metrics.IncPersistFailures(event.Category)
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "audit persistence failed",
				"action", event.Action,
				"category", event.Category,
				"subject", event.Subject,
				"error", err,
			)
		}
		return err
	}
	p.metrics.IncEmitted(event.Category)
	return nil
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.buffer {
		_ = p.persist(context.Background(), event)
	}
}

// List returns events recorded for an applicant.
func (p *Publisher) List(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	return p.store.ListByUser(ctx, userID)
}

// ListBySubject returns events recorded against one application or reference entry.
func (p *Publisher) ListBySubject(ctx context.Context, subject string) ([]audit.Event, error) {
	return p.store.ListBySubject(ctx, subject)
}

// Close stops the async worker after draining buffered events.
func (p *Publisher) Close() error {
	p.closeOnce.Do(func() {
		if p.buffer == nil {
			return
		}
		p.mu.Lock()
		p.closed = true
		close(p.buffer)
		p.mu.Unlock()
		p.wg.Wait()
	})
	return nil
}
