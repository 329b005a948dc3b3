package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"classroom-ai-assistant/internal/infra/worker"
)

// Kind classifies a change-feed record.
type Kind string

const (
	KindCreated Kind = "created"
	KindUpdated Kind = "updated"
)

// Record is one document change observed on a collection. Before is nil
// for created records; handlers type-assert the snapshots to the model
// type of the collection they registered for.
type Record struct {
	Collection string
	ID         string
	Kind       Kind
	Before     any
	After      any
}

// Handler reacts to a single change record.
type Handler func(ctx context.Context, rec Record) error

// Dispatcher fans change records out to registered handlers through the
// worker pool. Handlers for the same record run independently; a failing
// handler is logged and does not block the others.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	pool     *worker.Pool
	log      *zerolog.Logger
}

func NewDispatcher(pool *worker.Pool, logger *zerolog.Logger) *Dispatcher {
	dLog := logger.With().Str("component", "Dispatcher").Logger()
	return &Dispatcher{
		handlers: make(map[string][]Handler),
		pool:     pool,
		log:      &dLog,
	}
}

// Subscribe registers a handler for all records on a collection.
func (d *Dispatcher) Subscribe(collection string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[collection] = append(d.handlers[collection], h)
}

// Publish submits the record to every handler registered for its
// collection. It returns an error only when the worker queue rejects a
// submission; handler errors are logged asynchronously.
func (d *Dispatcher) Publish(rec Record) error {
	d.mu.RLock()
	hs := d.handlers[rec.Collection]
	d.mu.RUnlock()

	if len(hs) == 0 {
		return nil
	}

	for i, h := range hs {
		h := h
		err := d.pool.Submit(func(ctx context.Context) error {
			defer func() {
				if r := recover(); r != nil {
					d.log.Error().
						Str("collection", rec.Collection).
						Str("record_id", rec.ID).
						Interface("panic", r).
						Msg("handler panicked")
				}
			}()
			if err := h(ctx, rec); err != nil {
				d.log.Error().Err(err).
					Str("collection", rec.Collection).
					Str("record_id", rec.ID).
					Str("kind", string(rec.Kind)).
					Msg("handler error")
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("submit handler %d for %s: %w", i, rec.Collection, err)
		}
	}
	return nil
}
