package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Recorder persists applied events, in order. Implemented by the journal.
type Recorder interface {
	Record(ctx context.Context, seq int64, ev Event) error
}

// Engine is the single-writer event loop around a Session.
//
// CRITICAL: All session mutations happen in the Run loop goroutine.
// External callers use Enqueue() to submit events for processing.
//
// Thread-safety model:
//   - Enqueue(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//   - Session(): only safe to use once Run has returned
//   - QueueLen(), Coalesced(), Failures(): safe from any goroutine
type Engine struct {
	session  *Session
	inbox    *inbox
	coalesce bool
	recorder Recorder
	logger   *slog.Logger
	failures atomic.Int64
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithRecorder journals every applied event.
func WithRecorder(r Recorder) EngineOption {
	return func(e *Engine) {
		e.recorder = r
	}
}

// WithEngineLogger sets the loop's logger. Default: slog.Default().
func WithEngineLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMoveCoalescing lets a queued pointer_move be replaced by a newer one
// on the same page before the loop reaches it. Hosts with fast pointer
// streams use it to keep the inbox short.
func WithMoveCoalescing() EngineOption {
	return func(e *Engine) {
		e.coalesce = true
	}
}

// New creates an Engine that owns session.
func New(session *Session, opts ...EngineOption) *Engine {
	e := &Engine{
		session: session,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.inbox = newInbox(e.coalesce)
	return e
}

// Enqueue submits an event for processing by the Run loop.
// Thread-safe: may be called from any goroutine.
//
// Returns false if the engine has been stopped.
func (e *Engine) Enqueue(ev Event) bool {
	return e.inbox.push(ev)
}

// Run starts the single-writer event loop.
// Blocks until context is cancelled or Stop() is called and the queue has
// drained.
//
// ERROR HANDLING: A refused event (unknown scale, bad zoom) is logged with
// its context and processing continues. The session state is unchanged by
// a refused event, so later events apply exactly as they would have.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine starting")

	for {
		ev, ok := e.inbox.pop()
		if ok {
			e.process(ctx, ev)
			continue
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled")
			e.inbox.close()
			return ctx.Err()

		case <-e.inbox.wake():
			if e.inbox.len() == 0 && e.inbox.isClosed() {
				e.logger.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the inbox. Run returns after processing what was already
// enqueued.
func (e *Engine) Stop() {
	e.inbox.close()
}

// Session returns the owned session. Callers must not use it while Run
// is active.
func (e *Engine) Session() *Session {
	return e.session
}

// QueueLen returns the current number of pending events.
func (e *Engine) QueueLen() int {
	return e.inbox.len()
}

// Coalesced returns how many pointer moves were replaced before processing.
func (e *Engine) Coalesced() int {
	return e.inbox.coalescedCount()
}

// Failures returns how many events the session refused.
func (e *Engine) Failures() int {
	return int(e.failures.Load())
}

// process applies one event and journals it.
// CRITICAL: Called only from Run() goroutine - single-writer guarantee.
func (e *Engine) process(ctx context.Context, ev Event) {
	applied, err := e.session.Apply(ev)
	if err != nil {
		e.failures.Add(1)
		logEventError(e.logger, ev, err)
		return
	}

	if e.recorder != nil {
		if err := e.recorder.Record(ctx, e.session.Seq(), applied); err != nil {
			e.logger.Error("journal write failed",
				"error", err,
				"event_type", applied.Type,
				"seq", e.session.Seq(),
			)
		}
	}
}

// logEventError logs an event processing failure with full context.
func logEventError(logger *slog.Logger, ev Event, err error) {
	attrs := []any{
		"error", err,
		"event_type", ev.Type,
	}
	switch {
	case ev.Pointer != nil:
		attrs = append(attrs,
			"page", ev.Pointer.Page,
			"zoom", ev.Pointer.Zoom,
		)
	case ev.Scale != "":
		attrs = append(attrs, "scale", ev.Scale)
	}
	logger.Error("event processing failed", attrs...)
}
