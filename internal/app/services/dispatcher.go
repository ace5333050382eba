package services

import (
	"context"
	"log/slog"
	"sync"
)

// Dispatcher hands authenticated webhook payloads to background processing.
// The webhook sender has a short response budget, so the handler acknowledges
// first and the dispatcher runs the workflow on a detached context with its
// own failure boundary.
type Dispatcher struct {
	processor *OrderProcessor
	log       *slog.Logger
	wg        sync.WaitGroup
}

// NewDispatcher constructs a background dispatcher.
func NewDispatcher(processor *OrderProcessor, log *slog.Logger) *Dispatcher {
	return &Dispatcher{processor: processor, log: log}
}

// Dispatch schedules processing of one payload. The request context's values
// are kept but its cancellation is not; the sender's connection closing must
// not abort allocation.
func (d *Dispatcher) Dispatch(ctx context.Context, eventID string, payload []byte) {
	ctx = context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.ErrorContext(ctx, "order processing panicked", "event_id", eventID, "panic", r)
			}
		}()
		// Errors are already journaled and logged by the processor.
		_ = d.processor.Process(ctx, eventID, payload)
	}()
}

// Wait blocks until all dispatched work finishes. Used on shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
