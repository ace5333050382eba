package ports

import "context"

// EventStatus is the journal lifecycle state of a received webhook event.
type EventStatus string

const (
	// EventReceived marks an authenticated event awaiting processing.
	EventReceived EventStatus = "received"
	// EventSkipped marks an event that did not qualify for allocation.
	EventSkipped EventStatus = "skipped"
	// EventCompleted marks an event processed end to end.
	EventCompleted EventStatus = "completed"
	// EventFailed marks an event whose processing aborted mid-sequence.
	EventFailed EventStatus = "failed"
)

// EventRecord is one journaled webhook event.
type EventRecord struct {
	EventID string
	OrderID int64
	Payload []byte
	Status  EventStatus
	Detail  string
}

// EventJournal durably records received webhook events and their processing
// outcome, so acknowledged-but-unprocessed events can be replayed.
type EventJournal interface {
	Append(ctx context.Context, record EventRecord) error
	MarkCompleted(ctx context.Context, eventID string) error
	MarkSkipped(ctx context.Context, eventID, reason string) error
	MarkFailed(ctx context.Context, eventID, step string) error
	ListUnprocessed(ctx context.Context, limit int) ([]EventRecord, error)
}
