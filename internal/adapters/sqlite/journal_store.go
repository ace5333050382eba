package sqlite

import (
	"context"

	"github.com/popcommerce/fulfillbridge/internal/app/ports"
	"github.com/popcommerce/fulfillbridge/internal/db"
)

// JournalStore persists webhook events through the shared database.
type JournalStore struct {
	database *db.Database
}

// NewJournalStore constructs a journal store over an open database.
func NewJournalStore(database *db.Database) *JournalStore {
	return &JournalStore{database: database}
}

var _ ports.EventJournal = (*JournalStore)(nil)

// Append records a newly received event.
func (s *JournalStore) Append(ctx context.Context, record ports.EventRecord) error {
	return s.database.InsertWebhookEvent(ctx, record.EventID, record.OrderID, record.Payload)
}

// MarkCompleted records end-to-end success.
func (s *JournalStore) MarkCompleted(ctx context.Context, eventID string) error {
	return s.database.SetWebhookEventStatus(ctx, eventID, string(ports.EventCompleted), "")
}

// MarkSkipped records a non-qualifying order.
func (s *JournalStore) MarkSkipped(ctx context.Context, eventID, reason string) error {
	return s.database.SetWebhookEventStatus(ctx, eventID, string(ports.EventSkipped), reason)
}

// MarkFailed records the step at which processing aborted.
func (s *JournalStore) MarkFailed(ctx context.Context, eventID, step string) error {
	return s.database.SetWebhookEventStatus(ctx, eventID, string(ports.EventFailed), step)
}

// ListUnprocessed returns received and failed events eligible for replay.
func (s *JournalStore) ListUnprocessed(ctx context.Context, limit int) ([]ports.EventRecord, error) {
	events, err := s.database.ListWebhookEventsByStatus(ctx,
		[]string{string(ports.EventReceived), string(ports.EventFailed)}, limit)
	if err != nil {
		return nil, err
	}
	records := make([]ports.EventRecord, 0, len(events))
	for _, event := range events {
		records = append(records, ports.EventRecord{
			EventID: event.EventID,
			OrderID: event.OrderID,
			Payload: event.Payload,
			Status:  ports.EventStatus(event.Status),
			Detail:  event.Detail,
		})
	}
	return records, nil
}
