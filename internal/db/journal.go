package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// WebhookEvent is one journaled webhook event row.
type WebhookEvent struct {
	ID          int64
	EventID     string
	OrderID     int64
	Payload     []byte
	Status      string
	Detail      string
	ReceivedAt  string
	ProcessedAt sql.NullString
}

// InsertWebhookEvent appends a newly received event.
func (c *Database) InsertWebhookEvent(ctx context.Context, eventID string, orderID int64, payload []byte) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO webhook_events (event_id, order_id, payload, status) VALUES (?, ?, ?, 'received')`,
		eventID, orderID, payload)
	if err != nil {
		return fmt.Errorf("insert webhook event: %w", err)
	}
	return nil
}

// SetWebhookEventStatus records the processing outcome of an event.
func (c *Database) SetWebhookEventStatus(ctx context.Context, eventID, status, detail string) error {
	processedAt := time.Now().UTC().Format(time.RFC3339Nano)
	result, err := c.db.ExecContext(ctx,
		`UPDATE webhook_events SET status = ?, detail = ?, processed_at = ? WHERE event_id = ?`,
		status, detail, processedAt, eventID)
	if err != nil {
		return fmt.Errorf("update webhook event status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update webhook event status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("webhook event %s not found", eventID)
	}
	return nil
}

// ListWebhookEventsByStatus returns the oldest events in any of the given
// states, up to limit.
func (c *Database) ListWebhookEventsByStatus(ctx context.Context, statuses []string, limit int) ([]WebhookEvent, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
	args := make([]any, 0, len(statuses)+1)
	for _, status := range statuses {
		args = append(args, status)
	}
	args = append(args, limit)

	rows, err := c.db.QueryContext(ctx,
		`SELECT id, event_id, order_id, payload, status, detail, received_at, processed_at
		 FROM webhook_events WHERE status IN (`+placeholders+`) ORDER BY id ASC LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("list webhook events: %w", err)
	}
	defer rows.Close()

	var events []WebhookEvent
	for rows.Next() {
		var event WebhookEvent
		if err := rows.Scan(&event.ID, &event.EventID, &event.OrderID, &event.Payload,
			&event.Status, &event.Detail, &event.ReceivedAt, &event.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scan webhook event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list webhook events: %w", err)
	}
	return events, nil
}

// GetWebhookEvent fetches a single event by its id.
func (c *Database) GetWebhookEvent(ctx context.Context, eventID string) (WebhookEvent, error) {
	var event WebhookEvent
	err := c.db.QueryRowContext(ctx,
		`SELECT id, event_id, order_id, payload, status, detail, received_at, processed_at
		 FROM webhook_events WHERE event_id = ?`, eventID).
		Scan(&event.ID, &event.EventID, &event.OrderID, &event.Payload,
			&event.Status, &event.Detail, &event.ReceivedAt, &event.ProcessedAt)
	if err != nil {
		return WebhookEvent{}, fmt.Errorf("get webhook event: %w", err)
	}
	return event, nil
}
