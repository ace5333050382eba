package outcomes

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"

	"github.com/popcommerce/fulfillbridge/internal/app/domain"
	"github.com/popcommerce/fulfillbridge/internal/app/ports"
)

// CloudEvent types emitted per processing outcome.
const (
	EventTypeCompleted = "com.fulfillbridge.allocation.completed"
	EventTypeSkipped   = "com.fulfillbridge.allocation.skipped"
	EventTypeFailed    = "com.fulfillbridge.allocation.failed"
)

// Publisher emits allocation outcome CloudEvents to an optional downstream
// endpoint. Delivery failures are logged and swallowed; outcome events never
// affect the workflow.
type Publisher struct {
	endpoint string
	source   string
	client   cloudevents.Client
	log      *slog.Logger
}

// NewPublisher constructs a publisher. An empty endpoint disables emission.
func NewPublisher(endpoint, source string, log *slog.Logger) (*Publisher, error) {
	p := &Publisher{endpoint: endpoint, source: source, log: log}
	if endpoint == "" {
		return p, nil
	}
	client, err := cloudevents.NewClientHTTP()
	if err != nil {
		return nil, fmt.Errorf("create cloudevents client: %w", err)
	}
	p.client = client
	return p, nil
}

type lineData struct {
	LineItemID   int64  `json:"line_item_id"`
	SKU          string `json:"sku"`
	Outcome      string `json:"outcome"`
	EventQty     int    `json:"event_qty"`
	WarehouseQty int    `json:"warehouse_qty"`
	OrderedQty   int    `json:"ordered_qty"`
}

type allocationData struct {
	OrderID       int64      `json:"order_id"`
	SplitRequired bool       `json:"split_required"`
	SoldOut       bool       `json:"sold_out"`
	FailedStep    string     `json:"failed_step,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Lines         []lineData `json:"lines,omitempty"`
}

// PublishOutcome emits one outcome event when an endpoint is configured.
func (p *Publisher) PublishOutcome(ctx context.Context, outcome domain.ProcessingOutcome) {
	if p.client == nil {
		return
	}

	event := cloudevents.NewEvent()
	eventID := outcome.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}
	event.SetID(eventID)
	event.SetSource(p.source)
	event.SetType(typeFor(outcome.Status))
	event.SetTime(time.Now().UTC())

	data := allocationData{
		OrderID:       outcome.OrderID,
		SplitRequired: outcome.SplitRequired,
		SoldOut:       outcome.SoldOut,
		FailedStep:    outcome.FailedStep,
		Reason:        outcome.Reason,
	}
	for _, line := range outcome.Lines {
		data.Lines = append(data.Lines, lineData{
			LineItemID:   line.LineItemID,
			SKU:          line.SKU,
			Outcome:      string(line.Outcome),
			EventQty:     line.EventQty,
			WarehouseQty: line.WarehouseQty,
			OrderedQty:   line.OrderedQty,
		})
	}
	if err := event.SetData(cloudevents.ApplicationJSON, data); err != nil {
		p.log.ErrorContext(ctx, "outcome event encoding failed", "event_id", eventID, "error", err)
		return
	}

	sendCtx := cloudevents.ContextWithTarget(ctx, p.endpoint)
	if result := p.client.Send(sendCtx, event); cloudevents.IsUndelivered(result) {
		p.log.ErrorContext(ctx, "outcome event delivery failed",
			"event_id", eventID, "endpoint", p.endpoint, "error", result)
	}
}

func typeFor(status string) string {
	switch status {
	case string(ports.EventCompleted):
		return EventTypeCompleted
	case string(ports.EventFailed):
		return EventTypeFailed
	default:
		return EventTypeSkipped
	}
}
