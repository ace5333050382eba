package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/popcommerce/fulfillbridge/internal/app/domain"
	"github.com/popcommerce/fulfillbridge/internal/app/ports"
	"github.com/popcommerce/fulfillbridge/internal/observability"
)

// Step names recorded in the journal when processing aborts.
const (
	StepDecode = "decode"
	StepFetch  = "fetch_fulfillment_order"
	StepPlan   = "plan"
	StepCommit = "commit"
)

// OutcomePublisher emits processing outcomes to an optional downstream
// consumer. Implementations must swallow their own delivery failures.
type OutcomePublisher interface {
	PublishOutcome(ctx context.Context, outcome domain.ProcessingOutcome)
}

// OrderProcessor runs the full allocation workflow for one authenticated
// webhook event: qualification, fulfillment-order fetch, allocation plan,
// commit, customer classification. Processing is strictly sequential within
// one event; concurrent events are independent.
type OrderProcessor struct {
	allocator   *Allocator
	coordinator *CommitCoordinator
	classifier  *Classifier
	gateway     ports.FulfillmentOrderGateway
	journal     ports.EventJournal
	outcomes    OutcomePublisher
	channel     string
	log         *slog.Logger
}

// NewOrderProcessor constructs the workflow. The channel names the only
// order source that qualifies for allocation.
func NewOrderProcessor(
	allocator *Allocator,
	coordinator *CommitCoordinator,
	classifier *Classifier,
	gateway ports.FulfillmentOrderGateway,
	journal ports.EventJournal,
	outcomes OutcomePublisher,
	channel string,
	log *slog.Logger,
) *OrderProcessor {
	return &OrderProcessor{
		allocator:   allocator,
		coordinator: coordinator,
		classifier:  classifier,
		gateway:     gateway,
		journal:     journal,
		outcomes:    outcomes,
		channel:     channel,
		log:         log,
	}
}

// Process handles one journaled payload. The webhook sender was already
// acknowledged; every failure here is terminal-and-logged, never retried
// automatically, and surfaces only through the journal and the outcome
// publisher.
func (p *OrderProcessor) Process(ctx context.Context, eventID string, payload []byte) error {
	ctx = observability.WithEventID(ctx, eventID)

	order, err := domain.DecodeOrder(payload)
	if err != nil {
		p.fail(ctx, eventID, 0, StepDecode, err)
		return err
	}
	ctx = observability.WithOrderID(ctx, order.ID)
	p.log.InfoContext(ctx, "order received", "order_id", order.ID, "line_items", len(order.LineItems))

	if order.SourceChannel != p.channel {
		p.skip(ctx, eventID, order, fmt.Sprintf("source channel %q does not qualify", order.SourceChannel))
		return nil
	}

	// Already-fulfilled orders skip allocation (the platform may auto-fulfil
	// POS line items) but still classify the customer; with no scan, only
	// the first-order tag can apply.
	var triggers domain.TagTriggers
	allocated := false
	var plan domain.AllocationPlan

	if order.ExistingFulfillmentCount() == 0 {
		fo, err := p.gateway.FetchForOrder(ctx, order.ID)
		if err != nil {
			p.fail(ctx, eventID, order.ID, StepFetch, err)
			return err
		}

		plan, triggers, err = p.allocator.Plan(ctx, order, fo)
		if err != nil {
			p.fail(ctx, eventID, order.ID, StepPlan, err)
			return err
		}

		if err := p.coordinator.Execute(ctx, order, plan); err != nil {
			p.fail(ctx, eventID, order.ID, StepCommit, err)
			return err
		}
		allocated = true
	} else {
		p.markJournal(ctx, eventID, func() error {
			return p.journal.MarkSkipped(ctx, eventID, "order already has fulfillments")
		})
	}

	p.classifier.Apply(ctx, order, triggers)

	if allocated {
		p.markJournal(ctx, eventID, func() error {
			return p.journal.MarkCompleted(ctx, eventID)
		})
	}
	if p.outcomes != nil {
		status := string(ports.EventSkipped)
		if allocated {
			status = string(ports.EventCompleted)
		}
		p.outcomes.PublishOutcome(ctx, domain.ProcessingOutcome{
			EventID:       eventID,
			OrderID:       order.ID,
			Status:        status,
			SplitRequired: plan.SplitRequired,
			SoldOut:       plan.SoldOut,
			Lines:         plan.Lines,
		})
	}
	return nil
}

func (p *OrderProcessor) skip(ctx context.Context, eventID string, order domain.Order, reason string) {
	p.log.InfoContext(ctx, "order skipped", "order_id", order.ID, "reason", reason)
	p.markJournal(ctx, eventID, func() error {
		return p.journal.MarkSkipped(ctx, eventID, reason)
	})
	if p.outcomes != nil {
		p.outcomes.PublishOutcome(ctx, domain.ProcessingOutcome{
			EventID: eventID,
			OrderID: order.ID,
			Status:  string(ports.EventSkipped),
			Reason:  reason,
		})
	}
}

func (p *OrderProcessor) fail(ctx context.Context, eventID string, orderID int64, step string, err error) {
	p.log.ErrorContext(ctx, "order processing aborted", "order_id", orderID, "step", step, "error", err)
	p.markJournal(ctx, eventID, func() error {
		return p.journal.MarkFailed(ctx, eventID, step)
	})
	if p.outcomes != nil {
		p.outcomes.PublishOutcome(ctx, domain.ProcessingOutcome{
			EventID:    eventID,
			OrderID:    orderID,
			Status:     string(ports.EventFailed),
			FailedStep: step,
		})
	}
}

// markJournal applies a journal mutation; the journal is observability, not
// control flow, so its own failures only log.
func (p *OrderProcessor) markJournal(ctx context.Context, eventID string, fn func() error) {
	if err := fn(); err != nil {
		p.log.ErrorContext(ctx, "journal update failed", "event_id", eventID, "error", err)
	}
}
