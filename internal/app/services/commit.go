package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/popcommerce/fulfillbridge/internal/app/domain"
	"github.com/popcommerce/fulfillbridge/internal/app/ports"
)

// CommitCoordinator applies an allocation plan against the fulfillment order
// gateway in the required sequence: transfer to the event location, commit
// the event-location portion, transfer the remainder back to the warehouse.
// The first failing step aborts the rest; committed steps are not rolled
// back.
type CommitCoordinator struct {
	gateway   ports.FulfillmentOrderGateway
	locations LocationPair
	log       *slog.Logger
}

// NewCommitCoordinator constructs a commit coordinator.
func NewCommitCoordinator(gateway ports.FulfillmentOrderGateway, locations LocationPair, log *slog.Logger) *CommitCoordinator {
	return &CommitCoordinator{gateway: gateway, locations: locations, log: log}
}

// Execute applies the plan. Orders with a shipping address default to the
// warehouse location on the platform side, so an explicit transfer must
// precede any event-location commit, and a split plan needs a transfer back
// so the remainder fulfils from the warehouse default.
func (c *CommitCoordinator) Execute(ctx context.Context, order domain.Order, plan domain.AllocationPlan) error {
	if order.HasShippingAddress() && len(plan.EventCommits) > 0 {
		if err := c.gateway.TransferLocation(ctx, plan.FulfillmentOrderID, c.locations.EventLocationID); err != nil {
			return fmt.Errorf("transfer to event location: %w", err)
		}
	}

	if len(plan.EventCommits) > 0 {
		if err := c.gateway.Commit(ctx, plan.FulfillmentOrderID, plan.EventCommits); err != nil {
			return fmt.Errorf("commit event-location fulfillment: %w", err)
		}
	}

	if order.HasShippingAddress() && plan.SplitRequired {
		if err := c.gateway.TransferLocation(ctx, plan.FulfillmentOrderID, c.locations.WarehouseLocationID); err != nil {
			return fmt.Errorf("transfer back to warehouse: %w", err)
		}
	}

	c.log.InfoContext(ctx, "allocation committed",
		"order_id", order.ID,
		"fulfillment_order_id", plan.FulfillmentOrderID,
		"event_lines", len(plan.EventCommits),
		"split_required", plan.SplitRequired,
		"sold_out", plan.SoldOut)
	return nil
}
