package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/popcommerce/fulfillbridge/internal/app/domain"
	"github.com/popcommerce/fulfillbridge/internal/app/ports"
)

// LocationPair identifies the two candidate fulfillment locations. The event
// location is always preferred; the warehouse is the platform default.
type LocationPair struct {
	EventLocationID     int64
	WarehouseLocationID int64
}

// SKURules holds the SKU sets whose presence on an order earns customer
// tags. Membership checks are independent per set.
type SKURules struct {
	StarterKit  []string
	Stylist     []string
	DisplayAuth []string
}

// Allocator decides, per line item, how much the event location can cover.
// It reads inventory through the snapshot provider but performs no
// mutations; the commit coordinator applies the resulting plan.
type Allocator struct {
	inventory ports.InventorySnapshotProvider
	locations LocationPair
	rules     SKURules
}

// NewAllocator constructs an allocator.
func NewAllocator(inventory ports.InventorySnapshotProvider, locations LocationPair, rules SKURules) *Allocator {
	return &Allocator{inventory: inventory, locations: locations, rules: rules}
}

// Plan scans the order's line items in sequence against live event-location
// inventory and produces the allocation plan plus the tag triggers the scan
// earned. Inventory lookups happen one line item at a time; the fulfillment
// order is read once and never re-fetched mid-pass.
func (a *Allocator) Plan(ctx context.Context, order domain.Order, fo domain.FulfillmentOrder) (domain.AllocationPlan, domain.TagTriggers, error) {
	plan := domain.AllocationPlan{FulfillmentOrderID: fo.ID}
	var triggers domain.TagTriggers

	if len(fo.LineItems) < len(order.LineItems) {
		return plan, triggers, fmt.Errorf("fulfillment order %d has %d line items, order %d has %d",
			fo.ID, len(fo.LineItems), order.ID, len(order.LineItems))
	}

	allocatable := false
	for i, item := range order.LineItems {
		foLine := fo.LineItems[i]

		if slices.Contains(a.rules.StarterKit, item.SKU) {
			triggers.StarterKit = true
		}
		if slices.Contains(a.rules.Stylist, item.SKU) {
			triggers.Stylist = true
		}
		if slices.Contains(a.rules.DisplayAuth, item.SKU) {
			triggers.DisplayAuth = true
		}

		inventoryItemID, err := a.inventory.ResolveInventoryItem(ctx, item.VariantID)
		if err != nil {
			return plan, triggers, fmt.Errorf("resolve inventory item for variant %d: %w", item.VariantID, err)
		}
		raw, err := a.inventory.AvailableAt(ctx, inventoryItemID, a.locations.EventLocationID)
		if err != nil {
			return plan, triggers, fmt.Errorf("read availability for inventory item %d: %w", inventoryItemID, err)
		}
		if raw < 0 {
			raw = 0
		}

		available := raw
		if !order.HasShippingAddress() {
			// In-person orders are not deducted from the snapshot yet; add
			// the order's own quantity back to see pre-order availability.
			available += foLine.RemainingQuantity
		}

		line := domain.LineAllocation{
			LineItemID: foLine.ID,
			SKU:        item.SKU,
			OrderedQty: foLine.RemainingQuantity,
		}
		switch {
		case available >= foLine.RemainingQuantity:
			line.Outcome = domain.OutcomeFullAtEvent
			line.EventQty = foLine.RemainingQuantity
		case available > 0:
			line.Outcome = domain.OutcomePartialSplit
			line.EventQty = available
			line.WarehouseQty = foLine.RemainingQuantity - available
			plan.SplitRequired = true
		default:
			line.Outcome = domain.OutcomeSoldOutAtEvent
			line.WarehouseQty = foLine.RemainingQuantity
			plan.SoldOut = true
		}

		if line.EventQty > 0 {
			plan.EventCommits = append(plan.EventCommits, domain.CommitItem{
				LineItemID: foLine.ID,
				Quantity:   line.EventQty,
			})
			allocatable = true
		}
		plan.Lines = append(plan.Lines, line)
	}

	// Mixed orders always split: the sold-out remainder fulfils from the
	// warehouse even when no single line was partially covered.
	if plan.SoldOut && allocatable {
		plan.SplitRequired = true
	}

	return plan, triggers, nil
}
