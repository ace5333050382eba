package domain

// FulfillmentOrder is the platform-side object tracking which quantities of
// an order remain to be shipped from which location.
type FulfillmentOrder struct {
	ID        int64
	LineItems []FulfillmentLineItem
}

// FulfillmentLineItem is one line of a fulfillment order. Line items are
// positionally aligned with the order's own line items; both derive from the
// same order in the same sequence.
type FulfillmentLineItem struct {
	ID                int64
	RemainingQuantity int
}

// CommitItem is one (line item, quantity) pair submitted when committing a
// fulfillment.
type CommitItem struct {
	LineItemID int64
	Quantity   int
}

// AllocationOutcome classifies what the event location can cover for one
// line item.
type AllocationOutcome string

const (
	// OutcomeFullAtEvent means the full quantity ships from the event location.
	OutcomeFullAtEvent AllocationOutcome = "full_at_event"
	// OutcomePartialSplit means the quantity splits between both locations.
	OutcomePartialSplit AllocationOutcome = "partial_split"
	// OutcomeSoldOutAtEvent means the event location has nothing left; the
	// whole quantity stays with the warehouse default.
	OutcomeSoldOutAtEvent AllocationOutcome = "sold_out_at_event"
)

// LineAllocation records the decision for one line item.
type LineAllocation struct {
	LineItemID   int64
	SKU          string
	Outcome      AllocationOutcome
	EventQty     int
	WarehouseQty int
	OrderedQty   int
}

// AllocationPlan is the full per-order decision produced by the allocator.
// It carries no side effects; the commit coordinator applies it.
type AllocationPlan struct {
	FulfillmentOrderID int64
	Lines              []LineAllocation
	EventCommits       []CommitItem
	SplitRequired      bool
	SoldOut            bool
}

// TagTriggers accumulates which customer tags the line-item scan earned.
// Membership checks are independent; one SKU can set several triggers.
type TagTriggers struct {
	StarterKit  bool
	Stylist     bool
	DisplayAuth bool
}

// Any reports whether at least one trigger fired.
func (t TagTriggers) Any() bool {
	return t.StarterKit || t.Stylist || t.DisplayAuth
}

// ProcessingOutcome summarizes one processed webhook event for downstream
// consumers and the journal.
type ProcessingOutcome struct {
	EventID       string
	OrderID       int64
	Status        string
	FailedStep    string
	Reason        string
	SplitRequired bool
	SoldOut       bool
	Lines         []LineAllocation
}
