package ports

import (
	"context"
	"errors"

	"github.com/popcommerce/fulfillbridge/internal/app/domain"
)

var (
	// ErrInventoryItemNotFound indicates the variant has no inventory item.
	ErrInventoryItemNotFound = errors.New("inventory item not found")
	// ErrFulfillmentOrderNotFound indicates the order has no fulfillment order.
	ErrFulfillmentOrderNotFound = errors.New("fulfillment order not found")
	// ErrCustomerNotFound indicates no customer matches the lookup email.
	ErrCustomerNotFound = errors.New("customer not found")
)

// InventorySnapshotProvider reads live inventory state. Reads are not
// reserved; concurrent orders can observe the same availability.
type InventorySnapshotProvider interface {
	ResolveInventoryItem(ctx context.Context, variantID int64) (int64, error)
	AvailableAt(ctx context.Context, inventoryItemID, locationID int64) (int, error)
}

// FulfillmentOrderGateway fetches and mutates the platform fulfillment order
// tied to a commerce order.
type FulfillmentOrderGateway interface {
	FetchForOrder(ctx context.Context, orderID int64) (domain.FulfillmentOrder, error)
	TransferLocation(ctx context.Context, fulfillmentOrderID, locationID int64) error
	Commit(ctx context.Context, fulfillmentOrderID int64, items []domain.CommitItem) error
}

// CustomerDirectory looks up customer history and applies classification
// side effects.
type CustomerDirectory interface {
	OrderCountByEmail(ctx context.Context, email string) (int, error)
	UpdateTags(ctx context.Context, customerID int64, tags string) error
	SendInvite(ctx context.Context, customerID int64) error
}
