package shopify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/popcommerce/fulfillbridge/internal/app/domain"
	"github.com/popcommerce/fulfillbridge/internal/app/ports"
)

// FetchForOrder returns the first fulfillment order attached to an order.
// Line items come back in the order's own sequence, so they stay positionally
// aligned with the order's line items.
func (c *Client) FetchForOrder(ctx context.Context, orderID int64) (domain.FulfillmentOrder, error) {
	var out struct {
		FulfillmentOrders []struct {
			ID        int64 `json:"id"`
			LineItems []struct {
				ID       int64 `json:"id"`
				Quantity int   `json:"quantity"`
			} `json:"line_items"`
		} `json:"fulfillment_orders"`
	}
	path := fmt.Sprintf("/orders/%d/fulfillment_orders.json", orderID)
	if err := c.send(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return domain.FulfillmentOrder{}, err
	}
	if len(out.FulfillmentOrders) == 0 {
		return domain.FulfillmentOrder{}, fmt.Errorf("order %d: %w", orderID, ports.ErrFulfillmentOrderNotFound)
	}

	first := out.FulfillmentOrders[0]
	fo := domain.FulfillmentOrder{ID: first.ID}
	for _, line := range first.LineItems {
		fo.LineItems = append(fo.LineItems, domain.FulfillmentLineItem{
			ID:                line.ID,
			RemainingQuantity: line.Quantity,
		})
	}
	return fo, nil
}

// TransferLocation moves the fulfillment order to a new location.
func (c *Client) TransferLocation(ctx context.Context, fulfillmentOrderID, locationID int64) error {
	payload := map[string]any{
		"fulfillment_order": map[string]any{
			"id":              fulfillmentOrderID,
			"new_location_id": locationID,
		},
	}
	path := fmt.Sprintf("/fulfillment_orders/%d/move.json", fulfillmentOrderID)
	return c.send(ctx, http.MethodPost, path, nil, payload, nil)
}

// Commit fulfils exactly the given line-item quantities against the
// fulfillment order's current location.
func (c *Client) Commit(ctx context.Context, fulfillmentOrderID int64, items []domain.CommitItem) error {
	lineItems := make([]map[string]any, 0, len(items))
	for _, item := range items {
		lineItems = append(lineItems, map[string]any{
			"id":       item.LineItemID,
			"quantity": item.Quantity,
		})
	}
	payload := map[string]any{
		"fulfillment": map[string]any{
			"line_items_by_fulfillment_order": []map[string]any{
				{
					"fulfillment_order_id":         fulfillmentOrderID,
					"fulfillment_order_line_items": lineItems,
				},
			},
		},
	}
	return c.send(ctx, http.MethodPost, "/fulfillments.json", nil, payload, nil)
}
