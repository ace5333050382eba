package shopify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/popcommerce/fulfillbridge/internal/app/ports"
)

// ResolveInventoryItem maps a product variant to its inventory item id.
func (c *Client) ResolveInventoryItem(ctx context.Context, variantID int64) (int64, error) {
	var out struct {
		Variant struct {
			InventoryItemID int64 `json:"inventory_item_id"`
		} `json:"variant"`
	}
	path := fmt.Sprintf("/variants/%d.json", variantID)
	if err := c.send(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		if isNotFound(err) {
			return 0, fmt.Errorf("variant %d: %w", variantID, ports.ErrInventoryItemNotFound)
		}
		return 0, err
	}
	return out.Variant.InventoryItemID, nil
}

// AvailableAt reads the available quantity of an inventory item at one
// location. An item not stocked at the location reads as zero.
func (c *Client) AvailableAt(ctx context.Context, inventoryItemID, locationID int64) (int, error) {
	query := url.Values{}
	query.Set("inventory_item_ids", strconv.FormatInt(inventoryItemID, 10))
	query.Set("location_ids", strconv.FormatInt(locationID, 10))

	var out struct {
		InventoryLevels []struct {
			Available int `json:"available"`
		} `json:"inventory_levels"`
	}
	if err := c.send(ctx, http.MethodGet, "/inventory_levels.json", query, nil, &out); err != nil {
		return 0, err
	}
	if len(out.InventoryLevels) == 0 {
		return 0, nil
	}
	return out.InventoryLevels[0].Available, nil
}
