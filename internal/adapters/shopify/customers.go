package shopify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/popcommerce/fulfillbridge/internal/app/ports"
)

// OrderCountByEmail looks up a customer's historical order count. The count
// includes the order currently being processed.
func (c *Client) OrderCountByEmail(ctx context.Context, email string) (int, error) {
	query := url.Values{}
	query.Set("query", "email:"+email)

	var out struct {
		Customers []struct {
			OrdersCount int `json:"orders_count"`
		} `json:"customers"`
	}
	if err := c.send(ctx, http.MethodGet, "/customers/search.json", query, nil, &out); err != nil {
		return 0, err
	}
	if len(out.Customers) == 0 {
		return 0, fmt.Errorf("email %s: %w", email, ports.ErrCustomerNotFound)
	}
	return out.Customers[0].OrdersCount, nil
}

// UpdateTags replaces the customer's tag string with the merged set computed
// by the classifier.
func (c *Client) UpdateTags(ctx context.Context, customerID int64, tags string) error {
	payload := map[string]any{
		"customer": map[string]any{
			"id":   customerID,
			"tags": tags,
		},
	}
	path := fmt.Sprintf("/customers/%d.json", customerID)
	return c.send(ctx, http.MethodPut, path, nil, payload, nil)
}

// SendInvite sends the platform account invite to a customer.
func (c *Client) SendInvite(ctx context.Context, customerID int64) error {
	payload := map[string]any{
		"customer_invite": map[string]any{},
	}
	path := fmt.Sprintf("/customers/%d/send_invite.json", customerID)
	return c.send(ctx, http.MethodPost, path, nil, payload, nil)
}
