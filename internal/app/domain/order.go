package domain

import (
	"encoding/json"
	"fmt"
)

// Order is the decoded commerce-platform order webhook payload, reduced to
// the fields the allocation workflow reads.
type Order struct {
	ID              int64         `json:"id"`
	SourceChannel   string        `json:"source_name"`
	LineItems       []LineItem    `json:"line_items"`
	Customer        *Customer     `json:"customer"`
	ShippingAddress *Address      `json:"shipping_address"`
	Fulfillments    []Fulfillment `json:"fulfillments"`
}

// LineItem is one ordered line of the inbound order.
type LineItem struct {
	SKU       string `json:"sku"`
	VariantID int64  `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

// Customer is the order's attached customer, when present.
type Customer struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Tags  string `json:"tags"`
	State string `json:"state"`
}

// Address carries the shipping address; only its presence matters to the
// allocation decision.
type Address struct {
	City         string `json:"city"`
	ProvinceCode string `json:"province_code"`
	CountryCode  string `json:"country_code"`
	Zip          string `json:"zip"`
}

// Fulfillment is a platform fulfillment already attached to the order.
type Fulfillment struct {
	ID int64 `json:"id"`
}

// HasShippingAddress reports whether the order was placed with a shipping
// address. The platform reserves inventory differently for these orders.
func (o Order) HasShippingAddress() bool {
	return o.ShippingAddress != nil
}

// ExistingFulfillmentCount counts fulfillments already present on the order.
func (o Order) ExistingFulfillmentCount() int {
	return len(o.Fulfillments)
}

// DecodeOrder parses a raw order webhook payload.
func DecodeOrder(payload []byte) (Order, error) {
	var order Order
	if err := json.Unmarshal(payload, &order); err != nil {
		return Order{}, fmt.Errorf("decode order payload: %w", err)
	}
	if order.ID == 0 {
		return Order{}, fmt.Errorf("order payload missing id")
	}
	return order, nil
}

// PeekOrderID extracts the order id from a raw payload without requiring the
// rest of the document to decode. Returns zero when the id is absent.
func PeekOrderID(payload []byte) int64 {
	var probe struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return 0
	}
	return probe.ID
}
