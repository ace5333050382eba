package services

import (
	"context"
	"log/slog"

	"github.com/popcommerce/fulfillbridge/internal/app/domain"
	"github.com/popcommerce/fulfillbridge/internal/app/ports"
)

const enabledAccountState = "enabled"

// TagRules names the customer tags applied from the line-item scan.
type TagRules struct {
	FirstOrder  string
	StarterKit  string
	Stylist     string
	DisplayAuth string
}

// Classifier derives customer tag additions and an account-invite decision
// from the scan's tag triggers plus the customer's historical order count.
// Each side effect carries its own failure boundary; a failed tag write does
// not block the invite and vice versa.
type Classifier struct {
	directory ports.CustomerDirectory
	rules     TagRules
	log       *slog.Logger
}

// NewClassifier constructs a classifier.
func NewClassifier(directory ports.CustomerDirectory, rules TagRules, log *slog.Logger) *Classifier {
	return &Classifier{directory: directory, rules: rules, log: log}
}

// Apply runs classification for the order's customer. It is a no-op when no
// customer is attached. Failures are logged and swallowed; classification
// never fails the already-completed allocation.
func (c *Classifier) Apply(ctx context.Context, order domain.Order, triggers domain.TagTriggers) {
	customer := order.Customer
	if customer == nil {
		return
	}

	count, err := c.directory.OrderCountByEmail(ctx, customer.Email)
	if err != nil {
		c.log.ErrorContext(ctx, "customer order-count lookup failed",
			"order_id", order.ID, "customer_id", customer.ID, "error", err)
		return
	}
	firstOrder := count == 1

	due := domain.NewTagSet()
	if firstOrder {
		due.Add(c.rules.FirstOrder)
	}
	if triggers.StarterKit {
		due.Add(c.rules.StarterKit)
	}
	if triggers.DisplayAuth {
		due.Add(c.rules.DisplayAuth)
	}
	if triggers.Stylist {
		due.Add(c.rules.Stylist)
	}

	if due.Len() > 0 {
		merged := domain.ParseTags(customer.Tags)
		merged.AddAll(due)
		if err := c.directory.UpdateTags(ctx, customer.ID, merged.String()); err != nil {
			c.log.ErrorContext(ctx, "customer tag update failed",
				"order_id", order.ID, "customer_id", customer.ID, "error", err)
		} else {
			c.log.InfoContext(ctx, "customer tags updated",
				"order_id", order.ID, "customer_id", customer.ID, "tags", merged.String())
		}
	}

	if firstOrder && (triggers.Stylist || triggers.DisplayAuth) && customer.State != enabledAccountState {
		if err := c.directory.SendInvite(ctx, customer.ID); err != nil {
			c.log.ErrorContext(ctx, "account invite failed",
				"order_id", order.ID, "customer_id", customer.ID, "error", err)
		} else {
			c.log.InfoContext(ctx, "account invite sent",
				"order_id", order.ID, "customer_id", customer.ID)
		}
	}
}
