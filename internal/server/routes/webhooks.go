package routes

import (
	"github.com/labstack/echo/v4"

	poswebhook "github.com/popcommerce/fulfillbridge/internal/webhooks/pos"
)

// WebhookRoutes registers webhook endpoints.
type WebhookRoutes struct {
	pos *poswebhook.Handler
}

// NewWebhookRoutes constructs webhook routes.
func NewWebhookRoutes(handler *poswebhook.Handler) *WebhookRoutes {
	return &WebhookRoutes{pos: handler}
}

// RegisterRoutes registers webhook endpoints.
func (w *WebhookRoutes) RegisterRoutes(s *echo.Echo) {
	s.POST("/webhooks/orders/create", w.handleOrderCreated)
}

func (w *WebhookRoutes) handleOrderCreated(c echo.Context) error {
	return w.pos.Handle(c.Response(), c.Request())
}
