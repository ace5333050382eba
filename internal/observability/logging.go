package observability

import (
	"context"
	"io"
	"log/slog"
	"strconv"

	"go.opentelemetry.io/otel/trace"
)

type contextKey int

const (
	eventIDKey contextKey = iota
	orderIDKey
)

// WithEventID attaches the journaled webhook event id to the context.
func WithEventID(ctx context.Context, eventID string) context.Context {
	return context.WithValue(ctx, eventIDKey, eventID)
}

// EventIDFromContext extracts the webhook event id, if present.
func EventIDFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(eventIDKey).(string)
	return value, ok && value != ""
}

// WithOrderID attaches the commerce order id to the context.
func WithOrderID(ctx context.Context, orderID int64) context.Context {
	return context.WithValue(ctx, orderIDKey, orderID)
}

// OrderIDFromContext extracts the commerce order id, if present.
func OrderIDFromContext(ctx context.Context) (int64, bool) {
	value, ok := ctx.Value(orderIDKey).(int64)
	return value, ok && value != 0
}

type workflowAwareHandler struct {
	next slog.Handler
}

// WrapSlogHandler adds workflow and trace context fields to structured logs.
func WrapSlogHandler(next slog.Handler) slog.Handler {
	if next == nil {
		next = slog.NewTextHandler(io.Discard, nil)
	}
	return &workflowAwareHandler{next: next}
}

func (h *workflowAwareHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *workflowAwareHandler) Handle(ctx context.Context, record slog.Record) error {
	if eventID, ok := EventIDFromContext(ctx); ok {
		record.AddAttrs(slog.String("event_id", eventID))
	}
	if orderID, ok := OrderIDFromContext(ctx); ok {
		record.AddAttrs(slog.String("order", strconv.FormatInt(orderID, 10)))
	}

	span := trace.SpanFromContext(ctx)
	if span != nil {
		sc := span.SpanContext()
		if sc.IsValid() {
			record.AddAttrs(
				slog.String("trace_id", sc.TraceID().String()),
				slog.String("span_id", sc.SpanID().String()),
			)
		}
	}

	return h.next.Handle(ctx, record)
}

func (h *workflowAwareHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &workflowAwareHandler{next: h.next.WithAttrs(attrs)}
}

func (h *workflowAwareHandler) WithGroup(name string) slog.Handler {
	return &workflowAwareHandler{next: h.next.WithGroup(name)}
}
