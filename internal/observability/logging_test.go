package observability

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestWrapSlogHandlerAddsWorkflowFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(WrapSlogHandler(slog.NewTextHandler(&buf, nil)))

	ctx := WithEventID(context.Background(), "evt-1")
	ctx = WithOrderID(ctx, 1001)
	log.InfoContext(ctx, "order received")

	out := buf.String()
	if !strings.Contains(out, "event_id=evt-1") {
		t.Fatalf("missing event id in log line: %s", out)
	}
	if !strings.Contains(out, "order=1001") {
		t.Fatalf("missing order id in log line: %s", out)
	}
}

func TestWrapSlogHandlerWithoutContextFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(WrapSlogHandler(slog.NewTextHandler(&buf, nil)))

	log.InfoContext(context.Background(), "startup")

	out := buf.String()
	if strings.Contains(out, "event_id") || strings.Contains(out, "order=") {
		t.Fatalf("unexpected workflow fields in log line: %s", out)
	}
}

func TestContextAccessors(t *testing.T) {
	t.Parallel()

	if _, ok := EventIDFromContext(context.Background()); ok {
		t.Fatal("empty context must not carry an event id")
	}
	if _, ok := OrderIDFromContext(context.Background()); ok {
		t.Fatal("empty context must not carry an order id")
	}

	ctx := WithEventID(context.Background(), "evt-1")
	if id, ok := EventIDFromContext(ctx); !ok || id != "evt-1" {
		t.Fatalf("unexpected event id: %q ok=%v", id, ok)
	}
	ctx = WithOrderID(ctx, 1001)
	if id, ok := OrderIDFromContext(ctx); !ok || id != 1001 {
		t.Fatalf("unexpected order id: %d ok=%v", id, ok)
	}
}
