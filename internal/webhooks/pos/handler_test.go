package pos

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/popcommerce/fulfillbridge/internal/app/ports"
)

type appendOnlyJournal struct {
	records []ports.EventRecord
}

func (j *appendOnlyJournal) Append(_ context.Context, record ports.EventRecord) error {
	j.records = append(j.records, record)
	return nil
}

func (j *appendOnlyJournal) MarkCompleted(context.Context, string) error       { return nil }
func (j *appendOnlyJournal) MarkSkipped(context.Context, string, string) error { return nil }
func (j *appendOnlyJournal) MarkFailed(context.Context, string, string) error  { return nil }
func (j *appendOnlyJournal) ListUnprocessed(context.Context, int) ([]ports.EventRecord, error) {
	return nil, nil
}

func signPayload(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func newTestHandler(secret []byte) (*Handler, *appendOnlyJournal, *[][]byte) {
	journal := &appendOnlyJournal{}
	var dispatched [][]byte
	dispatch := func(_ context.Context, _ string, payload []byte) {
		dispatched = append(dispatched, payload)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(secret, journal, dispatch, log), journal, &dispatched
}

func TestHandleValidSignature(t *testing.T) {
	t.Parallel()

	secret := []byte("shhh")
	handler, journal, dispatched := newTestHandler(secret)

	body := []byte(`{"id": 1001, "source_name": "pos"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/orders/create", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, signPayload(secret, body))
	rec := httptest.NewRecorder()

	if err := handler.Handle(rec, req); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "OK" {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
	if len(journal.records) != 1 {
		t.Fatalf("expected one journal record, got %d", len(journal.records))
	}
	record := journal.records[0]
	if record.OrderID != 1001 || record.Status != ports.EventReceived {
		t.Fatalf("unexpected journal record: %+v", record)
	}
	if record.EventID == "" {
		t.Fatal("journal record must carry the generated event id")
	}
	if len(*dispatched) != 1 || !bytes.Equal((*dispatched)[0], body) {
		t.Fatalf("payload must dispatch verbatim, got %d entries", len(*dispatched))
	}
}

func TestHandleTamperedPayload(t *testing.T) {
	t.Parallel()

	secret := []byte("shhh")
	handler, journal, dispatched := newTestHandler(secret)

	body := []byte(`{"id": 1001, "source_name": "pos"}`)
	signature := signPayload(secret, body)
	tampered := bytes.Replace(body, []byte("1001"), []byte("1002"), 1)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/orders/create", bytes.NewReader(tampered))
	req.Header.Set(SignatureHeader, signature)
	rec := httptest.NewRecorder()

	if err := handler.Handle(rec, req); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(journal.records) != 0 || len(*dispatched) != 0 {
		t.Fatal("rejected requests must not journal or dispatch")
	}
}

func TestHandleMissingSignature(t *testing.T) {
	t.Parallel()

	handler, _, dispatched := newTestHandler([]byte("shhh"))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/orders/create", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	if err := handler.Handle(rec, req); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(*dispatched) != 0 {
		t.Fatal("unsigned requests must not dispatch")
	}
}

func TestHandleWrongSecret(t *testing.T) {
	t.Parallel()

	handler, _, dispatched := newTestHandler([]byte("right"))

	body := []byte(`{"id": 1001}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/orders/create", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, signPayload([]byte("wrong"), body))
	rec := httptest.NewRecorder()

	if err := handler.Handle(rec, req); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(*dispatched) != 0 {
		t.Fatal("wrong-secret requests must not dispatch")
	}
}

func TestHandleMissingSecretConfiguration(t *testing.T) {
	t.Parallel()

	handler, _, dispatched := newTestHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/orders/create", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	if err := handler.Handle(rec, req); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if len(*dispatched) != 0 {
		t.Fatal("misconfigured handler must not dispatch")
	}
}
