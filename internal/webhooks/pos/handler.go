package pos

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/popcommerce/fulfillbridge/internal/app/domain"
	"github.com/popcommerce/fulfillbridge/internal/app/ports"
)

const (
	// SignatureHeader carries the platform's HMAC digest of the raw payload.
	SignatureHeader = "X-Shopify-Hmac-Sha256"
	maxPayloadBytes = 1 << 20
)

// Dispatch hands an authenticated payload to background processing.
type Dispatch func(ctx context.Context, eventID string, payload []byte)

// Handler authenticates inbound point-of-sale order webhooks. The sender
// expects a fast acknowledgment independent of processing time, so a
// verified event is journaled, acknowledged, and then dispatched; everything
// after the ack is observable only through logs and the journal.
type Handler struct {
	secret   []byte
	journal  ports.EventJournal
	dispatch Dispatch
	log      *slog.Logger
}

// NewHandler constructs a POS webhook handler.
func NewHandler(secret []byte, journal ports.EventJournal, dispatch Dispatch, log *slog.Logger) *Handler {
	return &Handler{secret: secret, journal: journal, dispatch: dispatch, log: log}
}

// Handle verifies and acknowledges one webhook request.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) error {
	if len(h.secret) == 0 {
		http.Error(w, "webhook secret not configured", http.StatusInternalServerError)
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return nil
	}

	if !validSignature(body, h.secret, r.Header.Get(SignatureHeader)) {
		h.log.WarnContext(r.Context(), "webhook signature mismatch", "remote", r.RemoteAddr)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return nil
	}

	eventID := uuid.NewString()
	if err := h.journal.Append(r.Context(), ports.EventRecord{
		EventID: eventID,
		OrderID: domain.PeekOrderID(body),
		Payload: body,
		Status:  ports.EventReceived,
	}); err != nil {
		// The journal is the replay path, not the ack path; keep going.
		h.log.ErrorContext(r.Context(), "journal append failed", "event_id", eventID, "error", err)
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))

	h.dispatch(r.Context(), eventID, body)
	return nil
}

// validSignature compares the claimed digest against HMAC-SHA256 over the
// exact raw bytes, base64-encoded, in constant time.
func validSignature(body, secret []byte, claimed string) bool {
	claimed = strings.TrimSpace(claimed)
	if claimed == "" {
		return false
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(claimed))
}
