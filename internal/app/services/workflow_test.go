package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/popcommerce/fulfillbridge/internal/app/domain"
	"github.com/popcommerce/fulfillbridge/internal/app/ports"
)

type journalMark struct {
	status ports.EventStatus
	detail string
}

// fakeJournal is safe for concurrent use; the dispatcher tests mark events
// from multiple goroutines.
type fakeJournal struct {
	mu    sync.Mutex
	marks map[string][]journalMark
}

func newFakeJournal() *fakeJournal {
	return &fakeJournal{marks: make(map[string][]journalMark)}
}

func (j *fakeJournal) mark(eventID string, m journalMark) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.marks[eventID] = append(j.marks[eventID], m)
}

func (j *fakeJournal) Append(_ context.Context, record ports.EventRecord) error {
	j.mark(record.EventID, journalMark{status: record.Status})
	return nil
}

func (j *fakeJournal) MarkCompleted(_ context.Context, eventID string) error {
	j.mark(eventID, journalMark{status: ports.EventCompleted})
	return nil
}

func (j *fakeJournal) MarkSkipped(_ context.Context, eventID, reason string) error {
	j.mark(eventID, journalMark{status: ports.EventSkipped, detail: reason})
	return nil
}

func (j *fakeJournal) MarkFailed(_ context.Context, eventID, step string) error {
	j.mark(eventID, journalMark{status: ports.EventFailed, detail: step})
	return nil
}

func (j *fakeJournal) ListUnprocessed(_ context.Context, _ int) ([]ports.EventRecord, error) {
	return nil, nil
}

func (j *fakeJournal) lastMark(eventID string) (journalMark, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	marks := j.marks[eventID]
	if len(marks) == 0 {
		return journalMark{}, false
	}
	return marks[len(marks)-1], true
}

type recordingOutcomes struct {
	mu        sync.Mutex
	published []domain.ProcessingOutcome
}

func (r *recordingOutcomes) PublishOutcome(_ context.Context, outcome domain.ProcessingOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, outcome)
}

type processorFixture struct {
	processor *OrderProcessor
	gateway   *recordingGateway
	directory *fakeDirectory
	journal   *fakeJournal
	outcomes  *recordingOutcomes
}

func newProcessorFixture(inv *fakeInventory, gateway *recordingGateway, directory *fakeDirectory) processorFixture {
	log := discardLogger()
	journal := newFakeJournal()
	outcomes := &recordingOutcomes{}
	processor := NewOrderProcessor(
		NewAllocator(inv, testLocations, SKURules{Stylist: []string{"STY-1"}}),
		NewCommitCoordinator(gateway, testLocations, log),
		NewClassifier(directory, testTagRules, log),
		gateway,
		journal,
		outcomes,
		"pos",
		log,
	)
	return processorFixture{
		processor: processor,
		gateway:   gateway,
		directory: directory,
		journal:   journal,
		outcomes:  outcomes,
	}
}

func TestProcessHappyPath(t *testing.T) {
	t.Parallel()

	inv := &fakeInventory{
		items:     map[int64]int64{10: 110},
		available: map[int64]int{110: 5},
	}
	gateway := &recordingGateway{fo: domain.FulfillmentOrder{
		ID:        5001,
		LineItems: []domain.FulfillmentLineItem{{ID: 7000, RemainingQuantity: 2}},
	}}
	directory := &fakeDirectory{orderCount: 1}
	fx := newProcessorFixture(inv, gateway, directory)

	payload := []byte(`{
		"id": 1001,
		"source_name": "pos",
		"line_items": [{"sku": "STY-1", "variant_id": 10, "quantity": 2}],
		"customer": {"id": 115310, "email": "jane@example.com", "state": "disabled"},
		"shipping_address": {"city": "Vilnius"}
	}`)
	if err := fx.processor.Process(context.Background(), "evt-1", payload); err != nil {
		t.Fatalf("Process: %v", err)
	}

	if !sameCalls(fx.gateway.callNames(), []string{"fetch", "transfer", "commit"}) {
		t.Fatalf("unexpected gateway sequence: %v", fx.gateway.callNames())
	}
	mark, ok := fx.journal.lastMark("evt-1")
	if !ok || mark.status != ports.EventCompleted {
		t.Fatalf("expected completed journal mark, got %+v", mark)
	}
	if fx.directory.inviteCalls != 1 {
		t.Fatalf("first-order stylist purchase must invite, got %d", fx.directory.inviteCalls)
	}
	if len(fx.outcomes.published) != 1 {
		t.Fatalf("expected one outcome, got %d", len(fx.outcomes.published))
	}
	outcome := fx.outcomes.published[0]
	if outcome.Status != string(ports.EventCompleted) || outcome.OrderID != 1001 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if len(outcome.Lines) != 1 || outcome.Lines[0].Outcome != domain.OutcomeFullAtEvent {
		t.Fatalf("outcome must carry the plan lines: %+v", outcome.Lines)
	}
}

func TestProcessWrongChannelSkipsEverything(t *testing.T) {
	t.Parallel()

	gateway := &recordingGateway{}
	directory := &fakeDirectory{orderCount: 1}
	fx := newProcessorFixture(&fakeInventory{}, gateway, directory)

	payload := []byte(`{
		"id": 1001,
		"source_name": "web",
		"customer": {"id": 115310, "email": "jane@example.com"}
	}`)
	if err := fx.processor.Process(context.Background(), "evt-2", payload); err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(fx.gateway.calls) != 0 {
		t.Fatalf("wrong channel must not touch the gateway: %v", fx.gateway.callNames())
	}
	if fx.directory.countCalls != 0 {
		t.Fatal("wrong channel must not classify either")
	}
	mark, ok := fx.journal.lastMark("evt-2")
	if !ok || mark.status != ports.EventSkipped {
		t.Fatalf("expected skipped journal mark, got %+v", mark)
	}
	if len(fx.outcomes.published) != 1 || fx.outcomes.published[0].Status != string(ports.EventSkipped) {
		t.Fatalf("unexpected outcomes: %+v", fx.outcomes.published)
	}
}

func TestProcessAlreadyFulfilledStillClassifies(t *testing.T) {
	t.Parallel()

	gateway := &recordingGateway{}
	directory := &fakeDirectory{orderCount: 1}
	fx := newProcessorFixture(&fakeInventory{}, gateway, directory)

	payload := []byte(`{
		"id": 1001,
		"source_name": "pos",
		"line_items": [{"sku": "STY-1", "variant_id": 10, "quantity": 1}],
		"customer": {"id": 115310, "email": "jane@example.com", "state": "disabled"},
		"fulfillments": [{"id": 99}]
	}`)
	if err := fx.processor.Process(context.Background(), "evt-3", payload); err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(fx.gateway.calls) != 0 {
		t.Fatalf("already-fulfilled orders must not re-allocate: %v", fx.gateway.callNames())
	}
	if fx.directory.countCalls != 1 {
		t.Fatal("classification must still run for already-fulfilled orders")
	}
	// No line-item scan ran, so only the first-order tag can apply and no
	// invite fires.
	if len(fx.directory.updatedTags) != 1 || fx.directory.updatedTags[0] != "event-promo" {
		t.Fatalf("unexpected tag update: %v", fx.directory.updatedTags)
	}
	if fx.directory.inviteCalls != 0 {
		t.Fatal("invite needs a scan trigger")
	}
	mark, ok := fx.journal.lastMark("evt-3")
	if !ok || mark.status != ports.EventSkipped {
		t.Fatalf("expected skipped journal mark, got %+v", mark)
	}
}

func TestProcessFetchFailureJournalsStep(t *testing.T) {
	t.Parallel()

	fetchErr := errors.New("fulfillment orders unavailable")
	gateway := &recordingGateway{fetchErr: fetchErr}
	directory := &fakeDirectory{}
	fx := newProcessorFixture(&fakeInventory{}, gateway, directory)

	payload := []byte(`{"id": 1001, "source_name": "pos"}`)
	if err := fx.processor.Process(context.Background(), "evt-4", payload); !errors.Is(err, fetchErr) {
		t.Fatalf("expected fetch error, got %v", err)
	}

	mark, ok := fx.journal.lastMark("evt-4")
	if !ok || mark.status != ports.EventFailed || mark.detail != StepFetch {
		t.Fatalf("expected failed mark with fetch step, got %+v", mark)
	}
	if fx.directory.countCalls != 0 {
		t.Fatal("classification must not run after an aborted allocation")
	}
	if len(fx.outcomes.published) != 1 || fx.outcomes.published[0].FailedStep != StepFetch {
		t.Fatalf("unexpected outcomes: %+v", fx.outcomes.published)
	}
}

func TestProcessCommitFailureJournalsStep(t *testing.T) {
	t.Parallel()

	commitErr := errors.New("fulfillment rejected")
	inv := &fakeInventory{
		items:     map[int64]int64{10: 110},
		available: map[int64]int{110: 5},
	}
	gateway := &recordingGateway{
		fo: domain.FulfillmentOrder{
			ID:        5001,
			LineItems: []domain.FulfillmentLineItem{{ID: 7000, RemainingQuantity: 1}},
		},
		commitErr: commitErr,
	}
	fx := newProcessorFixture(inv, gateway, &fakeDirectory{})

	payload := []byte(`{
		"id": 1001,
		"source_name": "pos",
		"line_items": [{"sku": "A", "variant_id": 10, "quantity": 1}]
	}`)
	if err := fx.processor.Process(context.Background(), "evt-5", payload); !errors.Is(err, commitErr) {
		t.Fatalf("expected commit error, got %v", err)
	}

	mark, ok := fx.journal.lastMark("evt-5")
	if !ok || mark.status != ports.EventFailed || mark.detail != StepCommit {
		t.Fatalf("expected failed mark with commit step, got %+v", mark)
	}
}

func TestProcessUndecodablePayload(t *testing.T) {
	t.Parallel()

	fx := newProcessorFixture(&fakeInventory{}, &recordingGateway{}, &fakeDirectory{})

	if err := fx.processor.Process(context.Background(), "evt-6", []byte(`{`)); err == nil {
		t.Fatal("expected decode error")
	}
	mark, ok := fx.journal.lastMark("evt-6")
	if !ok || mark.status != ports.EventFailed || mark.detail != StepDecode {
		t.Fatalf("expected failed mark with decode step, got %+v", mark)
	}
}
