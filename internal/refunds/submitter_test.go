package refunds

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/gastrohub/console-backend/internal/audit"
	"github.com/gastrohub/console-backend/internal/platform"
	"github.com/gastrohub/console-backend/pkg/db/models"
	"github.com/gastrohub/console-backend/pkg/enums"
	pkgerrors "github.com/gastrohub/console-backend/pkg/errors"
	"github.com/gastrohub/console-backend/pkg/logger"
	"github.com/gastrohub/console-backend/pkg/money"
	"github.com/rs/zerolog"
)

type stubClient struct {
	calls    int
	minted   int
	keysSeen []string
	result   *platform.RefundResult
	err      error
}

func (s *stubClient) SubmitRefund(ctx context.Context, issueID string, req platform.RefundRequest, idempotencyKey string) (*platform.RefundResult, error) {
	s.calls++
	s.keysSeen = append(s.keysSeen, idempotencyKey)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubClient) NewIdempotencyKey(prefix string) string {
	s.minted++
	return fmt.Sprintf("%s-key-%d", prefix, s.minted)
}

type stubAudits struct {
	entries     []audit.Entry
	journaled   []*models.RefundSubmission
	completions []bool
}

func (s *stubAudits) RecordEntry(ctx context.Context, entry audit.Entry) (*models.RefundAuditEntry, error) {
	s.entries = append(s.entries, entry)
	return &models.RefundAuditEntry{}, nil
}

func (s *stubAudits) ListByIssueID(ctx context.Context, issueID string) ([]models.RefundAuditEntry, error) {
	return nil, nil
}

func (s *stubAudits) JournalSubmission(ctx context.Context, submission *models.RefundSubmission) error {
	s.journaled = append(s.journaled, submission)
	return nil
}

func (s *stubAudits) CompleteSubmission(ctx context.Context, submission *models.RefundSubmission, succeeded bool, failureMessage *string) error {
	s.completions = append(s.completions, succeeded)
	return nil
}

func (s *stubAudits) ListOpenSubmissions(ctx context.Context, restaurantID string) ([]models.RefundSubmission, error) {
	return nil, nil
}

type stubGuard struct {
	busy     bool
	acquired []string
	released []string
}

func (s *stubGuard) Acquire(issueID string) error {
	if s.busy {
		return pkgerrors.New(pkgerrors.CodeConflict, "another update is in progress for this issue")
	}
	s.acquired = append(s.acquired, issueID)
	return nil
}

func (s *stubGuard) Release(issueID string) {
	s.released = append(s.released, issueID)
}

type stubInvalidator struct {
	restaurants []string
}

func (s *stubInvalidator) Invalidate(ctx context.Context, restaurantID string) {
	s.restaurants = append(s.restaurants, restaurantID)
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func paidStripeIssue() platform.OrderIssue {
	return platform.OrderIssue{
		ID:                 "iss-1",
		OrderID:            "ord-1",
		RestaurantID:       "rest-1",
		OrderPaymentStatus: enums.OrderPaymentStatusPaid,
		PaymentMethod:      "stripe",
	}
}

func newTestSubmitter(t *testing.T, client *stubClient, audits *stubAudits, guard *stubGuard, inv *stubInvalidator) Submitter {
	t.Helper()
	// A typed-nil pointer in the interface would dodge the submitter's nil
	// check, so only a non-nil stub goes in.
	var invalidator Invalidator
	if inv != nil {
		invalidator = inv
	}
	sub, err := NewSubmitter(client, audits, guard, invalidator, nil, quietLogger())
	if err != nil {
		t.Fatalf("NewSubmitter: %v", err)
	}
	return sub
}

func TestSubmitProcessorSuccess(t *testing.T) {
	refundID := "re_123"
	client := &stubClient{result: &platform.RefundResult{
		Amount:   1250,
		Type:     enums.RefundTypePartial,
		RefundID: &refundID,
	}}
	audits := &stubAudits{}
	guard := &stubGuard{}
	inv := &stubInvalidator{}
	sub := newTestSubmitter(t, client, audits, guard, inv)

	expected := money.Cents(1250)
	result, err := sub.Submit(context.Background(), SubmitInput{
		Issue: paidStripeIssue(),
		Request: platform.RefundRequest{
			Items:        []platform.RefundItem{{OrderItemID: "item-1", Quantity: 2, Reason: "r"}},
			RefundReason: "Reklamation: Kaltes Essen",
		},
		ExpectedAmount: &expected,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Amount != 1250 {
		t.Errorf("expected 1250 cents, got %d", result.Amount)
	}
	if client.calls != 1 {
		t.Errorf("expected 1 platform call, got %d", client.calls)
	}
	if len(audits.journaled) != 1 {
		t.Fatalf("expected 1 journal row, got %d", len(audits.journaled))
	}
	if len(audits.entries) != 1 || audits.entries[0].Outcome != enums.RefundOutcomeProcessed {
		t.Fatalf("expected processed audit entry, got %+v", audits.entries)
	}
	if audits.entries[0].ProcessorRef == nil || *audits.entries[0].ProcessorRef != refundID {
		t.Error("audit entry must carry the processor ref")
	}
	if len(guard.released) != 1 {
		t.Error("guard must be released after submission")
	}
	if len(inv.restaurants) != 1 || inv.restaurants[0] != "rest-1" {
		t.Error("cache must be invalidated for the restaurant")
	}
}

func TestSubmitProcessorFailure(t *testing.T) {
	client := &stubClient{err: pkgerrors.New(pkgerrors.CodeProcessor, "refund rejected")}
	audits := &stubAudits{}
	guard := &stubGuard{}
	sub := newTestSubmitter(t, client, audits, guard, nil)

	_, err := sub.Submit(context.Background(), SubmitInput{
		Issue:   paidStripeIssue(),
		Request: platform.RefundRequest{RefundReason: "r"},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeProcessor {
		t.Fatalf("expected processor error, got %v", err)
	}
	if client.calls != 1 {
		t.Errorf("a failed attempt must not be retried, got %d calls", client.calls)
	}
	if len(audits.entries) != 1 || audits.entries[0].Outcome != enums.RefundOutcomeFailed {
		t.Fatalf("expected failed audit entry, got %+v", audits.entries)
	}
	if len(audits.completions) != 1 || audits.completions[0] {
		t.Error("journal row must be completed as failed")
	}
	if len(guard.released) != 1 {
		t.Error("guard must be released after a failure")
	}
}

func TestSubmitManualForCash(t *testing.T) {
	client := &stubClient{}
	audits := &stubAudits{}
	guard := &stubGuard{}
	sub := newTestSubmitter(t, client, audits, guard, nil)

	issue := paidStripeIssue()
	issue.PaymentMethod = "cash"

	expected := money.Cents(750)
	result, err := sub.Submit(context.Background(), SubmitInput{
		Issue:          issue,
		Request:        platform.RefundRequest{RefundReason: "Reklamation: Sonstiges"},
		ExpectedAmount: &expected,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if client.calls != 0 {
		t.Errorf("manual refund must never reach the processor, got %d calls", client.calls)
	}
	if result.Type != enums.RefundTypeManual {
		t.Errorf("expected manual refund type, got %q", result.Type)
	}
	if result.Amount != 750 {
		t.Errorf("expected 750 cents, got %d", result.Amount)
	}
	if len(audits.entries) != 1 || audits.entries[0].Outcome != enums.RefundOutcomeManual {
		t.Fatalf("expected manual audit entry, got %+v", audits.entries)
	}
}

func TestSubmitIneligibleIssue(t *testing.T) {
	sub := newTestSubmitter(t, &stubClient{}, &stubAudits{}, &stubGuard{}, nil)

	issue := paidStripeIssue()
	issue.OrderPaymentStatus = enums.OrderPaymentStatusPending

	_, err := sub.Submit(context.Background(), SubmitInput{
		Issue:   issue,
		Request: platform.RefundRequest{RefundReason: "r"},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestSubmitBlockedWhileMutationInFlight(t *testing.T) {
	audits := &stubAudits{}
	sub := newTestSubmitter(t, &stubClient{}, audits, &stubGuard{busy: true}, nil)

	_, err := sub.Submit(context.Background(), SubmitInput{
		Issue:   paidStripeIssue(),
		Request: platform.RefundRequest{RefundReason: "r"},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(audits.journaled) != 0 {
		t.Error("a blocked attempt must not journal anything")
	}
}

func TestSubmitMintsFreshKeyPerAttempt(t *testing.T) {
	client := &stubClient{result: &platform.RefundResult{Amount: 500, Type: enums.RefundTypeFull}}
	audits := &stubAudits{}
	sub := newTestSubmitter(t, client, audits, &stubGuard{}, nil)

	input := SubmitInput{
		Issue:   paidStripeIssue(),
		Request: platform.RefundRequest{RefundReason: "r"},
	}
	if _, err := sub.Submit(context.Background(), input); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if _, err := sub.Submit(context.Background(), input); err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if len(client.keysSeen) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(client.keysSeen))
	}
	if client.keysSeen[0] == client.keysSeen[1] {
		t.Error("each attempt must carry a fresh idempotency key")
	}
}
