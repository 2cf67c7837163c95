package refunds

import (
	"context"
	"errors"
	"time"

	"github.com/gastrohub/console-backend/internal/audit"
	"github.com/gastrohub/console-backend/internal/platform"
	"github.com/gastrohub/console-backend/pkg/db/models"
	"github.com/gastrohub/console-backend/pkg/enums"
	pkgerrors "github.com/gastrohub/console-backend/pkg/errors"
	"github.com/gastrohub/console-backend/pkg/logger"
	"github.com/gastrohub/console-backend/pkg/metrics"
	"github.com/gastrohub/console-backend/pkg/money"
)

var (
	errClientRequired = errors.New("refund platform client is required")
	errAuditRequired  = errors.New("refund audit service is required")
	errGuardRequired  = errors.New("refund mutation guard is required")
	errLoggerRequired = errors.New("refund logger is required")
)

// PlatformClient is the slice of the platform API the submitter needs.
type PlatformClient interface {
	SubmitRefund(ctx context.Context, issueID string, req platform.RefundRequest, idempotencyKey string) (*platform.RefundResult, error)
	NewIdempotencyKey(prefix string) string
}

// Guard serializes mutations per issue. Acquire fails with a conflict error
// while another mutation on the same issue is in flight.
type Guard interface {
	Acquire(issueID string) error
	Release(issueID string)
}

// Invalidator drops cached issue state after a refund changes the world.
type Invalidator interface {
	Invalidate(ctx context.Context, restaurantID string)
}

// SubmitInput carries one confirmed refund attempt.
type SubmitInput struct {
	Issue   platform.OrderIssue
	Request platform.RefundRequest
	// ExpectedAmount is the previewed total. The processor result stays
	// authoritative; manual refunds are recorded with this amount.
	ExpectedAmount *money.Cents
}

// Submitter executes refund attempts exactly once per confirmation.
type Submitter interface {
	Submit(ctx context.Context, input SubmitInput) (*platform.RefundResult, error)
}

type submitter struct {
	client      PlatformClient
	audits      audit.Service
	guard       Guard
	invalidator Invalidator
	metrics     *metrics.RefundMetrics
	logger      *logger.Logger
}

// NewSubmitter validates dependencies and builds the refund submitter.
// The invalidator and metrics may be nil.
func NewSubmitter(
	client PlatformClient,
	audits audit.Service,
	guard Guard,
	invalidator Invalidator,
	refundMetrics *metrics.RefundMetrics,
	logg *logger.Logger,
) (Submitter, error) {
	if client == nil {
		return nil, errClientRequired
	}
	if audits == nil {
		return nil, errAuditRequired
	}
	if guard == nil {
		return nil, errGuardRequired
	}
	if logg == nil {
		return nil, errLoggerRequired
	}
	return &submitter{
		client:      client,
		audits:      audits,
		guard:       guard,
		invalidator: invalidator,
		metrics:     refundMetrics,
		logger:      logg,
	}, nil
}

func (s *submitter) Submit(ctx context.Context, input SubmitInput) (*platform.RefundResult, error) {
	issue := input.Issue
	if issue.ID == "" || issue.OrderID == "" || issue.RestaurantID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "issue id, order id and restaurant id are required")
	}

	eligibility := Evaluate(issue)
	if !eligibility.Eligible {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, eligibility.Reason)
	}

	if err := s.guard.Acquire(issue.ID); err != nil {
		return nil, err
	}
	defer s.guard.Release(issue.ID)

	ctx = s.logger.WithIssueID(ctx, issue.ID)

	refundType := enums.RefundTypePartial
	switch {
	case !eligibility.ViaProcessor:
		refundType = enums.RefundTypeManual
	case input.Request.IsFull():
		refundType = enums.RefundTypeFull
	}

	// One key per attempt. A retried confirmation is a new attempt with a new
	// key; the journal row ties the key to the outcome.
	idempotencyKey := s.client.NewIdempotencyKey("refund")

	submission := &models.RefundSubmission{
		IssueID:        issue.ID,
		RestaurantID:   issue.RestaurantID,
		RefundType:     refundType,
		AmountCents:    centsPtr(input.ExpectedAmount),
		IdempotencyKey: idempotencyKey,
	}
	if err := s.audits.JournalSubmission(ctx, submission); err != nil {
		return nil, err
	}

	if !eligibility.ViaProcessor {
		return s.submitManual(ctx, input, submission, eligibility)
	}
	return s.submitViaProcessor(ctx, input, submission, refundType)
}

// submitManual records a refund that never reaches the processor. Cash and
// unrecognized payment methods land here.
func (s *submitter) submitManual(ctx context.Context, input SubmitInput, submission *models.RefundSubmission, eligibility Eligibility) (*platform.RefundResult, error) {
	amount := money.Cents(0)
	if input.ExpectedAmount != nil {
		amount = *input.ExpectedAmount
	}

	_, err := s.audits.RecordEntry(ctx, audit.Entry{
		IssueID:        input.Issue.ID,
		OrderID:        input.Issue.OrderID,
		RestaurantID:   input.Issue.RestaurantID,
		Outcome:        enums.RefundOutcomeManual,
		RefundType:     enums.RefundTypeManual,
		Amount:         amount,
		Reason:         input.Request.RefundReason,
		IdempotencyKey: submission.IdempotencyKey,
		Metadata:       map[string]any{"policy_reason": eligibility.Reason},
	})
	if err != nil {
		failure := err.Error()
		_ = s.audits.CompleteSubmission(ctx, submission, false, &failure)
		return nil, err
	}

	if err := s.audits.CompleteSubmission(ctx, submission, true, nil); err != nil {
		return nil, err
	}

	s.metrics.IncSuccess(enums.RefundTypeManual.String())
	s.invalidate(ctx, input.Issue.RestaurantID)
	s.logger.Info(ctx, "manual refund recorded")

	return &platform.RefundResult{
		Amount: amount,
		Type:   enums.RefundTypeManual,
	}, nil
}

func (s *submitter) submitViaProcessor(ctx context.Context, input SubmitInput, submission *models.RefundSubmission, refundType enums.RefundType) (*platform.RefundResult, error) {
	started := time.Now()
	result, err := s.client.SubmitRefund(ctx, input.Issue.ID, input.Request, submission.IdempotencyKey)
	s.metrics.ObserveDuration(refundType.String(), time.Since(started))

	if err != nil {
		failure := err.Error()
		_ = s.audits.CompleteSubmission(ctx, submission, false, &failure)
		_, _ = s.audits.RecordEntry(ctx, audit.Entry{
			IssueID:        input.Issue.ID,
			OrderID:        input.Issue.OrderID,
			RestaurantID:   input.Issue.RestaurantID,
			Outcome:        enums.RefundOutcomeFailed,
			RefundType:     refundType,
			Amount:         derefCents(input.ExpectedAmount),
			Reason:         input.Request.RefundReason,
			IdempotencyKey: submission.IdempotencyKey,
			Metadata:       map[string]any{"failure": failure},
		})
		s.metrics.IncFailure(refundType.String())
		s.logger.Error(ctx, "refund submission failed", err)
		// The outcome is final for this attempt. A retry needs a fresh
		// confirmation and mints a fresh key.
		return nil, err
	}

	if err := s.audits.CompleteSubmission(ctx, submission, true, nil); err != nil {
		return nil, err
	}
	if _, err := s.audits.RecordEntry(ctx, audit.Entry{
		IssueID:        input.Issue.ID,
		OrderID:        input.Issue.OrderID,
		RestaurantID:   input.Issue.RestaurantID,
		Outcome:        enums.RefundOutcomeProcessed,
		RefundType:     result.Type,
		Amount:         result.Amount,
		Reason:         input.Request.RefundReason,
		ProcessorRef:   result.RefundID,
		IdempotencyKey: submission.IdempotencyKey,
	}); err != nil {
		return nil, err
	}

	s.metrics.IncSuccess(result.Type.String())
	s.invalidate(ctx, input.Issue.RestaurantID)
	s.logger.Info(ctx, "refund processed")
	return result, nil
}

func (s *submitter) invalidate(ctx context.Context, restaurantID string) {
	if s.invalidator == nil {
		return
	}
	s.invalidator.Invalidate(ctx, restaurantID)
}

func centsPtr(value *money.Cents) *int64 {
	if value == nil {
		return nil
	}
	raw := int64(*value)
	return &raw
}

func derefCents(value *money.Cents) money.Cents {
	if value == nil {
		return 0
	}
	return *value
}
