package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gastrohub/console-backend/pkg/db/models"
	"github.com/gastrohub/console-backend/pkg/enums"
	pkgerrors "github.com/gastrohub/console-backend/pkg/errors"
	"github.com/gastrohub/console-backend/pkg/logger"
	"github.com/gastrohub/console-backend/pkg/money"
)

var (
	errRepoRequired   = errors.New("audit repository is required")
	errLoggerRequired = errors.New("audit logger is required")
)

// Entry captures one refund attempt outcome for the audit trail.
type Entry struct {
	IssueID        string
	OrderID        string
	RestaurantID   string
	Outcome        enums.RefundOutcome
	RefundType     enums.RefundType
	Amount         money.Cents
	Reason         string
	ProcessorRef   *string
	IdempotencyKey string
	Metadata       map[string]any
}

// Service records refund outcomes and journals submissions.
type Service interface {
	RecordEntry(ctx context.Context, entry Entry) (*models.RefundAuditEntry, error)
	ListByIssueID(ctx context.Context, issueID string) ([]models.RefundAuditEntry, error)
	JournalSubmission(ctx context.Context, submission *models.RefundSubmission) error
	CompleteSubmission(ctx context.Context, submission *models.RefundSubmission, succeeded bool, failureMessage *string) error
	ListOpenSubmissions(ctx context.Context, restaurantID string) ([]models.RefundSubmission, error)
}

type service struct {
	repo   Repository
	logger *logger.Logger
}

// NewService validates dependencies and builds the audit service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errRepoRequired
	}
	if logg == nil {
		return nil, errLoggerRequired
	}
	return &service{repo: repo, logger: logg}, nil
}

func (s *service) RecordEntry(ctx context.Context, entry Entry) (*models.RefundAuditEntry, error) {
	if err := validateEntry(entry); err != nil {
		return nil, err
	}

	var metadata json.RawMessage
	if len(entry.Metadata) > 0 {
		raw, err := json.Marshal(entry.Metadata)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode audit metadata")
		}
		metadata = raw
	}

	record := &models.RefundAuditEntry{
		IssueID:        entry.IssueID,
		OrderID:        entry.OrderID,
		RestaurantID:   entry.RestaurantID,
		Outcome:        entry.Outcome,
		RefundType:     entry.RefundType,
		AmountCents:    int64(entry.Amount),
		Currency:       "eur",
		Reason:         entry.Reason,
		ProcessorRef:   entry.ProcessorRef,
		IdempotencyKey: entry.IdempotencyKey,
		Metadata:       metadata,
	}

	if err := s.repo.CreateEntry(ctx, record); err != nil {
		s.logger.Error(ctx, "recording refund audit entry", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record audit entry")
	}

	ctx = s.logger.WithIssueID(ctx, entry.IssueID)
	s.logger.Info(ctx, "refund audit entry recorded")
	return record, nil
}

func (s *service) ListByIssueID(ctx context.Context, issueID string) ([]models.RefundAuditEntry, error) {
	if issueID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "issue id is required")
	}
	entries, err := s.repo.ListEntriesByIssueID(ctx, issueID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list audit entries")
	}
	return entries, nil
}

func (s *service) JournalSubmission(ctx context.Context, submission *models.RefundSubmission) error {
	if submission == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "submission is required")
	}
	if submission.IssueID == "" || submission.IdempotencyKey == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "submission issue id and idempotency key are required")
	}
	if err := s.repo.CreateSubmission(ctx, submission); err != nil {
		s.logger.Error(ctx, "journaling refund submission", err)
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "journal submission")
	}
	return nil
}

func (s *service) CompleteSubmission(ctx context.Context, submission *models.RefundSubmission, succeeded bool, failureMessage *string) error {
	if submission == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "submission is required")
	}
	now := time.Now().UTC()
	submission.Completed = true
	submission.Succeeded = succeeded
	submission.FailureMessage = failureMessage
	submission.CompletedAt = &now

	if err := s.repo.CompleteSubmission(ctx, submission); err != nil {
		s.logger.Error(ctx, "completing refund submission", err)
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "complete submission")
	}
	return nil
}

// ListOpenSubmissions returns journal rows that never completed. After a
// timed-out attempt they answer whether the refund ever landed.
func (s *service) ListOpenSubmissions(ctx context.Context, restaurantID string) ([]models.RefundSubmission, error) {
	if restaurantID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restaurant id is required")
	}
	submissions, err := s.repo.ListOpenSubmissions(ctx, restaurantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list open submissions")
	}
	return submissions, nil
}

func validateEntry(entry Entry) error {
	switch {
	case entry.IssueID == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "audit entry issue id is required")
	case entry.OrderID == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "audit entry order id is required")
	case entry.RestaurantID == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "audit entry restaurant id is required")
	case !entry.Outcome.IsValid():
		return pkgerrors.New(pkgerrors.CodeValidation, "audit entry outcome is invalid")
	case !entry.RefundType.IsValid():
		return pkgerrors.New(pkgerrors.CodeValidation, "audit entry refund type is invalid")
	case entry.Amount < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "audit entry amount must not be negative")
	case entry.IdempotencyKey == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "audit entry idempotency key is required")
	}
	return nil
}
