package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/gastrohub/console-backend/api/middleware"
	"github.com/gastrohub/console-backend/internal/audit"
	"github.com/gastrohub/console-backend/internal/issues"
	"github.com/gastrohub/console-backend/internal/platform"
	"github.com/gastrohub/console-backend/internal/refunds"
	"github.com/gastrohub/console-backend/pkg/db/models"
	"github.com/gastrohub/console-backend/pkg/enums"
	pkgerrors "github.com/gastrohub/console-backend/pkg/errors"
	"github.com/gastrohub/console-backend/pkg/logger"
	"github.com/gastrohub/console-backend/pkg/types"
	"github.com/rs/zerolog"
)

type testIssueService struct {
	issue platform.OrderIssue
	items []platform.OrderItem

	listFn      func(ctx context.Context, restaurantID string, refresh bool) ([]platform.OrderIssue, error)
	setStatusFn func(ctx context.Context, restaurantID, issueID string, status enums.IssueStatus) (*platform.OrderIssue, error)
}

func (s *testIssueService) List(ctx context.Context, restaurantID string, refresh bool) ([]platform.OrderIssue, error) {
	if s.listFn != nil {
		return s.listFn(ctx, restaurantID, refresh)
	}
	return []platform.OrderIssue{s.issue}, nil
}

func (s *testIssueService) Reload(ctx context.Context, restaurantID string) ([]platform.OrderIssue, error) {
	return []platform.OrderIssue{s.issue}, nil
}

func (s *testIssueService) Get(ctx context.Context, restaurantID, issueID string) (platform.OrderIssue, error) {
	if s.issue.ID != issueID {
		return platform.OrderIssue{}, pkgerrors.New(pkgerrors.CodeNotFound, "issue not found")
	}
	return s.issue, nil
}

func (s *testIssueService) Badges(ctx context.Context, restaurantID string) (issues.Badges, error) {
	return issues.Badges{Open: 1, Total: 1}, nil
}

func (s *testIssueService) SetStatus(ctx context.Context, restaurantID, issueID string, status enums.IssueStatus) (*platform.OrderIssue, error) {
	if s.setStatusFn != nil {
		return s.setStatusFn(ctx, restaurantID, issueID, status)
	}
	issue := s.issue
	issue.Status = status
	return &issue, nil
}

func (s *testIssueService) SetNotes(ctx context.Context, restaurantID, issueID, notes string) (*platform.OrderIssue, error) {
	issue := s.issue
	issue.ManagerNotes = &notes
	return &issue, nil
}

func (s *testIssueService) OrderItems(ctx context.Context, restaurantID, issueID string) ([]platform.OrderItem, error) {
	return s.items, nil
}

func (s *testIssueService) Acquire(issueID string) error { return nil }

func (s *testIssueService) Release(issueID string) {}

func (s *testIssueService) Invalidate(ctx context.Context, restaurantID string) {}

type testAuditService struct {
	open []models.RefundSubmission
}

func (s *testAuditService) RecordEntry(ctx context.Context, entry audit.Entry) (*models.RefundAuditEntry, error) {
	return &models.RefundAuditEntry{}, nil
}

func (s *testAuditService) ListByIssueID(ctx context.Context, issueID string) ([]models.RefundAuditEntry, error) {
	return []models.RefundAuditEntry{}, nil
}

func (s *testAuditService) JournalSubmission(ctx context.Context, submission *models.RefundSubmission) error {
	return nil
}

func (s *testAuditService) CompleteSubmission(ctx context.Context, submission *models.RefundSubmission, succeeded bool, failureMessage *string) error {
	return nil
}

func (s *testAuditService) ListOpenSubmissions(ctx context.Context, restaurantID string) ([]models.RefundSubmission, error) {
	return s.open, nil
}

type testSubmitter struct {
	input  *refunds.SubmitInput
	result *platform.RefundResult
	err    error
}

func (s *testSubmitter) Submit(ctx context.Context, input refunds.SubmitInput) (*platform.RefundResult, error) {
	s.input = &input
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func testIssue() platform.OrderIssue {
	return platform.OrderIssue{
		ID:                 "iss-1",
		OrderID:            "ord-1",
		RestaurantID:       "rest-1",
		Reason:             enums.IssueReasonColdFood,
		Status:             enums.IssueStatusOpen,
		Priority:           enums.IssuePriorityHigh,
		OrderType:          enums.OrderTypeDelivery,
		OrderPaymentStatus: enums.OrderPaymentStatusPaid,
		PaymentMethod:      "stripe",
	}
}

func testItems() []platform.OrderItem {
	return []platform.OrderItem{
		{ID: "item-1", Name: "Pizza Margherita", UnitPrice: 500, Quantity: 3},
		{ID: "item-2", Name: "Cola", UnitPrice: 250, Quantity: 2},
	}
}

func controllerLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func issueRequest(method, target, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req = req.WithContext(middleware.WithRestaurantID(req.Context(), "rest-1"))
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("issueId", "iss-1")
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestPreviewRefundPartial(t *testing.T) {
	svc := &testIssueService{issue: testIssue(), items: testItems()}
	handler := PreviewRefund(svc, controllerLogger())

	body := `{"full": false, "items": [{"order_item_id": "item-1", "quantity": 2}, {"order_item_id": "item-2", "quantity": 1}]}`
	resp := httptest.NewRecorder()
	handler(resp, issueRequest(http.MethodPost, "/api/v1/issues/iss-1/refund/preview", body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data refundPreview `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Amount != 1250 {
		t.Errorf("expected 12.50 total, got %d", envelope.Data.Amount)
	}
	if envelope.Data.RefundType != "partial" {
		t.Errorf("expected partial, got %q", envelope.Data.RefundType)
	}
	if !envelope.Data.Eligible || !envelope.Data.ViaProcessor {
		t.Errorf("paid stripe order must be processor-eligible: %+v", envelope.Data)
	}
}

func TestPreviewRefundEmptySelection(t *testing.T) {
	svc := &testIssueService{issue: testIssue(), items: testItems()}
	handler := PreviewRefund(svc, controllerLogger())

	resp := httptest.NewRecorder()
	handler(resp, issueRequest(http.MethodPost, "/api/v1/issues/iss-1/refund/preview", `{"full": false, "items": []}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty selection, got %d", resp.Code)
	}
}

func TestSubmitRefundFull(t *testing.T) {
	svc := &testIssueService{issue: testIssue(), items: testItems()}
	submitter := &testSubmitter{result: &platform.RefundResult{Amount: 2000, Type: enums.RefundTypeFull}}
	handler := SubmitRefund(svc, submitter, controllerLogger())

	resp := httptest.NewRecorder()
	handler(resp, issueRequest(http.MethodPost, "/api/v1/issues/iss-1/refund", `{"full": true}`))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if submitter.input == nil {
		t.Fatal("submitter must be called")
	}
	if !submitter.input.Request.IsFull() {
		t.Error("full refund request must carry no items")
	}
	if submitter.input.ExpectedAmount == nil || *submitter.input.ExpectedAmount != 2000 {
		t.Errorf("expected order total 2000, got %v", submitter.input.ExpectedAmount)
	}
}

func TestSubmitRefundPropagatesConflict(t *testing.T) {
	svc := &testIssueService{issue: testIssue(), items: testItems()}
	submitter := &testSubmitter{err: pkgerrors.New(pkgerrors.CodeConflict, "another update is in progress for this issue")}
	handler := SubmitRefund(svc, submitter, controllerLogger())

	resp := httptest.NewRecorder()
	handler(resp, issueRequest(http.MethodPost, "/api/v1/issues/iss-1/refund", `{"full": true}`))

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeConflict) {
		t.Errorf("unexpected error code %s", envelope.Error.Code)
	}
}

func TestListPendingRefunds(t *testing.T) {
	audits := &testAuditService{open: []models.RefundSubmission{
		{IssueID: "iss-1", RestaurantID: "rest-1", RefundType: enums.RefundTypeFull, IdempotencyKey: "refund-key-1"},
	}}
	handler := ListPendingRefunds(audits, controllerLogger())

	resp := httptest.NewRecorder()
	handler(resp, issueRequest(http.MethodGet, "/api/v1/issues/refunds/pending", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data struct {
			Submissions []models.RefundSubmission `json:"submissions"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data.Submissions) != 1 || envelope.Data.Submissions[0].IdempotencyKey != "refund-key-1" {
		t.Fatalf("expected the open submission, got %+v", envelope.Data.Submissions)
	}
}

func TestSubmitRefundRejectsUnknownFields(t *testing.T) {
	svc := &testIssueService{issue: testIssue(), items: testItems()}
	submitter := &testSubmitter{}
	handler := SubmitRefund(svc, submitter, controllerLogger())

	resp := httptest.NewRecorder()
	handler(resp, issueRequest(http.MethodPost, "/api/v1/issues/iss-1/refund", `{"full": true, "amount": 999}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", resp.Code)
	}
	if submitter.input != nil {
		t.Error("submitter must not run on invalid input")
	}
}
