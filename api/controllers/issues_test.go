package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gastrohub/console-backend/internal/issues"
	"github.com/gastrohub/console-backend/pkg/enums"
	pkgerrors "github.com/gastrohub/console-backend/pkg/errors"
	"github.com/gastrohub/console-backend/pkg/types"
)

func TestListIssuesEnrichesPayment(t *testing.T) {
	svc := &testIssueService{issue: testIssue()}
	handler := ListIssues(svc, controllerLogger())

	resp := httptest.NewRecorder()
	handler(resp, issueRequest(http.MethodGet, "/api/v1/issues", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var envelope struct {
		Data []issueView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(envelope.Data))
	}
	view := envelope.Data[0]
	if view.Payment.Label != "Stripe" {
		t.Errorf("expected Stripe payment label, got %q", view.Payment.Label)
	}
	if view.ReasonLabel != "Kaltes Essen" {
		t.Errorf("expected localized reason label, got %q", view.ReasonLabel)
	}
}

func TestListIssuesRejectsBadRefreshValue(t *testing.T) {
	svc := &testIssueService{issue: testIssue()}
	handler := ListIssues(svc, controllerLogger())

	resp := httptest.NewRecorder()
	handler(resp, issueRequest(http.MethodGet, "/api/v1/issues?refresh=banana", ""))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestIssueBadges(t *testing.T) {
	svc := &testIssueService{issue: testIssue()}
	handler := IssueBadges(svc, controllerLogger())

	resp := httptest.NewRecorder()
	handler(resp, issueRequest(http.MethodGet, "/api/v1/issues/badges", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var envelope struct {
		Data issues.Badges `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Open != 1 {
		t.Errorf("unexpected badges %+v", envelope.Data)
	}
}

func TestUpdateIssueStatus(t *testing.T) {
	svc := &testIssueService{issue: testIssue()}
	handler := UpdateIssueStatus(svc, controllerLogger())

	resp := httptest.NewRecorder()
	handler(resp, issueRequest(http.MethodPatch, "/api/v1/issues/iss-1/status", `{"status": "resolved"}`))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data issueView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Status != enums.IssueStatusResolved {
		t.Errorf("expected resolved, got %q", envelope.Data.Status)
	}
}

func TestUpdateIssueStatusInvalidValue(t *testing.T) {
	svc := &testIssueService{issue: testIssue()}
	handler := UpdateIssueStatus(svc, controllerLogger())

	resp := httptest.NewRecorder()
	handler(resp, issueRequest(http.MethodPatch, "/api/v1/issues/iss-1/status", `{"status": "frobnicated"}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeValidation) {
		t.Errorf("unexpected error code %s", envelope.Error.Code)
	}
}

func TestUpdateIssueNotes(t *testing.T) {
	svc := &testIssueService{issue: testIssue()}
	handler := UpdateIssueNotes(svc, controllerLogger())

	resp := httptest.NewRecorder()
	handler(resp, issueRequest(http.MethodPatch, "/api/v1/issues/iss-1/notes", `{"notes": "called the customer"}`))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data issueView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.ManagerNotes == nil || *envelope.Data.ManagerNotes != "called the customer" {
		t.Error("expected updated notes in response")
	}
}

func TestListOrderItems(t *testing.T) {
	svc := &testIssueService{issue: testIssue(), items: testItems()}
	handler := ListOrderItems(svc, controllerLogger())

	resp := httptest.NewRecorder()
	handler(resp, issueRequest(http.MethodGet, "/api/v1/issues/iss-1/order-items", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}
