package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gastrohub/console-backend/api/middleware"
	"github.com/gastrohub/console-backend/api/responses"
	"github.com/gastrohub/console-backend/api/validators"
	"github.com/gastrohub/console-backend/internal/audit"
	"github.com/gastrohub/console-backend/internal/issues"
	"github.com/gastrohub/console-backend/internal/platform"
	"github.com/gastrohub/console-backend/internal/refunds"
	pkgerrors "github.com/gastrohub/console-backend/pkg/errors"
	"github.com/gastrohub/console-backend/pkg/logger"
	"github.com/gastrohub/console-backend/pkg/money"
)

type refundBody struct {
	Full  bool                   `json:"full"`
	Items []refunds.SelectedItem `json:"items,omitempty" validate:"omitempty,dive"`
}

type refundPreview struct {
	Eligible     bool        `json:"eligible"`
	ViaProcessor bool        `json:"via_processor"`
	Reason       string      `json:"reason,omitempty"`
	Amount       money.Cents `json:"amount"`
	RefundType   string      `json:"refund_type"`
}

// PreviewRefund computes the refund total and eligibility without side
// effects. The console shows this before the manager confirms.
func PreviewRefund(svc issues.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "issue service unavailable"))
			return
		}

		restaurantID := middleware.RestaurantIDFromContext(r.Context())
		issueID := chi.URLParam(r, "issueId")

		var body refundBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		issue, err := svc.Get(r.Context(), restaurantID, issueID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.OrderItems(r.Context(), restaurantID, issueID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, amount, err := buildRefund(items, body, issue)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		eligibility := refunds.Evaluate(issue)
		refundType := "partial"
		switch {
		case !eligibility.ViaProcessor:
			refundType = "manual"
		case request.IsFull():
			refundType = "full"
		}

		responses.WriteSuccess(w, refundPreview{
			Eligible:     eligibility.Eligible,
			ViaProcessor: eligibility.ViaProcessor,
			Reason:       eligibility.Reason,
			Amount:       amount,
			RefundType:   refundType,
		})
	}
}

// SubmitRefund executes one confirmed refund attempt. The route sits behind
// the idempotency middleware, so a replayed confirmation returns the stored
// response instead of reaching the processor twice.
func SubmitRefund(svc issues.Service, submitter refunds.Submitter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || submitter == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "refund service unavailable"))
			return
		}

		restaurantID := middleware.RestaurantIDFromContext(r.Context())
		issueID := chi.URLParam(r, "issueId")

		var body refundBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		issue, err := svc.Get(r.Context(), restaurantID, issueID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.OrderItems(r.Context(), restaurantID, issueID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, amount, err := buildRefund(items, body, issue)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := submitter.Submit(r.Context(), refunds.SubmitInput{
			Issue:          issue,
			Request:        request,
			ExpectedAmount: &amount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ListRefundHistory returns the audit trail of refund attempts for an issue.
func ListRefundHistory(svc issues.Service, audits audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || audits == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		restaurantID := middleware.RestaurantIDFromContext(r.Context())
		issueID := chi.URLParam(r, "issueId")

		// Guard against reading another restaurant's trail.
		if _, err := svc.Get(r.Context(), restaurantID, issueID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := audits.ListByIssueID(r.Context(), issueID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"entries": entries})
	}
}

// ListPendingRefunds returns journaled submission attempts that never
// completed. After a timed-out confirmation this is where a manager checks
// whether the attempt landed before confirming again.
func ListPendingRefunds(audits audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if audits == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		restaurantID := middleware.RestaurantIDFromContext(r.Context())
		submissions, err := audits.ListOpenSubmissions(r.Context(), restaurantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"submissions": submissions})
	}
}

func buildRefund(items []platform.OrderItem, body refundBody, issue platform.OrderIssue) (platform.RefundRequest, money.Cents, error) {
	if body.Full {
		return refunds.BuildFull(issue.Reason), refunds.OrderTotal(items), nil
	}
	request, err := refunds.BuildPartial(items, body.Items, issue.Reason)
	if err != nil {
		return platform.RefundRequest{}, 0, err
	}
	return request, refunds.ComputeTotal(items, body.Items), nil
}
