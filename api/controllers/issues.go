package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gastrohub/console-backend/api/middleware"
	"github.com/gastrohub/console-backend/api/responses"
	"github.com/gastrohub/console-backend/api/validators"
	"github.com/gastrohub/console-backend/internal/issues"
	"github.com/gastrohub/console-backend/internal/payments"
	"github.com/gastrohub/console-backend/internal/platform"
	"github.com/gastrohub/console-backend/pkg/enums"
	pkgerrors "github.com/gastrohub/console-backend/pkg/errors"
	"github.com/gastrohub/console-backend/pkg/logger"
)

// issueView is the console rendering of a platform issue: the raw fields plus
// the derived payment descriptor and the localized reason label.
type issueView struct {
	platform.OrderIssue
	ReasonLabel string           `json:"reason_label"`
	Payment     payments.Display `json:"payment"`
}

func newIssueView(issue platform.OrderIssue) issueView {
	return issueView{
		OrderIssue:  issue,
		ReasonLabel: issue.Reason.Label(),
		Payment:     payments.Classify(issue),
	}
}

// ListIssues returns the cached issue list for the restaurant in context.
// ?refresh=true forces a reload from the platform.
func ListIssues(svc issues.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "issue service unavailable"))
			return
		}

		restaurantID := middleware.RestaurantIDFromContext(r.Context())
		refresh, err := validators.ParseQueryBool(r, "refresh", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), restaurantID, refresh)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]issueView, 0, len(list))
		for _, issue := range list {
			views = append(views, newIssueView(issue))
		}
		responses.WriteSuccess(w, views)
	}
}

// IssueBadges returns the open/in-progress counts for navigation badges.
func IssueBadges(svc issues.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "issue service unavailable"))
			return
		}

		restaurantID := middleware.RestaurantIDFromContext(r.Context())
		badges, err := svc.Badges(r.Context(), restaurantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, badges)
	}
}

type updateStatusBody struct {
	Status string `json:"status" validate:"required"`
}

// UpdateIssueStatus changes the restaurant-facing status of an issue.
func UpdateIssueStatus(svc issues.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "issue service unavailable"))
			return
		}

		restaurantID := middleware.RestaurantIDFromContext(r.Context())
		issueID := chi.URLParam(r, "issueId")

		var body updateStatusBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseIssueStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		updated, err := svc.SetStatus(r.Context(), restaurantID, issueID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newIssueView(*updated))
	}
}

type updateNotesBody struct {
	Notes string `json:"notes" validate:"max=4000"`
}

// UpdateIssueNotes changes the manager notes on an issue.
func UpdateIssueNotes(svc issues.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "issue service unavailable"))
			return
		}

		restaurantID := middleware.RestaurantIDFromContext(r.Context())
		issueID := chi.URLParam(r, "issueId")

		var body updateNotesBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.SetNotes(r.Context(), restaurantID, issueID, body.Notes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newIssueView(*updated))
	}
}

// ListOrderItems returns the line items of the order behind an issue.
func ListOrderItems(svc issues.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "issue service unavailable"))
			return
		}

		restaurantID := middleware.RestaurantIDFromContext(r.Context())
		issueID := chi.URLParam(r, "issueId")

		items, err := svc.OrderItems(r.Context(), restaurantID, issueID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}
