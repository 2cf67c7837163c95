package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gastrohub/console-backend/api/responses"
	pkgerrors "github.com/gastrohub/console-backend/pkg/errors"
	"github.com/gastrohub/console-backend/pkg/logger"
)

type contextKey string

const ctxRestaurantID contextKey = "restaurant_id"

const restaurantIDHeader = "X-Restaurant-Id"

func RestaurantIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRestaurantID).(string); ok {
		return v
	}
	return ""
}

// WithRestaurantID injects the restaurant identifier for downstream handlers.
func WithRestaurantID(ctx context.Context, restaurantID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRestaurantID, restaurantID)
}

// RestaurantContext requires the restaurant header on every console route and
// makes the identifier available downstream.
func RestaurantContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			restaurantID := strings.TrimSpace(r.Header.Get(restaurantIDHeader))
			if restaurantID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "restaurant context missing"))
				return
			}

			ctx := WithRestaurantID(r.Context(), restaurantID)
			if logg != nil {
				ctx = logg.WithRestaurantID(ctx, restaurantID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
