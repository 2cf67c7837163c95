package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gastrohub/console-backend/api/controllers"
	"github.com/gastrohub/console-backend/api/middleware"
	"github.com/gastrohub/console-backend/internal/audit"
	"github.com/gastrohub/console-backend/internal/issues"
	"github.com/gastrohub/console-backend/internal/refunds"
	"github.com/gastrohub/console-backend/pkg/config"
	"github.com/gastrohub/console-backend/pkg/logger"
	pkgredis "github.com/gastrohub/console-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *pkgredis.Client,
	platformP controllers.Pinger,
	issueService issues.Service,
	auditService audit.Service,
	refundSubmitter refunds.Submitter,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, platformP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/issues", func(r chi.Router) {
		r.Use(middleware.RestaurantContext(logg))
		r.Use(middleware.Idempotency(redisClient, cfg.Refund.IdempotencyTTL, logg))

		r.Get("/", controllers.ListIssues(issueService, logg))
		r.Get("/badges", controllers.IssueBadges(issueService, logg))
		r.Get("/refunds/pending", controllers.ListPendingRefunds(auditService, logg))

		r.Route("/{issueId}", func(r chi.Router) {
			r.Patch("/status", controllers.UpdateIssueStatus(issueService, logg))
			r.Patch("/notes", controllers.UpdateIssueNotes(issueService, logg))
			r.Get("/order-items", controllers.ListOrderItems(issueService, logg))
			r.Get("/refunds", controllers.ListRefundHistory(issueService, auditService, logg))
			r.Post("/refund/preview", controllers.PreviewRefund(issueService, logg))
			r.Post("/refund", controllers.SubmitRefund(issueService, refundSubmitter, logg))
		})
	})

	return r
}
