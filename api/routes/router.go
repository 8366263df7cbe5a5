package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gymdeskhq/gymdesk-backend/api/controllers"
	"github.com/gymdeskhq/gymdesk-backend/api/middleware"
	"github.com/gymdeskhq/gymdesk-backend/pkg/auth/session"
	"github.com/gymdeskhq/gymdesk-backend/pkg/config"
	"github.com/gymdeskhq/gymdesk-backend/pkg/enums"
	"github.com/gymdeskhq/gymdesk-backend/pkg/logger"
	"github.com/gymdeskhq/gymdesk-backend/pkg/metrics"
	pkgredis "github.com/gymdeskhq/gymdesk-backend/pkg/redis"
)

// Deps bundles everything the router mounts.
type Deps struct {
	Cfg     *config.Config
	Logg    *logger.Logger
	Metrics *metrics.HTTPMetrics

	Sessions    session.AccessSessionChecker
	RateLimiter *pkgredis.Client
	Idempotency pkgredis.IdempotencyStore

	Health      *controllers.HealthController
	Auth        *controllers.AuthController
	Clients     *controllers.ClientsController
	Plans       *controllers.PlansController
	Memberships *controllers.MembershipsController
	Payments    *controllers.PaymentsController
	Pathologies *controllers.PathologiesController
	Documents   *controllers.DocumentsController
	Attachments *controllers.AttachmentsController
}

// New assembles the HTTP router with the full middleware stack.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID(deps.Logg))
	r.Use(middleware.Logging(deps.Logg, deps.Metrics))
	r.Use(middleware.Recoverer(deps.Logg))
	r.Use(middleware.CORS(deps.Cfg.App.CORSOrigins))

	r.Get("/health/live", deps.Health.Live)
	r.Get("/health/ready", deps.Health.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	requireStaff := middleware.Auth(deps.Cfg.JWT, deps.Sessions, deps.Logg)
	adminOrManager := middleware.RequireRole(deps.Logg, enums.UserRoleAdmin, enums.UserRoleManager)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(deps.RateLimiter, deps.Cfg.AuthRateLimit, deps.Logg)).
				Post("/login", deps.Auth.Login)
			r.Post("/refresh", deps.Auth.Refresh)
			r.With(requireStaff).Post("/logout", deps.Auth.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireStaff)
			r.Use(middleware.Idempotency(deps.Idempotency, deps.Logg))

			r.Route("/clients", func(r chi.Router) {
				r.Get("/", deps.Clients.List)
				r.Post("/", deps.Clients.Create)
				r.Get("/search", deps.Clients.Search)

				r.Route("/{clientID}", func(r chi.Router) {
					r.Get("/", deps.Clients.Get)
					r.Put("/", deps.Clients.Update)
					r.With(adminOrManager).Delete("/", deps.Clients.Delete)

					r.Get("/memberships", deps.Memberships.ListByClient)
					r.Post("/memberships", deps.Memberships.Register)

					r.Route("/pathologies", func(r chi.Router) {
						r.Get("/", deps.Pathologies.ListByClient)
						r.Post("/", deps.Pathologies.Attach)
						r.Delete("/{pathologyID}", deps.Pathologies.Detach)
					})

					r.Route("/attachments", func(r chi.Router) {
						r.Get("/", deps.Attachments.ListByClient)
						r.Post("/", deps.Attachments.RequestUpload)
					})
				})
			})

			r.Route("/plans", func(r chi.Router) {
				r.Get("/", deps.Plans.List)
				r.With(adminOrManager).Post("/", deps.Plans.Create)

				r.Route("/{planID}", func(r chi.Router) {
					r.Get("/", deps.Plans.Get)
					r.With(adminOrManager).Put("/", deps.Plans.Update)
					r.With(adminOrManager).Delete("/", deps.Plans.Deactivate)
				})
			})

			r.Route("/memberships/{membershipID}", func(r chi.Router) {
				r.Get("/", deps.Memberships.Get)
				r.Post("/renewals", deps.Memberships.Renew)
				r.Get("/renewal-preview", deps.Memberships.PreviewRenewal)
				r.Get("/payments", deps.Payments.ListForMembership)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Get("/", deps.Payments.ListForTarget)
				r.Post("/", deps.Payments.Record)
				r.Get("/{paymentID}", deps.Payments.Get)
			})

			r.Route("/pathologies", func(r chi.Router) {
				r.Get("/", deps.Pathologies.List)
				r.With(adminOrManager).Post("/", deps.Pathologies.Create)

				r.Route("/{pathologyID}", func(r chi.Router) {
					r.Get("/", deps.Pathologies.Get)
					r.With(adminOrManager).Put("/", deps.Pathologies.Update)
					r.With(adminOrManager).Delete("/", deps.Pathologies.Delete)
				})
			})

			r.Route("/documents", func(r chi.Router) {
				r.Get("/", deps.Documents.List)
				r.With(adminOrManager).Post("/", deps.Documents.Create)

				r.Route("/{templateID}", func(r chi.Router) {
					r.Get("/", deps.Documents.Get)
					r.With(adminOrManager).Put("/", deps.Documents.Update)
					r.With(adminOrManager).Delete("/", deps.Documents.Delete)
					r.Post("/render", deps.Documents.Render)
				})
			})

			r.Route("/attachments/{attachmentID}", func(r chi.Router) {
				r.Get("/download", deps.Attachments.DownloadURL)
				r.Delete("/", deps.Attachments.Delete)
			})
		})
	})

	return r
}
