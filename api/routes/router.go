package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harborlight-org/harborlight-backend/api/controllers"
	billingcontrollers "github.com/harborlight-org/harborlight-backend/api/controllers/billing"
	webhookcontrollers "github.com/harborlight-org/harborlight-backend/api/controllers/webhooks"
	"github.com/harborlight-org/harborlight-backend/api/middleware"
	"github.com/harborlight-org/harborlight-backend/internal/applications"
	"github.com/harborlight-org/harborlight-backend/internal/content"
	"github.com/harborlight-org/harborlight-backend/internal/members"
	"github.com/harborlight-org/harborlight-backend/internal/plans"
	"github.com/harborlight-org/harborlight-backend/internal/resources"
	stripewebhook "github.com/harborlight-org/harborlight-backend/internal/webhooks/stripe"
	"github.com/harborlight-org/harborlight-backend/pkg/config"
	"github.com/harborlight-org/harborlight-backend/pkg/db"
	"github.com/harborlight-org/harborlight-backend/pkg/logger"
	"github.com/harborlight-org/harborlight-backend/pkg/redis"
	"github.com/harborlight-org/harborlight-backend/pkg/storage/gcs"
	"github.com/harborlight-org/harborlight-backend/pkg/stripe"
)

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    redis.Pinger
	GCS      gcs.Pinger
	Stripe   *stripe.Client
	Webhooks *stripewebhook.Service
	Guard    *stripewebhook.IdempotencyGuard

	Applications *applications.Service
	Billing      billingcontrollers.CheckoutService
	Members      *members.Service
	Plans        *plans.Service
	Content      *content.Service
	Resources    *resources.Service
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, controllers.ReadinessDeps(params.DB, params.Redis, params.GCS)))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(params.Webhooks, params.Stripe, params.Guard, logg))
	})

	r.Route("/api/v1/billing", func(r chi.Router) {
		r.Post("/checkout-session", billingcontrollers.CreateCheckoutSession(params.Billing, logg))
		r.Get("/verify-payment", billingcontrollers.VerifyPayment(params.Billing, logg))
		r.Post("/portal-session", billingcontrollers.CreatePortalSession(params.Billing, logg))
	})

	r.Route("/api/v1/applications", func(r chi.Router) {
		r.Post("/", controllers.CreateApplication(params.Applications, logg))
		r.Get("/", controllers.ListApplications(params.Applications, logg))
		r.Get("/{id}", controllers.GetApplication(params.Applications, logg))
		r.Post("/{id}/approve", controllers.ApproveApplication(params.Applications, logg))
		r.Post("/{id}/reject", controllers.RejectApplication(params.Applications, logg))
	})

	r.Route("/api/v1/members", func(r chi.Router) {
		r.Get("/", controllers.ListMembers(params.Members, logg))
		r.Get("/{id}", controllers.GetMember(params.Members, logg))
		r.Post("/{id}/cancel", controllers.CancelMembership(params.Members, logg))
	})

	r.Route("/api/v1/plans", func(r chi.Router) {
		r.Get("/", controllers.ListPlans(params.Plans, logg, true))
		r.Get("/{id}", controllers.GetPlan(params.Plans, logg))
	})

	r.Route("/api/v1/admin/plans", func(r chi.Router) {
		r.Get("/", controllers.ListPlans(params.Plans, logg, false))
		r.Post("/", controllers.CreatePlan(params.Plans, logg))
		r.Patch("/{id}", controllers.UpdatePlan(params.Plans, logg))
		r.Delete("/{id}", controllers.DeactivatePlan(params.Plans, logg))
	})

	r.Route("/api/v1/content", func(r chi.Router) {
		r.Get("/", controllers.ListContent(params.Content, logg, true))
		r.Get("/{key}", controllers.GetContent(params.Content, logg, false))
	})

	r.Route("/api/v1/admin/content", func(r chi.Router) {
		r.Get("/", controllers.ListContent(params.Content, logg, false))
		r.Get("/{key}", controllers.GetContent(params.Content, logg, true))
		r.Put("/", controllers.UpsertContent(params.Content, logg))
		r.Delete("/{id}", controllers.DeleteContent(params.Content, logg))
	})

	r.Route("/api/v1/resources", func(r chi.Router) {
		r.Get("/", controllers.ListResources(params.Resources, logg, true))
	})

	r.Route("/api/v1/admin/resources", func(r chi.Router) {
		r.Get("/", controllers.ListResources(params.Resources, logg, false))
		r.Post("/", controllers.CreateResourceUpload(params.Resources, logg))
		r.Delete("/{id}", controllers.DeleteResource(params.Resources, logg))
	})

	return r
}
