package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/dealroom-backend/api/controllers"
	"github.com/angelmondragon/dealroom-backend/api/middleware"
	"github.com/angelmondragon/dealroom-backend/internal/entitlements"
	"github.com/angelmondragon/dealroom-backend/internal/gate"
	"github.com/angelmondragon/dealroom-backend/internal/ndas"
	"github.com/angelmondragon/dealroom-backend/internal/orders"
	"github.com/angelmondragon/dealroom-backend/internal/promos"
	"github.com/angelmondragon/dealroom-backend/internal/verifications"
	"github.com/angelmondragon/dealroom-backend/pkg/config"
	"github.com/angelmondragon/dealroom-backend/pkg/db"
	"github.com/angelmondragon/dealroom-backend/pkg/logger"
	"github.com/angelmondragon/dealroom-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gateService gate.Service,
	ordersService orders.Service,
	promosService promos.Service,
	entitlementsService entitlements.Service,
	ndasService ndas.Service,
	verificationsService verifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		// Listings are browsable anonymously; the gate decides how much each
		// viewer gets back.
		r.With(middleware.OptionalAuth(cfg.JWT, logg)).
			Get("/listings/{listingId}", controllers.GetListing(gateService, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Post("/v1/orders", controllers.CreateOrder(ordersService, logg))
		r.Get("/v1/orders/{orderId}", controllers.GetOrder(ordersService, logg))
		r.Post("/v1/orders/{orderId}/cancel", controllers.CancelOrder(ordersService, logg))

		r.Post("/v1/promos/apply", controllers.ApplyPromo(promosService, logg))

		r.Get("/v1/listings/{listingId}/nda", controllers.NdaStatus(ndasService, logg))
		r.Post("/v1/listings/{listingId}/nda", controllers.SignNda(ndasService, logg))

		r.Get("/v1/memberships/me", controllers.MyMembership(entitlementsService, logg))
		r.Post("/v1/memberships/me/cancel", controllers.CancelMembership(entitlementsService, logg))

		r.Get("/v1/verifications/me", controllers.MyVerification(verificationsService, logg))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.AdminPing())

		r.Get("/v1/orders", controllers.AdminListOrders(ordersService, logg))
		r.Get("/v1/orders/{orderId}", controllers.AdminOrderDetail(ordersService, logg))
		r.Post("/v1/orders/{orderId}/verify-payment", controllers.AdminVerifyPayment(ordersService, logg))
		r.Post("/v1/orders/{orderId}/status", controllers.AdminUpdateOrderStatus(ordersService, logg))

		r.Get("/v1/promos", controllers.AdminListPromos(promosService, logg))
		r.Post("/v1/promos", controllers.AdminCreatePromo(promosService, logg))
		r.Patch("/v1/promos/{promoId}", controllers.AdminUpdatePromo(promosService, logg))

		r.Put("/v1/verifications/{userId}", controllers.AdminSetVerification(verificationsService, logg))
	})

	return r
}
