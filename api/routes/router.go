package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/spa-backend/api/controllers"
	webhookcontrollers "github.com/angelmondragon/spa-backend/api/controllers/webhooks"
	"github.com/angelmondragon/spa-backend/api/middleware"
	"github.com/angelmondragon/spa-backend/internal/announcements"
	"github.com/angelmondragon/spa-backend/internal/booking"
	"github.com/angelmondragon/spa-backend/internal/cart"
	"github.com/angelmondragon/spa-backend/internal/catalog"
	"github.com/angelmondragon/spa-backend/internal/checkins"
	"github.com/angelmondragon/spa-backend/internal/hours"
	"github.com/angelmondragon/spa-backend/internal/terminal"
	"github.com/angelmondragon/spa-backend/internal/webhooks"
	"github.com/angelmondragon/spa-backend/pkg/config"
	"github.com/angelmondragon/spa-backend/pkg/db"
	"github.com/angelmondragon/spa-backend/pkg/enums"
	"github.com/angelmondragon/spa-backend/pkg/logger"
	"github.com/angelmondragon/spa-backend/pkg/metrics"
	"github.com/angelmondragon/spa-backend/pkg/redis"
)

// Dependencies are the wired services the router exposes. A nil service
// answers its routes with INTERNAL_ERROR; a nil webhook service leaves its
// route unmounted.
type Dependencies struct {
	DB             db.Pinger
	Redis          *redis.Client
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler

	Catalog       catalog.Catalog
	CatalogAdmin  catalog.AdminService
	Cart          cart.Service
	Booking       booking.Service
	Hours         hours.Service
	Terminal      terminal.Service
	Announcements announcements.Service
	CheckIns      checkins.Service

	SquareWebhook      webhookcontrollers.SquareWebhookService
	SquareWebhookGuard *webhooks.IdempotencyGuard
	StripeWebhook      webhookcontrollers.StripeWebhookService
	StripeWebhookGuard *webhooks.IdempotencyGuard
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.Metrics),
		middleware.CORS(cfg.App.AllowedOrigins),
	)

	// Load has already validated the timezone.
	loc, _ := cfg.Business.Location()

	bookingPolicy := middleware.NewRateLimitPolicy(
		"booking",
		cfg.RateLimit.BookingWindow,
		cfg.RateLimit.BookingIPLimit,
		cfg.RateLimit.BookingEmailLimit,
	)

	limiter := rateLimitStore(deps.Redis)
	replays := idempotencyStore(deps.Redis)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readinessChecks(deps), logg))
	})
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		if deps.SquareWebhook != nil && deps.SquareWebhookGuard != nil {
			r.Post("/square", webhookcontrollers.SquareWebhook(deps.SquareWebhook, cfg.Square, deps.SquareWebhookGuard, logg))
		}
		if deps.StripeWebhook != nil && deps.StripeWebhookGuard != nil {
			r.Post("/stripe", webhookcontrollers.StripeWebhook(deps.StripeWebhook, cfg.Stripe.WebhookSecret, deps.StripeWebhookGuard, logg))
		}
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.ClientIdentity(cfg.App.IsProd(), logg))

			r.Get("/catalog", controllers.CatalogList(deps.Catalog, logg))
			r.Get("/catalog/{serviceId}", controllers.CatalogGet(deps.Catalog, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(deps.Cart, logg))
				r.Delete("/", controllers.CartClear(deps.Cart, logg))
				r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
				r.Delete("/items/{itemId}", controllers.CartRemoveItem(deps.Cart, logg))
			})

			r.Route("/booking", func(r chi.Router) {
				r.Get("/", controllers.BookingState(deps.Booking, logg))
				r.Post("/next", controllers.BookingNext(deps.Booking, logg))
				r.Get("/slots", controllers.BookingSlots(deps.Booking, logg))
				r.Post("/slot", controllers.BookingSelectSlot(deps.Booking, logg))
				r.With(
					middleware.RateLimit(bookingPolicy, limiter, logg),
					middleware.Idempotency(replays, logg),
				).Post("/confirm", controllers.BookingConfirm(deps.Booking, logg))
			})

			r.Get("/announcements", controllers.AnnouncementsActive(deps.Announcements, logg))
			r.Post("/checkins", controllers.CheckInCreate(deps.CheckIns, logg))
		})

		r.Route("/terminal", func(r chi.Router) {
			r.Use(middleware.StaffAuth(cfg.Admin, logg))
			r.Use(middleware.RequireRole(logg, enums.StaffRoleAdmin, enums.StaffRoleStaff))

			r.Get("/presets", controllers.TerminalPresets(deps.Terminal, logg))
			r.Post("/quote", controllers.TerminalQuote(deps.Terminal, logg))
			r.With(middleware.Idempotency(replays, logg)).
				Post("/payment-intents", controllers.TerminalCreateIntent(deps.Terminal, logg))
			r.Get("/payment-intents/{intentId}", controllers.TerminalIntentStatus(deps.Terminal, logg))
			r.With(middleware.Idempotency(replays, logg)).
				Post("/payment-intents/{intentId}/cancel", controllers.TerminalCancelIntent(deps.Terminal, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.StaffAuth(cfg.Admin, logg))
		r.Use(middleware.RequireRole(logg, enums.StaffRoleAdmin))

		r.Route("/services", func(r chi.Router) {
			r.Get("/", controllers.AdminServicesList(deps.CatalogAdmin, logg))
			r.Post("/", controllers.AdminServicesCreate(deps.CatalogAdmin, logg))
			r.Put("/{serviceId}", controllers.AdminServicesUpdate(deps.CatalogAdmin, logg))
			r.Delete("/{serviceId}", controllers.AdminServicesDelete(deps.CatalogAdmin, logg))
		})

		r.Route("/hours", func(r chi.Router) {
			r.Get("/", controllers.AdminHoursList(deps.Hours, logg))
			r.Put("/{weekday}", controllers.AdminHoursUpsert(deps.Hours, logg))
		})

		r.Route("/announcements", func(r chi.Router) {
			r.Get("/", controllers.AdminAnnouncementsList(deps.Announcements, logg))
			r.Post("/", controllers.AdminAnnouncementsCreate(deps.Announcements, logg))
			r.Put("/{announcementId}", controllers.AdminAnnouncementsUpdate(deps.Announcements, logg))
			r.Delete("/{announcementId}", controllers.AdminAnnouncementsDelete(deps.Announcements, logg))
		})

		r.Route("/checkins", func(r chi.Router) {
			r.Get("/", controllers.AdminCheckInsList(deps.CheckIns, loc, logg))
			r.Get("/summary", controllers.AdminCheckInsSummary(deps.CheckIns, loc, logg))
		})
	})

	return r
}

func readinessChecks(deps Dependencies) map[string]controllers.Pinger {
	checks := map[string]controllers.Pinger{}
	if deps.DB != nil {
		checks["db"] = deps.DB
	}
	if deps.Redis != nil {
		checks["redis"] = deps.Redis
	}
	return checks
}

// Typed nils would defeat the middleware's nil checks.
func rateLimitStore(client *redis.Client) redis.RateLimiter {
	if client == nil {
		return nil
	}
	return client
}

func idempotencyStore(client *redis.Client) redis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}
