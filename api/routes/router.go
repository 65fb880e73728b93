package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/restaurant-reviews/api/controllers"
	"github.com/angelmondragon/restaurant-reviews/api/middleware"
	"github.com/angelmondragon/restaurant-reviews/internal/access"
	"github.com/angelmondragon/restaurant-reviews/internal/auth"
	"github.com/angelmondragon/restaurant-reviews/internal/restaurants"
	"github.com/angelmondragon/restaurant-reviews/internal/reviews"
	"github.com/angelmondragon/restaurant-reviews/internal/users"
	"github.com/angelmondragon/restaurant-reviews/pkg/config"
	"github.com/angelmondragon/restaurant-reviews/pkg/enums"
	"github.com/angelmondragon/restaurant-reviews/pkg/logger"
	"github.com/angelmondragon/restaurant-reviews/pkg/metrics"
	pkgredis "github.com/angelmondragon/restaurant-reviews/pkg/redis"
)

// RouterParams carries everything the HTTP surface needs. RateLimits and
// Idempotency stay nil when Redis is not configured; MetricsHandler is nil
// when metrics are disabled.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	Guard       *access.Guard
	Auth        auth.Service
	Restaurants restaurants.Service
	Reviews     reviews.Service
	Users       users.Service

	RateLimits     pkgredis.RateLimitStore
	Idempotency    pkgredis.IdempotencyStore
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
	Pingers        map[string]controllers.Pinger
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)
	if p.HTTPMetrics != nil {
		r.Use(middleware.Metrics(p.HTTPMetrics))
	}
	r.Use(
		middleware.Recoverer(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	requireAuth := middleware.Auth(p.Guard, logg)
	requireAdmin := middleware.RequireRole(logg, enums.RoleAdmin)
	idempotent := middleware.Idempotency(p.Idempotency, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.Pingers, logg))
	})

	if p.MetricsHandler != nil {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, p.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/restaurants", func(r chi.Router) {
			r.Get("/", controllers.RestaurantList(p.Restaurants, logg))
			r.Get("/{id}", controllers.RestaurantGet(p.Restaurants, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, requireAdmin)
				r.With(idempotent).Post("/", controllers.RestaurantCreate(p.Restaurants, logg))
				r.Put("/{id}", controllers.RestaurantUpdate(p.Restaurants, logg))
				r.Delete("/{id}", controllers.RestaurantDelete(p.Restaurants, logg))
			})
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", controllers.ReviewList(p.Reviews, logg))
			r.Get("/restaurant/{id}", controllers.ReviewListByRestaurant(p.Reviews, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.With(idempotent).Post("/restaurant/{id}", controllers.ReviewCreate(p.Reviews, logg))
				r.Put("/{id}", controllers.ReviewUpdate(p.Reviews, logg))
				r.Delete("/{id}", controllers.ReviewDelete(p.Reviews, logg))
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(
				middleware.AuthRateLimit(middleware.RegisterPolicy(cfg.AuthRateLimit), p.RateLimits, logg),
				idempotent,
			).Post("/register", controllers.AuthRegister(p.Auth, logg))
			r.With(
				middleware.AuthRateLimit(middleware.LoginPolicy(cfg.AuthRateLimit), p.RateLimits, logg),
			).Post("/login", controllers.AuthLogin(p.Auth, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.With(requireAdmin).Get("/", controllers.UserList(p.Users, logg))
				r.Get("/profile", controllers.UserProfile(p.Users, logg))
				r.Put("/profile", controllers.UserUpdateProfile(p.Users, logg))
				r.Delete("/logout/{id}", controllers.UserDeactivate(p.Users, logg))
				r.Delete("/{id}", controllers.UserDelete(p.Users, logg))
			})
		})
	})

	return r
}
