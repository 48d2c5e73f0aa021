// Package server assembles the gin engine: ambient middleware, the /api
// routes and the operational endpoints.
package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nourishtogether/donation-api/internal/handlers"
	"github.com/nourishtogether/donation-api/internal/metrics"
	"github.com/nourishtogether/donation-api/internal/middleware"
	"github.com/nourishtogether/donation-api/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	apierrors "github.com/nourishtogether/donation-api/internal/errors"
)

// RateLimitStore backs the auth rate limiter.
type RateLimitStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type Deps struct {
	Logger zerolog.Logger

	AuthService     *services.AuthService
	DonationService *services.DonationService
	MoneyService    *services.MoneyService

	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	// RateLimitStore may be nil, which disables auth throttling.
	RateLimitStore  RateLimitStore
	RateLimitWindow time.Duration
	RateLimitMax    int

	CORSAllowedOrigins []string
	HealthChecks       map[string]handlers.Pinger
}

// New builds the engine with every route mounted.
func New(d Deps) *gin.Engine {
	apierrors.RegisterJSONTagNames()

	r := gin.New()
	r.Use(
		middleware.RequestLogger(d.Logger),
		gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
			zerolog.Ctx(c.Request.Context()).Error().Interface("panic", recovered).Msg("request.panic")
			apierrors.InternalError(c, "")
		}),
		middleware.CORS(d.CORSAllowedOrigins),
		middleware.Metrics(d.Metrics),
	)
	r.NoRoute(func(c *gin.Context) {
		apierrors.NotFound(c, "route not found")
	})

	authHandler := handlers.NewAuthHandler(d.AuthService)
	foodHandler := handlers.NewFoodDonationHandler(d.DonationService)
	moneyHandler := handlers.NewMoneyDonationHandler(d.MoneyService)
	healthHandler := handlers.NewHealthHandler(d.HealthChecks)

	r.GET("/health", healthHandler.Health)
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	requireAuth := middleware.RequireAuth(d.AuthService)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", rateLimit("register", d), authHandler.Register)
			auth.POST("/login", rateLimit("login", d), authHandler.Login)

			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
			auth.PUT("/profile", requireAuth, authHandler.UpdateProfile)
			auth.POST("/profile/image", requireAuth, authHandler.UploadProfileImage)
			auth.GET("/users", requireAuth, authHandler.ListUsers)
			auth.DELETE("/users/:id", requireAuth, authHandler.DeleteUser)
		}

		donations := api.Group("/donations")
		donations.Use(requireAuth)
		{
			donations.POST("/food", foodHandler.CreateFoodDonation)
			donations.GET("/food", foodHandler.ListFoodDonations)
			donations.PUT("/food/:id/accept", foodHandler.AcceptFoodDonation)
			donations.PUT("/food/:id/complete", foodHandler.CompleteFoodDonation)

			donations.POST("/money/order", moneyHandler.CreateOrder)
			donations.POST("/money", moneyHandler.RecordDonation)
			donations.GET("/money", moneyHandler.ListDonations)
		}
	}

	return r
}

func rateLimit(name string, d Deps) gin.HandlerFunc {
	return middleware.RateLimit(middleware.NewRateLimitPolicy(name, d.RateLimitWindow, d.RateLimitMax), d.RateLimitStore)
}
