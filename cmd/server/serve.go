package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nourishtogether/donation-api/internal/metrics"
	"github.com/nourishtogether/donation-api/internal/server"
	"github.com/nourishtogether/donation-api/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.migrate(); err != nil {
		return err
	}

	gin.SetMode(a.cfg.App.GinMode)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	deps := server.Deps{
		Logger:          a.log,
		AuthService:     services.NewAuthService(a.repos.Users, a.tokens, a.imageStore()),
		DonationService: services.NewDonationService(a.repos.FoodDonations, m),
		MoneyService: services.NewMoneyService(a.repos.MoneyDonations, a.gateway(), services.MoneyOptions{
			Currency: a.cfg.Razorpay.Currency,
			Verify:   a.cfg.Razorpay.Verify,
			Metrics:  m,
		}),
		Metrics:            m,
		Gatherer:           reg,
		RateLimitWindow:    a.cfg.RateLimit.Window,
		RateLimitMax:       a.cfg.RateLimit.Max,
		CORSAllowedOrigins: a.cfg.App.CORSAllowedOrigins,
	}
	redis := a.redis(ctx)
	if redis != nil {
		deps.RateLimitStore = redis
	}
	deps.HealthChecks = a.healthChecks(redis)

	srv := &http.Server{
		Addr:              ":" + a.cfg.App.Port,
		Handler:           server.New(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", srv.Addr).Str("env", a.cfg.App.Env).Msg("server.starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info().Msg("server.shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
