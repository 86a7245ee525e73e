package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/practice-admin/internal/app"
	"github.com/jwalitptl/practice-admin/internal/config"
	authHandler "github.com/jwalitptl/practice-admin/internal/handler/auth"
	dashboardHandler "github.com/jwalitptl/practice-admin/internal/handler/dashboard"
	"github.com/jwalitptl/practice-admin/internal/handler/health"
	masterdataHandler "github.com/jwalitptl/practice-admin/internal/handler/masterdata"
	patientHandler "github.com/jwalitptl/practice-admin/internal/handler/patient"
	visitHandler "github.com/jwalitptl/practice-admin/internal/handler/visit"
	"github.com/jwalitptl/practice-admin/internal/middleware"
	"github.com/jwalitptl/practice-admin/internal/router"
	dashboardService "github.com/jwalitptl/practice-admin/internal/service/dashboard"
	patientService "github.com/jwalitptl/practice-admin/internal/service/patient"
	visitService "github.com/jwalitptl/practice-admin/internal/service/visit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := app.NewLogger(cfg.Log, os.Stdout)
	gin.SetMode(gin.ReleaseMode)

	a, err := app.New(cfg, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer a.Close()

	// Initialize services
	patientSvc := patientService.NewService(a.Patients)
	visitSvc := visitService.NewService(a.Visits)
	dashboardSvc := dashboardService.NewService(a.Patients, a.Visits, a.MasterData)

	// Setup router
	r := router.NewRouter(
		middleware.NewAuthMiddleware(a.Auth),
		router.Handlers{
			Health: health.NewHandler(a.DB, a.Registry),
			Public: []router.Handler{
				authHandler.NewHandler(a.Auth),
			},
			Protected: []router.Handler{
				masterdataHandler.NewHandler(a.MasterData, a.Broker, a.Mailer),
				patientHandler.NewHandler(patientSvc),
				visitHandler.NewHandler(visitSvc),
				dashboardHandler.NewHandler(dashboardSvc),
			},
		},
		a.Metrics,
		router.RouterConfig{
			APIKey:      cfg.Backend.APIKey,
			RateLimit:   rate.Limit(cfg.Server.RateLimit),
			RateBurst:   cfg.Server.RateBurst,
			MaxBodySize: cfg.Server.MaxBodyBytes,
			CORSConfig: middleware.CORSConfig{
				AllowOrigins: cfg.Server.CORSOrigins,
				MaxAge:       middleware.DefaultCORSConfig().MaxAge,
			},
		},
	)
	r.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Outbox processor publishes change events for SSE subscribers
	waitOutbox := a.RunOutbox(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	cancel()
	waitOutbox()
	log.Info().Msg("server exited")
}
