// Package app wires configuration, storage, messaging and services for the
// api, worker and console binaries.
package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/practice-admin/internal/config"
	"github.com/jwalitptl/practice-admin/internal/email"
	"github.com/jwalitptl/practice-admin/internal/masterdata"
	"github.com/jwalitptl/practice-admin/internal/repository"
	"github.com/jwalitptl/practice-admin/internal/repository/postgres"
	authservice "github.com/jwalitptl/practice-admin/internal/service/auth"
	mdservice "github.com/jwalitptl/practice-admin/internal/service/masterdata"
	"github.com/jwalitptl/practice-admin/pkg/auth"
	"github.com/jwalitptl/practice-admin/pkg/logger"
	"github.com/jwalitptl/practice-admin/pkg/messaging"
	"github.com/jwalitptl/practice-admin/pkg/messaging/memory"
	"github.com/jwalitptl/practice-admin/pkg/messaging/redis"
	"github.com/jwalitptl/practice-admin/pkg/metrics"
	"github.com/jwalitptl/practice-admin/pkg/security"
	"github.com/jwalitptl/practice-admin/pkg/worker"
)

const (
	metricsNamespace = "practice_admin"
	bcryptCost       = 12
	memoryBuffer     = 64
)

type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       *sqlx.DB
	Broker   messaging.Broker
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	MasterDataRepos *repository.Registry
	Patients        repository.PatientRepository
	Visits          repository.VisitRepository
	Users           repository.UserRepository
	Outbox          repository.OutboxRepository

	Configs    *masterdata.Registry
	MasterData mdservice.Service
	Auth       *authservice.Service
	Mailer     email.Service
}

// NewLogger builds the application logger and installs it as the global
// zerolog logger.
func NewLogger(cfg config.LogConfig, out io.Writer) *logger.Logger {
	l := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Level),
		TimeFormat: time.RFC3339,
		Output:     out,
		Pretty:     cfg.Pretty,
	})
	log.Logger = *l.Zerolog()
	return l
}

// NewBroker returns a Redis broker when a URL is configured and an
// in-process broker otherwise.
func NewBroker(cfg config.RedisConfig, l *logger.Logger) (messaging.Broker, error) {
	if cfg.URL == "" {
		l.Info("Using in-process change broker")
		return memory.NewBroker(memoryBuffer), nil
	}
	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.URL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}, l.Zerolog())
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis broker: %w", err)
	}
	return broker, nil
}

func New(cfg *config.Config, l *logger.Logger) (*App, error) {
	db, err := postgres.NewDB(cfg.Backend.URL, postgres.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}

	broker, err := NewBroker(cfg.Redis, l)
	if err != nil {
		db.Close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(reg, metricsNamespace)

	base := postgres.NewBaseRepository(db)
	a := &App{
		Config:          cfg,
		Logger:          l,
		DB:              db,
		Broker:          broker,
		Registry:        reg,
		Metrics:         m,
		MasterDataRepos: postgres.NewMasterDataRegistry(base),
		Patients:        postgres.NewPatientRepository(base),
		Visits:          postgres.NewVisitRepository(base),
		Users:           postgres.NewUserRepository(base),
		Outbox:          postgres.NewOutboxRepository(base),
		Mailer:          email.NewService(cfg.SMTP),
	}
	a.Configs = masterdata.NewRegistry(a.MasterDataRepos)
	a.MasterData = mdservice.NewService(a.MasterDataRepos, a.Configs, m)
	a.Auth = authservice.NewService(
		a.Users,
		auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer),
		security.NewBcryptHasher(bcryptCost),
		cfg.JWT.TTL,
	)
	return a, nil
}

// RunOutbox starts the outbox processor and the cleanup worker. The
// returned func blocks until both have stopped after ctx is cancelled.
func (a *App) RunOutbox(ctx context.Context) (wait func()) {
	oc := a.Config.Outbox
	processor := worker.NewOutboxProcessor(a.Outbox, a.Broker, worker.OutboxProcessorConfig{
		BatchSize:     oc.BatchSize,
		PollInterval:  oc.PollInterval,
		RetryAttempts: oc.RetryAttempts,
		RetryDelay:    oc.RetryDelay,
		MaxAttempts:   oc.MaxAttempts,
		ClaimTimeout:  oc.ClaimTimeout,
	}, a.Logger, a.Metrics)
	cleanup := worker.NewOutboxCleanupWorker(a.Outbox, oc.Retention, oc.CleanupInterval, a.Logger, a.Metrics)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		cleanup.Start(ctx)
	}()
	return wg.Wait
}

func (a *App) Close() error {
	var firstErr error
	if err := a.Broker.Close(); err != nil {
		firstErr = err
	}
	if err := a.DB.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
