package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	grpcapp "leasing_hub/internal/app/grpc"
	httpapp "leasing_hub/internal/app/http"
	"leasing_hub/internal/config"
	"leasing_hub/internal/httpapi"
	"leasing_hub/internal/lib/archive"
	"leasing_hub/internal/lib/export"
	"leasing_hub/internal/lib/logger/sl"
	"leasing_hub/internal/lib/metrics"
	"leasing_hub/internal/lib/rules"
	"leasing_hub/internal/lib/runlock"
	"leasing_hub/internal/repository/client_repository"
	"leasing_hub/internal/repository/contract_repository"
	"leasing_hub/internal/repository/decision_log_repository"
	"leasing_hub/internal/repository/insight_repository"
	"leasing_hub/internal/repository/lease_request_repository"
	"leasing_hub/internal/repository/memory_repository"
	"leasing_hub/internal/repository/notification_repository"
	"leasing_hub/internal/repository/payment_repository"
	"leasing_hub/internal/repository/site_repository"
	"leasing_hub/internal/services/decision"
	"leasing_hub/internal/services/lease"
	"leasing_hub/internal/services/scheduler"
	"leasing_hub/internal/services/site"

	"github.com/jackc/pgx/v5/pgxpool"
)

type App struct {
	GRPCServer *grpcapp.App
	HTTPServer *httpapp.App
	Engine     *decision.Engine
	Runner     *scheduler.Runner
	Rules      *rules.Provider
	Metrics    *metrics.EngineMetrics

	closers []func()
}

// storage — набор репозиториев выбранного драйвера.
type storage struct {
	repos         decision.Repositories
	sites         site.SiteRepository
	clients       lease.ClientRepository
	leaseRequests lease.LeaseRequestRepository
	close         func()
}

func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	st, err := newStorage(ctx, log, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a := &App{closers: []func(){st.close}}

	provider, err := rules.NewProvider(log, cfg.Rules.Path)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	engineMetrics := metrics.NewEngineMetrics(log)
	engine := decision.New(log, st.repos, provider, engineMetrics,
		decision.WithManagerEmail(cfg.Rules.ManagerEmail),
		decision.WithBrandName(cfg.Rules.BrandName),
		decision.WithStatusLogLimit(cfg.Rules.StatusLogLimit),
	)

	archiveClient, err := archive.NewClient(ctx, cfg.Minio, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	locker, err := runlock.NewLocker(ctx, cfg.Redis, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.closers = append(a.closers, func() {
		if err := locker.Close(); err != nil {
			log.Warn("failed to close run lock", sl.Err(err))
		}
	})

	runner := scheduler.NewRunner(log, engine, archiveClient, locker, cfg.Redis.LockTTL)

	siteService := site.New(log, st.sites)
	leaseService := lease.New(log, st.sites, st.clients, st.leaseRequests, st.repos.Notifications, cfg.Rules.ManagerEmail)

	handler := httpapi.NewHandler(log, httpapi.Deps{
		Status:      engine,
		Runner:      runner,
		Rules:       provider,
		DecisionLog: st.repos.DecisionLog,
		Exporter:    export.NewGenerator(),
		Metrics:     engineMetrics,
		Sites:       siteService,
		Leases:      leaseService,
	})

	grpcApp := grpcapp.New(log, cfg.GRPC.Port)
	runner.OnReport(func(report decision.ExecutionReport) {
		grpcApp.SetServing(report.Success)
	})

	log.Info("decision engine initialized",
		slog.String("storage", cfg.StorageDriver),
		slog.Bool("archive_enabled", archiveClient.IsEnabled()),
		slog.Bool("redis_lock_enabled", cfg.Redis.Enabled),
		slog.Bool("scheduler_enabled", cfg.Scheduler.Enabled),
	)

	a.GRPCServer = grpcApp
	a.HTTPServer = httpapp.New(log, cfg.HTTP, handler.Routes(cfg.HTTP.AllowedOrigins))
	a.Engine = engine
	a.Runner = runner
	a.Rules = provider
	a.Metrics = engineMetrics
	return a, nil
}

// Close освобождает соединения в обратном порядке открытия.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func newStorage(ctx context.Context, log *slog.Logger, cfg *config.Config) (*storage, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		store := memory_repository.New()
		memory_repository.SeedDemo(store, time.Now())
		log.Info("using in-memory storage with demo data")

		return &storage{
			repos: decision.Repositories{
				Sites:         store.Sites(),
				Clients:       store.Clients(),
				LeaseRequests: store.LeaseRequests(),
				Payments:      store.Payments(),
				Contracts:     store.Contracts(),
				Notifications: store.Notifications(),
				DecisionLog:   store.DecisionLog(),
				Insights:      store.Insights(),
			},
			sites:         store.Sites(),
			clients:       store.Clients(),
			leaseRequests: store.LeaseRequests(),
			close:         func() {},
		}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("connected to postgres")

	sites := site_repository.NewSiteRepository(pool, log)
	clients := client_repository.NewClientRepository(pool, log)
	requests := lease_request_repository.NewLeaseRequestRepository(pool, log)

	return &storage{
		repos: decision.Repositories{
			Sites:         sites,
			Clients:       clients,
			LeaseRequests: requests,
			Payments:      payment_repository.NewPaymentRepository(pool, log),
			Contracts:     contract_repository.NewContractRepository(pool, log),
			Notifications: notification_repository.NewNotificationRepository(pool, log),
			DecisionLog:   decision_log_repository.NewDecisionLogRepository(pool, log),
			Insights:      insight_repository.NewInsightRepository(pool, log),
		},
		sites:         sites,
		clients:       clients,
		leaseRequests: requests,
		close:         pool.Close,
	}, nil
}
