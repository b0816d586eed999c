// Package httpapi — REST API дашборда: движок правил, площадки и заявки.
package httpapi

import (
	"context"
	_ "embed"
	"log/slog"
	"net/http"
	"time"

	"leasing_hub/internal/domain"
	"leasing_hub/internal/lib/metrics"
	"leasing_hub/internal/services/decision"
	"leasing_hub/internal/services/lease"
	"leasing_hub/internal/services/scheduler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed openapi.json
var openAPIDoc []byte

type StatusReader interface {
	GetDecisionEngineStatus(ctx context.Context) decision.StatusReport
}

type Runner interface {
	RunOnce(ctx context.Context) (scheduler.RunResult, error)
}

type RulesReloader interface {
	Reload() error
}

type DecisionLogReader interface {
	ListRecent(ctx context.Context, limit int) ([]domain.DecisionLogEntry, error)
}

type LogExporter interface {
	DecisionLogXLSX(entries []domain.DecisionLogEntry, generatedAt time.Time) ([]byte, error)
}

type MetricsSource interface {
	GetStats() metrics.Stats
}

type SiteService interface {
	ListSites(ctx context.Context, filter domain.SiteFilter) ([]domain.Site, error)
	GetSite(ctx context.Context, id uuid.UUID) (domain.Site, error)
	Stats(ctx context.Context) (domain.SiteStats, error)
	Reprice(ctx context.Context, id uuid.UUID) (domain.Site, error)
}

type LeaseService interface {
	Submit(ctx context.Context, in lease.SubmitRequest) (lease.Submission, error)
	Quote(ctx context.Context, siteID uuid.UUID, durationMonths int) (lease.Quote, error)
	ListRequests(ctx context.Context, filter domain.LeaseRequestFilter) ([]domain.LeaseRequest, error)
	Stats(ctx context.Context) (domain.LeaseRequestStats, error)
}

// Deps — зависимости обработчиков.
type Deps struct {
	Status      StatusReader
	Runner      Runner
	Rules       RulesReloader
	DecisionLog DecisionLogReader
	Exporter    LogExporter
	Metrics     MetricsSource
	Sites       SiteService
	Leases      LeaseService
}

type Handler struct {
	log  *slog.Logger
	deps Deps
	now  func() time.Time
}

func NewHandler(log *slog.Logger, deps Deps) *Handler {
	return &Handler{
		log:  log,
		deps: deps,
		now:  time.Now,
	}
}

// Routes собирает роутер с CORS для указанных источников.
func (h *Handler) Routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(openAPIDoc)
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/decision-engine", func(r chi.Router) {
			r.Post("/run", h.runDecisionEngine)
			r.Get("/status", h.decisionEngineStatus)
			r.Post("/rules/reload", h.reloadRules)
			r.Get("/log/export", h.exportDecisionLog)
		})
		r.Get("/metrics", h.engineMetrics)

		r.Route("/sites", func(r chi.Router) {
			r.Get("/", h.listSites)
			r.Get("/stats", h.siteStats)
			r.Get("/{id}", h.getSite)
			r.Post("/{id}/reprice", h.repriceSite)
			r.Get("/{id}/quote", h.quoteSite)
		})

		r.Route("/lease-requests", func(r chi.Router) {
			r.Get("/", h.listLeaseRequests)
			r.Post("/", h.submitLeaseRequest)
			r.Get("/stats", h.leaseRequestStats)
		})
	})

	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}).Handler(r)
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		h.log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
