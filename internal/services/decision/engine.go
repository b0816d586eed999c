// Package decision — движок правил: по каждой включенной категории выбирает сущности,
// проверяет условия, применяет изменения и пишет уведомления и журнал решений.
package decision

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"leasing_hub/internal/domain"
	"leasing_hub/internal/lib/logger/sl"
	"leasing_hub/internal/lib/metrics"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// SiteRepository — операции над площадками, нужные движку.
type SiteRepository interface {
	ListSites(ctx context.Context, filter domain.SiteFilter) ([]domain.Site, error)
	UpdateSite(ctx context.Context, id uuid.UUID, update domain.SiteUpdate) error
}

type ClientRepository interface {
	ListNewClients(ctx context.Context, createdAfter time.Time) ([]domain.Client, error)
}

type LeaseRequestRepository interface {
	ListForReview(ctx context.Context, statuses []domain.LeaseRequestStatus) ([]domain.LeaseRequestForReview, error)
	UpdateLeaseRequest(ctx context.Context, id uuid.UUID, update domain.LeaseRequestUpdate) error
}

type PaymentRepository interface {
	ListOverdue(ctx context.Context, asOf time.Time) ([]domain.PaymentWithClient, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, update domain.PaymentUpdate) error
}

type ContractRepository interface {
	ListExpiring(ctx context.Context, status domain.ContractStatus, endBefore time.Time) ([]domain.ContractWithClient, error)
	ListPendingSignature(ctx context.Context, createdBefore time.Time) ([]domain.LeaseContract, error)
	UpdateContract(ctx context.Context, id uuid.UUID, update domain.ContractUpdate) error
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, n domain.Notification) (uuid.UUID, error)
}

type DecisionLogRepository interface {
	CreateEntry(ctx context.Context, e domain.DecisionLogEntry) (uuid.UUID, error)
	ListRecent(ctx context.Context, limit int) ([]domain.DecisionLogEntry, error)
}

type InsightRepository interface {
	GetLatest(ctx context.Context) (domain.OperationalInsight, error)
}

// Repositories — хранилища по семействам сущностей.
type Repositories struct {
	Sites         SiteRepository
	Clients       ClientRepository
	LeaseRequests LeaseRequestRepository
	Payments      PaymentRepository
	Contracts     ContractRepository
	Notifications NotificationRepository
	DecisionLog   DecisionLogRepository
	Insights      InsightRepository
}

// RulesProvider отдает текущий снимок правил.
type RulesProvider interface {
	Rules() (domain.DecisionRuleConfig, error)
}

const (
	defaultManagerEmail = "manager@boulevardworld.sa"
	defaultBrandName    = "Boulevard World"
	maxStatusLogLimit   = 100
)

type processorFunc func(ctx context.Context, cat domain.RuleCategory) ([]ActionResult, error)

// Engine — движок правил. Безопасен для последовательных запусков; параллельные
// запуски должны сериализоваться снаружи (см. планировщик).
type Engine struct {
	log     *slog.Logger
	repos   Repositories
	rules   RulesProvider
	metrics *metrics.EngineMetrics
	now     func() time.Time

	managerEmail   string
	brandName      string
	statusLogLimit int

	processors map[string]processorFunc
}

type Option func(*Engine)

// WithClock задаёт источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithManagerEmail задаёт адрес менеджера для служебных уведомлений.
func WithManagerEmail(email string) Option {
	return func(e *Engine) {
		if email != "" {
			e.managerEmail = email
		}
	}
}

func WithBrandName(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.brandName = name
		}
	}
}

// WithStatusLogLimit — сколько записей журнала учитывать в отчете о статусе (1..100).
func WithStatusLogLimit(limit int) Option {
	return func(e *Engine) {
		if limit > 0 {
			e.statusLogLimit = min(limit, maxStatusLogLimit)
		}
	}
}

func New(log *slog.Logger, repos Repositories, rules RulesProvider, m *metrics.EngineMetrics, opts ...Option) *Engine {
	e := &Engine{
		log:            log,
		repos:          repos,
		rules:          rules,
		metrics:        m,
		now:            time.Now,
		managerEmail:   defaultManagerEmail,
		brandName:      defaultBrandName,
		statusLogLimit: maxStatusLogLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = metrics.NewEngineMetrics(log)
	}

	e.processors = map[string]processorFunc{
		domain.CategoryLeaseRequestPriority:  e.processLeaseRequestPriority,
		domain.CategoryPaymentMonitoring:     e.processPaymentMonitoring,
		domain.CategoryContractManagement:    e.processContractManagement,
		domain.CategorySiteOptimization:      e.processSiteOptimization,
		domain.CategoryClientManagement:      e.processClientManagement,
		domain.CategoryOperationalEfficiency: e.processOperationalEfficiency,
	}
	return e
}

// Metrics возвращает метрики движка.
func (e *Engine) Metrics() *metrics.EngineMetrics {
	return e.metrics
}

// ExecuteDecisionRules выполняет все включенные категории правил по порядку.
// Ошибка или паника одной категории попадает в отчет и не прерывает запуск.
// Вызывающий всегда получает отчет, даже если сам запуск не удался.
func (e *Engine) ExecuteDecisionRules(ctx context.Context) (report ExecutionReport) {
	const op = "decision.Engine.ExecuteDecisionRules"

	log := e.log.With(slog.String("op", op))
	started := time.Now()
	startedAt := e.now()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			log.Error("decision engine execution failed", sl.Err(err))
			report = ExecutionReport{
				Success:         false,
				Error:           err.Error(),
				StartedAt:       startedAt,
				ExecutionTimeMs: time.Since(started).Milliseconds(),
			}
		}
		e.metrics.RecordRun(startedAt, report.Success)
	}()

	cfg, err := e.rules.Rules()
	if err != nil {
		log.Error("decision rules unavailable", sl.Err(err))
		return ExecutionReport{
			Success:         false,
			Error:           err.Error(),
			StartedAt:       startedAt,
			ExecutionTimeMs: time.Since(started).Milliseconds(),
		}
	}

	enabled := cfg.EnabledCategories()
	log.Info("decision engine run started", slog.Int("categories", len(enabled)))

	results := []ActionResult{}
	for _, cat := range enabled {
		results = append(results, e.runCategory(ctx, cat)...)
	}

	report = ExecutionReport{
		Success:         true,
		StartedAt:       startedAt,
		ExecutionTimeMs: time.Since(started).Milliseconds(),
		Results:         results,
		TotalActions:    len(results),
		SuccessfulActions: lo.CountBy(results, func(r ActionResult) bool {
			return r.Success
		}),
	}

	log.Info("decision engine run completed",
		slog.Int64("execution_time_ms", report.ExecutionTimeMs),
		slog.Int("total_actions", report.TotalActions),
		slog.Int("successful_actions", report.SuccessfulActions),
	)
	return report
}

// runCategory запускает процессор категории, превращая ошибки и паники в неуспешный результат.
func (e *Engine) runCategory(ctx context.Context, cat domain.RuleCategory) (results []ActionResult) {
	const op = "decision.Engine.runCategory"

	log := e.log.With(slog.String("op", op), slog.String("category", cat.Name))

	process, ok := e.processors[cat.Name]
	if !ok {
		log.Warn("unknown rule category")
		return nil
	}

	timer := e.metrics.StartTimer(cat.Name)
	var runErr error

	defer func() {
		if r := recover(); r != nil {
			runErr = fmt.Errorf("panic: %v", r)
			results = append(results, e.categoryFailure(cat.Name, runErr))
		}
		if runErr != nil {
			log.Error("error processing rule category", sl.Err(runErr))
		}
		timer.Stop(len(results), lo.CountBy(results, func(r ActionResult) bool { return r.Success }), runErr)
	}()

	log.Debug("processing rule category", slog.Int("conditions", len(cat.Conditions)))

	results, runErr = process(ctx, cat)
	if runErr != nil {
		results = append(results, e.categoryFailure(cat.Name, runErr))
	}
	return results
}

func (e *Engine) categoryFailure(category string, err error) ActionResult {
	return ActionResult{
		RuleName:  category,
		Success:   false,
		Error:     err.Error(),
		Timestamp: e.now(),
	}
}

