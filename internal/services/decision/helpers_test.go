package decision

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"leasing_hub/internal/domain"
	"leasing_hub/internal/lib/metrics"
	"leasing_hub/internal/lib/rules"
	"leasing_hub/internal/repository/memory_repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

var errStorage = errors.New("storage unavailable")

type fixture struct {
	store  *memory_repository.Store
	repos  Repositories
	engine *Engine
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func memoryRepositories(s *memory_repository.Store) Repositories {
	return Repositories{
		Sites:         s.Sites(),
		Clients:       s.Clients(),
		LeaseRequests: s.LeaseRequests(),
		Payments:      s.Payments(),
		Contracts:     s.Contracts(),
		Notifications: s.Notifications(),
		DecisionLog:   s.DecisionLog(),
		Insights:      s.Insights(),
	}
}

// onlyCategories оставляет включенными только перечисленные категории правил по умолчанию.
func onlyCategories(names ...string) domain.DecisionRuleConfig {
	cfg := domain.DefaultDecisionRules()
	for i := range cfg.Categories {
		cfg.Categories[i].Enabled = lo.Contains(names, cfg.Categories[i].Name)
	}
	return cfg
}

func newFixture(t *testing.T, cfg domain.DecisionRuleConfig, override func(*Repositories)) *fixture {
	t.Helper()

	clock := func() time.Time { return testNow }
	store := memory_repository.New(memory_repository.WithClock(clock))
	repos := memoryRepositories(store)
	if override != nil {
		override(&repos)
	}

	log := newTestLogger()
	engine := New(log, repos, rules.NewStaticProvider(cfg), metrics.NewEngineMetrics(log),
		WithClock(clock),
		WithManagerEmail("ops@example.com"),
	)
	return &fixture{store: store, repos: repos, engine: engine}
}

// seedContract создает клиента, площадку, заявку и договор, связанные между собой.
func (f *fixture) seedContract(status domain.ContractStatus, endDate, createdAt time.Time) domain.LeaseContract {
	client := f.store.PutClient(domain.Client{
		ClientName:  "Nour Cafe",
		ContactInfo: domain.ContactInfo{Email: "tenant@example.com"},
		CreatedAt:   testNow.Add(-365 * domain.Day),
	})
	site := f.store.PutSite(domain.Site{SiteCode: "A-01", Status: domain.SiteStatusLeased, BasePricePerSqm: 100})
	req := f.store.PutLeaseRequest(domain.LeaseRequest{
		SiteID:   site.ID,
		ClientID: client.ID,
		Status:   domain.LeaseRequestStatusLeased,
	})
	return f.store.PutContract(domain.LeaseContract{
		RequestID: req.ID,
		Status:    status,
		EndDate:   endDate,
		CreatedAt: createdAt,
	})
}

func resultsFor(report ExecutionReport, rule string) []ActionResult {
	return lo.Filter(report.Results, func(r ActionResult, _ int) bool {
		return r.RuleName == rule
	})
}

// Обертки для подстановки ошибок и паник в отдельные методы репозиториев.

type paymentRepoMock struct {
	PaymentRepository
	ListOverdueFunc   func(ctx context.Context, asOf time.Time) ([]domain.PaymentWithClient, error)
	UpdatePaymentFunc func(ctx context.Context, id uuid.UUID, update domain.PaymentUpdate) error
}

func (m *paymentRepoMock) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.PaymentWithClient, error) {
	if m.ListOverdueFunc != nil {
		return m.ListOverdueFunc(ctx, asOf)
	}
	return m.PaymentRepository.ListOverdue(ctx, asOf)
}

func (m *paymentRepoMock) UpdatePayment(ctx context.Context, id uuid.UUID, update domain.PaymentUpdate) error {
	if m.UpdatePaymentFunc != nil {
		return m.UpdatePaymentFunc(ctx, id, update)
	}
	return m.PaymentRepository.UpdatePayment(ctx, id, update)
}

type leaseRequestRepoMock struct {
	LeaseRequestRepository
	UpdateLeaseRequestFunc func(ctx context.Context, id uuid.UUID, update domain.LeaseRequestUpdate) error
}

func (m *leaseRequestRepoMock) UpdateLeaseRequest(ctx context.Context, id uuid.UUID, update domain.LeaseRequestUpdate) error {
	if m.UpdateLeaseRequestFunc != nil {
		return m.UpdateLeaseRequestFunc(ctx, id, update)
	}
	return m.LeaseRequestRepository.UpdateLeaseRequest(ctx, id, update)
}

type siteRepoMock struct {
	SiteRepository
	ListSitesFunc  func(ctx context.Context, filter domain.SiteFilter) ([]domain.Site, error)
	UpdateSiteFunc func(ctx context.Context, id uuid.UUID, update domain.SiteUpdate) error
}

func (m *siteRepoMock) ListSites(ctx context.Context, filter domain.SiteFilter) ([]domain.Site, error) {
	if m.ListSitesFunc != nil {
		return m.ListSitesFunc(ctx, filter)
	}
	return m.SiteRepository.ListSites(ctx, filter)
}

func (m *siteRepoMock) UpdateSite(ctx context.Context, id uuid.UUID, update domain.SiteUpdate) error {
	if m.UpdateSiteFunc != nil {
		return m.UpdateSiteFunc(ctx, id, update)
	}
	return m.SiteRepository.UpdateSite(ctx, id, update)
}

type contractRepoMock struct {
	ContractRepository
	ListPendingSignatureFunc func(ctx context.Context, createdBefore time.Time) ([]domain.LeaseContract, error)
}

func (m *contractRepoMock) ListPendingSignature(ctx context.Context, createdBefore time.Time) ([]domain.LeaseContract, error) {
	if m.ListPendingSignatureFunc != nil {
		return m.ListPendingSignatureFunc(ctx, createdBefore)
	}
	return m.ContractRepository.ListPendingSignature(ctx, createdBefore)
}

type notificationRepoMock struct {
	CreateNotificationFunc func(ctx context.Context, n domain.Notification) (uuid.UUID, error)
}

func (m *notificationRepoMock) CreateNotification(ctx context.Context, n domain.Notification) (uuid.UUID, error) {
	return m.CreateNotificationFunc(ctx, n)
}

type decisionLogRepoMock struct {
	DecisionLogRepository
	ListRecentFunc func(ctx context.Context, limit int) ([]domain.DecisionLogEntry, error)
}

func (m *decisionLogRepoMock) ListRecent(ctx context.Context, limit int) ([]domain.DecisionLogEntry, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, limit)
	}
	return m.DecisionLogRepository.ListRecent(ctx, limit)
}

type rulesProviderMock struct {
	RulesFunc func() (domain.DecisionRuleConfig, error)
}

func (m *rulesProviderMock) Rules() (domain.DecisionRuleConfig, error) {
	return m.RulesFunc()
}
