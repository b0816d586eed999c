// Package memory_repository — хранилище всех сущностей в памяти процесса.
// Используется в локальном режиме и в тестах движка правил.
package memory_repository

import (
	"sync"
	"time"

	"leasing_hub/internal/domain"

	"github.com/google/uuid"
)

// Store — общее состояние; доступ к сущностям через репозитории Sites(), Clients() и т.д.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	sites         map[uuid.UUID]domain.Site
	clients       map[uuid.UUID]domain.Client
	requests      map[uuid.UUID]domain.LeaseRequest
	contracts     map[uuid.UUID]domain.LeaseContract
	payments      map[uuid.UUID]domain.RentPayment
	notifications []domain.Notification
	decisionLog   []domain.DecisionLogEntry
	insights      []domain.OperationalInsight
}

type Option func(*Store)

// WithClock задаёт источник времени для created_at / executed_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		now:       time.Now,
		sites:     make(map[uuid.UUID]domain.Site),
		clients:   make(map[uuid.UUID]domain.Client),
		requests:  make(map[uuid.UUID]domain.LeaseRequest),
		contracts: make(map[uuid.UUID]domain.LeaseContract),
		payments:  make(map[uuid.UUID]domain.RentPayment),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Sites() *SiteRepository                 { return &SiteRepository{s: s} }
func (s *Store) Clients() *ClientRepository             { return &ClientRepository{s: s} }
func (s *Store) LeaseRequests() *LeaseRequestRepository { return &LeaseRequestRepository{s: s} }
func (s *Store) Contracts() *ContractRepository         { return &ContractRepository{s: s} }
func (s *Store) Payments() *PaymentRepository           { return &PaymentRepository{s: s} }
func (s *Store) Notifications() *NotificationRepository { return &NotificationRepository{s: s} }
func (s *Store) DecisionLog() *DecisionLogRepository    { return &DecisionLogRepository{s: s} }
func (s *Store) Insights() *InsightRepository           { return &InsightRepository{s: s} }

func newID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}

// PutSite сохраняет площадку как есть (ID генерируется, если пуст).
func (s *Store) PutSite(site domain.Site) domain.Site {
	s.mu.Lock()
	defer s.mu.Unlock()

	site.ID = newID(site.ID)
	if site.CreatedAt.IsZero() {
		site.CreatedAt = s.now()
	}
	if site.UpdatedAt.IsZero() {
		site.UpdatedAt = site.CreatedAt
	}
	s.sites[site.ID] = site
	return site
}

func (s *Store) PutClient(c domain.Client) domain.Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = newID(c.ID)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	s.clients[c.ID] = c
	return c
}

func (s *Store) PutLeaseRequest(r domain.LeaseRequest) domain.LeaseRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = newID(r.ID)
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
	s.requests[r.ID] = r
	return r
}

func (s *Store) PutContract(c domain.LeaseContract) domain.LeaseContract {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = newID(c.ID)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	s.contracts[c.ID] = c
	return c
}

func (s *Store) PutPayment(p domain.RentPayment) domain.RentPayment {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = newID(p.ID)
	s.payments[p.ID] = p
	return p
}

func (s *Store) PutInsight(i domain.OperationalInsight) domain.OperationalInsight {
	s.mu.Lock()
	defer s.mu.Unlock()

	i.ID = newID(i.ID)
	s.insights = append(s.insights, i)
	return i
}

// PutDecisionLogEntry добавляет запись журнала с заданным executed_at.
func (s *Store) PutDecisionLogEntry(e domain.DecisionLogEntry) domain.DecisionLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = newID(e.ID)
	if e.ExecutedAt.IsZero() {
		e.ExecutedAt = s.now()
	}
	s.decisionLog = append(s.decisionLog, e)
	return e
}

// AllNotifications — копия всех уведомлений в порядке создания.
func (s *Store) AllNotifications() []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]domain.Notification(nil), s.notifications...)
}

// AllDecisionLog — копия журнала решений в порядке записи.
func (s *Store) AllDecisionLog() []domain.DecisionLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]domain.DecisionLogEntry(nil), s.decisionLog...)
}
