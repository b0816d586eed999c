package memory_repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"leasing_hub/internal/domain"
	"leasing_hub/internal/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

func page[T any](items []T, p, size int32) []T {
	pager := domain.NewPager(p, size)
	off := int(pager.Offset())
	if off >= len(items) {
		return nil
	}
	end := min(len(items), off+int(pager.Limit()))
	return items[off:end]
}

type SiteRepository struct{ s *Store }

func (r *SiteRepository) GetByID(_ context.Context, id uuid.UUID) (domain.Site, error) {
	const op = "memory.SiteRepository.GetByID"

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	site, ok := r.s.sites[id]
	if !ok {
		return domain.Site{}, fmt.Errorf("%s: %w", op, repository.ErrSiteNotFound)
	}
	return site, nil
}

func (r *SiteRepository) ListSites(_ context.Context, filter domain.SiteFilter) ([]domain.Site, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sites := lo.Filter(lo.Values(r.s.sites), func(site domain.Site, _ int) bool {
		if filter.Status != nil && site.Status != *filter.Status {
			return false
		}
		if filter.UsageType != nil && site.UsageType != *filter.UsageType {
			return false
		}
		if filter.ZoneName != nil && site.ZoneName != *filter.ZoneName {
			return false
		}
		return true
	})
	sort.Slice(sites, func(i, j int) bool { return sites[i].SiteCode < sites[j].SiteCode })

	return page(sites, filter.Page, filter.PageSize), nil
}

func (r *SiteRepository) UpdateSite(_ context.Context, id uuid.UUID, update domain.SiteUpdate) error {
	const op = "memory.SiteRepository.UpdateSite"

	if update.IsEmpty() {
		return fmt.Errorf("%s: %w", op, repository.ErrNoFieldsToUpdate)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	site, ok := r.s.sites[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, repository.ErrSiteNotFound)
	}
	if update.CurrentPricePerSqm != nil {
		site.CurrentPricePerSqm = *update.CurrentPricePerSqm
	}
	if update.Status != nil {
		site.Status = *update.Status
	}
	site.UpdatedAt = r.s.now()
	r.s.sites[id] = site
	return nil
}

func (r *SiteRepository) Stats(_ context.Context) (domain.SiteStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var stats domain.SiteStats
	for _, site := range r.s.sites {
		stats.Add(site.Status, 1)
	}
	return stats, nil
}

type ClientRepository struct{ s *Store }

func (r *ClientRepository) CreateClient(_ context.Context, c domain.Client) (uuid.UUID, error) {
	c.ID = uuid.Nil
	c.CreatedAt = time.Time{}
	return r.s.PutClient(c).ID, nil
}

func (r *ClientRepository) GetByID(_ context.Context, id uuid.UUID) (domain.Client, error) {
	const op = "memory.ClientRepository.GetByID"

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.clients[id]
	if !ok {
		return domain.Client{}, fmt.Errorf("%s: %w", op, repository.ErrClientNotFound)
	}
	return c, nil
}

func (r *ClientRepository) ListClients(_ context.Context) ([]domain.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	clients := lo.Values(r.s.clients)
	sort.Slice(clients, func(i, j int) bool { return clients[i].CreatedAt.After(clients[j].CreatedAt) })
	return clients, nil
}

func (r *ClientRepository) ListNewClients(_ context.Context, createdAfter time.Time) ([]domain.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	clients := lo.Filter(lo.Values(r.s.clients), func(c domain.Client, _ int) bool {
		return c.PreviousLeases == 0 && !c.CreatedAt.Before(createdAfter)
	})
	sort.Slice(clients, func(i, j int) bool { return clients[i].CreatedAt.Before(clients[j].CreatedAt) })
	return clients, nil
}

type LeaseRequestRepository struct{ s *Store }

func (r *LeaseRequestRepository) CreateLeaseRequest(_ context.Context, lr domain.LeaseRequest) (uuid.UUID, error) {
	lr.ID = uuid.Nil
	lr.CreatedAt = time.Time{}
	lr.UpdatedAt = time.Time{}
	return r.s.PutLeaseRequest(lr).ID, nil
}

func (r *LeaseRequestRepository) GetByID(_ context.Context, id uuid.UUID) (domain.LeaseRequest, error) {
	const op = "memory.LeaseRequestRepository.GetByID"

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	lr, ok := r.s.requests[id]
	if !ok {
		return domain.LeaseRequest{}, fmt.Errorf("%s: %w", op, repository.ErrLeaseRequestNotFound)
	}
	return lr, nil
}

func (r *LeaseRequestRepository) UpdateLeaseRequest(_ context.Context, id uuid.UUID, update domain.LeaseRequestUpdate) error {
	const op = "memory.LeaseRequestRepository.UpdateLeaseRequest"

	if update.IsEmpty() {
		return fmt.Errorf("%s: %w", op, repository.ErrNoFieldsToUpdate)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	lr, ok := r.s.requests[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, repository.ErrLeaseRequestNotFound)
	}
	if update.Status != nil {
		lr.Status = *update.Status
	}
	if update.PriorityScore != nil {
		lr.PriorityScore = *update.PriorityScore
	}
	if update.ReviewDeadline != nil {
		deadline := *update.ReviewDeadline
		lr.ReviewDeadline = &deadline
	}
	lr.UpdatedAt = r.s.now()
	r.s.requests[id] = lr
	return nil
}

func (r *LeaseRequestRepository) ListLeaseRequests(_ context.Context, filter domain.LeaseRequestFilter) ([]domain.LeaseRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	requests := lo.Filter(lo.Values(r.s.requests), func(lr domain.LeaseRequest, _ int) bool {
		if filter.Status != nil && lr.Status != *filter.Status {
			return false
		}
		if filter.SiteID != nil && lr.SiteID != *filter.SiteID {
			return false
		}
		if filter.ClientID != nil && lr.ClientID != *filter.ClientID {
			return false
		}
		return true
	})
	sort.Slice(requests, func(i, j int) bool { return requests[i].CreatedAt.After(requests[j].CreatedAt) })

	return page(requests, filter.Page, filter.PageSize), nil
}

func (r *LeaseRequestRepository) ListForReview(_ context.Context, statuses []domain.LeaseRequestStatus) ([]domain.LeaseRequestForReview, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []domain.LeaseRequestForReview
	for _, lr := range r.s.requests {
		if !slices.Contains(statuses, lr.Status) {
			continue
		}
		item := domain.LeaseRequestForReview{Request: lr}
		if c, ok := r.s.clients[lr.ClientID]; ok {
			item.Client = &c
		}
		if site, ok := r.s.sites[lr.SiteID]; ok {
			item.Site = &site
		}
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Request.CreatedAt.Before(result[j].Request.CreatedAt)
	})
	return result, nil
}

func (r *LeaseRequestRepository) Stats(_ context.Context) (domain.LeaseRequestStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stats := domain.LeaseRequestStats{ByStatus: make(map[domain.LeaseRequestStatus]int)}
	for _, lr := range r.s.requests {
		stats.ByStatus[lr.Status]++
		stats.Total++
	}
	return stats, nil
}

// clientEmailForContract — email клиента по цепочке договор → заявка → клиент. Вызывать под блокировкой.
func (s *Store) clientEmailForContract(contractID uuid.UUID) string {
	c, ok := s.contracts[contractID]
	if !ok {
		return ""
	}
	lr, ok := s.requests[c.RequestID]
	if !ok {
		return ""
	}
	return s.clients[lr.ClientID].Email()
}

type PaymentRepository struct{ s *Store }

func (r *PaymentRepository) ListOverdue(_ context.Context, asOf time.Time) ([]domain.PaymentWithClient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []domain.PaymentWithClient
	for _, p := range r.s.payments {
		if p.Status != domain.PaymentStatusPending || !p.DueDate.Before(asOf) {
			continue
		}
		result = append(result, domain.PaymentWithClient{
			Payment:     p,
			ClientEmail: r.s.clientEmailForContract(p.ContractID),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Payment.DueDate.Before(result[j].Payment.DueDate)
	})
	return result, nil
}

func (r *PaymentRepository) UpdatePayment(_ context.Context, id uuid.UUID, update domain.PaymentUpdate) error {
	const op = "memory.PaymentRepository.UpdatePayment"

	if update.IsEmpty() {
		return fmt.Errorf("%s: %w", op, repository.ErrNoFieldsToUpdate)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.payments[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, repository.ErrPaymentNotFound)
	}
	if update.Status != nil {
		p.Status = *update.Status
	}
	if update.LateFee != nil {
		p.LateFee = *update.LateFee
	}
	r.s.payments[id] = p
	return nil
}

// GetByID — платеж по ID (используется в тестах и CLI).
func (r *PaymentRepository) GetByID(_ context.Context, id uuid.UUID) (domain.RentPayment, error) {
	const op = "memory.PaymentRepository.GetByID"

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.payments[id]
	if !ok {
		return domain.RentPayment{}, fmt.Errorf("%s: %w", op, repository.ErrPaymentNotFound)
	}
	return p, nil
}

type ContractRepository struct{ s *Store }

func (r *ContractRepository) ListExpiring(_ context.Context, status domain.ContractStatus, endBefore time.Time) ([]domain.ContractWithClient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []domain.ContractWithClient
	for _, c := range r.s.contracts {
		if c.Status != status || c.EndDate.After(endBefore) {
			continue
		}
		result = append(result, domain.ContractWithClient{
			Contract:    c,
			ClientEmail: r.s.clientEmailForContract(c.ID),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Contract.EndDate.Before(result[j].Contract.EndDate)
	})
	return result, nil
}

func (r *ContractRepository) ListPendingSignature(_ context.Context, createdBefore time.Time) ([]domain.LeaseContract, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	contracts := lo.Filter(lo.Values(r.s.contracts), func(c domain.LeaseContract, _ int) bool {
		return c.Status == domain.ContractStatusPendingSignature && c.CreatedAt.Before(createdBefore)
	})
	sort.Slice(contracts, func(i, j int) bool { return contracts[i].CreatedAt.Before(contracts[j].CreatedAt) })
	return contracts, nil
}

func (r *ContractRepository) UpdateContract(_ context.Context, id uuid.UUID, update domain.ContractUpdate) error {
	const op = "memory.ContractRepository.UpdateContract"

	if update.IsEmpty() {
		return fmt.Errorf("%s: %w", op, repository.ErrNoFieldsToUpdate)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.contracts[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, repository.ErrContractNotFound)
	}
	if update.Status != nil {
		c.Status = *update.Status
	}
	if update.TerminationFlag != nil {
		c.TerminationFlag = *update.TerminationFlag
	}
	r.s.contracts[id] = c
	return nil
}

// GetByID — договор по ID (используется в тестах и CLI).
func (r *ContractRepository) GetByID(_ context.Context, id uuid.UUID) (domain.LeaseContract, error) {
	const op = "memory.ContractRepository.GetByID"

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.contracts[id]
	if !ok {
		return domain.LeaseContract{}, fmt.Errorf("%s: %w", op, repository.ErrContractNotFound)
	}
	return c, nil
}

type NotificationRepository struct{ s *Store }

func (r *NotificationRepository) CreateNotification(_ context.Context, n domain.Notification) (uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n.ID = uuid.New()
	if n.Status == "" {
		n.Status = domain.NotificationStatusPending
	}
	n.CreatedAt = r.s.now()
	r.s.notifications = append(r.s.notifications, n)
	return n.ID, nil
}

func (r *NotificationRepository) ListPending(_ context.Context, limit int) ([]domain.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	pending := lo.Filter(r.s.notifications, func(n domain.Notification, _ int) bool {
		return n.Status == domain.NotificationStatusPending
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

type DecisionLogRepository struct{ s *Store }

func (r *DecisionLogRepository) CreateEntry(_ context.Context, e domain.DecisionLogEntry) (uuid.UUID, error) {
	e.ID = uuid.Nil
	e.ExecutedAt = time.Time{}
	return r.s.PutDecisionLogEntry(e).ID, nil
}

func (r *DecisionLogRepository) ListRecent(_ context.Context, limit int) ([]domain.DecisionLogEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	entries := lo.Reverse(append([]domain.DecisionLogEntry(nil), r.s.decisionLog...))
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].ExecutedAt.After(entries[j].ExecutedAt) })
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

type InsightRepository struct{ s *Store }

func (r *InsightRepository) GetLatest(_ context.Context) (domain.OperationalInsight, error) {
	const op = "memory.InsightRepository.GetLatest"

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if len(r.s.insights) == 0 {
		return domain.OperationalInsight{}, fmt.Errorf("%s: %w", op, repository.ErrInsightNotFound)
	}
	return lo.MaxBy(r.s.insights, func(a, b domain.OperationalInsight) bool {
		return a.Date.After(b.Date)
	}), nil
}
