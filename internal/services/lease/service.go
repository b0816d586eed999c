// Package lease — подача заявок на аренду и расчет предложения по площадке.
package lease

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"leasing_hub/internal/domain"
	"leasing_hub/internal/lib/logger/sl"
	"leasing_hub/internal/repository"
	"leasing_hub/internal/services/pricing"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const maxDurationMonths = 120

type SiteRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Site, error)
	UpdateSite(ctx context.Context, id uuid.UUID, update domain.SiteUpdate) error
}

type ClientRepository interface {
	CreateClient(ctx context.Context, c domain.Client) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Client, error)
}

type LeaseRequestRepository interface {
	CreateLeaseRequest(ctx context.Context, lr domain.LeaseRequest) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.LeaseRequest, error)
	ListLeaseRequests(ctx context.Context, filter domain.LeaseRequestFilter) ([]domain.LeaseRequest, error)
	Stats(ctx context.Context) (domain.LeaseRequestStats, error)
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, n domain.Notification) (uuid.UUID, error)
}

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrSiteNotFound         = errors.New("site not found")
	ErrSiteNotAvailable     = errors.New("site is not available for lease")
	ErrClientNotFound       = errors.New("client not found")
	ErrLeaseRequestNotFound = errors.New("lease request not found")
)

type Service struct {
	log           *slog.Logger
	sites         SiteRepository
	clients       ClientRepository
	requests      LeaseRequestRepository
	notifications NotificationRepository
	managerEmail  string
	now           func() time.Time
}

func New(
	log *slog.Logger,
	sites SiteRepository,
	clients ClientRepository,
	requests LeaseRequestRepository,
	notifications NotificationRepository,
	managerEmail string,
) *Service {
	return &Service{
		log:           log,
		sites:         sites,
		clients:       clients,
		requests:      requests,
		notifications: notifications,
		managerEmail:  managerEmail,
		now:           time.Now,
	}
}

// NewClient — данные нового клиента, если заявку подает незарегистрированный арендатор.
type NewClient struct {
	ClientName   string `json:"client_name"`
	BusinessName string `json:"business_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	BusinessType string `json:"business_type"`
}

// SubmitRequest — входные данные заявки. Нужен либо ClientID, либо Client.
type SubmitRequest struct {
	SiteID                  uuid.UUID  `json:"site_id"`
	ClientID                *uuid.UUID `json:"client_id,omitempty"`
	Client                  *NewClient `json:"client,omitempty"`
	BusinessName            string     `json:"business_name"`
	ActivityType            string     `json:"activity_type"`
	RequestedStartDate      *time.Time `json:"requested_start_date,omitempty"`
	RequestedDurationMonths int        `json:"requested_duration_months"`
	PaymentMethod           string     `json:"payment_method"`
}

// Submission — созданная заявка вместе с расчетом.
type Submission struct {
	Request   domain.LeaseRequest     `json:"lease_request"`
	Client    domain.Client           `json:"client"`
	Breakdown *pricing.PriceBreakdown `json:"price_breakdown"`
}

// Quote — предложение по площадке на заданный срок.
type Quote struct {
	Site      domain.Site              `json:"site"`
	Breakdown *pricing.PriceBreakdown  `json:"price_breakdown"`
	Totals    *pricing.LeaseCostTotals `json:"totals"`
	ROI       *pricing.ROIReport       `json:"roi"`
}

func (r SubmitRequest) validate() error {
	if r.SiteID == uuid.Nil {
		return fmt.Errorf("%w: site_id is required", ErrInvalidInput)
	}
	if r.ClientID == nil && (r.Client == nil || strings.TrimSpace(r.Client.ClientName) == "") {
		return fmt.Errorf("%w: client_id or client.client_name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(r.BusinessName) == "" {
		return fmt.Errorf("%w: business_name is required", ErrInvalidInput)
	}
	return validateDuration(r.RequestedDurationMonths)
}

func validateDuration(months int) error {
	if months < 0 || months > maxDurationMonths {
		return fmt.Errorf("%w: requested_duration_months must be between 0 and %d", ErrInvalidInput, maxDurationMonths)
	}
	return nil
}

// Submit — подача заявки: клиент, расчет цены и приоритета, заявка со статусом new,
// резерв площадки и уведомление менеджеру.
func (s *Service) Submit(ctx context.Context, in SubmitRequest) (Submission, error) {
	const op = "lease.Service.Submit"

	log := s.log.With(slog.String("op", op), slog.String("site_id", in.SiteID.String()))

	if err := in.validate(); err != nil {
		return Submission{}, fmt.Errorf("%s: %w", op, err)
	}

	site, err := s.loadSite(ctx, in.SiteID)
	if err != nil {
		return Submission{}, fmt.Errorf("%s: %w", op, err)
	}
	if site.Status != domain.SiteStatusVacant {
		log.Warn("site is not vacant", slog.String("status", site.Status.String()))
		return Submission{}, fmt.Errorf("%s: %w", op, ErrSiteNotAvailable)
	}

	client, err := s.resolveClient(ctx, in)
	if err != nil {
		return Submission{}, fmt.Errorf("%s: %w", op, err)
	}

	breakdown := pricing.LeasePrice(&site, in.RequestedDurationMonths)

	req := domain.LeaseRequest{
		SiteID:                  site.ID,
		ClientID:                client.ID,
		BusinessName:            in.BusinessName,
		ActivityType:            in.ActivityType,
		RequestedStartDate:      in.RequestedStartDate,
		RequestedDurationMonths: breakdown.DurationMonths,
		Status:                  domain.LeaseRequestStatusNew,
		MonthlyRent:             breakdown.BaseRent,
		VATAmount:               breakdown.VATAmount,
		PlatformFee:             breakdown.PlatformFee,
		TotalAmount:             breakdown.TotalAmount,
		PaymentMethod:           lo.CoalesceOrEmpty(in.PaymentMethod, "bank_transfer"),
	}
	req.PriorityScore = pricing.PriorityScore(&req, &site, &client)

	id, err := s.requests.CreateLeaseRequest(ctx, req)
	if err != nil {
		log.Error("failed to create lease request", sl.Err(err))
		return Submission{}, fmt.Errorf("%s: %w", op, err)
	}
	req.ID = id

	if err := s.sites.UpdateSite(ctx, site.ID, domain.SiteUpdate{Status: lo.ToPtr(domain.SiteStatusReserved)}); err != nil {
		log.Error("failed to reserve site", sl.Err(err))
		return Submission{}, fmt.Errorf("%s: reserve site: %w", op, err)
	}

	_, err = s.notifications.CreateNotification(ctx, domain.Notification{
		Type:           domain.NotificationTypeLeaseRequest,
		Title:          "New Lease Request",
		Message:        fmt.Sprintf("New lease request from %s for site %s", in.BusinessName, site.SiteCode),
		RecipientEmail: s.managerEmail,
		Status:         domain.NotificationStatusPending,
		CreatedAt:      s.now(),
	})
	if err != nil {
		log.Warn("failed to notify manager", sl.Err(err))
	}

	log.Info("lease request submitted",
		slog.String("request_id", id.String()),
		slog.Float64("priority_score", req.PriorityScore),
	)

	return Submission{Request: req, Client: client, Breakdown: breakdown}, nil
}

func (s *Service) loadSite(ctx context.Context, id uuid.UUID) (domain.Site, error) {
	site, err := s.sites.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSiteNotFound) {
			return domain.Site{}, ErrSiteNotFound
		}
		return domain.Site{}, err
	}
	return site, nil
}

// resolveClient находит клиента по ID или создает нового.
func (s *Service) resolveClient(ctx context.Context, in SubmitRequest) (domain.Client, error) {
	if in.ClientID != nil {
		client, err := s.clients.GetByID(ctx, *in.ClientID)
		if err != nil {
			if errors.Is(err, repository.ErrClientNotFound) {
				return domain.Client{}, ErrClientNotFound
			}
			return domain.Client{}, err
		}
		return client, nil
	}

	client := domain.Client{
		ClientName:   in.Client.ClientName,
		BusinessName: lo.CoalesceOrEmpty(in.Client.BusinessName, in.BusinessName),
		ContactInfo:  domain.ContactInfo{Email: in.Client.Email, Phone: in.Client.Phone},
		BusinessType: in.Client.BusinessType,
		CreatedAt:    s.now(),
	}
	id, err := s.clients.CreateClient(ctx, client)
	if err != nil {
		return domain.Client{}, fmt.Errorf("create client: %w", err)
	}
	client.ID = id
	return client, nil
}

// Quote считает помесячную разбивку, итоги за срок и ROI для площадки.
func (s *Service) Quote(ctx context.Context, siteID uuid.UUID, durationMonths int) (Quote, error) {
	const op = "lease.Service.Quote"

	if err := validateDuration(durationMonths); err != nil {
		return Quote{}, fmt.Errorf("%s: %w", op, err)
	}

	site, err := s.loadSite(ctx, siteID)
	if err != nil {
		return Quote{}, fmt.Errorf("%s: %w", op, err)
	}

	breakdown := pricing.LeasePrice(&site, durationMonths)
	return Quote{
		Site:      site,
		Breakdown: breakdown,
		Totals:    pricing.TotalLeaseCost(breakdown),
		ROI:       pricing.ROI(&site, breakdown),
	}, nil
}

// GetRequest — заявка по ID.
func (s *Service) GetRequest(ctx context.Context, id uuid.UUID) (domain.LeaseRequest, error) {
	const op = "lease.Service.GetRequest"

	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrLeaseRequestNotFound) {
			return domain.LeaseRequest{}, fmt.Errorf("%s: %w", op, ErrLeaseRequestNotFound)
		}
		return domain.LeaseRequest{}, fmt.Errorf("%s: %w", op, err)
	}
	return req, nil
}

// ListRequests — заявки по фильтру с пагинацией.
func (s *Service) ListRequests(ctx context.Context, filter domain.LeaseRequestFilter) ([]domain.LeaseRequest, error) {
	const op = "lease.Service.ListRequests"

	requests, err := s.requests.ListLeaseRequests(ctx, filter)
	if err != nil {
		s.log.Error("failed to list lease requests", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return requests, nil
}

func (s *Service) Stats(ctx context.Context) (domain.LeaseRequestStats, error) {
	const op = "lease.Service.Stats"

	stats, err := s.requests.Stats(ctx)
	if err != nil {
		return domain.LeaseRequestStats{}, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}
