package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"leasing_hub/internal/domain"
	"leasing_hub/internal/lib/logger/sl"
	"leasing_hub/internal/lib/money"
	"leasing_hub/internal/repository"
	"leasing_hub/internal/services/pricing"

	"github.com/google/uuid"
)

type SiteRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Site, error)
	ListSites(ctx context.Context, filter domain.SiteFilter) ([]domain.Site, error)
	UpdateSite(ctx context.Context, id uuid.UUID, update domain.SiteUpdate) error
	Stats(ctx context.Context) (domain.SiteStats, error)
}

var ErrSiteNotFound = errors.New("site not found")

type Service struct {
	log  *slog.Logger
	repo SiteRepository
}

func New(log *slog.Logger, repo SiteRepository) *Service {
	return &Service{
		log:  log,
		repo: repo,
	}
}

// GetSite — площадка по ID.
func (s *Service) GetSite(ctx context.Context, id uuid.UUID) (domain.Site, error) {
	const op = "site.Service.GetSite"

	site, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSiteNotFound) {
			s.log.Warn("site not found", slog.String("site_id", id.String()))
			return domain.Site{}, fmt.Errorf("%s: %w", op, ErrSiteNotFound)
		}
		s.log.Error("failed to get site", sl.Err(err))
		return domain.Site{}, fmt.Errorf("%s: %w", op, err)
	}
	return site, nil
}

func (s *Service) ListSites(ctx context.Context, filter domain.SiteFilter) ([]domain.Site, error) {
	const op = "site.Service.ListSites"

	sites, err := s.repo.ListSites(ctx, filter)
	if err != nil {
		s.log.Error("failed to list sites", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sites, nil
}

// Stats — количество площадок по статусам и заполняемость в процентах
// ((leased + reserved) / total × 100).
func (s *Service) Stats(ctx context.Context) (domain.SiteStats, error) {
	const op = "site.Service.Stats"

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return domain.SiteStats{}, fmt.Errorf("%s: %w", op, err)
	}
	if stats.Total > 0 {
		stats.OccupancyRate = money.Round2(float64(stats.Leased+stats.Reserved) / float64(stats.Total) * 100)
	}
	return stats, nil
}

// Reprice записывает динамическую цену как текущую цену площадки.
func (s *Service) Reprice(ctx context.Context, id uuid.UUID) (domain.Site, error) {
	const op = "site.Service.Reprice"

	log := s.log.With(slog.String("op", op), slog.String("site_id", id.String()))

	site, err := s.GetSite(ctx, id)
	if err != nil {
		return domain.Site{}, err
	}

	price := pricing.DynamicPricing(&site)
	if err := s.repo.UpdateSite(ctx, id, domain.SiteUpdate{CurrentPricePerSqm: &price}); err != nil {
		log.Error("failed to update site price", sl.Err(err))
		return domain.Site{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("site repriced",
		slog.Float64("old_price", site.CurrentPricePerSqm),
		slog.Float64("new_price", price),
	)
	site.CurrentPricePerSqm = price
	return site, nil
}
