package site_repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"leasing_hub/internal/domain"
	"leasing_hub/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const siteColumns = `
	site_id, site_code, zone_name,
	base_price_per_sqm, COALESCE(current_price_per_sqm, 0), area_sqm,
	usage_type, COALESCE(location_premium, 0), COALESCE(seasonal_multiplier, 0),
	COALESCE(demand_factor, 0), COALESCE(foot_traffic_score, 0), COALESCE(visibility_rating, 0),
	status, created_at, updated_at
`

type SiteRepository struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewSiteRepository(db *pgxpool.Pool, log *slog.Logger) *SiteRepository {
	return &SiteRepository{db: db, log: log}
}

func scanSite(row pgx.Row) (domain.Site, error) {
	var s domain.Site
	err := row.Scan(
		&s.ID,
		&s.SiteCode,
		&s.ZoneName,
		&s.BasePricePerSqm,
		&s.CurrentPricePerSqm,
		&s.AreaSqm,
		&s.UsageType,
		&s.LocationPremium,
		&s.SeasonalMultiplier,
		&s.DemandFactor,
		&s.FootTrafficScore,
		&s.VisibilityRating,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

// GetByID — получает площадку по ID.
func (r *SiteRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Site, error) {
	const op = "SiteRepository.GetByID"

	query := `SELECT ` + siteColumns + ` FROM operations_sites WHERE site_id = $1`

	s, err := scanSite(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Site{}, fmt.Errorf("%s: %w", op, repository.ErrSiteNotFound)
		}
		return domain.Site{}, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

// ListSites — возвращает площадки по фильтру.
func (r *SiteRepository) ListSites(ctx context.Context, filter domain.SiteFilter) ([]domain.Site, error) {
	const op = "SiteRepository.ListSites"

	where := []string{}
	params := []interface{}{}
	paramCount := 1

	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", paramCount))
		params = append(params, filter.Status.String())
		paramCount++
	}
	if filter.UsageType != nil {
		where = append(where, fmt.Sprintf("usage_type = $%d", paramCount))
		params = append(params, filter.UsageType.String())
		paramCount++
	}
	if filter.ZoneName != nil {
		where = append(where, fmt.Sprintf("zone_name = $%d", paramCount))
		params = append(params, *filter.ZoneName)
		paramCount++
	}

	query := `SELECT ` + siteColumns + ` FROM operations_sites`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	pager := domain.NewPager(filter.Page, filter.PageSize)
	query += fmt.Sprintf(" ORDER BY site_code LIMIT $%d OFFSET $%d", paramCount, paramCount+1)
	params = append(params, pager.Limit(), pager.Offset())

	rows, err := r.db.Query(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var sites []domain.Site
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		sites = append(sites, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sites, nil
}

// UpdateSite — частичное обновление площадки.
func (r *SiteRepository) UpdateSite(ctx context.Context, id uuid.UUID, update domain.SiteUpdate) error {
	const op = "SiteRepository.UpdateSite"

	setClauses := []string{}
	params := []interface{}{}
	paramCount := 1

	if update.CurrentPricePerSqm != nil {
		setClauses = append(setClauses, fmt.Sprintf("current_price_per_sqm = $%d", paramCount))
		params = append(params, *update.CurrentPricePerSqm)
		paramCount++
	}
	if update.Status != nil {
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", paramCount))
		params = append(params, update.Status.String())
		paramCount++
	}

	if len(setClauses) == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNoFieldsToUpdate)
	}

	setClauses = append(setClauses, "updated_at = NOW()")

	query := fmt.Sprintf(`UPDATE operations_sites SET %s WHERE site_id = $%d`, strings.Join(setClauses, ", "), paramCount)
	params = append(params, id)

	tag, err := r.db.Exec(ctx, query, params...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrSiteNotFound)
	}

	return nil
}

// Stats — количество площадок по статусам.
func (r *SiteRepository) Stats(ctx context.Context) (domain.SiteStats, error) {
	const op = "SiteRepository.Stats"

	query := `SELECT status, COUNT(*) FROM operations_sites GROUP BY status`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return domain.SiteStats{}, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var stats domain.SiteStats
	for rows.Next() {
		var status domain.SiteStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return domain.SiteStats{}, fmt.Errorf("%s: scan: %w", op, err)
		}
		stats.Add(status, count)
	}
	if err := rows.Err(); err != nil {
		return domain.SiteStats{}, fmt.Errorf("%s: %w", op, err)
	}

	return stats, nil
}
