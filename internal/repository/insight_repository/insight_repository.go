package insight_repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"leasing_hub/internal/domain"
	"leasing_hub/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InsightRepository struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewInsightRepository(db *pgxpool.Pool, log *slog.Logger) *InsightRepository {
	return &InsightRepository{db: db, log: log}
}

// GetLatest — самый свежий срез операционных показателей.
func (r *InsightRepository) GetLatest(ctx context.Context) (domain.OperationalInsight, error) {
	const op = "InsightRepository.GetLatest"

	query := `
		SELECT insight_id, date, occupancy_rate, total_revenue, active_leases
		FROM operational_insights
		ORDER BY date DESC
		LIMIT 1
	`

	var i domain.OperationalInsight
	err := r.db.QueryRow(ctx, query).Scan(&i.ID, &i.Date, &i.OccupancyRate, &i.TotalRevenue, &i.ActiveLeases)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.OperationalInsight{}, fmt.Errorf("%s: %w", op, repository.ErrInsightNotFound)
		}
		return domain.OperationalInsight{}, fmt.Errorf("%s: %w", op, err)
	}

	return i, nil
}
