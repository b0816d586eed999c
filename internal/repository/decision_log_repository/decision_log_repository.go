package decision_log_repository

import (
	"context"
	"fmt"
	"log/slog"

	"leasing_hub/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DecisionLogRepository struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewDecisionLogRepository(db *pgxpool.Pool, log *slog.Logger) *DecisionLogRepository {
	return &DecisionLogRepository{db: db, log: log}
}

// CreateEntry — добавляет запись в журнал решений. Журнал только дописывается.
func (r *DecisionLogRepository) CreateEntry(ctx context.Context, e domain.DecisionLogEntry) (uuid.UUID, error) {
	const op = "DecisionLogRepository.CreateEntry"

	query := `
		INSERT INTO decision_log (rule_name, entity_type, entity_id, action_taken, result, execution_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING log_id
	`

	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		e.RuleName,
		e.EntityType,
		e.EntityID,
		e.ActionTaken,
		e.Result,
		e.ExecutionTimeMs,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// ListRecent — последние limit записей, новые первыми.
func (r *DecisionLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.DecisionLogEntry, error) {
	const op = "DecisionLogRepository.ListRecent"

	query := `
		SELECT log_id, rule_name, entity_type, entity_id, action_taken,
			COALESCE(result, ''), execution_time_ms, executed_at
		FROM decision_log
		ORDER BY executed_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var entries []domain.DecisionLogEntry
	for rows.Next() {
		var e domain.DecisionLogEntry
		err := rows.Scan(
			&e.ID,
			&e.RuleName,
			&e.EntityType,
			&e.EntityID,
			&e.ActionTaken,
			&e.Result,
			&e.ExecutionTimeMs,
			&e.ExecutedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return entries, nil
}
