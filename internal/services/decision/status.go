package decision

import (
	"context"
	"log/slog"
	"time"

	"leasing_hub/internal/domain"
	"leasing_hub/internal/lib/logger/sl"

	"github.com/samber/lo"
)

const (
	StatusActive = "active"
	StatusError  = "error"

	recentActionsLimit = 10
)

// StatusReport — сводка активности движка по журналу решений.
type StatusReport struct {
	Status         string                    `json:"status"`
	LastExecution  *time.Time                `json:"last_execution"`
	ActionsLast24h int                       `json:"actions_last_24h"`
	TotalActions   int                       `json:"total_actions"`
	RecentActions  []domain.DecisionLogEntry `json:"recent_actions"`
	Error          string                    `json:"error,omitempty"`
}

// GetDecisionEngineStatus читает последние записи журнала (не больше statusLogLimit).
// Ошибка чтения не возвращается, а отражается в статусе "error".
func (e *Engine) GetDecisionEngineStatus(ctx context.Context) StatusReport {
	const op = "decision.Engine.GetDecisionEngineStatus"

	log := e.log.With(slog.String("op", op))

	entries, err := e.repos.DecisionLog.ListRecent(ctx, e.statusLogLimit)
	if err != nil {
		log.Error("failed to read decision log", sl.Err(err))
		return StatusReport{Status: StatusError, Error: err.Error(), RecentActions: []domain.DecisionLogEntry{}}
	}

	since := e.now().Add(-24 * time.Hour)
	last24h := lo.Filter(entries, func(en domain.DecisionLogEntry, _ int) bool {
		return en.ExecutedAt.After(since)
	})

	report := StatusReport{
		Status:         StatusActive,
		ActionsLast24h: len(last24h),
		TotalActions:   len(entries),
		RecentActions:  lo.Slice(last24h, 0, recentActionsLimit),
	}
	if len(entries) > 0 {
		report.LastExecution = lo.ToPtr(entries[0].ExecutedAt)
	}
	return report
}
