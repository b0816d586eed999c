package decision

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ExecutionReport — итог одного запуска движка.
type ExecutionReport struct {
	Success           bool           `json:"success"`
	Error             string         `json:"error,omitempty"`
	StartedAt         time.Time      `json:"started_at"`
	ExecutionTimeMs   int64          `json:"execution_time_ms"`
	Results           []ActionResult `json:"results"`
	TotalActions      int            `json:"total_actions"`
	SuccessfulActions int            `json:"successful_actions"`
}

// ActionResult — результат обработки одной сущности
// либо неуспешный итог целой категории (тогда EntityID пуст).
type ActionResult struct {
	RuleName       string         `json:"rule_name"`
	EntityID       *uuid.UUID     `json:"entity_id,omitempty"`
	ActionsApplied []string       `json:"actions_applied,omitempty"`
	Success        bool           `json:"success"`
	Error          string         `json:"error,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
	Details        map[string]any `json:"details,omitempty"`
	SideEffects    []SideEffect   `json:"side_effects,omitempty"`
}

// SideEffectKind — вид побочного действия.
type SideEffectKind string

const (
	SideEffectNotification SideEffectKind = "notification"
	SideEffectDecisionLog  SideEffectKind = "decision_log"
)

// SideEffect — исход попытки записать уведомление или журнал.
// Неудача не откатывает уже примененные изменения.
type SideEffect struct {
	Kind    SideEffectKind `json:"kind"`
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
}

// formatNumber печатает число без лишних нулей: 5, 6.5, 1234.56.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
