package decision

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"leasing_hub/internal/domain"
	"leasing_hub/internal/lib/logger/sl"

	"github.com/google/uuid"
)

type notification struct {
	Type      domain.NotificationType
	Title     string
	Message   string
	Recipient string
	Template  string
}

// sendNotification ставит уведомление в очередь со статусом pending.
func (e *Engine) sendNotification(ctx context.Context, n notification) SideEffect {
	const op = "decision.Engine.sendNotification"

	log := e.log.With(slog.String("op", op), slog.String("type", string(n.Type)))

	_, err := e.repos.Notifications.CreateNotification(ctx, domain.Notification{
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
		RecipientEmail: n.Recipient,
		Template:       n.Template,
		Status:         domain.NotificationStatusPending,
		CreatedAt:      e.now(),
	})
	if err != nil {
		log.Warn("failed to queue notification", sl.Err(err))
		return SideEffect{Kind: SideEffectNotification, Error: err.Error()}
	}

	log.Debug("notification queued", slog.String("title", n.Title))
	return SideEffect{Kind: SideEffectNotification, Success: true}
}

// logDecisionAction пишет запись в журнал решений.
func (e *Engine) logDecisionAction(ctx context.Context, rule, entityType string, entityID uuid.UUID, action, result string, elapsed time.Duration) SideEffect {
	const op = "decision.Engine.logDecisionAction"

	log := e.log.With(slog.String("op", op), slog.String("rule", rule))

	_, err := e.repos.DecisionLog.CreateEntry(ctx, domain.DecisionLogEntry{
		RuleName:        rule,
		EntityType:      entityType,
		EntityID:        entityID,
		ActionTaken:     action,
		Result:          result,
		ExecutionTimeMs: elapsed.Milliseconds(),
		ExecutedAt:      e.now(),
	})
	if err != nil {
		log.Warn("failed to write decision log", sl.Err(err))
		return SideEffect{Kind: SideEffectDecisionLog, Error: err.Error()}
	}
	return SideEffect{Kind: SideEffectDecisionLog, Success: true}
}

// entityRun накапливает действия по одной сущности.
type entityRun struct {
	rule       string
	entityType string
	entityID   uuid.UUID
	started    time.Time

	actions []string
	effects []SideEffect
	details map[string]any
	err     error
}

func (e *Engine) startEntity(rule, entityType string, id uuid.UUID) *entityRun {
	return &entityRun{
		rule:       rule,
		entityType: entityType,
		entityID:   id,
		started:    time.Now(),
		details:    map[string]any{},
	}
}

func (r *entityRun) apply(action string) {
	r.actions = append(r.actions, action)
}

func (r *entityRun) effect(se SideEffect) {
	r.effects = append(r.effects, se)
}

// fail фиксирует ошибку изменения; дальнейшие условия сущности не проверяются.
func (r *entityRun) fail(err error) {
	r.err = err
}

func (r *entityRun) failed() bool {
	return r.err != nil
}

// finish пишет журнал по примененным действиям и формирует результат.
// Если ничего не сработало и ошибок нет, результата нет.
func (e *Engine) finish(ctx context.Context, r *entityRun, resultText string) (ActionResult, bool) {
	if len(r.actions) == 0 && r.err == nil {
		return ActionResult{}, false
	}

	if len(r.actions) > 0 {
		r.effect(e.logDecisionAction(ctx, r.rule, r.entityType, r.entityID,
			strings.Join(r.actions, ", "), resultText, time.Since(r.started)))
	}

	id := r.entityID
	res := ActionResult{
		RuleName:       r.rule,
		EntityID:       &id,
		ActionsApplied: r.actions,
		Success:        r.err == nil,
		Timestamp:      e.now(),
		Details:        r.details,
		SideEffects:    r.effects,
	}
	if r.err != nil {
		res.Error = r.err.Error()
		e.log.Warn("entity processing failed",
			slog.String("rule", r.rule),
			slog.String("entity_id", id.String()),
			sl.Err(r.err),
		)
	}
	return res, true
}
