package decision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"leasing_hub/internal/domain"
	"leasing_hub/internal/repository"
)

const (
	ruleOperationalEfficiency   = "operational_efficiency"
	defaultOccupancyThreshold   = 60.0
	defaultLowOccupancyTemplate = "low_occupancy_alert"
)

func (e *Engine) processOperationalEfficiency(ctx context.Context, cat domain.RuleCategory) ([]ActionResult, error) {
	const op = "decision.Engine.processOperationalEfficiency"

	log := e.log.With(slog.String("op", op))

	insight, err := e.repos.Insights.GetLatest(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrInsightNotFound) {
			log.Debug("no operational insights yet")
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cond, ok := cat.Condition(domain.RuleLowOccupancyAlert)
	if !ok {
		return nil, nil
	}

	threshold := cond.Parameters.FloatOr("occupancy_threshold", defaultOccupancyThreshold)
	if insight.OccupancyRate >= threshold {
		return nil, nil
	}

	template := cond.Parameters.String("template")
	if template == "" {
		template = defaultLowOccupancyTemplate
	}

	rate := formatNumber(insight.OccupancyRate)
	run := e.startEntity(ruleOperationalEfficiency, domain.EntityTypeOperationalInsight, insight.ID)
	run.details["occupancy_rate"] = insight.OccupancyRate

	run.effect(e.sendNotification(ctx, notification{
		Type:      domain.NotificationTypeOperationalAlert,
		Title:     "Low Occupancy Alert",
		Message:   fmt.Sprintf("Current occupancy rate is %s%%. Marketing campaign recommended.", rate),
		Recipient: e.managerEmail,
		Template:  template,
	}))
	run.apply("low_occupancy_alert")

	res, ok := e.finish(ctx, run, fmt.Sprintf("Occupancy rate: %s%%", rate))
	if !ok {
		return nil, nil
	}
	return []ActionResult{res}, nil
}
