package decision

import (
	"context"
	"fmt"
	"log/slog"

	"leasing_hub/internal/domain"
)

const (
	ruleClientManagement = "client_management"
	newClientWindowDays  = 7
)

func (e *Engine) processClientManagement(ctx context.Context, cat domain.RuleCategory) ([]ActionResult, error) {
	const op = "decision.Engine.processClientManagement"

	log := e.log.With(slog.String("op", op))

	clients, err := e.repos.Clients.ListNewClients(ctx, e.now().Add(-newClientWindowDays*domain.Day))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cond, ok := cat.Condition(domain.RuleNewClientOnboarding)
	if !ok {
		return nil, nil
	}

	log.Debug("new clients", slog.Int("count", len(clients)))

	results := make([]ActionResult, 0, len(clients))
	for _, c := range clients {
		run := e.startEntity(ruleClientManagement, domain.EntityTypeClient, c.ID)
		run.effect(e.sendNotification(ctx, notification{
			Type:      domain.NotificationTypeClientWelcome,
			Title:     "Welcome to " + e.brandName,
			Message:   fmt.Sprintf("Welcome %s! We're excited to have you join our community.", c.ClientName),
			Recipient: c.Email(),
			Template:  cond.Parameters.String("template"),
		}))
		run.apply("welcome_package_sent")

		if res, ok := e.finish(ctx, run, "New client onboarding"); ok {
			results = append(results, res)
		}
	}
	return results, nil
}
