package decision

import (
	"context"
	"fmt"
	"log/slog"

	"leasing_hub/internal/domain"
)

const ruleContractManagement = "contract_management"

const (
	renewalNoticeWindowDays = 90
	urgentNoticeWindowDays  = 30
	unsignedFollowupDays    = 7
)

func (e *Engine) processContractManagement(ctx context.Context, cat domain.RuleCategory) ([]ActionResult, error) {
	const op = "decision.Engine.processContractManagement"

	log := e.log.With(slog.String("op", op))
	now := e.now()

	expiring, err := e.repos.Contracts.ListExpiring(ctx, domain.ContractStatusActive, now.Add(renewalNoticeWindowDays*domain.Day))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("expiring contracts", slog.Int("count", len(expiring)))

	results := make([]ActionResult, 0, len(expiring))
	for _, c := range expiring {
		if res, ok := e.noticeExpiringContract(ctx, cat, c); ok {
			results = append(results, res)
		}
	}

	unsigned, err := e.repos.Contracts.ListPendingSignature(ctx, now.Add(-unsignedFollowupDays*domain.Day))
	if err != nil {
		return results, fmt.Errorf("%s: %w", op, err)
	}

	cond, ok := cat.Condition(domain.RuleUnsignedContract7Days)
	if !ok {
		return results, nil
	}

	for _, c := range unsigned {
		run := e.startEntity(ruleContractManagement, domain.EntityTypeLeaseContract, c.ID)
		run.effect(e.sendNotification(ctx, notification{
			Type:      domain.NotificationTypeContractDeadline,
			Title:     "Contract Signature Follow-up",
			Message:   "Your lease contract has been pending signature for 7 days. Please sign to proceed.",
			Recipient: e.managerEmail,
			Template:  cond.Parameters.String("template"),
		}))
		run.apply("signature_followup")

		if res, ok := e.finish(ctx, run, "Contract unsigned for 7+ days"); ok {
			results = append(results, res)
		}
	}

	return results, nil
}

func (e *Engine) noticeExpiringContract(ctx context.Context, cat domain.RuleCategory, c domain.ContractWithClient) (ActionResult, bool) {
	contract := c.Contract
	run := e.startEntity(ruleContractManagement, domain.EntityTypeLeaseContract, contract.ID)

	days := domain.WholeDaysBetween(e.now(), contract.EndDate)
	run.details["days_until_expiry"] = days

	switch {
	case days > urgentNoticeWindowDays && days <= renewalNoticeWindowDays:
		if cond, ok := cat.Condition(domain.RuleContractExpiry90Days); ok {
			run.effect(e.sendNotification(ctx, notification{
				Type:  domain.NotificationTypeContractDeadline,
				Title: "Contract Renewal Notice - 90 Days",
				Message: fmt.Sprintf("Your lease contract expires on %s. Please contact us to discuss renewal options.",
					contract.EndDate.Format("2006-01-02")),
				Recipient: c.ClientEmail,
				Template:  cond.Parameters.String("template"),
			}))
			run.apply("90_day_renewal_notice")
		}
	case days <= urgentNoticeWindowDays:
		if cond, ok := cat.Condition(domain.RuleContractExpiry30Days); ok {
			run.effect(e.sendNotification(ctx, notification{
				Type:      domain.NotificationTypeContractDeadline,
				Title:     "URGENT: Contract Renewal Notice - 30 Days",
				Message:   fmt.Sprintf("Your lease contract expires in %d days. Immediate action required.", days),
				Recipient: c.ClientEmail,
				Template:  cond.Parameters.String("template"),
			}))
			run.apply("30_day_urgent_notice")
		}
	}

	return e.finish(ctx, run, fmt.Sprintf("Contract expires in %d days", days))
}
