package decision

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"leasing_hub/internal/domain"
	"leasing_hub/internal/services/pricing"

	"github.com/samber/lo"
)

const ruleLeaseRequestPriority = "lease_request_priority"

// Пороговые значения условий приоритизации.
const (
	highValuePaymentScore   = 8.0
	highValuePreviousLeases = 2
	premiumLocationMin      = 20.0
	longTermLeaseMonths     = 24
	highDemandZoneMin       = 1.2
)

func (e *Engine) processLeaseRequestPriority(ctx context.Context, cat domain.RuleCategory) ([]ActionResult, error) {
	const op = "decision.Engine.processLeaseRequestPriority"

	log := e.log.With(slog.String("op", op))

	items, err := e.repos.LeaseRequests.ListForReview(ctx, []domain.LeaseRequestStatus{
		domain.LeaseRequestStatusNew,
		domain.LeaseRequestStatusUnderReview,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("lease requests for review", slog.Int("count", len(items)))

	results := make([]ActionResult, 0, len(items))
	for _, item := range items {
		if res, ok := e.prioritizeRequest(ctx, cat, item); ok {
			results = append(results, res)
		}
	}
	return results, nil
}

func (e *Engine) prioritizeRequest(ctx context.Context, cat domain.RuleCategory, item domain.LeaseRequestForReview) (ActionResult, bool) {
	req := item.Request
	run := e.startEntity(ruleLeaseRequestPriority, domain.EntityTypeLeaseRequest, req.ID)

	oldScore := req.PriorityScore
	if oldScore == 0 {
		oldScore = pricing.BasePriorityScore
	}
	score := oldScore
	persisted := oldScore

	if cond, ok := cat.Condition(domain.RuleHighValueClient); ok && isHighValueClient(item.Client) {
		score += cond.Parameters.FloatOr("priority_boost", 0)
		run.apply("high_value_client_boost")

		if threshold, ok := cond.Parameters.Float("auto_approve_threshold"); ok && score >= threshold {
			err := e.repos.LeaseRequests.UpdateLeaseRequest(ctx, req.ID, domain.LeaseRequestUpdate{
				Status: lo.ToPtr(domain.LeaseRequestStatusApproved),
			})
			if err != nil {
				run.fail(fmt.Errorf("auto approve: %w", err))
			} else {
				run.apply("auto_approved")
			}
		}
	}

	if cond, ok := cat.Condition(domain.RulePremiumLocation); ok && !run.failed() &&
		item.Site != nil && item.Site.LocationPremium >= premiumLocationMin {
		score += cond.Parameters.FloatOr("priority_boost", 0)
		run.apply("premium_location_boost")
	}

	if cond, ok := cat.Condition(domain.RuleLongTermLease); ok && !run.failed() &&
		req.RequestedDurationMonths >= longTermLeaseMonths {
		score += cond.Parameters.FloatOr("priority_boost", 0)
		run.apply("long_term_lease_boost")
	}

	if cond, ok := cat.Condition(domain.RuleHighDemandZone); ok && !run.failed() &&
		item.Site != nil && item.Site.DemandFactor >= highDemandZoneMin {
		boosted := score + cond.Parameters.FloatOr("priority_boost", 0)

		hours := cond.Parameters.FloatOr("review_deadline_hours", 0)
		deadline := e.now().Add(time.Duration(hours * float64(time.Hour)))
		err := e.repos.LeaseRequests.UpdateLeaseRequest(ctx, req.ID, domain.LeaseRequestUpdate{
			PriorityScore:  lo.ToPtr(min(boosted, pricing.MaxPriorityScore)),
			ReviewDeadline: &deadline,
		})
		if err != nil {
			run.fail(fmt.Errorf("set review deadline: %w", err))
		} else {
			score = boosted
			persisted = min(boosted, pricing.MaxPriorityScore)
			run.apply("high_demand_zone_boost")
			run.details["review_deadline"] = deadline
		}
	}

	if len(run.actions) > 0 && !run.failed() {
		newScore := min(score, pricing.MaxPriorityScore)
		err := e.repos.LeaseRequests.UpdateLeaseRequest(ctx, req.ID, domain.LeaseRequestUpdate{
			PriorityScore: &newScore,
		})
		if err != nil {
			run.fail(fmt.Errorf("update priority: %w", err))
		} else {
			persisted = newScore
		}
	}

	// В журнал и детали попадает только записанный в хранилище приоритет.
	run.details["old_priority"] = oldScore
	run.details["new_priority"] = persisted

	resultText := fmt.Sprintf("Priority updated from %s to %s", formatNumber(oldScore), formatNumber(persisted))
	if run.failed() {
		resultText = "Priority update failed: " + run.err.Error()
	}
	return e.finish(ctx, run, resultText)
}

func isHighValueClient(c *domain.Client) bool {
	return c != nil &&
		c.PaymentHistoryScore >= highValuePaymentScore &&
		c.PreviousLeases >= highValuePreviousLeases
}
