package pricing

import (
	"leasing_hub/internal/domain"
	"leasing_hub/internal/lib/money"
)

const (
	// BasePriorityScore — стартовый приоритет заявки.
	BasePriorityScore = 5.0
	// MaxPriorityScore — верхняя граница приоритета.
	MaxPriorityScore = 10.0
)

// PriorityScore — приоритет заявки в диапазоне [0, 10].
// Каждый бонус проверяется независимо; nil-аргументы бонусов не дают.
func PriorityScore(req *domain.LeaseRequest, site *domain.Site, client *domain.Client) float64 {
	score := BasePriorityScore

	if client != nil {
		switch {
		case client.PreviousLeases >= 3:
			score += 1.5
		case client.PreviousLeases >= 1:
			score += 1.0
		}

		switch {
		case client.PaymentHistoryScore >= 9.0:
			score += 1.0
		case client.PaymentHistoryScore >= 7.0:
			score += 0.5
		}
	}

	if req != nil {
		switch {
		case req.RequestedDurationMonths >= 24:
			score += 1.0
		case req.RequestedDurationMonths >= 12:
			score += 0.5
		}

		switch domain.UsageType(req.ActivityType) {
		case domain.UsageTypeFB:
			score += 1.0
		case domain.UsageTypeRetail:
			score += 0.8
		}
	}

	if site != nil {
		switch {
		case site.LocationPremium >= 20:
			score += 1.5
		case site.LocationPremium >= 10:
			score += 1.0
		}

		switch {
		case site.DemandFactor >= 1.3:
			score += 1.0
		case site.DemandFactor >= 1.1:
			score += 0.5
		}
	}

	return money.Clamp(score, 0, MaxPriorityScore)
}
