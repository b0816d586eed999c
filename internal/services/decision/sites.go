package decision

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"leasing_hub/internal/domain"
	"leasing_hub/internal/lib/money"
	"leasing_hub/internal/services/pricing"

	"github.com/samber/lo"
)

const ruleSiteOptimization = "site_optimization"

const (
	actionPriceIncreased = "price_increased"
	actionPriceDecreased = "price_decreased"
	actionPriceClamped   = "price_clamped"
)

const (
	highDemandPricingMin = 1.3
	lowDemandPricingMax  = 0.8
	lowDemandVacantDays  = 60
	promotionVacantDays  = 90
	defaultPromotionDays = 30
)

func (e *Engine) processSiteOptimization(ctx context.Context, cat domain.RuleCategory) ([]ActionResult, error) {
	const op = "decision.Engine.processSiteOptimization"

	log := e.log.With(slog.String("op", op))

	sites, err := e.listVacantSites(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("vacant sites", slog.Int("count", len(sites)))

	results := make([]ActionResult, 0, len(sites))
	for i := range sites {
		if res, ok := e.optimizeSite(ctx, cat, &sites[i]); ok {
			results = append(results, res)
		}
	}
	return results, nil
}

// listVacantSites выбирает все свободные площадки постранично.
func (e *Engine) listVacantSites(ctx context.Context) ([]domain.Site, error) {
	var sites []domain.Site
	for page := int32(1); ; page++ {
		batch, err := e.repos.Sites.ListSites(ctx, domain.SiteFilter{
			Status:   lo.ToPtr(domain.SiteStatusVacant),
			Page:     page,
			PageSize: domain.MaxPageSize,
		})
		if err != nil {
			return nil, err
		}
		sites = append(sites, batch...)
		if len(batch) < domain.MaxPageSize {
			return sites, nil
		}
	}
}

func (e *Engine) optimizeSite(ctx context.Context, cat domain.RuleCategory, site *domain.Site) (ActionResult, bool) {
	run := e.startEntity(ruleSiteOptimization, domain.EntityTypeSite, site.ID)
	now := e.now()

	vacantDays := domain.WholeDaysBetween(site.CreatedAt, now)
	run.details["vacant_days"] = vacantDays

	price := site.CurrentPricePerSqm
	if price <= 0 {
		price = pricing.DynamicPricing(site)
	}

	if cond, ok := cat.Condition(domain.RuleHighDemandPricing); ok && site.DemandFactor >= highDemandPricingMin {
		next := price * (1 + cond.Parameters.FloatOr("price_increase_percentage", 0)/100)
		if ceiling, ok := cond.Parameters.Float("max_price_ceiling"); ok {
			next = min(next, ceiling)
		}
		e.repriceSite(ctx, run, site, price, e.boundPrice(site, next), actionPriceIncreased)
	}

	if cond, ok := cat.Condition(domain.RuleLowDemandPricing); ok && !run.failed() &&
		site.DemandFactor <= lowDemandPricingMax && vacantDays >= lowDemandVacantDays {
		next := price * (1 - cond.Parameters.FloatOr("price_decrease_percentage", 0)/100)
		if floor, ok := cond.Parameters.Float("min_price_floor"); ok {
			next = max(next, floor)
		}
		e.repriceSite(ctx, run, site, price, e.boundPrice(site, next), actionPriceDecreased)
	}

	if cond, ok := cat.Condition(domain.RuleVacantSitePromotion); ok && !run.failed() && vacantDays >= promotionVacantDays {
		days := cond.Parameters.FloatOr("promotion_duration_days", defaultPromotionDays)
		run.details["promotion_end_date"] = now.Add(time.Duration(days * float64(domain.Day)))
		run.apply("promotion_created")
	}

	return e.finish(ctx, run, fmt.Sprintf("Site vacant for %d days", vacantDays))
}

// boundPrice удерживает цену в коридоре [0.5, 2] от базовой, если база задана.
func (e *Engine) boundPrice(site *domain.Site, price float64) float64 {
	if site.BasePricePerSqm > 0 {
		lower, upper := pricing.PriceBounds(site.BasePricePerSqm)
		price = money.Clamp(price, lower, upper)
	}
	return money.Round2(price)
}

// repriceSite записывает новую цену. Если коридор развернул изменение против
// направления правила, действие фиксируется как price_clamped; без изменения цены
// ничего не пишется.
func (e *Engine) repriceSite(ctx context.Context, run *entityRun, site *domain.Site, oldPrice, newPrice float64, action string) {
	switch {
	case newPrice == oldPrice:
		return
	case action == actionPriceIncreased && newPrice < oldPrice,
		action == actionPriceDecreased && newPrice > oldPrice:
		action = actionPriceClamped
	}

	err := e.repos.Sites.UpdateSite(ctx, site.ID, domain.SiteUpdate{CurrentPricePerSqm: &newPrice})
	if err != nil {
		run.fail(fmt.Errorf("update site price: %w", err))
		return
	}
	site.CurrentPricePerSqm = newPrice
	run.details["old_price"] = oldPrice
	run.details["new_price"] = newPrice
	run.apply(action)
}
