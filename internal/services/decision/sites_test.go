package decision

import (
	"context"
	"testing"

	"leasing_hub/internal/domain"
	"leasing_hub/internal/services/pricing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteOptimization_Pricing(t *testing.T) {
	tests := []struct {
		name        string
		site        domain.Site
		wantActions []string
		wantPrice   float64
	}{
		{
			name: "high demand raises price",
			site: domain.Site{
				SiteCode: "S-1", BasePricePerSqm: 100, CurrentPricePerSqm: 100, DemandFactor: 1.5,
				CreatedAt: testNow.Add(-10 * domain.Day),
			},
			wantActions: []string{"price_increased"},
			wantPrice:   110,
		},
		{
			name: "increase stops at twice the base price",
			site: domain.Site{
				SiteCode: "S-2", BasePricePerSqm: 100, CurrentPricePerSqm: 190, DemandFactor: 1.4,
				CreatedAt: testNow.Add(-10 * domain.Day),
			},
			wantActions: []string{"price_increased"},
			wantPrice:   200,
		},
		{
			name: "price above the corridor is corrected, not increased",
			site: domain.Site{
				SiteCode: "S-2a", BasePricePerSqm: 100, CurrentPricePerSqm: 250, DemandFactor: 1.4,
				CreatedAt: testNow.Add(-10 * domain.Day),
			},
			wantActions: []string{"price_clamped"},
			wantPrice:   200,
		},
		{
			name: "price already at the upper bound is left alone",
			site: domain.Site{
				SiteCode: "S-2b", BasePricePerSqm: 100, CurrentPricePerSqm: 200, DemandFactor: 1.4,
				CreatedAt: testNow.Add(-10 * domain.Day),
			},
			wantPrice: 200,
		},
		{
			name: "increase stops at ceiling",
			site: domain.Site{
				SiteCode: "S-3", BasePricePerSqm: 480, CurrentPricePerSqm: 480, DemandFactor: 1.3,
				CreatedAt: testNow.Add(-10 * domain.Day),
			},
			wantActions: []string{"price_increased"},
			wantPrice:   500,
		},
		{
			name: "long vacant low demand site is discounted and promoted",
			site: domain.Site{
				SiteCode: "S-4", BasePricePerSqm: 100, CurrentPricePerSqm: 100, DemandFactor: 0.5,
				CreatedAt: testNow.Add(-100 * domain.Day),
			},
			wantActions: []string{"price_decreased", "promotion_created"},
			wantPrice:   90,
		},
		{
			name: "decrease stops at floor",
			site: domain.Site{
				SiteCode: "S-5", BasePricePerSqm: 100, CurrentPricePerSqm: 52, DemandFactor: 0.7,
				CreatedAt: testNow.Add(-70 * domain.Day),
			},
			wantActions: []string{"price_decreased"},
			wantPrice:   50,
		},
		{
			name: "low demand but recently listed",
			site: domain.Site{
				SiteCode: "S-6", BasePricePerSqm: 100, CurrentPricePerSqm: 100, DemandFactor: 0.5,
				CreatedAt: testNow.Add(-30 * domain.Day),
			},
			wantPrice: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, onlyCategories(domain.CategorySiteOptimization), nil)
			tt.site.Status = domain.SiteStatusVacant
			site := f.store.PutSite(tt.site)

			report := f.engine.ExecuteDecisionRules(context.Background())

			stored, err := f.store.Sites().GetByID(context.Background(), site.ID)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantPrice, stored.CurrentPricePerSqm, 1e-9)

			if tt.wantActions == nil {
				assert.Empty(t, report.Results)
				return
			}
			require.Len(t, report.Results, 1)
			assert.Equal(t, tt.wantActions, report.Results[0].ActionsApplied)
		})
	}
}

func TestSiteOptimization_DecreaseNeverBelowHalfBase(t *testing.T) {
	cfg := onlyCategories(domain.CategorySiteOptimization)
	for i := range cfg.Categories {
		if cfg.Categories[i].Name != domain.CategorySiteOptimization {
			continue
		}
		cfg.Categories[i].Conditions = []domain.Condition{{
			Rule:       domain.RuleLowDemandPricing,
			Parameters: domain.Parameters{"price_decrease_percentage": 50.0, "min_price_floor": 10.0},
		}}
	}
	f := newFixture(t, cfg, nil)
	site := f.store.PutSite(domain.Site{
		SiteCode: "S-7", Status: domain.SiteStatusVacant, BasePricePerSqm: 100, CurrentPricePerSqm: 55,
		DemandFactor: 0.6, CreatedAt: testNow.Add(-61 * domain.Day),
	})

	f.engine.ExecuteDecisionRules(context.Background())

	stored, err := f.store.Sites().GetByID(context.Background(), site.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, stored.CurrentPricePerSqm)
}

func TestSiteOptimization_ZeroCurrentPriceStartsFromDynamicPrice(t *testing.T) {
	f := newFixture(t, onlyCategories(domain.CategorySiteOptimization), nil)
	site := f.store.PutSite(domain.Site{
		SiteCode: "S-8", Status: domain.SiteStatusVacant, BasePricePerSqm: 100,
		UsageType: domain.UsageTypeRetail, DemandFactor: 1.3, CreatedAt: testNow.Add(-5 * domain.Day),
	})
	start := pricing.DynamicPricing(&site)

	report := f.engine.ExecuteDecisionRules(context.Background())

	require.Len(t, report.Results, 1)
	assert.Equal(t, start, report.Results[0].Details["old_price"])

	stored, err := f.store.Sites().GetByID(context.Background(), site.ID)
	require.NoError(t, err)
	lower, upper := pricing.PriceBounds(site.BasePricePerSqm)
	assert.GreaterOrEqual(t, stored.CurrentPricePerSqm, lower)
	assert.LessOrEqual(t, stored.CurrentPricePerSqm, upper)
	assert.Greater(t, stored.CurrentPricePerSqm, start-0.01)
}

func TestSiteOptimization_UpdateFailureSkipsRemainingConditions(t *testing.T) {
	f := newFixture(t, onlyCategories(domain.CategorySiteOptimization), func(r *Repositories) {
		r.Sites = &siteRepoMock{
			SiteRepository: r.Sites,
			UpdateSiteFunc: func(context.Context, uuid.UUID, domain.SiteUpdate) error {
				return errStorage
			},
		}
	})
	f.store.PutSite(domain.Site{
		SiteCode: "S-9", Status: domain.SiteStatusVacant, BasePricePerSqm: 100, CurrentPricePerSqm: 100,
		DemandFactor: 0.5, CreatedAt: testNow.Add(-120 * domain.Day),
	})

	report := f.engine.ExecuteDecisionRules(context.Background())

	require.Len(t, report.Results, 1)
	res := report.Results[0]
	assert.False(t, res.Success)
	assert.Empty(t, res.ActionsApplied)
	assert.Empty(t, f.store.AllDecisionLog())
}

func TestSiteOptimization_ReadsEveryPageOfVacantSites(t *testing.T) {
	var pages []int32
	var stored domain.Site
	f := newFixture(t, onlyCategories(domain.CategorySiteOptimization), func(r *Repositories) {
		r.Sites = &siteRepoMock{
			SiteRepository: r.Sites,
			ListSitesFunc: func(_ context.Context, filter domain.SiteFilter) ([]domain.Site, error) {
				pages = append(pages, filter.Page)
				if filter.Page == 1 {
					quiet := make([]domain.Site, domain.MaxPageSize)
					for i := range quiet {
						quiet[i] = domain.Site{
							ID: uuid.New(), BasePricePerSqm: 100, CurrentPricePerSqm: 100,
							DemandFactor: 1.0, Status: domain.SiteStatusVacant, CreatedAt: testNow,
						}
					}
					return quiet, nil
				}
				return []domain.Site{stored}, nil
			},
		}
	})
	stored = f.store.PutSite(domain.Site{
		SiteCode: "S-1001", Status: domain.SiteStatusVacant, BasePricePerSqm: 100, CurrentPricePerSqm: 100,
		DemandFactor: 1.5, CreatedAt: testNow.Add(-10 * domain.Day),
	})

	report := f.engine.ExecuteDecisionRules(context.Background())

	assert.Equal(t, []int32{1, 2}, pages)
	require.Len(t, report.Results, 1)
	assert.Equal(t, stored.ID, *report.Results[0].EntityID)
	assert.Equal(t, []string{"price_increased"}, report.Results[0].ActionsApplied)
}
