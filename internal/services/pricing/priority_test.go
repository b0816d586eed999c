package pricing

import (
	"testing"

	"leasing_hub/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestPriorityScore_MaximallyQualified(t *testing.T) {
	req := &domain.LeaseRequest{RequestedDurationMonths: 36, ActivityType: "F&B"}
	site := &domain.Site{LocationPremium: 25, DemandFactor: 1.5}
	client := &domain.Client{PreviousLeases: 5, PaymentHistoryScore: 9.5}

	assert.Equal(t, 10.0, PriorityScore(req, site, client))
}

func TestPriorityScore_NilInputs(t *testing.T) {
	assert.Equal(t, BasePriorityScore, PriorityScore(nil, nil, nil))
}

func TestPriorityScore_Tiers(t *testing.T) {
	tests := []struct {
		name   string
		req    *domain.LeaseRequest
		site   *domain.Site
		client *domain.Client
		want   float64
	}{
		{
			name:   "lower client tiers",
			client: &domain.Client{PreviousLeases: 1, PaymentHistoryScore: 7},
			want:   6.5,
		},
		{
			name: "retail with one year lease",
			req:  &domain.LeaseRequest{RequestedDurationMonths: 12, ActivityType: "Retail"},
			want: 6.3,
		},
		{
			name: "mid premium and demand",
			site: &domain.Site{LocationPremium: 10, DemandFactor: 1.1},
			want: 6.5,
		},
		{
			name:   "nothing qualifies",
			req:    &domain.LeaseRequest{RequestedDurationMonths: 6, ActivityType: "Services"},
			site:   &domain.Site{LocationPremium: 5, DemandFactor: 0.9},
			client: &domain.Client{PreviousLeases: 0, PaymentHistoryScore: 4},
			want:   5.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PriorityScore(tt.req, tt.site, tt.client), 1e-9)
		})
	}
}

func TestPriorityScore_AlwaysClamped(t *testing.T) {
	extremes := []float64{-1e9, -1, 0, 1, 1e9}

	for _, v := range extremes {
		req := &domain.LeaseRequest{RequestedDurationMonths: int(v), ActivityType: "F&B"}
		site := &domain.Site{LocationPremium: v, DemandFactor: v}
		client := &domain.Client{PreviousLeases: int(v), PaymentHistoryScore: v}

		score := PriorityScore(req, site, client)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, MaxPriorityScore)
	}
}
