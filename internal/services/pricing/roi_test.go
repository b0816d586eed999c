package pricing

import (
	"math"
	"testing"

	"leasing_hub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestROI(t *testing.T) {
	site := &domain.Site{CurrentPricePerSqm: 200, AreaSqm: 50}
	b := LeasePrice(site, 12)

	r := ROI(site, b)
	require.NotNil(t, r)

	assert.InDelta(t, 138996.0, r.AnnualRent, 1e-6)
	assert.InDelta(t, 200000.0, r.PropertyValue, 1e-6)
	assert.InDelta(t, 6949.8, r.MaintenanceCost, 1e-6)
	assert.InDelta(t, 11119.68, r.ManagementCost, 1e-6)
	assert.InDelta(t, 120926.52, r.NetIncome, 1e-6)
	assert.InDelta(t, 60.46, r.ROIPercentage, 1e-9)
	assert.InDelta(t, 1.65, r.PaybackPeriod, 1e-9)
}

func TestROI_ZeroNetIncome(t *testing.T) {
	site := &domain.Site{CurrentPricePerSqm: 200, AreaSqm: 50}

	r := ROI(site, &PriceBreakdown{})
	require.NotNil(t, r)
	assert.True(t, math.IsInf(r.PaybackPeriod, 1))
}

func TestROI_NilInputs(t *testing.T) {
	assert.Nil(t, ROI(nil, &PriceBreakdown{}))
	assert.Nil(t, ROI(&domain.Site{}, nil))
}
