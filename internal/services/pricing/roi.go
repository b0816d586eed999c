package pricing

import (
	"leasing_hub/internal/domain"
	"leasing_hub/internal/lib/money"
)

const (
	propertyValueYears  = 20
	maintenanceCostRate = 0.05
	managementCostRate  = 0.08
)

// ROIReport — оценка доходности площадки.
// PaybackPeriod может быть ±Inf или NaN, если чистый доход не положителен.
type ROIReport struct {
	AnnualRent      float64 `json:"annual_rent"`
	PropertyValue   float64 `json:"property_value"`
	MaintenanceCost float64 `json:"maintenance_cost"`
	ManagementCost  float64 `json:"management_cost"`
	NetIncome       float64 `json:"net_income"`
	ROIPercentage   float64 `json:"roi_percentage"`
	PaybackPeriod   float64 `json:"payback_period"`
}

// ROI считает доходность по площадке и разбивке стоимости. nil на входе → nil.
func ROI(site *domain.Site, b *PriceBreakdown) *ROIReport {
	if site == nil || b == nil {
		return nil
	}

	annualRent := b.TotalAmount * 12
	propertyValue := site.AreaSqm * site.CurrentPricePerSqm * propertyValueYears
	maintenance := annualRent * maintenanceCostRate
	management := annualRent * managementCostRate
	netIncome := annualRent - maintenance - management

	return &ROIReport{
		AnnualRent:      annualRent,
		PropertyValue:   propertyValue,
		MaintenanceCost: maintenance,
		ManagementCost:  management,
		NetIncome:       netIncome,
		ROIPercentage:   money.Round2(netIncome / propertyValue * 100),
		PaybackPeriod:   money.Round2(propertyValue / netIncome),
	}
}
