// Package pricing — расчёт цен аренды, скидок за срок, приоритета заявок и ROI.
// Все функции чистые и не выполняют I/O.
package pricing

import (
	"leasing_hub/internal/domain"
	"leasing_hub/internal/lib/money"
)

const (
	// VATRate — ставка НДС.
	VATRate = 0.15
	// PlatformFeeRate — комиссия платформы.
	PlatformFeeRate = 0.02
	// DefaultDurationMonths — срок аренды по умолчанию.
	DefaultDurationMonths = 12

	minPriceFactor = 0.5
	maxPriceFactor = 2.0
)

var usageTypeMultipliers = map[domain.UsageType]float64{
	domain.UsageTypeFB:            1.10,
	domain.UsageTypeRetail:        1.00,
	domain.UsageTypeEntertainment: 0.90,
	domain.UsageTypeServices:      0.95,
}

// PriceBreakdown — помесячная разбивка стоимости аренды.
type PriceBreakdown struct {
	BaseRent           float64 `json:"base_rent"`
	VATAmount          float64 `json:"vat_amount"`
	PlatformFee        float64 `json:"platform_fee"`
	TotalAmount        float64 `json:"total_amount"`
	DurationDiscount   float64 `json:"duration_discount"`
	PricePerSqm        float64 `json:"price_per_sqm"`
	TotalArea          float64 `json:"total_area"`
	DurationMonths     int     `json:"duration_months"`
	VATRate            float64 `json:"vat_rate"`
	PlatformFeeRate    float64 `json:"platform_fee_rate"`
	DurationMultiplier float64 `json:"duration_multiplier"`
}

// LeaseCostTotals — суммы за весь срок аренды.
type LeaseCostTotals struct {
	TotalBaseRent    float64         `json:"total_base_rent"`
	TotalVAT         float64         `json:"total_vat"`
	TotalPlatformFee float64         `json:"total_platform_fee"`
	TotalAmount      float64         `json:"total_amount"`
	MonthlyBreakdown *PriceBreakdown `json:"monthly_breakdown"`
}

// PriceBounds возвращает допустимый диапазон цены за м² для базовой цены.
func PriceBounds(base float64) (lo, hi float64) {
	return base * minPriceFactor, base * maxPriceFactor
}

// DynamicPricing — динамическая цена за м² для площадки. nil → 0.
func DynamicPricing(site *domain.Site) float64 {
	if site == nil {
		return 0
	}

	base := site.BasePricePerSqm
	price := base

	if site.LocationPremium != 0 {
		price += site.LocationPremium
	}
	if site.SeasonalMultiplier != 0 && site.SeasonalMultiplier != 1 {
		price *= site.SeasonalMultiplier
	}
	if site.DemandFactor != 0 && site.DemandFactor != 1 {
		price *= site.DemandFactor
	}
	if site.FootTrafficScore != 0 {
		price += max(0, (site.FootTrafficScore-5)*2)
	}
	if site.VisibilityRating != 0 {
		price += max(0, (site.VisibilityRating-5)*1.5)
	}
	if m, ok := usageTypeMultipliers[site.UsageType]; ok {
		price *= m
	}

	lo, hi := PriceBounds(base)
	price = max(lo, price)
	price = min(hi, price)

	return money.Round2(price)
}

// DurationMultiplier — коэффициент скидки за срок аренды. Срабатывает самый длинный подходящий порог.
func DurationMultiplier(durationMonths int) float64 {
	switch {
	case durationMonths >= 24:
		return 0.95
	case durationMonths >= 18:
		return 0.975
	case durationMonths >= 12:
		return 0.99
	default:
		return 1.0
	}
}

// LeasePrice — помесячная разбивка стоимости. durationMonths <= 0 означает срок по умолчанию.
func LeasePrice(site *domain.Site, durationMonths int) *PriceBreakdown {
	if site == nil {
		return nil
	}
	if durationMonths <= 0 {
		durationMonths = DefaultDurationMonths
	}

	pricePerSqm := site.CurrentPricePerSqm
	if pricePerSqm == 0 {
		pricePerSqm = DynamicPricing(site)
	}

	baseRent := pricePerSqm * site.AreaSqm
	multiplier := DurationMultiplier(durationMonths)
	discounted := baseRent * multiplier

	vat := discounted * VATRate
	fee := discounted * PlatformFeeRate
	total := discounted + vat + fee

	return &PriceBreakdown{
		BaseRent:           money.Round2(discounted),
		VATAmount:          money.Round2(vat),
		PlatformFee:        money.Round2(fee),
		TotalAmount:        money.Round2(total),
		DurationDiscount:   money.Round2(baseRent - discounted),
		PricePerSqm:        pricePerSqm,
		TotalArea:          site.AreaSqm,
		DurationMonths:     durationMonths,
		VATRate:            VATRate,
		PlatformFeeRate:    PlatformFeeRate,
		DurationMultiplier: multiplier,
	}
}

// TotalLeaseCost — суммы за весь срок. nil → nil.
func TotalLeaseCost(b *PriceBreakdown) *LeaseCostTotals {
	if b == nil {
		return nil
	}

	months := float64(b.DurationMonths)

	return &LeaseCostTotals{
		TotalBaseRent:    money.Round2(b.BaseRent * months),
		TotalVAT:         money.Round2(b.VATAmount * months),
		TotalPlatformFee: money.Round2(b.PlatformFee * months),
		TotalAmount:      money.Round2(b.TotalAmount * months),
		MonthlyBreakdown: b,
	}
}
