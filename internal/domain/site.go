package domain

import (
	"time"

	"github.com/google/uuid"
)

// Site — арендуемая площадка (operations_sites).
// Числовые коэффициенты с нулевым значением считаются незаданными.
type Site struct {
	ID                 uuid.UUID  `json:"site_id"`
	SiteCode           string     `json:"site_code"`
	ZoneName           string     `json:"zone_name"`
	BasePricePerSqm    float64    `json:"base_price_per_sqm"`
	CurrentPricePerSqm float64    `json:"current_price_per_sqm"`
	AreaSqm            float64    `json:"area_sqm"`
	UsageType          UsageType  `json:"usage_type"`
	LocationPremium    float64    `json:"location_premium"`
	SeasonalMultiplier float64    `json:"seasonal_multiplier"`
	DemandFactor       float64    `json:"demand_factor"`
	FootTrafficScore   float64    `json:"foot_traffic_score"`
	VisibilityRating   float64    `json:"visibility_rating"`
	Status             SiteStatus `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// UsageType — тип использования площадки.
type UsageType string

const (
	UsageTypeFB            UsageType = "F&B"
	UsageTypeRetail        UsageType = "Retail"
	UsageTypeEntertainment UsageType = "Entertainment"
	UsageTypeServices      UsageType = "Services"
)

func (t UsageType) String() string {
	return string(t)
}

// SiteStatus — статус площадки.
type SiteStatus string

const (
	SiteStatusVacant           SiteStatus = "vacant"
	SiteStatusLeased           SiteStatus = "leased"
	SiteStatusReserved         SiteStatus = "reserved"
	SiteStatusUnderMaintenance SiteStatus = "under_maintenance"
)

func (s SiteStatus) String() string {
	return string(s)
}

// SiteFilter — фильтр для выборки площадок.
type SiteFilter struct {
	Status    *SiteStatus
	UsageType *UsageType
	ZoneName  *string
	Page      int32
	PageSize  int32
}

// SiteUpdate — частичное обновление площадки.
type SiteUpdate struct {
	CurrentPricePerSqm *float64
	Status             *SiteStatus
}

// IsEmpty сообщает, что обновлять нечего.
func (u SiteUpdate) IsEmpty() bool {
	return u.CurrentPricePerSqm == nil && u.Status == nil
}

// SiteStats — агрегаты по площадкам для дашборда.
type SiteStats struct {
	Total            int     `json:"total"`
	Vacant           int     `json:"vacant"`
	Leased           int     `json:"leased"`
	Reserved         int     `json:"reserved"`
	UnderMaintenance int     `json:"under_maintenance"`
	OccupancyRate    float64 `json:"occupancy_rate"`
}

// Add учитывает count площадок со статусом status.
func (s *SiteStats) Add(status SiteStatus, count int) {
	s.Total += count
	switch status {
	case SiteStatusVacant:
		s.Vacant += count
	case SiteStatusLeased:
		s.Leased += count
	case SiteStatusReserved:
		s.Reserved += count
	case SiteStatusUnderMaintenance:
		s.UnderMaintenance += count
	}
}
