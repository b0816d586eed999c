package domain

import (
	"time"

	"github.com/google/uuid"
)

// OperationalInsight — дневной срез операционных показателей.
type OperationalInsight struct {
	ID            uuid.UUID `json:"insight_id"`
	Date          time.Time `json:"date"`
	OccupancyRate float64   `json:"occupancy_rate"`
	TotalRevenue  float64   `json:"total_revenue"`
	ActiveLeases  int       `json:"active_leases"`
}
