package memory_repository

import (
	"time"

	"leasing_hub/internal/domain"
)

// SeedDemo наполняет хранилище демонстрационными данными для локального режима.
// Данные подобраны так, чтобы каждая категория правил находила хотя бы одну сущность.
func SeedDemo(s *Store, now time.Time) {
	day := domain.Day

	premium := s.PutSite(domain.Site{
		SiteCode: "FC-01", ZoneName: "Main Food Court", UsageType: domain.UsageTypeFB,
		BasePricePerSqm: 180, CurrentPricePerSqm: 200, AreaSqm: 45,
		LocationPremium: 25, SeasonalMultiplier: 1.1, DemandFactor: 1.4,
		FootTrafficScore: 9, VisibilityRating: 8, Status: domain.SiteStatusVacant,
		CreatedAt: now.Add(-20 * day),
	})
	s.PutSite(domain.Site{
		SiteCode: "FS-07", ZoneName: "Fashion Street", UsageType: domain.UsageTypeRetail,
		BasePricePerSqm: 120, CurrentPricePerSqm: 120, AreaSqm: 80,
		DemandFactor: 0.7, FootTrafficScore: 4, VisibilityRating: 5,
		Status: domain.SiteStatusVacant, CreatedAt: now.Add(-120 * day),
	})
	leased := s.PutSite(domain.Site{
		SiteCode: "GA-02", ZoneName: "Gaming Arena", UsageType: domain.UsageTypeEntertainment,
		BasePricePerSqm: 90, CurrentPricePerSqm: 95, AreaSqm: 150,
		DemandFactor: 1.0, FootTrafficScore: 7, VisibilityRating: 6,
		Status: domain.SiteStatusLeased, CreatedAt: now.Add(-400 * day),
	})

	loyal := s.PutClient(domain.Client{
		ClientName: "Sara Al-Harbi", BusinessName: "Qahwa House", BusinessType: "F&B",
		ContactInfo:    domain.ContactInfo{Email: "sara@qahwa.sa", Phone: "+966500000001"},
		PreviousLeases: 4, PaymentHistoryScore: 9.2, CreatedAt: now.Add(-700 * day),
	})
	s.PutClient(domain.Client{
		ClientName: "Omar Saleh", BusinessName: "Pixel Play", BusinessType: "Entertainment",
		ContactInfo: domain.ContactInfo{Email: "omar@pixelplay.sa"},
		CreatedAt:   now.Add(-2 * day),
	})

	s.PutLeaseRequest(domain.LeaseRequest{
		SiteID: premium.ID, ClientID: loyal.ID, BusinessName: loyal.BusinessName,
		ActivityType: string(domain.UsageTypeFB), RequestedDurationMonths: 24,
		Status: domain.LeaseRequestStatusNew, PriorityScore: 6,
		CreatedAt: now.Add(-1 * day),
	})
	signed := s.PutLeaseRequest(domain.LeaseRequest{
		SiteID: leased.ID, ClientID: loyal.ID, BusinessName: loyal.BusinessName,
		ActivityType: string(domain.UsageTypeEntertainment), RequestedDurationMonths: 12,
		Status: domain.LeaseRequestStatusLeased, PriorityScore: 7,
		CreatedAt: now.Add(-380 * day),
	})

	active := s.PutContract(domain.LeaseContract{
		RequestID: signed.ID, Status: domain.ContractStatusActive,
		EndDate: now.Add(45 * day), CreatedAt: now.Add(-370 * day),
	})
	s.PutContract(domain.LeaseContract{
		RequestID: signed.ID, Status: domain.ContractStatusPendingSignature,
		EndDate: now.Add(365 * day), CreatedAt: now.Add(-10 * day),
	})

	s.PutPayment(domain.RentPayment{
		ContractID: active.ID, Amount: 14250, DueDate: now.Add(-15 * day),
		Status: domain.PaymentStatusPending,
	})
	s.PutPayment(domain.RentPayment{
		ContractID: active.ID, Amount: 14250, DueDate: now.Add(15 * day),
		Status: domain.PaymentStatusPending,
	})

	s.PutInsight(domain.OperationalInsight{
		Date: now.Add(-1 * day), OccupancyRate: 52.5, TotalRevenue: 1250000, ActiveLeases: 21,
	})
}
