package httpapi

import (
	"math"
	"net/http"

	"leasing_hub/internal/domain"
	"leasing_hub/internal/services/lease"
	"leasing_hub/internal/services/pricing"
)

func (h *Handler) listSites(w http.ResponseWriter, r *http.Request) {
	page, size, err := queryPage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pagination parameters")
		return
	}

	sites, err := h.deps.Sites.ListSites(r.Context(), domain.SiteFilter{
		Status:    queryPtr[domain.SiteStatus](r, "status"),
		UsageType: queryPtr[domain.UsageType](r, "usage_type"),
		ZoneName:  queryPtr[string](r, "zone_name"),
		Page:      page,
		PageSize:  size,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if sites == nil {
		sites = []domain.Site{}
	}
	writeJSON(w, http.StatusOK, sites)
}

func (h *Handler) siteStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.deps.Sites.Stats(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) getSite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid site id")
		return
	}

	site, err := h.deps.Sites.GetSite(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, site)
}

func (h *Handler) repriceSite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid site id")
		return
	}

	site, err := h.deps.Sites.Reprice(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, site)
}

// roiResponse — ROIReport для JSON: бесконечный или неопределенный срок окупаемости становится null.
type roiResponse struct {
	AnnualRent      float64  `json:"annual_rent"`
	PropertyValue   float64  `json:"property_value"`
	MaintenanceCost float64  `json:"maintenance_cost"`
	ManagementCost  float64  `json:"management_cost"`
	NetIncome       float64  `json:"net_income"`
	ROIPercentage   float64  `json:"roi_percentage"`
	PaybackPeriod   *float64 `json:"payback_period"`
}

type quoteResponse struct {
	Site      domain.Site              `json:"site"`
	Breakdown *pricing.PriceBreakdown  `json:"price_breakdown"`
	Totals    *pricing.LeaseCostTotals `json:"totals"`
	ROI       *roiResponse             `json:"roi"`
}

func toQuoteResponse(q lease.Quote) quoteResponse {
	resp := quoteResponse{Site: q.Site, Breakdown: q.Breakdown, Totals: q.Totals}
	if q.ROI == nil {
		return resp
	}

	roi := &roiResponse{
		AnnualRent:      q.ROI.AnnualRent,
		PropertyValue:   q.ROI.PropertyValue,
		MaintenanceCost: q.ROI.MaintenanceCost,
		ManagementCost:  q.ROI.ManagementCost,
		NetIncome:       q.ROI.NetIncome,
		ROIPercentage:   finiteOrZero(q.ROI.ROIPercentage),
	}
	if p := q.ROI.PaybackPeriod; !math.IsInf(p, 0) && !math.IsNaN(p) {
		roi.PaybackPeriod = &p
	}
	resp.ROI = roi
	return resp
}

func finiteOrZero(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

func (h *Handler) quoteSite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid site id")
		return
	}
	months, err := queryInt(r, "duration_months", pricing.DefaultDurationMonths)
	if err != nil {
		writeError(w, http.StatusBadRequest, "duration_months must be an integer")
		return
	}

	q, err := h.deps.Leases.Quote(r.Context(), id, months)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteResponse(q))
}
