package httpapi

import (
	"encoding/json"
	"net/http"

	"leasing_hub/internal/domain"
	"leasing_hub/internal/services/lease"
)

func (h *Handler) submitLeaseRequest(w http.ResponseWriter, r *http.Request) {
	var in lease.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	sub, err := h.deps.Leases.Submit(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *Handler) listLeaseRequests(w http.ResponseWriter, r *http.Request) {
	page, size, err := queryPage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pagination parameters")
		return
	}
	siteID, err := queryUUID(r, "site_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid site_id")
		return
	}
	clientID, err := queryUUID(r, "client_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid client_id")
		return
	}

	requests, err := h.deps.Leases.ListRequests(r.Context(), domain.LeaseRequestFilter{
		Status:   queryPtr[domain.LeaseRequestStatus](r, "status"),
		SiteID:   siteID,
		ClientID: clientID,
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if requests == nil {
		requests = []domain.LeaseRequest{}
	}
	writeJSON(w, http.StatusOK, requests)
}

func (h *Handler) leaseRequestStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.deps.Leases.Stats(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
