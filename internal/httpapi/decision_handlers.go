package httpapi

import (
	"fmt"
	"net/http"

	"leasing_hub/internal/domain"
)

const (
	defaultExportLimit = 100
	xlsxContentType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (h *Handler) runDecisionEngine(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.Runner.RunOnce(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) decisionEngineStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Status.GetDecisionEngineStatus(r.Context()))
}

func (h *Handler) reloadRules(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Rules.Reload(); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

func (h *Handler) exportDecisionLog(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultExportLimit)
	if err != nil || limit <= 0 {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	limit = min(limit, domain.MaxPageSize)

	entries, err := h.deps.DecisionLog.ListRecent(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	now := h.now()
	data, err := h.deps.Exporter.DecisionLogXLSX(entries, now)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="decision-log-%s.xlsx"`, now.UTC().Format("20060102")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) engineMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Metrics.GetStats())
}
