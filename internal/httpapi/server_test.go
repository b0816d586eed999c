package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"leasing_hub/internal/config"
	"leasing_hub/internal/domain"
	"leasing_hub/internal/lib/archive"
	"leasing_hub/internal/lib/export"
	"leasing_hub/internal/lib/metrics"
	"leasing_hub/internal/lib/rules"
	"leasing_hub/internal/lib/runlock"
	"leasing_hub/internal/repository/memory_repository"
	"leasing_hub/internal/services/decision"
	"leasing_hub/internal/services/lease"
	"leasing_hub/internal/services/pricing"
	"leasing_hub/internal/services/scheduler"
	"leasing_hub/internal/services/site"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store  *memory_repository.Store
	server *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	store := memory_repository.New()

	m := metrics.NewEngineMetrics(log)
	provider := rules.NewStaticProvider(domain.DefaultDecisionRules())
	engine := decision.New(log, decision.Repositories{
		Sites:         store.Sites(),
		Clients:       store.Clients(),
		LeaseRequests: store.LeaseRequests(),
		Payments:      store.Payments(),
		Contracts:     store.Contracts(),
		Notifications: store.Notifications(),
		DecisionLog:   store.DecisionLog(),
		Insights:      store.Insights(),
	}, provider, m)

	locker, err := runlock.NewLocker(ctx, config.RedisConfig{}, log)
	require.NoError(t, err)
	arch, err := archive.NewClient(ctx, config.MinioConfig{}, log)
	require.NoError(t, err)

	h := NewHandler(log, Deps{
		Status:      engine,
		Runner:      scheduler.NewRunner(log, engine, arch, locker, time.Minute),
		Rules:       provider,
		DecisionLog: store.DecisionLog(),
		Exporter:    export.NewGenerator(),
		Metrics:     m,
		Sites:       site.New(log, store.Sites()),
		Leases:      lease.New(log, store.Sites(), store.Clients(), store.LeaseRequests(), store.Notifications(), "manager@example.com"),
	})

	srv := httptest.NewServer(h.Routes([]string{"*"}))
	t.Cleanup(srv.Close)
	return &testEnv{store: store, server: srv}
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(e.server.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) post(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	resp, err := http.Post(e.server.URL+path, "application/json", &buf)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealthAndDocs(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.get(t, "/swagger/doc.json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := decode[map[string]any](t, resp)
	assert.Equal(t, "3.0.3", doc["openapi"])
}

func TestDecisionEngineEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.store.PutInsight(domain.OperationalInsight{Date: time.Now(), OccupancyRate: 30})

	resp := env.post(t, "/api/v1/decision-engine/run", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	run := decode[scheduler.RunResult](t, resp)
	assert.True(t, run.Report.Success)
	assert.Equal(t, 1, run.Report.TotalActions)

	resp = env.get(t, "/api/v1/decision-engine/status")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	status := decode[decision.StatusReport](t, resp)
	assert.Equal(t, decision.StatusActive, status.Status)
	assert.Equal(t, 1, status.ActionsLast24h)

	resp = env.get(t, "/api/v1/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[metrics.Stats](t, resp)
	assert.Equal(t, int64(1), stats.RunsTotal)

	resp = env.post(t, "/api/v1/decision-engine/rules/reload", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.get(t, "/api/v1/decision-engine/log/export?limit=50")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "decision-log-")

	resp = env.get(t, "/api/v1/decision-engine/log/export?limit=abc")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSiteEndpoints(t *testing.T) {
	env := newTestEnv(t)
	vacant := env.store.PutSite(domain.Site{
		SiteCode: "A-1", Status: domain.SiteStatusVacant, BasePricePerSqm: 100, CurrentPricePerSqm: 90,
		AreaSqm: 40, UsageType: domain.UsageTypeRetail,
	})
	env.store.PutSite(domain.Site{SiteCode: "A-2", Status: domain.SiteStatusLeased, BasePricePerSqm: 100})

	resp := env.get(t, "/api/v1/sites?status=vacant")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sites := decode[[]domain.Site](t, resp)
	require.Len(t, sites, 1)
	assert.Equal(t, vacant.ID, sites[0].ID)

	resp = env.get(t, "/api/v1/sites/stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[domain.SiteStats](t, resp)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 50.0, stats.OccupancyRate)

	resp = env.get(t, "/api/v1/sites/"+vacant.ID.String())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.get(t, "/api/v1/sites/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.get(t, "/api/v1/sites/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.post(t, "/api/v1/sites/"+vacant.ID.String()+"/reprice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	repriced := decode[domain.Site](t, resp)
	assert.Equal(t, 100.0, repriced.CurrentPricePerSqm)

	resp = env.get(t, "/api/v1/sites/"+vacant.ID.String()+"/quote?duration_months=24")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	quote := decode[quoteResponse](t, resp)
	require.NotNil(t, quote.Breakdown)
	assert.Equal(t, 24, quote.Breakdown.DurationMonths)
	assert.Equal(t, 0.95, quote.Breakdown.DurationMultiplier)
	require.NotNil(t, quote.Totals)
}

func TestLeaseRequestEndpoints(t *testing.T) {
	env := newTestEnv(t)
	vacant := env.store.PutSite(domain.Site{
		SiteCode: "B-1", Status: domain.SiteStatusVacant, BasePricePerSqm: 150, CurrentPricePerSqm: 150, AreaSqm: 30,
	})

	body := lease.SubmitRequest{
		SiteID:                  vacant.ID,
		Client:                  &lease.NewClient{ClientName: "Rana", Email: "rana@example.com"},
		BusinessName:            "Rana Flowers",
		ActivityType:            "Retail",
		RequestedDurationMonths: 18,
	}

	resp := env.post(t, "/api/v1/lease-requests", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sub := decode[lease.Submission](t, resp)
	assert.Equal(t, domain.LeaseRequestStatusNew, sub.Request.Status)
	assert.Equal(t, 18, sub.Request.RequestedDurationMonths)

	// Площадка уже зарезервирована.
	resp = env.post(t, "/api/v1/lease-requests", body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.post(t, "/api/v1/lease-requests", lease.SubmitRequest{BusinessName: "X"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.get(t, "/api/v1/lease-requests?status=new")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]domain.LeaseRequest](t, resp), 1)

	resp = env.get(t, "/api/v1/lease-requests?site_id=bad")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.get(t, "/api/v1/lease-requests/stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[domain.LeaseRequestStats](t, resp)
	assert.Equal(t, 1, stats.Total)
}

func TestToQuoteResponse_NonFinitePayback(t *testing.T) {
	q := lease.Quote{ROI: &pricing.ROIReport{NetIncome: -10, PaybackPeriod: math.Inf(-1)}}

	resp := toQuoteResponse(q)

	require.NotNil(t, resp.ROI)
	assert.Nil(t, resp.ROI.PaybackPeriod)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"payback_period":null`)

	q.ROI.PaybackPeriod = 12.5
	resp = toQuoteResponse(q)
	require.NotNil(t, resp.ROI.PaybackPeriod)
	assert.Equal(t, 12.5, *resp.ROI.PaybackPeriod)
}
