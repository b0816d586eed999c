package metrics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// EngineMetrics — метрики запусков движка решений по категориям правил.
type EngineMetrics struct {
	mu  sync.RWMutex
	log *slog.Logger

	runsTotal   int64
	failedRuns  int64
	lastRunAtMs int64

	categories map[string]*categoryCounters
}

type categoryCounters struct {
	// Счётчики запусков
	runsTotal   int64
	errorsTotal int64

	// Действия
	actionsTotal    int64
	successfulTotal int64

	// Суммарная и последняя задержка
	latencyTotalMs int64
	lastLatencyMs  int64
}

func NewEngineMetrics(log *slog.Logger) *EngineMetrics {
	return &EngineMetrics{
		log:        log,
		categories: make(map[string]*categoryCounters),
	}
}

func (m *EngineMetrics) counters(category string) *categoryCounters {
	m.mu.RLock()
	c, ok := m.categories[category]
	m.mu.RUnlock()
	if ok {
		return c
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok = m.categories[category]; !ok {
		c = &categoryCounters{}
		m.categories[category] = c
	}
	return c
}

// RecordCategory записывает выполнение одной категории правил.
func (m *EngineMetrics) RecordCategory(category string, latency time.Duration, actions, successful int, err error) {
	latencyMs := latency.Milliseconds()
	c := m.counters(category)

	atomic.AddInt64(&c.runsTotal, 1)
	atomic.AddInt64(&c.latencyTotalMs, latencyMs)
	atomic.StoreInt64(&c.lastLatencyMs, latencyMs)
	atomic.AddInt64(&c.actionsTotal, int64(actions))
	atomic.AddInt64(&c.successfulTotal, int64(successful))
	if err != nil {
		atomic.AddInt64(&c.errorsTotal, 1)
	}

	if m.log != nil {
		logAttrs := []any{
			slog.String("category", category),
			slog.Int64("latency_ms", latencyMs),
			slog.Int("actions", actions),
		}
		if err != nil {
			logAttrs = append(logAttrs, slog.String("error", err.Error()))
			m.log.Warn("rule category failed", logAttrs...)
		} else {
			m.log.Debug("rule category completed", logAttrs...)
		}
	}
}

// RecordRun записывает завершение всего запуска.
func (m *EngineMetrics) RecordRun(at time.Time, success bool) {
	atomic.AddInt64(&m.runsTotal, 1)
	atomic.StoreInt64(&m.lastRunAtMs, at.UnixMilli())
	if !success {
		atomic.AddInt64(&m.failedRuns, 1)
	}
}

// CategoryTimer помогает измерять время категории.
type CategoryTimer struct {
	metrics   *EngineMetrics
	category  string
	startTime time.Time
}

// StartTimer начинает измерение времени категории.
func (m *EngineMetrics) StartTimer(category string) *CategoryTimer {
	return &CategoryTimer{
		metrics:   m,
		category:  category,
		startTime: time.Now(),
	}
}

// Stop останавливает таймер и записывает метрики.
func (t *CategoryTimer) Stop(actions, successful int, err error) {
	t.metrics.RecordCategory(t.category, time.Since(t.startTime), actions, successful, err)
}

// Stats — текущая статистика движка.
type Stats struct {
	RunsTotal  int64           `json:"runs_total"`
	FailedRuns int64           `json:"failed_runs"`
	LastRunAt  *time.Time      `json:"last_run_at,omitempty"`
	Categories []CategoryStats `json:"categories"`
}

// CategoryStats — статистика по одной категории.
type CategoryStats struct {
	Category        string  `json:"category"`
	RunsTotal       int64   `json:"runs_total"`
	ErrorsTotal     int64   `json:"errors_total"`
	ErrorRate       float64 `json:"error_rate"`
	ActionsTotal    int64   `json:"actions_total"`
	SuccessfulTotal int64   `json:"successful_total"`
	AvgLatencyMs    float64 `json:"avg_latency_ms"`
	LastLatencyMs   int64   `json:"last_latency_ms"`
}

// GetStats возвращает текущую статистику, категории отсортированы по имени.
func (m *EngineMetrics) GetStats() Stats {
	stats := Stats{
		RunsTotal:  atomic.LoadInt64(&m.runsTotal),
		FailedRuns: atomic.LoadInt64(&m.failedRuns),
	}
	if ms := atomic.LoadInt64(&m.lastRunAtMs); ms > 0 {
		at := time.UnixMilli(ms).UTC()
		stats.LastRunAt = &at
	}

	m.mu.RLock()
	for name, c := range m.categories {
		stats.Categories = append(stats.Categories, c.stats(name))
	}
	m.mu.RUnlock()

	sort.Slice(stats.Categories, func(i, j int) bool {
		return stats.Categories[i].Category < stats.Categories[j].Category
	})
	return stats
}

func (c *categoryCounters) stats(name string) CategoryStats {
	runs := atomic.LoadInt64(&c.runsTotal)
	errors := atomic.LoadInt64(&c.errorsTotal)
	latencyTotal := atomic.LoadInt64(&c.latencyTotalMs)

	var errorRate, avgLatency float64
	if runs > 0 {
		errorRate = float64(errors) / float64(runs)
		avgLatency = float64(latencyTotal) / float64(runs)
	}

	return CategoryStats{
		Category:        name,
		RunsTotal:       runs,
		ErrorsTotal:     errors,
		ErrorRate:       errorRate,
		ActionsTotal:    atomic.LoadInt64(&c.actionsTotal),
		SuccessfulTotal: atomic.LoadInt64(&c.successfulTotal),
		AvgLatencyMs:    avgLatency,
		LastLatencyMs:   atomic.LoadInt64(&c.lastLatencyMs),
	}
}

// Reset сбрасывает все метрики.
func (m *EngineMetrics) Reset() {
	atomic.StoreInt64(&m.runsTotal, 0)
	atomic.StoreInt64(&m.failedRuns, 0)
	atomic.StoreInt64(&m.lastRunAtMs, 0)

	m.mu.Lock()
	m.categories = make(map[string]*categoryCounters)
	m.mu.Unlock()
}

// WrapWithMetrics оборачивает функцию для автоматического сбора метрик по категории.
func WrapWithMetrics[T any](
	ctx context.Context,
	m *EngineMetrics,
	category string,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	timer := m.StartTimer(category)
	result, err := fn(ctx)
	timer.Stop(0, 0, err)
	return result, err
}
