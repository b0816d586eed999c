// Package scheduler — запуск движка правил по таймеру и по запросу
// с межпроцессной блокировкой и архивированием отчетов.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"leasing_hub/internal/lib/logger/sl"
	"leasing_hub/internal/lib/runlock"
	"leasing_hub/internal/services/decision"
)

// RunLockKey — ключ блокировки запуска движка.
const RunLockKey = "lock:decision-engine:run"

// ErrRunInProgress — запуск уже идет в этом или другом процессе.
var ErrRunInProgress = errors.New("decision engine run already in progress")

type Engine interface {
	ExecuteDecisionRules(ctx context.Context) decision.ExecutionReport
}

type Archive interface {
	Store(ctx context.Context, at time.Time, report any) (string, error)
}

type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (runlock.Lock, error)
}

// RunResult — отчет запуска и имя объекта в архиве (пусто, если архив выключен).
type RunResult struct {
	Report        decision.ExecutionReport `json:"report"`
	ArchiveObject string                   `json:"archive_object,omitempty"`
}

type Runner struct {
	log     *slog.Logger
	engine  Engine
	archive Archive
	locker  Locker
	lockTTL time.Duration

	mu    sync.Mutex
	hooks []func(decision.ExecutionReport)
}

func NewRunner(log *slog.Logger, engine Engine, archive Archive, locker Locker, lockTTL time.Duration) *Runner {
	return &Runner{
		log:     log,
		engine:  engine,
		archive: archive,
		locker:  locker,
		lockTTL: lockTTL,
	}
}

// OnReport регистрирует обработчик завершенных запусков. Вызывать до первого запуска.
func (r *Runner) OnReport(fn func(decision.ExecutionReport)) {
	r.hooks = append(r.hooks, fn)
}

// RunOnce выполняет один запуск под блокировкой.
// Если блокировку держит другой запуск, возвращает ErrRunInProgress.
func (r *Runner) RunOnce(ctx context.Context) (RunResult, error) {
	const op = "scheduler.Runner.RunOnce"

	log := r.log.With(slog.String("op", op))

	if !r.mu.TryLock() {
		return RunResult{}, fmt.Errorf("%s: %w", op, ErrRunInProgress)
	}
	defer r.mu.Unlock()

	lock, err := r.locker.Obtain(ctx, RunLockKey, r.lockTTL)
	if err != nil {
		if errors.Is(err, runlock.ErrNotObtained) {
			log.Info("run lock held by another instance, skipping")
			return RunResult{}, fmt.Errorf("%s: %w", op, ErrRunInProgress)
		}
		return RunResult{}, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			log.Warn("failed to release run lock", sl.Err(err))
		}
	}()

	// Начатый запуск доводится до конца даже при отмене ctx вызывающего.
	runCtx := context.WithoutCancel(ctx)

	report := r.engine.ExecuteDecisionRules(runCtx)
	result := RunResult{Report: report}

	object, err := r.archive.Store(runCtx, report.StartedAt, report)
	if err != nil {
		log.Warn("failed to archive execution report", sl.Err(err))
	} else {
		result.ArchiveObject = object
	}

	for _, hook := range r.hooks {
		hook(report)
	}

	return result, nil
}

// Drain ждет завершения текущего запуска, но не дольше ctx.
func (r *Runner) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.mu.Lock()
		r.mu.Unlock()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start запускает движок каждые interval до отмены ctx.
func (r *Runner) Start(ctx context.Context, interval time.Duration, runOnStart bool) {
	const op = "scheduler.Runner.Start"

	log := r.log.With(slog.String("op", op), slog.Duration("interval", interval))
	log.Info("scheduler started")

	if runOnStart {
		r.tick(ctx)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("scheduler stopped")
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	res, err := r.RunOnce(ctx)
	if err != nil {
		if errors.Is(err, ErrRunInProgress) {
			r.log.Debug("scheduled run skipped", sl.Err(err))
			return
		}
		r.log.Error("scheduled run failed", sl.Err(err))
		return
	}

	r.log.Info("scheduled run finished",
		slog.Bool("success", res.Report.Success),
		slog.Int("total_actions", res.Report.TotalActions),
		slog.Int("successful_actions", res.Report.SuccessfulActions),
		slog.String("archive_object", res.ArchiveObject),
	)
}
