package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ingesta-cli/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// cacheSweepSpec fires the download cache sweep every hour. Entries past
// their TTL are removed; an hourly pass keeps the scratch area bounded
// without racing active downloads.
const cacheSweepSpec = "3600"

// resultHistoryKeep bounds stored task results per task.
const resultHistoryKeep = 100

// Scheduler runs recurring background tasks in daemon mode: scheduled
// sync runs and download cache sweeps. Task state is persisted so missed
// runs fire on the next start.
type Scheduler struct {
	settings *domain.AppSettings
	store    driven.SchedulerStore
	sync     driving.SyncOrchestrator
	cache    driven.DownloadCache

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler. The cache may be nil, in which case
// no sweep task is registered.
func NewScheduler(
	settings *domain.AppSettings,
	store driven.SchedulerStore,
	syncOrch driving.SyncOrchestrator,
	cache driven.DownloadCache,
) *Scheduler {
	return &Scheduler{
		settings: settings,
		store:    store,
		sync:     syncOrch,
		cache:    cache,
	}
}

// Start begins the scheduler loop. This method blocks until Stop is
// called or the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		logger.Warn("Scheduler: initialise tasks: %v", err)
	}

	return s.run(ctx)
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	// Wait for running tasks to complete
	s.wg.Wait()

	return nil
}

// initialiseTasks ensures the built-in tasks exist in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	spec := s.settings.ScheduleSpec
	enabled := spec != ""
	if enabled {
		if _, err := domain.ParseSchedule(spec); err != nil {
			logger.Warn("Scheduler: bad schedule spec %q, sync task disabled: %v", spec, err)
			enabled = false
		}
	}
	if err := s.ensureTask(ctx, domain.TaskIDSourceSync, "Source sync", spec, enabled); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.ensureTask(ctx, domain.TaskIDCacheSweep, "Cache sweep", cacheSweepSpec, true); err != nil {
			return err
		}
	}

	return nil
}

// ensureTask creates or updates a task in the store. A persisted NextRun
// survives restarts so a missed run fires on the next due check.
func (s *Scheduler) ensureTask(ctx context.Context, id, name, spec string, enabled bool) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:   id,
			Name: name,
		}
	}

	specChanged := task.Spec != spec
	task.Spec = spec
	task.Enabled = enabled

	if enabled && (specChanged || task.NextRun.IsZero()) {
		schedule, err := domain.ParseSchedule(spec)
		if err != nil {
			return err
		}
		task.NextRun = schedule.Next(time.Now())
	}

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	// Check for due tasks immediately on startup
	s.checkAndRunDueTasks(ctx)

	// Use a 1-minute ticker to check for due tasks
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks finds and executes tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("Scheduler: list tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		task := &tasks[i]
		if !task.Enabled {
			continue
		}
		if task.NextRun.IsZero() || !task.NextRun.After(now) {
			s.runTask(ctx, task)
		}
	}
}

// runTask executes a single task. NextRun is advanced and persisted
// before the task starts so a slow run is not re-fired by the next tick.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	schedule, err := domain.ParseSchedule(task.Spec)
	if err != nil {
		logger.Warn("Scheduler: task %s has bad spec %q, disabling: %v", task.ID, task.Spec, err)
		task.Enabled = false
		if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
			logger.Warn("Scheduler: save task %s: %v", task.ID, saveErr)
		}
		return
	}

	task.NextRun = schedule.Next(time.Now())
	if err := s.store.SaveTask(ctx, task); err != nil {
		logger.Warn("Scheduler: save task %s: %v", task.ID, err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		logger.Info("Scheduler: running task %s", task.ID)
		result := &domain.TaskResult{
			TaskID:    task.ID,
			StartedAt: time.Now(),
		}

		var err error
		switch task.ID {
		case domain.TaskIDSourceSync:
			result.ItemsProcessed, err = s.runSourceSync(ctx)
		case domain.TaskIDCacheSweep:
			result.ItemsProcessed, err = s.runCacheSweep(ctx)
		default:
			logger.Warn("Scheduler: unknown task ID: %s", task.ID)
			return
		}

		result.EndedAt = time.Now()
		if err != nil {
			result.Success = false
			result.Error = err.Error()
			task.LastError = err.Error()
			logger.Warn("Scheduler: task %s failed: %v", task.ID, err)
		} else {
			result.Success = true
			task.LastError = ""
			task.LastSuccess = result.EndedAt
		}
		task.LastRun = result.StartedAt

		if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
			logger.Warn("Scheduler: save task %s: %v", task.ID, saveErr)
		}

		// Record result for history
		if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
			logger.Warn("Scheduler: record result for %s: %v", task.ID, recordErr)
		}

		if pruneErr := s.store.PruneHistory(ctx, resultHistoryKeep); pruneErr != nil {
			logger.Warn("Scheduler: prune history: %v", pruneErr)
		}
	}()
}

// runSourceSync syncs all enabled sources.
func (s *Scheduler) runSourceSync(ctx context.Context) (int, error) {
	report, err := s.sync.SyncAll(ctx)
	if report == nil {
		return 0, err
	}
	return report.TotalUploaded(), err
}

// runCacheSweep expires download cache entries past their TTL.
func (s *Scheduler) runCacheSweep(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.settings.Resolve.CacheTTL)
	swept, err := s.cache.Sweep(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if swept > 0 {
		logger.Debug("Cache sweep removed %d entries", swept)
	}
	return swept, nil
}
