package jobs

import (
	"context"
	"log/slog"
	"time"

	"kidchef/internal/config"
	"kidchef/internal/store"
)

// BatchExtractExecutor executes a single batch extraction job.
type BatchExtractExecutor interface {
	ExecuteBatchExtractJob(ctx context.Context, job store.Job)
}

// Runner polls the jobs table and dispatches work to the batch
// executor. It encapsulates concurrency limits, polling intervals, and
// periodic retention cleanup.
type Runner struct {
	cfg      *config.Config
	store    *store.Store
	executor BatchExtractExecutor
	logger   *slog.Logger
}

// NewRunner constructs a Runner with the given configuration, store,
// and batch executor.
func NewRunner(cfg *config.Config, st *store.Store, exec BatchExtractExecutor, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		store:    st,
		executor: exec,
		logger:   logger,
	}
}

// Start launches the worker loop in the current goroutine. Callers
// typically run this in its own goroutine and keep the process alive.
func (r *Runner) Start(ctx context.Context) {
	pollInterval := time.Duration(r.cfg.Worker.PollIntervalMs) * time.Millisecond
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}

	maxJobs := r.cfg.Worker.MaxConcurrentJobs
	if maxJobs <= 0 {
		maxJobs = 4
	}

	sem := make(chan struct{}, maxJobs)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var lastCleanup time.Time
	cleanupInterval := time.Duration(r.cfg.Retention.CleanupIntervalMinutes) * time.Minute
	if cleanupInterval <= 0 {
		cleanupInterval = time.Hour
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		// Periodically run TTL cleanup for jobs/recipes.
		if r.cfg.Retention.Enabled {
			now := time.Now().UTC()
			if lastCleanup.IsZero() || now.Sub(lastCleanup) >= cleanupInterval {
				_ = CleanupExpiredData(ctx, r.cfg, r.store)
				lastCleanup = now
			}
		}

		// Determine how many new jobs we can start based on current concurrency.
		capacity := maxJobs - len(sem)
		if capacity <= 0 {
			continue
		}

		pending, err := r.store.ListPendingJobs(ctx, int32(capacity))
		if err != nil {
			if r.logger != nil {
				r.logger.Error("poll pending jobs", "error", err)
			}
			continue
		}

		for _, job := range pending {
			job := job
			sem <- struct{}{}
			go func() {
				defer func() { <-sem }()
				r.dispatchJob(ctx, job)
			}()
		}
	}
}

func (r *Runner) dispatchJob(ctx context.Context, job store.Job) {
	if job.Type == TypeBatchExtract && r.executor != nil {
		r.executor.ExecuteBatchExtractJob(ctx, job)
		return
	}

	// Unknown or unconfigured job type; mark as failed.
	msg := "UNKNOWN_JOB_TYPE: " + job.Type
	_ = r.store.UpdateJobStatus(context.Background(), job.ID, string(StatusFailed), &msg)
}
