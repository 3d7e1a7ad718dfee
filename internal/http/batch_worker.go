package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"kidchef/internal/cache"
	"kidchef/internal/config"
	"kidchef/internal/jobs"
	"kidchef/internal/services"
	"kidchef/internal/store"
)

// BatchWorker executes batch extraction jobs claimed by the job
// runner. Each URL is extracted independently and stored as its own
// row, so one bad page never fails the whole batch.
type BatchWorker struct {
	cfg    *config.Config
	store  *store.Store
	svc    services.RecipeService
	logger *slog.Logger
}

// NewBatchWorker builds a worker with its own Redis-backed result
// cache, so worker nodes benefit from (and feed) the same cache as the
// API nodes.
func NewBatchWorker(cfg *config.Config, st *store.Store, logger *slog.Logger) *BatchWorker {
	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		if opt, err := redis.ParseURL(cfg.Redis.URL); err == nil {
			rdb = redis.NewClient(opt)
		}
	}
	resultCache := cache.New(rdb, time.Duration(cfg.Cache.TTLMinutes)*time.Minute)

	return &BatchWorker{
		cfg:    cfg,
		store:  st,
		svc:    services.NewRecipeService(cfg, resultCache),
		logger: logger,
	}
}

// StartWorker launches the polling job runner with a batch executor
// attached. It returns immediately; the runner stops when ctx is done.
func StartWorker(ctx context.Context, cfg *config.Config, st *store.Store, logger *slog.Logger) {
	worker := NewBatchWorker(cfg, st, logger)
	runner := jobs.NewRunner(cfg, st, worker, logger)
	go runner.Start(ctx)
}

// ExecuteBatchExtractJob runs one claimed batch job to completion. URLs
// are processed with bounded concurrency; each outcome (success or
// failure) becomes a recipes row tied to the job.
func (w *BatchWorker) ExecuteBatchExtractJob(ctx context.Context, job store.Job) {
	var input batchExtractInput
	if err := json.Unmarshal(job.Input, &input); err != nil || len(input.URLs) == 0 {
		msg := "invalid batch input"
		_ = w.store.UpdateJobStatus(context.Background(), job.ID, string(jobs.StatusFailed), &msg)
		return
	}

	maxURLs := w.cfg.Worker.MaxConcurrentURLsPerJob
	if maxURLs <= 0 {
		maxURLs = 2
	}

	timeoutMs := w.cfg.Fetcher.TimeoutMs
	if timeoutMs <= 0 {
		timeoutMs = 10000
	}

	jobID := uuid.NullUUID{UUID: job.ID, Valid: true}

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int64
	)
	sem := make(chan struct{}, maxURLs)

	for _, url := range input.URLs {
		url := url
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			urlCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs+5000)*time.Millisecond)
			defer cancel()

			ext, err := w.svc.Extract(urlCtx, url, services.ExtractOptions{
				UseBrowser: input.UseBrowser,
			})
			if err != nil {
				_, code, _, _ := failureInfo(err)
				msg := err.Error()
				if _, insErr := w.store.InsertRecipe(context.Background(), uuid.New(), jobID, url, "", nil, &code, &msg, false); insErr != nil && w.logger != nil {
					w.logger.Error("store batch failure row", "job_id", job.ID, "url", url, "error", insErr)
				}
				return
			}

			data, err := json.Marshal(ext.Recipe)
			if err != nil {
				return
			}
			if _, insErr := w.store.InsertRecipe(context.Background(), uuid.New(), jobID, url, ext.Recipe.Title, data, nil, nil, false); insErr != nil {
				if w.logger != nil {
					w.logger.Error("store batch result row", "job_id", job.ID, "url", url, "error", insErr)
				}
				return
			}
			succeeded.Add(1)
		}()
	}
	wg.Wait()

	if succeeded.Load() == 0 {
		msg := "ALL_URLS_FAILED"
		_ = w.store.UpdateJobStatus(context.Background(), job.ID, string(jobs.StatusFailed), &msg)
	} else {
		_ = w.store.UpdateJobStatus(context.Background(), job.ID, string(jobs.StatusCompleted), nil)
	}

	if w.logger != nil {
		w.logger.Info("batch extract job finished",
			"job_id", job.ID,
			"urls", len(input.URLs),
			"succeeded", succeeded.Load(),
		)
	}
}
