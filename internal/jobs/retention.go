package jobs

import (
	"context"
	"time"

	"kidchef/internal/config"
	"kidchef/internal/metrics"
	"kidchef/internal/store"
)

// RetentionStats captures the number of records deleted by TTL cleanup.
type RetentionStats struct {
	RecipesDeleted int64            `json:"recipesDeleted"`
	JobsDeleted    map[string]int64 `json:"jobsDeleted"`
}

// CleanupExpiredData deletes old jobs and unsaved recipes based on
// retention settings so that the database does not grow without bound.
func CleanupExpiredData(ctx context.Context, cfg *config.Config, st *store.Store) RetentionStats {
	now := time.Now().UTC()
	stats := RetentionStats{JobsDeleted: make(map[string]int64)}

	// Unsaved extraction rows; anything a user saved is kept forever.
	if cfg.Retention.Recipes.UnsavedDays > 0 {
		cutoff := now.AddDate(0, 0, -cfg.Retention.Recipes.UnsavedDays)
		if n, err := st.DeleteExpiredUnsavedRecipes(ctx, cutoff); err == nil && n > 0 {
			stats.RecipesDeleted += n
			metrics.RecordRetentionRecipes(n)
		}
	}

	// Jobs TTL, falling back to defaultDays when the extract-specific
	// value is not provided.
	days := cfg.Retention.Jobs.ExtractDays
	if days <= 0 {
		days = cfg.Retention.Jobs.DefaultDays
	}
	if days > 0 {
		cutoff := now.AddDate(0, 0, -days)
		if n, err := st.DeleteExpiredJobsByType(ctx, TypeBatchExtract, cutoff); err == nil && n > 0 {
			stats.JobsDeleted[TypeBatchExtract] += n
			metrics.RecordRetentionJobs(TypeBatchExtract, n)
		}
	}

	return stats
}
