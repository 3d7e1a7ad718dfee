package services

import (
	"context"
	"time"

	"kidchef/internal/cache"
	"kidchef/internal/config"
	"kidchef/internal/fetch"
	"kidchef/internal/metrics"
	"kidchef/internal/recipe"
)

// DefaultUserAgent identifies the service as a recipe-reading bot when
// the config does not override it.
const DefaultUserAgent = "KidChefBot/1.0 (+recipe import; contact admin)"

// ExtractOptions carries per-request overrides for a single extraction.
type ExtractOptions struct {
	UseBrowser bool
	TimeoutMs  int
	Progress   recipe.ProgressFunc
}

// RecipeService encapsulates the core, non-HTTP extraction logic:
// choose a fetch engine, run the strategy cascade, and consult the
// result cache.
type RecipeService interface {
	Extract(ctx context.Context, url string, opts ExtractOptions) (*recipe.Extraction, error)
}

type recipeService struct {
	cfg   *config.Config
	cache *cache.Cache
}

// NewRecipeService constructs a RecipeService backed by the provided
// configuration and optional result cache (nil disables caching).
func NewRecipeService(cfg *config.Config, c *cache.Cache) RecipeService {
	return &recipeService{cfg: cfg, cache: c}
}

func (s *recipeService) Extract(ctx context.Context, url string, opts ExtractOptions) (*recipe.Extraction, error) {
	if rec, ok := s.cache.Get(ctx, url); ok {
		return &recipe.Extraction{Recipe: rec, Strategy: "cache", Engine: "cache"}, nil
	}

	timeoutMs := s.cfg.Fetcher.TimeoutMs
	if opts.TimeoutMs > 0 {
		timeoutMs = opts.TimeoutMs
	}
	timeout := time.Duration(timeoutMs) * time.Millisecond

	userAgent := s.cfg.Fetcher.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	var fetcher fetch.Fetcher
	if opts.UseBrowser && s.cfg.Rod.Enabled {
		fetcher = fetch.NewRodFetcher(timeout)
	} else {
		fetcher = fetch.NewHTTPFetcher(timeout, s.cfg.Robots.Respect)
	}

	extractor := recipe.NewExtractor(fetcher,
		recipe.WithUserAgent(userAgent),
		recipe.WithTimeout(timeout),
		recipe.WithProgress(opts.Progress),
	)

	ext, err := extractor.Extract(ctx, url)
	if err != nil {
		metrics.RecordExtract("none", false)
		return nil, err
	}

	metrics.RecordExtract(ext.Strategy, true)
	s.cache.Put(ctx, url, ext.Recipe)
	return ext, nil
}
