package recipe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"kidchef/internal/fetch"
	"kidchef/internal/model"
)

// Phase identifies a stage of the extraction pipeline, reported to the
// optional progress callback at each transition.
type Phase string

const (
	PhaseValidating Phase = "validating"
	PhaseFetching   Phase = "fetching"
	PhaseParsing    Phase = "parsing"
	PhaseExtracting Phase = "extracting"
	PhaseComplete   Phase = "complete"
	PhaseError      Phase = "error"
)

// ProgressFunc receives phase transitions during an extraction.
type ProgressFunc func(Phase)

// Extraction is the outcome of a successful orchestration: the
// normalized recipe plus which strategy and fetch engine produced it.
type Extraction struct {
	Recipe   *model.ScrapedRecipe
	Strategy string
	Engine   string
}

// Extractor orchestrates fetch, parse, and the strategy cascade. It
// holds no mutable state, so a single Extractor is safe for concurrent
// use; every call owns its own document tree.
type Extractor struct {
	fetcher   fetch.Fetcher
	userAgent string
	timeout   time.Duration
	progress  ProgressFunc
}

type Option func(*Extractor)

func WithUserAgent(ua string) Option {
	return func(e *Extractor) { e.userAgent = ua }
}

func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) { e.timeout = d }
}

func WithProgress(fn ProgressFunc) Option {
	return func(e *Extractor) { e.progress = fn }
}

func NewExtractor(f fetch.Fetcher, opts ...Option) *Extractor {
	e := &Extractor{
		fetcher: f,
		timeout: fetch.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// strategy pairs a name (exposed in responses and metrics) with one of
// the three extraction algorithms. Order is the priority order.
type strategy struct {
	name string
	run  func(*goquery.Document) *candidate
}

var strategies = []strategy{
	{"jsonld", extractJSONLD},
	{"microdata", extractMicrodata},
	{"selectors", extractSelectors},
}

// Extract runs the full pipeline for one URL. Fetch-layer errors
// propagate unchanged; an unextractable page yields ErrNoRecipeFound.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*Extraction, error) {
	report := func(p Phase) {
		if e.progress != nil {
			e.progress(p)
		}
	}

	report(PhaseValidating)
	if _, err := fetch.ValidateURL(rawURL); err != nil {
		report(PhaseError)
		return nil, err
	}

	report(PhaseFetching)
	res, err := e.fetcher.Fetch(ctx, fetch.Request{
		URL:       rawURL,
		Timeout:   e.timeout,
		UserAgent: e.userAgent,
	})
	if err != nil {
		report(PhaseError)
		return nil, err
	}

	report(PhaseParsing)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.Body))
	if err != nil {
		report(PhaseError)
		return nil, fmt.Errorf("parse document: %w", err)
	}

	report(PhaseExtracting)
	rec, winner, err := FromDocument(ctx, doc, res.URL)
	if err != nil {
		report(PhaseError)
		return nil, err
	}

	report(PhaseComplete)
	return &Extraction{Recipe: rec, Strategy: winner, Engine: res.Engine}, nil
}

// FromDocument runs the strategy cascade over an already-parsed
// document. Strategies are tried strictly in priority order and the
// first usable result short-circuits the rest; a matched candidate
// without a title is rejected the same as no match. The context is
// checked before each strategy so a caller can abandon the cascade.
func FromDocument(ctx context.Context, doc *goquery.Document, sourceURL string) (*model.ScrapedRecipe, string, error) {
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		c := s.run(doc)
		if !c.usable() {
			continue
		}
		return c.toModel(sourceURL), s.name, nil
	}
	return nil, "", fmt.Errorf("%w: %s", ErrNoRecipeFound, sourceURL)
}
