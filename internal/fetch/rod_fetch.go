package fetch

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// RodFetcher renders JS-heavy pages in a headless browser (via rod)
// before returning HTML. Recipe sites that assemble their markup
// client-side yield nothing to the plain HTTP fetcher.
type RodFetcher struct {
	Timeout time.Duration
}

func NewRodFetcher(timeout time.Duration) *RodFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &RodFetcher{Timeout: timeout}
}

func (r *RodFetcher) Fetch(ctx context.Context, req Request) (*Result, error) {
	u, err := ValidateURL(req.URL)
	if err != nil {
		return nil, err
	}

	browser := rod.New().Context(ctx).Timeout(r.Timeout)
	if err := browser.Connect(); err != nil {
		return nil, classifyTransportError(err)
	}
	defer browser.MustClose()

	page, err := browser.Page(proto.TargetCreateTarget{URL: u.String()})
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer page.MustClose()

	if err := page.WaitLoad(); err != nil {
		return nil, classifyTransportError(err)
	}

	htmlStr, err := page.HTML()
	if err != nil {
		return nil, err
	}

	return &Result{
		URL:    u.String(),
		Body:   htmlStr,
		Status: 200,
		Engine: "browser",
	}, nil
}
