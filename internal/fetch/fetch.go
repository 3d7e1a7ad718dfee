package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout bounds a single page fetch when the caller does not
// override it. Retry policy lives with the caller, never here.
const DefaultTimeout = 10 * time.Second

// Sentinel errors for the distinguishable transport failure kinds.
// Callers match them with errors.Is.
var (
	ErrInvalidURL       = errors.New("invalid url")
	ErrTimeout          = errors.New("fetch timed out")
	ErrHostUnreachable  = errors.New("host unreachable")
	ErrPageNotFound     = errors.New("page not found")
	ErrRobotsDisallowed = errors.New("disallowed by robots.txt")
)

// StatusError reports a non-2xx HTTP response other than 404.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Status)
}

// Request describes a single page fetch.
type Request struct {
	URL       string
	Headers   map[string]string
	Timeout   time.Duration
	UserAgent string
}

// Result is the raw markup for a fetched page.
type Result struct {
	URL    string
	Body   string
	Status int
	Engine string
}

// Fetcher retrieves raw page markup for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*Result, error)
}

// HTTPFetcher is the default implementation using net/http.
type HTTPFetcher struct {
	client        *http.Client
	respectRobots bool
}

func NewHTTPFetcher(timeout time.Duration, respectRobots bool) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		client:        &http.Client{Timeout: timeout},
		respectRobots: respectRobots,
	}
}

// ValidateURL checks that raw is an absolute http(s) URL and returns the
// parsed form. Validation happens before any network I/O.
func ValidateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: scheme must be http or https", ErrInvalidURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return u, nil
}

func (f *HTTPFetcher) Fetch(ctx context.Context, req Request) (*Result, error) {
	u, err := ValidateURL(req.URL)
	if err != nil {
		return nil, err
	}

	if f.respectRobots {
		allowed, err := robotsAllowed(ctx, f.client, u, req.UserAgent)
		if err == nil && !allowed {
			return nil, fmt.Errorf("%w: %s", ErrRobotsDisallowed, u.String())
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if req.UserAgent != "" {
		httpReq.Header.Set("User-Agent", req.UserAgent)
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, u.String())
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	return &Result{
		URL:    u.String(),
		Body:   string(body),
		Status: resp.StatusCode,
		Engine: "http",
	}, nil
}

// classifyTransportError maps low-level client errors onto the sentinel
// errors so callers can distinguish timeouts from unreachable hosts.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("%w: %v", ErrHostUnreachable, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Errorf("%w: %v", ErrHostUnreachable, err)
	}
	return err
}
