package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"

	robotstxt "github.com/temoto/robotstxt"
)

// robotsAllowed fetches and evaluates robots.txt for the page URL's
// host. Any error fetching or parsing robots.txt is reported to the
// caller, which treats it as "allowed" rather than blocking the fetch.
func robotsAllowed(ctx context.Context, client *http.Client, page *url.URL, userAgent string) (bool, error) {
	robotsURL := &url.URL{
		Scheme: page.Scheme,
		Host:   page.Host,
		Path:   "/robots.txt",
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return true, err
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return true, err
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return true, err
	}

	return data.TestAgent(page.Path, userAgent), nil
}
