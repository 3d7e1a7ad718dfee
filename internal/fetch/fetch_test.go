package fetch

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestValidateURL(t *testing.T) {
	if _, err := ValidateURL("https://example.com/recipe"); err != nil {
		t.Fatalf("expected valid url, got %v", err)
	}
	for _, raw := range []string{"", "not a url at all\x7f", "ftp://example.com/x", "/relative/path"} {
		_, err := ValidateURL(raw)
		if !errors.Is(err, ErrInvalidURL) {
			t.Fatalf("ValidateURL(%q) = %v, want ErrInvalidURL", raw, err)
		}
	}
}

func TestFetchSendsIdentifyingHeaders(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, false)
	res, err := f.Fetch(context.Background(), Request{URL: srv.URL, UserAgent: "KidChefBot/1.0"})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if gotUA != "KidChefBot/1.0" {
		t.Fatalf("expected custom user agent, got %q", gotUA)
	}
	if !strings.Contains(gotAccept, "text/html") {
		t.Fatalf("expected html-favoring Accept header, got %q", gotAccept)
	}
	if !strings.Contains(res.Body, "ok") {
		t.Fatalf("unexpected body %q", res.Body)
	}
	if res.Engine != "http" {
		t.Fatalf("expected http engine, got %q", res.Engine)
	}
}

func TestFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, false)
	_, err := f.Fetch(context.Background(), Request{URL: srv.URL + "/gone"})
	if !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
}

func TestFetchServerErrorCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, false)
	_, err := f.Fetch(context.Background(), Request{URL: srv.URL})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Status != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", statusErr.Status)
	}
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(50*time.Millisecond, false)
	_, err := f.Fetch(context.Background(), Request{URL: srv.URL})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestFetchHostUnreachable(t *testing.T) {
	// Grab a port that is guaranteed to be closed.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	f := NewHTTPFetcher(2*time.Second, false)
	_, err = f.Fetch(context.Background(), Request{URL: "http://" + addr + "/"})
	if !errors.Is(err, ErrHostUnreachable) {
		t.Fatalf("expected ErrHostUnreachable, got %v", err)
	}
}

func TestFetchRespectsRobots(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html></html>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, true)
	if _, err := f.Fetch(context.Background(), Request{URL: srv.URL + "/private/cake", UserAgent: "KidChefBot/1.0"}); !errors.Is(err, ErrRobotsDisallowed) {
		t.Fatalf("expected ErrRobotsDisallowed, got %v", err)
	}
	if _, err := f.Fetch(context.Background(), Request{URL: srv.URL + "/public/cake", UserAgent: "KidChefBot/1.0"}); err != nil {
		t.Fatalf("expected allowed fetch, got %v", err)
	}
}
