// Package fetcher downloads homepages and parses them into goquery
// documents.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-pkgz/requester"
	"github.com/go-pkgz/requester/middleware"
	"github.com/rs/zerolog"
)

// ErrBadStatus is wrapped by a FetchError when the server answers with a 4xx
// or 5xx status.
var ErrBadStatus = errors.New("unexpected status code")

// FetchError reports a failed fetch: a transport fault, an error status, or
// a body that could not be parsed.
type FetchError struct {
	URL        string
	StatusCode int // zero unless the server responded
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Options configures a Fetcher. The zero value gives a client with no
// timeout, no User-Agent override and a disabled logger.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Logger    zerolog.Logger
}

// Fetcher performs single GET requests against homepages. There is no retry
// and no backoff.
type Fetcher struct {
	rq *requester.Requester
}

// New creates a fetcher with the given options.
func New(opts Options) *Fetcher {
	var mw []middleware.RoundTripperHandler
	if opts.UserAgent != "" {
		mw = append(mw, UserAgent(opts.UserAgent))
	}
	mw = append(mw, LoggingRoundTripper(opts.Logger, RoundTripperOpts{
		Level:         zerolog.DebugLevel,
		SecretHeaders: []string{"Authorization", "Cookie", "Set-Cookie"},
	}))

	return &Fetcher{
		rq: requester.New(http.Client{Timeout: opts.Timeout}, mw...),
	}
}

// Fetch GETs the URL and parses the response body as HTML. Every failure is
// returned as a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("build request: %w", err)}
	}

	resp, err := f.rq.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %s", ErrBadStatus, resp.Status),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("parse html: %w", err)}
	}

	return doc, nil
}
