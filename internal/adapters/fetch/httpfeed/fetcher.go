// Package httpfeed fetches Gmail inbox feeds over HTTP.
package httpfeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bnema/gmail-checker/internal/ports"
)

const (
	// DefaultBaseURL is the origin feed URLs are built against.
	DefaultBaseURL = "https://mail.google.com"
	maxBodyBytes   = 1 << 20
	userAgent      = "gmc/feed"
)

type Fetcher struct {
	client  *http.Client
	baseURL string
}

var _ ports.FeedFetcher = (*Fetcher)(nil)

// NewFetcher returns a fetcher that sends requests for DefaultBaseURL to
// baseURL instead. An empty baseURL keeps the real origin.
func NewFetcher(client *http.Client, baseURL string) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Fetcher{client: client, baseURL: baseURL}
}

// Fetch returns the response whatever its status. Only failures to obtain a
// response at all are errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) (ports.FeedResponse, error) {
	endpoint := f.rewrite(url)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ports.FeedResponse{}, fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("User-Agent", userAgent)
	request.Header.Set("Accept", "application/atom+xml, application/xml;q=0.9, */*;q=0.1")

	response, err := f.client.Do(request)
	if err != nil {
		return ports.FeedResponse{}, fmt.Errorf("perform request: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxBodyBytes))
	if err != nil {
		return ports.FeedResponse{}, fmt.Errorf("read response: %w", err)
	}

	return ports.FeedResponse{
		StatusCode: response.StatusCode,
		Status:     response.Status,
		Body:       body,
	}, nil
}

func (f *Fetcher) rewrite(url string) string {
	if f.baseURL == DefaultBaseURL {
		return url
	}
	if rest, ok := strings.CutPrefix(url, DefaultBaseURL); ok {
		return f.baseURL + rest
	}
	return url
}
