package ports

import "context"

type FeedResponse struct {
	StatusCode int
	Status     string
	Body       []byte
}

// FeedFetcher retrieves a raw feed document. Cancelling ctx must make Fetch
// return promptly.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) (FeedResponse, error)
}
