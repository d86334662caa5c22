package fetcher

import (
	"context"
	"fmt"
	"log/slog"

	"hotel-rates-scraper/models"

	"github.com/gocolly/colly/v2"
)

// maxBodySize caps a single hotel page; room tables on large properties run to several MB
const maxBodySize = 32 << 20

// CollyFetcher implements the Fetcher interface using colly.
// All requests go through clones of one collector, so they share its
// HTTP client, connection pool and limit rule.
type CollyFetcher struct {
	collector *colly.Collector
	opts      Options
	logger    *slog.Logger
}

// NewCollyFetcher creates a new CollyFetcher instance
func NewCollyFetcher(opts Options, logger *slog.Logger) (*CollyFetcher, error) {
	c := colly.NewCollector(
		colly.UserAgent(opts.UserAgent),
		colly.AllowURLRevisit(),
		colly.MaxBodySize(maxBodySize),
		// Status codes are classified by us, not turned into colly errors
		colly.ParseHTTPErrorResponse(),
	)

	c.WithTransport(newTransport(opts.Concurrency))
	c.SetRequestTimeout(opts.Timeout)

	if opts.Concurrency > 0 {
		if err := c.Limit(&colly.LimitRule{
			DomainGlob:  "*",
			Parallelism: opts.Concurrency,
		}); err != nil {
			return nil, fmt.Errorf("failed to set limit rule: %w", err)
		}
	}

	return &CollyFetcher{
		collector: c,
		opts:      opts,
		logger:    logger,
	}, nil
}

// Fetch implements the Fetcher interface
func (cf *CollyFetcher) Fetch(ctx context.Context, target models.FetchTarget) models.FetchResult {
	return fetchWith(ctx, "colly", cf.opts, cf.logger, target, cf.get)
}

func (cf *CollyFetcher) get(ctx context.Context, link string) (string, error) {
	c := cf.collector.Clone()

	var (
		status int
		body   []byte
	)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", cf.opts.AcceptLanguage)
	})
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})

	// colly has no per-request context; abandon the visit when ctx ends.
	// The client timeout still bounds the abandoned request.
	done := make(chan error, 1)
	go func() {
		done <- c.Visit(link)
	}()

	select {
	case <-ctx.Done():
		return "", requestError(link, ctx.Err())
	case err := <-done:
		if err != nil {
			return "", requestError(link, err)
		}
	}

	if !isSuccess(status) {
		return "", statusError(link, status)
	}
	return string(body), nil
}

// Close is a no-op; idle connections are released by the transport
func (cf *CollyFetcher) Close() error {
	return nil
}
