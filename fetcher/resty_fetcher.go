package fetcher

import (
	"context"
	"log/slog"

	"hotel-rates-scraper/models"

	"github.com/go-resty/resty/v2"
)

// RestyFetcher implements the Fetcher interface with a resty client
type RestyFetcher struct {
	client *resty.Client
	opts   Options
	logger *slog.Logger
}

// NewRestyFetcher creates a RestyFetcher; retries stay disabled
func NewRestyFetcher(opts Options, logger *slog.Logger) *RestyFetcher {
	client := resty.New().
		SetTransport(newTransport(opts.Concurrency)).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept-Language", opts.AcceptLanguage).
		SetRetryCount(0)

	return &RestyFetcher{
		client: client,
		opts:   opts,
		logger: logger,
	}
}

// Fetch implements the Fetcher interface
func (rf *RestyFetcher) Fetch(ctx context.Context, target models.FetchTarget) models.FetchResult {
	return fetchWith(ctx, "resty", rf.opts, rf.logger, target, rf.get)
}

func (rf *RestyFetcher) get(ctx context.Context, link string) (string, error) {
	res, err := rf.client.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return "", requestError(link, err)
	}
	if !res.IsSuccess() {
		return "", statusError(link, res.StatusCode())
	}
	return res.String(), nil
}

// Close releases idle connections
func (rf *RestyFetcher) Close() error {
	rf.client.GetClient().CloseIdleConnections()
	return nil
}
