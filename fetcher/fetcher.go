package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"hotel-rates-scraper/config"
	"hotel-rates-scraper/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("hotel-rates-scraper/fetcher")

// Fetcher interface defines the contract for fetching implementations
type Fetcher interface {
	// Fetch issues a single GET for the target's page.
	// Failures are reported in the result, never retried.
	Fetch(ctx context.Context, target models.FetchTarget) models.FetchResult
}

// FetchCloser is a Fetcher holding resources (connections, a browser)
type FetchCloser interface {
	Fetcher
	io.Closer
}

// Occupancy is the fixed party size sent with every request
type Occupancy struct {
	Adults   int
	Children int
}

// Options configures every fetch backend
type Options struct {
	BaseURL        string
	Language       string
	UserAgent      string
	AcceptLanguage string
	Concurrency    int           // Upper bound on connections to the host
	Timeout        time.Duration // Ceiling for a single request
	Occupancy      Occupancy
}

// OptionsFromConfig maps the fetch section of the configuration to Options
func OptionsFromConfig(cfg config.FetchConfig) Options {
	return Options{
		BaseURL:        cfg.BaseURL,
		Language:       cfg.Language,
		UserAgent:      cfg.UserAgent,
		AcceptLanguage: cfg.AcceptLanguage,
		Concurrency:    cfg.Concurrency,
		Timeout:        cfg.Timeout,
		Occupancy:      Occupancy{Adults: cfg.Adults, Children: cfg.Children},
	}
}

// New creates the fetcher for the given backend name
func New(backend string, opts Options, logger *slog.Logger) (FetchCloser, error) {
	switch backend {
	case config.BackendColly, "":
		return NewCollyFetcher(opts, logger)
	case config.BackendResty:
		return NewRestyFetcher(opts, logger), nil
	case config.BackendBrowser:
		return NewRodFetcher(opts, logger)
	default:
		return nil, fmt.Errorf("unknown fetch backend %q", backend)
	}
}

// getFunc performs the backend-specific GET and returns the response body
type getFunc func(ctx context.Context, link string) (string, error)

// fetchWith builds the target URL and runs get under a span.
// Every backend shares this so results are shaped the same way.
func fetchWith(ctx context.Context, backend string, opts Options, logger *slog.Logger, target models.FetchTarget, get getFunc) models.FetchResult {
	result := models.FetchResult{Target: target}

	link, err := BuildURL(opts.BaseURL, opts.Language, target, opts.Occupancy)
	if err != nil {
		result.Err = err
		return result
	}
	result.URL = link

	ctx, span := tracer.Start(ctx, backend+".Fetch", trace.WithAttributes(
		attribute.String("url", link),
		attribute.String("hotel", target.HotelID),
	))
	defer span.End()

	if err := ctx.Err(); err != nil {
		result.Err = &TransportError{URL: link, Timeout: isTimeout(err), Err: err}
	} else {
		result.Markup, result.Err = get(ctx, link)
	}

	if result.Err != nil {
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, "fetch failed")
		return result
	}

	span.SetAttributes(attribute.Int("bytes", len(result.Markup)))
	logger.DebugContext(ctx, "fetched page", "backend", backend, "url", link, "bytes", len(result.Markup))
	return result
}

// newTransport returns a transport whose connection pool is bounded at limit
func newTransport(limit int) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	if limit > 0 {
		t.MaxConnsPerHost = limit
		t.MaxIdleConnsPerHost = limit
	}
	return t
}
