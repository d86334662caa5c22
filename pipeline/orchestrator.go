package pipeline

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"

	"hotel-rates-scraper/fetcher"
	"hotel-rates-scraper/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("hotel-rates-scraper/pipeline")

// Extractor turns a fetched page into room records.
// Each step yields a record, or a non-nil error for a skipped unit.
type Extractor interface {
	Rooms(ctx context.Context, page models.FetchResult) iter.Seq2[models.RoomRecord, error]
}

// ProgressFunc is called after every target completes
type ProgressFunc func(done, total int)

// Request is one batch of hotels x date ranges for a single country and currency
type Request struct {
	Hotels   []string
	Ranges   []models.DateRange
	Country  string
	Currency string
}

// Stats summarises a run
type Stats struct {
	Targets     int // Hotels x ranges
	Succeeded   int // Fetched, whatever the page yielded
	Failed      int // Transport failures, see Result.Failures
	Cancelled   int // Not completed because the run was cancelled
	RowsSkipped int
	Records     int
}

// Result is everything collected by one run
type Result struct {
	Records  []models.RoomRecord
	Failures []models.Failure
	Skips    []error
	Stats    Stats
}

// Empty reports whether the run produced no usable rows
func (r *Result) Empty() bool {
	return len(r.Records) == 0
}

// Orchestrator fans fetch+extract tasks out under a concurrency limit
type Orchestrator struct {
	fetcher     fetcher.Fetcher
	extractor   Extractor
	concurrency int
	logger      *slog.Logger
	progress    ProgressFunc
}

// NewOrchestrator creates an Orchestrator running at most concurrency tasks at once
func NewOrchestrator(f fetcher.Fetcher, e Extractor, concurrency int, logger *slog.Logger) *Orchestrator {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Orchestrator{
		fetcher:     f,
		extractor:   e,
		concurrency: concurrency,
		logger:      logger,
	}
}

// SetProgress registers a callback invoked as targets complete
func (o *Orchestrator) SetProgress(fn ProgressFunc) {
	o.progress = fn
}

// Targets builds one FetchTarget per (hotel, range) pair, hotel-major
func Targets(req Request) []models.FetchTarget {
	targets := make([]models.FetchTarget, 0, len(req.Hotels)*len(req.Ranges))
	for _, hotel := range req.Hotels {
		for _, r := range req.Ranges {
			targets = append(targets, models.FetchTarget{
				HotelID:  hotel,
				CheckIn:  r.CheckIn,
				CheckOut: r.CheckOut,
				Country:  req.Country,
				Currency: req.Currency,
			})
		}
	}
	return targets
}

// collector gathers task outcomes; it is the only state tasks share
type collector struct {
	mu     sync.Mutex
	result Result
}

// Run fetches and extracts every target. A failing target never affects
// the others, and a run where nothing succeeds is an empty Result, not an error.
// Cancelling ctx stops dispatch; targets that did not complete are left out.
func (o *Orchestrator) Run(ctx context.Context, req Request) *Result {
	targets := Targets(req)

	ctx, span := tracer.Start(ctx, "pipeline.Run")
	defer span.End()
	span.SetAttributes(
		attribute.Int("targets", len(targets)),
		attribute.Int("concurrency", o.concurrency),
	)

	var (
		failures fetcher.FailureLog
		c        collector
		done     atomic.Int64
		g        errgroup.Group
	)
	g.SetLimit(o.concurrency)

	dispatched := 0
	for _, target := range targets {
		if ctx.Err() != nil {
			break
		}
		dispatched++
		g.Go(func() error {
			o.process(ctx, target, &failures, &c)
			if o.progress != nil {
				o.progress(int(done.Add(1)), len(targets))
			}
			return nil
		})
	}
	// Tasks report through the collector and never return an error
	_ = g.Wait()

	result := c.result
	result.Failures = failures.Entries()
	result.Stats.Targets = len(targets)
	result.Stats.Cancelled += len(targets) - dispatched
	result.Stats.Failed = len(result.Failures)
	result.Stats.RowsSkipped = len(result.Skips)
	result.Stats.Records = len(result.Records)

	span.SetAttributes(
		attribute.Int("records", result.Stats.Records),
		attribute.Int("failed", result.Stats.Failed),
		attribute.Int("cancelled", result.Stats.Cancelled),
	)
	return &result
}

// process runs one fetch+extract task
func (o *Orchestrator) process(ctx context.Context, target models.FetchTarget, failures *fetcher.FailureLog, c *collector) {
	if ctx.Err() != nil {
		c.cancelled()
		return
	}

	page := o.fetcher.Fetch(ctx, target)
	if !page.OK() {
		if ctx.Err() != nil {
			c.cancelled()
			return
		}
		failures.Record(page)
		o.logger.WarnContext(ctx, "fetch failed", "target", target.String(), "url", page.URL, "error", page.Err)
		return
	}

	records, skips := o.extract(ctx, page)
	for _, skip := range skips {
		o.logger.DebugContext(ctx, "row skipped", "target", target.String(), "reason", skip)
	}
	o.logger.DebugContext(ctx, "page extracted", "target", target.String(), "records", len(records), "skipped", len(skips))

	c.mu.Lock()
	defer c.mu.Unlock()
	c.result.Stats.Succeeded++
	c.result.Records = append(c.result.Records, records...)
	c.result.Skips = append(c.result.Skips, skips...)
}

// extract drains the extractor for one page. A panic outside a single row
// means the page yields nothing; it is reported as a skip.
func (o *Orchestrator) extract(ctx context.Context, page models.FetchResult) (records []models.RoomRecord, skips []error) {
	defer func() {
		if r := recover(); r != nil {
			records = nil
			skips = append(skips, fmt.Errorf("extractor panic on %s: %v", page.URL, r))
		}
	}()

	for record, err := range o.extractor.Rooms(ctx, page) {
		if err != nil {
			skips = append(skips, err)
			continue
		}
		records = append(records, record)
	}
	return records, skips
}

func (c *collector) cancelled() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result.Stats.Cancelled++
}
