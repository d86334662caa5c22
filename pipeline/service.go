package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"
	"unicode"

	"hotel-rates-scraper/aggregate"
	"hotel-rates-scraper/config"
	"hotel-rates-scraper/daterange"
	"hotel-rates-scraper/filter"
	"hotel-rates-scraper/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// ErrInvalidQuery is wrapped by every input validation error
var ErrInvalidQuery = errors.New("invalid query")

// EmptyHint is shown when a run produces no usable rows
const EmptyHint = "Check country, currency or hotel name inputs"

// Query is the input of one search
type Query struct {
	Hotels      []string
	Country     string    // ISO 3166-1 alpha-2
	Currency    string    // ISO 4217
	Start       time.Time // Zero means today
	HorizonDays int       // Zero means config.DefaultHorizonDays
	Rand        *rand.Rand
}

// Report is the outcome of a search
type Report struct {
	RunID     string
	Query     Query
	Ranges    []models.DateRange
	Table     models.Table
	Failures  []models.Failure
	Skips     []error
	Stats     Stats
	Empty     bool
	Hint      string // Set when Empty
	Cancelled bool
	Started   time.Time
	Finished  time.Time
}

// Service runs a validated query through the whole pipeline
type Service struct {
	orchestrator *Orchestrator
	filter       *filter.Filter
	logger       *slog.Logger
}

// NewService creates a new Service
func NewService(o *Orchestrator, f *filter.Filter, logger *slog.Logger) *Service {
	return &Service{
		orchestrator: o,
		filter:       f,
		logger:       logger,
	}
}

// Search validates q, samples the date ranges, runs every target and
// reduces the records to the cheapest offer per stay and room.
// Only invalid input is an error; zero rows is reported through Report.Empty.
func (s *Service) Search(ctx context.Context, q Query) (*Report, error) {
	q, err := NormalizeQuery(q)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:   uuid.NewString(),
		Query:   q,
		Started: time.Now(),
	}
	logger := s.logger.With("run_id", report.RunID)

	ctx, span := tracer.Start(ctx, "pipeline.Search")
	defer span.End()
	span.SetAttributes(
		attribute.String("run_id", report.RunID),
		attribute.Int("hotels", len(q.Hotels)),
		attribute.String("country", q.Country),
		attribute.String("currency", q.Currency),
	)

	report.Ranges = daterange.Generate(q.Start, q.HorizonDays, q.Rand)
	logger.InfoContext(ctx, "search started",
		"hotels", len(q.Hotels),
		"ranges", len(report.Ranges),
		"country", q.Country,
		"currency", q.Currency)

	result := s.orchestrator.Run(ctx, Request{
		Hotels:   q.Hotels,
		Ranges:   report.Ranges,
		Country:  q.Country,
		Currency: q.Currency,
	})

	report.Table = aggregate.Cheapest(s.filter.ApplyFilters(result.Records))
	report.Failures = result.Failures
	report.Skips = result.Skips
	report.Stats = result.Stats
	report.Cancelled = ctx.Err() != nil
	report.Finished = time.Now()
	if len(report.Table) == 0 {
		report.Empty = true
		report.Hint = EmptyHint
	}

	logger.InfoContext(ctx, "search finished",
		"targets", result.Stats.Targets,
		"succeeded", result.Stats.Succeeded,
		"failed", result.Stats.Failed,
		"cancelled", result.Stats.Cancelled,
		"rows_skipped", result.Stats.RowsSkipped,
		"rows", len(report.Table),
		"duration", report.Finished.Sub(report.Started))

	return report, nil
}

// NormalizeQuery validates q and returns it in canonical form:
// hotels trimmed, lower-cased and de-duplicated, country lower-cased,
// currency upper-cased, start truncated to a UTC date.
func NormalizeQuery(q Query) (Query, error) {
	var errs []error

	q.Hotels = normalizeHotels(q.Hotels)
	if len(q.Hotels) == 0 {
		errs = append(errs, errors.New("at least one hotel name is required"))
	}
	for _, h := range q.Hotels {
		if strings.ContainsAny(h, "/?#") || strings.ContainsFunc(h, unicode.IsSpace) {
			errs = append(errs, fmt.Errorf("hotel name %q is not a page identifier", h))
		}
	}

	country, err := normalizeCountry(q.Country)
	if err != nil {
		errs = append(errs, err)
	}
	q.Country = country

	cur, err := normalizeCurrency(q.Currency)
	if err != nil {
		errs = append(errs, err)
	}
	q.Currency = cur

	if q.HorizonDays < 0 {
		errs = append(errs, fmt.Errorf("horizon must not be negative, got %d", q.HorizonDays))
	}
	if q.HorizonDays == 0 {
		q.HorizonDays = config.DefaultHorizonDays
	}

	if q.Start.IsZero() {
		q.Start = time.Now()
	}
	q.Start = time.Date(q.Start.Year(), q.Start.Month(), q.Start.Day(), 0, 0, 0, 0, time.UTC)

	if len(errs) > 0 {
		return q, fmt.Errorf("%w: %w", ErrInvalidQuery, errors.Join(errs...))
	}
	return q, nil
}

// normalizeCountry accepts an ISO 3166-1 alpha-2 code in any case
func normalizeCountry(code string) (string, error) {
	code = strings.TrimSpace(code)
	if len(code) != 2 {
		return "", fmt.Errorf("country %q must be a two-letter code", code)
	}
	region, err := language.ParseRegion(code)
	if err != nil || !region.IsCountry() {
		return "", fmt.Errorf("unknown country code %q", code)
	}
	return strings.ToLower(region.String()), nil
}

// normalizeCurrency accepts an ISO 4217 code in any case
func normalizeCurrency(code string) (string, error) {
	code = strings.TrimSpace(code)
	unit, err := currency.ParseISO(code)
	if err != nil || unit == (currency.Unit{}) || unit == currency.XXX {
		return "", fmt.Errorf("unknown currency code %q", code)
	}
	return unit.String(), nil
}

// ParseHotelList reads hotel names one per line, as pasted in bulk
func ParseHotelList(text string) []string {
	return normalizeHotels(strings.Split(text, "\n"))
}

// normalizeHotels trims and lower-cases names, dropping blanks and repeats
func normalizeHotels(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
